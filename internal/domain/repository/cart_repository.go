package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrCartNotFound is returned when a user has no cart yet.
var ErrCartNotFound = errors.New("cart not found")

// CartRepository defines the standard operations for cart persistence.
type CartRepository interface {
	// FindByUserID retrieves the single cart of a user.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Cart, error)

	// Save upserts the cart and replaces its line items.
	Save(ctx context.Context, cart *entity.Cart) error

	// Clear removes every line item but keeps the cart row.
	Clear(ctx context.Context, userID uuid.UUID) error
}
