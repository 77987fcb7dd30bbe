package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrCategoryNotFound is returned when a category is not found.
var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepository defines the standard operations for category persistence.
type CategoryRepository interface {
	// FindByID retrieves a single category by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)

	// FindByName retrieves a single category by its unique name.
	FindByName(ctx context.Context, name string) (*entity.Category, error)

	// Create persists a new category entity to the storage.
	Create(ctx context.Context, category *entity.Category) error

	// Update modifies an existing category entity in the storage.
	Update(ctx context.Context, category *entity.Category) error

	// List returns all non-deleted categories.
	List(ctx context.Context) ([]*entity.Category, error)
}
