package entity

import (
	"time"

	"github.com/google/uuid"
)

// Review is a buyer's rating of a product. At most one review exists per
// (user, product) pair, and only buyers with a delivered order that
// contains the product may create one.
type Review struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	UserID    uuid.UUID
	OrderID   uuid.UUID // The delivered order that qualified the buyer to review.
	Rating    int       // 1 to 5 inclusive.
	Comment   string    // Free text, at most 500 characters.
	Status    RecordStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
