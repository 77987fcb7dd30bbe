package entity

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the single pending cart of a user. Line items hold only the
// product reference and quantity; prices are resolved against the
// catalog when the cart is read or converted into an order.
type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID // One cart per user, enforced by a unique constraint.
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem is a single product line inside a cart.
type CartItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// FindItem returns the index of the line for productID, or -1.
func (c *Cart) FindItem(productID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}

	return -1
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
