package model

import (
	"time"

	"github.com/google/uuid"
)

// CartModel mirrors the 'carts' table. The unique index on UserID
// enforces one cart per user at the storage level.
type CartModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []CartItemModel `gorm:"foreignKey:CartID"`
}

// TableName explicitly sets the table name for GORM.
func (CartModel) TableName() string {
	return "carts"
}

// CartItemModel mirrors the 'cart_items' table.
type CartItemModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_cart_product"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_product"`
	Quantity  int       `gorm:"not null;check:quantity > 0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (CartItemModel) TableName() string {
	return "cart_items"
}
