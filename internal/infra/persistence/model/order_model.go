package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel mirrors the 'orders' table. Shipping address fields are
// flattened into columns; item snapshots live in 'order_items'.
type OrderModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status      string          `gorm:"type:varchar(20);not null;default:'pending';index"`

	ShippingStreet  string `gorm:"type:varchar(200)"`
	ShippingCity    string `gorm:"type:varchar(100)"`
	ShippingZipCode string `gorm:"type:varchar(20)"`
	ShippingCountry string `gorm:"type:varchar(100)"`

	PaymentID     string `gorm:"type:varchar(64);index"`
	PaymentStatus string `gorm:"type:varchar(20);not null;default:'pending'"`
	IsPaid        bool   `gorm:"not null;default:false"`
	PaidAt        *time.Time

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	Items []OrderItemModel `gorm:"foreignKey:OrderID"`
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel mirrors the 'order_items' table. Name and UnitPrice
// are snapshots taken at order creation and never updated afterwards.
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Quantity  int             `gorm:"not null;check:quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (OrderItemModel) TableName() string {
	return "order_items"
}
