package model

import (
	"time"

	"github.com/google/uuid"
)

// ReviewModel mirrors the 'reviews' table. The unique index on
// (ProductID, UserID) enforces one review per buyer per product, soft
// deleted rows included.
type ReviewModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_product_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_user"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5"`
	Comment   string    `gorm:"type:varchar(500)"`
	Status    string    `gorm:"type:varchar(20);not null;default:'active';index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (ReviewModel) TableName() string {
	return "reviews"
}
