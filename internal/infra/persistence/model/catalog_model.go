package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryModel mirrors the 'categories' table.
type CategoryModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Name        string    `gorm:"type:varchar(100);unique;not null"`
	Description string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(20);not null;default:'active';index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (CategoryModel) TableName() string {
	return "categories"
}

// ProductModel mirrors the 'products' table. Prices are NUMERIC to keep
// exact decimal arithmetic in the database.
type ProductModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Name          string          `gorm:"type:varchar(200);not null;index"`
	SKU           *string         `gorm:"type:varchar(64);uniqueIndex"`
	Description   string          `gorm:"type:text"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Stock         int             `gorm:"not null;default:0;check:stock >= 0"`
	SoldCount     int             `gorm:"not null;default:0"`
	Images        StringSlice     `gorm:"type:jsonb"`
	Tags          StringSlice     `gorm:"type:jsonb"`
	Status        string          `gorm:"type:varchar(20);not null;default:'active';index"`
	AverageRating float64         `gorm:"not null;default:0"`
	ReviewsCount  int             `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time `gorm:"index"`

	Category *CategoryModel `gorm:"foreignKey:CategoryID"`
}

// TableName explicitly sets the table name for GORM.
func (ProductModel) TableName() string {
	return "products"
}
