package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item.
type Product struct {
	ID          uuid.UUID
	Name        string
	SKU         string // Optional merchant stock keeping unit, unique when present.
	Description string
	Price       decimal.Decimal
	CategoryID  uuid.UUID
	Stock       int // Units available for sale, never negative.
	SoldCount   int // Total units sold across all orders, monotonically increasing.
	Images      []string
	Tags        []string
	Status      RecordStatus

	// Review aggregates, recomputed from active reviews on every
	// review mutation rather than maintained incrementally.
	AverageRating float64
	ReviewsCount  int

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsPurchasable reports whether the product can be added to carts and orders.
func (p *Product) IsPurchasable() bool {
	return p.Status.IsActive()
}

// HasStock reports whether the requested quantity can be fulfilled.
func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}
