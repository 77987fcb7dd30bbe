package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrOrderNotFound is returned when an order is not found.
var ErrOrderNotFound = errors.New("order not found")

// OrderFilter narrows and pages order listings.
type OrderFilter struct {
	UserID    *uuid.UUID
	Status    *entity.OrderStatus
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	From      *time.Time // Creation time lower bound, inclusive.
	To        *time.Time // Creation time upper bound, inclusive.
	Page      int
	Limit     int
}

// RevenueStats aggregates revenue over a set of order statuses.
type RevenueStats struct {
	Total      decimal.Decimal
	OrderCount int64
}

// ProductSales reports total units sold for one product.
type ProductSales struct {
	ProductID uuid.UUID
	Name      string
	UnitsSold int64
}

// OrderRepository defines the standard operations for order persistence.
type OrderRepository interface {
	// Create persists a new order with its item snapshots.
	Create(ctx context.Context, order *entity.Order) error

	// FindByID retrieves a single order with its items.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)

	// FindByIDForUpdate behaves like FindByID but locks the order row
	// for the duration of the surrounding transaction. Payment
	// reconciliation uses this to serialize webhook and verify paths.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error)

	// Update modifies an existing order's mutable fields (status and
	// payment mirror); item snapshots are never rewritten.
	Update(ctx context.Context, order *entity.Order) error

	// List returns a page of orders matching the filter and the total match count.
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, int64, error)

	// HasDeliveredProduct reports whether the user has a delivered order
	// containing the product, and returns the qualifying order's ID.
	HasDeliveredProduct(ctx context.Context, userID, productID uuid.UUID) (uuid.UUID, bool, error)

	// Revenue aggregates total revenue and order count over the given statuses.
	Revenue(ctx context.Context, statuses []entity.OrderStatus) (*RevenueStats, error)

	// TopProducts returns the best-selling products by units across all
	// non-cancelled orders, best first.
	TopProducts(ctx context.Context, limit int) ([]ProductSales, error)

	// Recent returns the most recently created orders, newest first.
	Recent(ctx context.Context, limit int) ([]*entity.Order, error)

	// Count returns the total number of orders.
	Count(ctx context.Context) (int64, error)
}
