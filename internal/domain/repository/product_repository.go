package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

// ProductFilter narrows and pages product listings. Soft-deleted
// products are always excluded at the repository boundary.
type ProductFilter struct {
	CategoryID *uuid.UUID
	Search     string // Case-insensitive match against the product name.
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	InStock    bool // Only products with stock > 0 when true.
	Tag        string
	SortBy     string // Whitelisted column, defaults to creation time.
	SortDesc   bool
	Page       int
	Limit      int
}

// ProductRepository defines the standard operations for product persistence.
type ProductRepository interface {
	// FindByID retrieves a single product by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	// FindByIDs retrieves the products with the given IDs, excluding
	// soft-deleted ones. Missing IDs are simply absent from the result.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error)

	// FindByIDsForUpdate behaves like FindByIDs but locks the rows for
	// the duration of the surrounding transaction.
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error)

	// Create persists a new product entity to the storage.
	Create(ctx context.Context, product *entity.Product) error

	// Update modifies an existing product entity in the storage.
	Update(ctx context.Context, product *entity.Product) error

	// List returns a page of products matching the filter and the total match count.
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int64, error)

	// AdjustStock atomically applies stockDelta to the stock column and
	// soldDelta to the sold count of one product.
	AdjustStock(ctx context.Context, id uuid.UUID, stockDelta, soldDelta int) error

	// SetRatingStats overwrites the denormalized review aggregates.
	SetRatingStats(ctx context.Context, id uuid.UUID, averageRating float64, reviewsCount int) error

	// Count returns the total number of non-deleted products.
	Count(ctx context.Context) (int64, error)
}
