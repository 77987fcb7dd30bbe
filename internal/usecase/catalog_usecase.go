package usecase

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Input DTOs ---

// CreateProductInput defines the data required to create a product.
type CreateProductInput struct {
	Name        string
	SKU         string
	Description string
	Price       decimal.Decimal
	CategoryID  uuid.UUID
	Stock       int
	Images      []string
	Tags        []string
}

// UpdateProductInput defines the mutable product fields. Nil pointers
// leave the current value untouched.
type UpdateProductInput struct {
	ProductID   uuid.UUID
	Name        *string
	SKU         *string
	Description *string
	Price       *decimal.Decimal
	CategoryID  *uuid.UUID
	Stock       *int
	Images      []string
	Tags        []string
	Status      *entity.RecordStatus
}

// ListProductsInput mirrors the public catalog filters.
type ListProductsInput struct {
	CategoryID *uuid.UUID
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	InStock    bool
	Tag        string
	SortBy     string
	SortDesc   bool
	Page       int
	Limit      int
}

// CreateCategoryInput defines the data required to create a category.
type CreateCategoryInput struct {
	Name        string
	Description string
}

// UpdateCategoryInput defines the mutable category fields.
type UpdateCategoryInput struct {
	CategoryID  uuid.UUID
	Name        *string
	Description *string
	Status      *entity.RecordStatus
}

// --- Output DTOs ---

// ProductListOutput returns one catalog page and its total match count.
type ProductListOutput struct {
	Products []*entity.Product
	Total    int64
	Page     int
	Limit    int
}

// CatalogUsecase defines the interface for product and category operations.
type CatalogUsecase interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*entity.Product, error)
	ListProducts(ctx context.Context, input *ListProductsInput) (*ProductListOutput, error)
	CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error)
	UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	ListCategories(ctx context.Context) ([]*entity.Category, error)
	GetCategory(ctx context.Context, categoryID uuid.UUID) (*entity.Category, error)
	CreateCategory(ctx context.Context, input *CreateCategoryInput) (*entity.Category, error)
	UpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*entity.Category, error)
	DeleteCategory(ctx context.Context, categoryID uuid.UUID) error
}
