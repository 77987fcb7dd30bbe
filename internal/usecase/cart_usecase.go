package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Input DTOs ---

// AddCartItemInput adds a product to the caller's cart, or bumps its
// quantity if already present.
type AddCartItemInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

// UpdateCartItemInput replaces the quantity of one cart line.
type UpdateCartItemInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

// --- Output DTOs ---

// CartItemOutput is one cart line joined with its live product data.
type CartItemOutput struct {
	ProductID   uuid.UUID       `json:"productId"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Image       string          `json:"image,omitempty"`
	Available   bool            `json:"available"`
	StockOnHand int             `json:"stockOnHand"`
}

// CartOutput is the caller's cart with totals derived from current
// product prices. Prices are never persisted on cart lines.
type CartOutput struct {
	Items     []CartItemOutput `json:"items"`
	ItemCount int              `json:"itemCount"`
	Total     decimal.Decimal  `json:"total"`
}

// CartUsecase defines the interface for shopping cart operations.
type CartUsecase interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartOutput, error)
	AddItem(ctx context.Context, input *AddCartItemInput) (*CartOutput, error)
	UpdateItem(ctx context.Context, input *UpdateCartItemInput) (*CartOutput, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartOutput, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}
