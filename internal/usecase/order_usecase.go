package usecase

import (
	"context"
	"time"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Input DTOs ---

// OrderItemInput is one requested order line.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput places an order for an explicit list of items. When
// FromCart is set the item list is taken from the caller's cart instead
// and the cart is emptied on success.
type CreateOrderInput struct {
	UserID          uuid.UUID
	Items           []OrderItemInput
	FromCart        bool
	ShippingAddress entity.ShippingAddress
}

// ListOrdersInput filters an order listing. UserID is zero for admin
// listings spanning all customers.
type ListOrdersInput struct {
	UserID    uuid.UUID
	Status    *entity.OrderStatus
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

// UpdateOrderStatusInput moves an order through its lifecycle.
type UpdateOrderStatusInput struct {
	OrderID uuid.UUID
	Status  entity.OrderStatus
}

// --- Output DTOs ---

// OrderListOutput returns one page of orders and the total match count.
type OrderListOutput struct {
	Orders []*entity.Order
	Total  int64
	Page   int
	Limit  int
}

// OrderUsecase defines the interface for order placement and lifecycle
// operations.
type OrderUsecase interface {
	CreateOrder(ctx context.Context, input *CreateOrderInput) (*entity.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*entity.Order, error)
	// GetUserOrder returns the order only when it belongs to userID.
	GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error)
	ListOrders(ctx context.Context, input *ListOrdersInput) (*OrderListOutput, error)
	UpdateStatus(ctx context.Context, input *UpdateOrderStatusInput) (*entity.Order, error)
	// CancelOrder is the customer-facing cancellation. It restocks the
	// order's items when the transition is allowed.
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error)
}
