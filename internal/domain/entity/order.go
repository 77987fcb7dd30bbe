package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfillment state of an order.
type OrderStatus string

const (
	// OrderStatusPending indicates a newly created, unconfirmed order.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed indicates a paid or manually confirmed order.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusShipped indicates the order has left the warehouse.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered is a terminal state; re-marking delivered is a no-op.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled is a terminal state reachable from pending or confirmed.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// String returns the string representation of the OrderStatus.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid checks if the OrderStatus is a valid value.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// orderTransitions defines the permitted forward moves. Skipping states
// is allowed (e.g. pending straight to delivered for in-person sales).
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
	OrderStatusDelivered: {OrderStatusDelivered},
	OrderStatusCancelled: {},
}

// CanTransitionTo reports whether the status may move to target.
// delivered to delivered is permitted so repeated delivery confirmations
// stay idempotent; cancelled accepts nothing.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == target {
			return true
		}
	}

	return false
}

// PaymentStatus mirrors the payment state reported by the gateway.
type PaymentStatus string

const (
	PaymentStatusPending     PaymentStatus = "pending"
	PaymentStatusApproved    PaymentStatus = "approved"
	PaymentStatusRejected    PaymentStatus = "rejected"
	PaymentStatusCancelled   PaymentStatus = "cancelled"
	PaymentStatusRefunded    PaymentStatus = "refunded"
	PaymentStatusChargedBack PaymentStatus = "charged_back"
)

// String returns the string representation of the PaymentStatus.
func (s PaymentStatus) String() string {
	return string(s)
}

// ShippingAddress is the destination captured at order creation.
type ShippingAddress struct {
	Street  string
	City    string
	ZipCode string
	Country string
}

// OrderItem is a purchased line with the unit price frozen at creation
// time, so later catalog price changes never affect past orders.
type OrderItem struct {
	ProductID uuid.UUID
	Name      string // Product name snapshot at purchase time.
	Quantity  int
	UnitPrice decimal.Decimal // Price snapshot at purchase time.
}

// Subtotal returns quantity times the frozen unit price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is an immutable purchase snapshot plus its fulfillment and
// payment state.
type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Items           []OrderItem
	TotalAmount     decimal.Decimal // Computed once at creation from the item snapshots.
	Status          OrderStatus
	ShippingAddress ShippingAddress

	// Payment mirror, updated by reconciliation only.
	PaymentID     string // Gateway payment identifier, empty until first notification.
	PaymentStatus PaymentStatus
	IsPaid        bool
	PaidAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ComputeTotal sums the line subtotals.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}

	return total
}
