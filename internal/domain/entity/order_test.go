package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusCanTransitionTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{"pending to confirmed", OrderStatusPending, OrderStatusConfirmed, true},
		{"pending to shipped", OrderStatusPending, OrderStatusShipped, true},
		{"pending to delivered", OrderStatusPending, OrderStatusDelivered, true},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"confirmed to shipped", OrderStatusConfirmed, OrderStatusShipped, true},
		{"confirmed to cancelled", OrderStatusConfirmed, OrderStatusCancelled, true},
		{"confirmed to pending", OrderStatusConfirmed, OrderStatusPending, false},
		{"shipped to delivered", OrderStatusShipped, OrderStatusDelivered, true},
		{"shipped to cancelled", OrderStatusShipped, OrderStatusCancelled, false},
		{"shipped to pending", OrderStatusShipped, OrderStatusPending, false},
		{"delivered to delivered is idempotent", OrderStatusDelivered, OrderStatusDelivered, true},
		{"delivered to shipped", OrderStatusDelivered, OrderStatusShipped, false},
		{"delivered to cancelled", OrderStatusDelivered, OrderStatusCancelled, false},
		{"cancelled to pending", OrderStatusCancelled, OrderStatusPending, false},
		{"cancelled to confirmed", OrderStatusCancelled, OrderStatusConfirmed, false},
		{"cancelled to cancelled", OrderStatusCancelled, OrderStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderComputeTotal(t *testing.T) {
	t.Parallel()

	order := &Order{
		Items: []OrderItem{
			{ProductID: uuid.New(), Quantity: 3, UnitPrice: decimal.NewFromInt(10)},
			{ProductID: uuid.New(), Quantity: 2, UnitPrice: decimal.RequireFromString("19.99")},
		},
	}

	assert.True(t, order.ComputeTotal().Equal(decimal.RequireFromString("69.98")))
}

func TestCartFindItem(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	cart := &Cart{Items: []CartItem{
		{ProductID: uuid.New(), Quantity: 1},
		{ProductID: productID, Quantity: 4},
	}}

	assert.Equal(t, 1, cart.FindItem(productID))
	assert.Equal(t, -1, cart.FindItem(uuid.New()))
	assert.False(t, cart.IsEmpty())
	assert.True(t, (&Cart{}).IsEmpty())
}
