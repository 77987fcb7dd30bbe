package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Input DTOs ---

// CheckoutInput starts a hosted checkout for an existing order.
type CheckoutInput struct {
	UserID  uuid.UUID
	OrderID uuid.UUID
}

// WebhookInput is the notification payload sent by the payment
// provider. Payloads arrive in two shapes depending on the event
// channel, so both the query parameters and the body identifiers are
// carried here.
type WebhookInput struct {
	Type       string
	Action     string
	DataID     string
	Topic      string
	ProviderID string
	RawBody    []byte
}

// VerifyPaymentInput reconciles one order against the provider by
// payment id.
type VerifyPaymentInput struct {
	PaymentID string
}

// CreateSubscriptionInput starts a recurring payment plan.
type CreateSubscriptionInput struct {
	UserID        uuid.UUID
	Reason        string
	Amount        decimal.Decimal
	FrequencyDays int
	PayerEmail    string
}

// --- Output DTOs ---

// CheckoutOutput returns the hosted checkout redirect targets.
type CheckoutOutput struct {
	PreferenceID     string `json:"preferenceId"`
	InitPoint        string `json:"initPoint"`
	SandboxInitPoint string `json:"sandboxInitPoint,omitempty"`
}

// PaymentUsecase defines the interface for payment gateway integration,
// webhook intake and asynchronous reconciliation.
type PaymentUsecase interface {
	CreateCheckout(ctx context.Context, input *CheckoutInput) (*CheckoutOutput, error)
	GetPayment(ctx context.Context, paymentID string) (*service.Payment, error)
	// HandleWebhook persists the notification for asynchronous
	// processing. It never fails on malformed payloads so the provider
	// does not retry forever.
	HandleWebhook(ctx context.Context, input *WebhookInput) error
	// VerifyPayment fetches the payment from the provider and applies
	// its status to the referenced order.
	VerifyPayment(ctx context.Context, input *VerifyPaymentInput) (*entity.Order, error)
	// ProcessOutbox claims up to limit pending webhook events and
	// reconciles each against the provider. It returns the number of
	// events processed.
	ProcessOutbox(ctx context.Context, limit int) (int, error)

	CreateSubscription(ctx context.Context, input *CreateSubscriptionInput) (*service.Subscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*service.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*service.Subscription, error)
}
