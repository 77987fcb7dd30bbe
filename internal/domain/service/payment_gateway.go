package service

import (
	"context"

	"github.com/shopspring/decimal"
)

// PreferenceItem is one purchasable line inside a checkout preference.
type PreferenceItem struct {
	ID        string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// BackURLs are where the gateway redirects the buyer after checkout.
type BackURLs struct {
	Success string
	Failure string
	Pending string
}

// PreferenceRequest describes a hosted checkout session to create.
type PreferenceRequest struct {
	Items             []PreferenceItem
	PayerEmail        string
	ExternalReference string // Correlates the gateway session back to an order.
	BackURLs          BackURLs
	NotificationURL   string // Webhook endpoint for asynchronous payment updates.
}

// Preference is the created hosted checkout session.
type Preference struct {
	ID               string
	InitPoint        string // Buyer-facing checkout URL.
	SandboxInitPoint string
}

// Payment is the gateway's authoritative record of one payment attempt.
type Payment struct {
	ID                string
	Status            string // Gateway status string, e.g. "approved".
	StatusDetail      string
	ExternalReference string // The order ID the payment settles.
	TransactionAmount decimal.Decimal
	PayerEmail        string
}

// SubscriptionRequest describes a recurring charge to create.
type SubscriptionRequest struct {
	Reason            string
	PayerEmail        string
	Amount            decimal.Decimal
	CurrencyID        string
	FrequencyDays     int
	ExternalReference string
	BackURL           string
}

// Subscription is the gateway's record of a recurring charge.
type Subscription struct {
	ID                string
	Status            string
	InitPoint         string
	ExternalReference string
}

// PaymentGateway abstracts the third-party payment provider. All calls
// are outbound HTTP with a fixed timeout; errors never expose gateway
// internals to API clients.
type PaymentGateway interface {
	// CreatePreference opens a hosted checkout session.
	CreatePreference(ctx context.Context, req *PreferenceRequest) (*Preference, error)

	// GetPayment fetches the authoritative payment state by gateway ID.
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)

	// CreateSubscription opens a recurring charge authorization.
	CreateSubscription(ctx context.Context, req *SubscriptionRequest) (*Subscription, error)

	// GetSubscription fetches a subscription by gateway ID.
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)

	// CancelSubscription cancels a subscription at the gateway.
	CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
}
