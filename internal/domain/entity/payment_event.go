package entity

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEventStatus tracks an outbox row through its lifecycle.
type PaymentEventStatus string

const (
	PaymentEventPending    PaymentEventStatus = "pending"
	PaymentEventProcessing PaymentEventStatus = "processing"
	PaymentEventProcessed  PaymentEventStatus = "processed"
	PaymentEventFailed     PaymentEventStatus = "failed"
)

// String returns the string representation of the PaymentEventStatus.
func (s PaymentEventStatus) String() string {
	return string(s)
}

// PaymentEvent is a gateway webhook notification persisted for
// asynchronous processing. The webhook handler only appends rows and
// acks; a background worker claims rows and reconciles orders, giving
// at-least-once processing independent of delivery order.
type PaymentEvent struct {
	ID          uuid.UUID
	Topic       string // Gateway topic, e.g. "payment" or "merchant_order".
	ResourceID  string // Gateway-side identifier of the notified resource.
	Status      PaymentEventStatus
	Attempts    int    // Number of processing attempts so far.
	LastError   string // Failure detail from the most recent attempt.
	ReceivedAt  time.Time
	ProcessedAt *time.Time
}
