package repository

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// PaymentEventRepository is the outbox for gateway webhook notifications.
type PaymentEventRepository interface {
	// Enqueue appends a pending event row.
	Enqueue(ctx context.Context, event *entity.PaymentEvent) error

	// ClaimBatch atomically marks up to limit pending events as
	// processing and returns them. Concurrent workers never claim the
	// same row (FOR UPDATE SKIP LOCKED).
	ClaimBatch(ctx context.Context, limit int) ([]*entity.PaymentEvent, error)

	// MarkProcessed finalizes a successfully handled event.
	MarkProcessed(ctx context.Context, id uuid.UUID) error

	// MarkFailed records a failed attempt. Events under maxAttempts
	// return to pending for a later retry; others stay failed.
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string, maxAttempts int) error
}
