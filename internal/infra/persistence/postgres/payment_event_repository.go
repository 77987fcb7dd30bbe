package postgres

import (
	"context"
	"time"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentEventRepository implements repository.PaymentEventRepository using GORM.
type paymentEventRepository struct {
	db *gorm.DB
}

// NewPaymentEventRepository is the constructor for paymentEventRepository.
func NewPaymentEventRepository(db *gorm.DB) repository.PaymentEventRepository {
	return &paymentEventRepository{db: db}
}

// Enqueue appends a pending event row.
func (repo *paymentEventRepository) Enqueue(ctx context.Context, event *entity.PaymentEvent) error {
	eventM := &model.PaymentEventModel{
		ID:         event.ID,
		Topic:      event.Topic,
		ResourceID: event.ResourceID,
		Status:     entity.PaymentEventPending.String(),
		ReceivedAt: event.ReceivedAt,
	}
	if eventM.ReceivedAt.IsZero() {
		eventM.ReceivedAt = time.Now()
	}

	if err := repo.db.WithContext(ctx).Create(eventM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to enqueue payment event")
	}

	event.ID = eventM.ID
	event.Status = entity.PaymentEventPending
	event.ReceivedAt = eventM.ReceivedAt

	return nil
}

// ClaimBatch atomically marks up to limit pending events as processing
// and returns them. SKIP LOCKED keeps concurrent workers from claiming
// the same rows; the claim runs in its own short transaction.
func (repo *paymentEventRepository) ClaimBatch(ctx context.Context, limit int) ([]*entity.PaymentEvent, error) {
	if limit < 1 {
		limit = 10
	}

	var eventMs []model.PaymentEventModel
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", entity.PaymentEventPending.String()).
			Order("received_at ASC").
			Limit(limit).
			Find(&eventMs).Error; err != nil {
			return errors.Wrap(err, "failed to select pending payment events")
		}

		if len(eventMs) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(eventMs))
		for i := range eventMs {
			ids = append(ids, eventMs[i].ID)
		}

		if err := tx.Model(&model.PaymentEventModel{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"status":   entity.PaymentEventProcessing.String(),
				"attempts": gorm.Expr("attempts + 1"),
			}).Error; err != nil {
			return errors.Wrap(err, "failed to mark payment events processing")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	events := make([]*entity.PaymentEvent, 0, len(eventMs))
	for i := range eventMs {
		event := toPaymentEventDomain(&eventMs[i])
		event.Status = entity.PaymentEventProcessing
		event.Attempts++
		events = append(events, event)
	}

	return events, nil
}

// MarkProcessed finalizes a successfully handled event.
func (repo *paymentEventRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	if err := repo.db.WithContext(ctx).Model(&model.PaymentEventModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       entity.PaymentEventProcessed.String(),
			"processed_at": now,
			"last_error":   "",
		}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to mark payment event processed")
	}

	return nil
}

// MarkFailed records a failed attempt. Events under maxAttempts return
// to pending for a later retry; others stay failed.
func (repo *paymentEventRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, maxAttempts int) error {
	if err := repo.db.WithContext(ctx).Model(&model.PaymentEventModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": gorm.Expr(
				"CASE WHEN attempts < ? THEN ? ELSE ? END",
				maxAttempts,
				entity.PaymentEventPending.String(),
				entity.PaymentEventFailed.String(),
			),
			"last_error": lastError,
		}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to mark payment event failed")
	}

	return nil
}

// toPaymentEventDomain converts a GORM PaymentEventModel to a domain PaymentEvent entity.
func toPaymentEventDomain(data *model.PaymentEventModel) *entity.PaymentEvent {
	if data == nil {
		return nil
	}

	return &entity.PaymentEvent{
		ID:          data.ID,
		Topic:       data.Topic,
		ResourceID:  data.ResourceID,
		Status:      entity.PaymentEventStatus(data.Status),
		Attempts:    data.Attempts,
		LastError:   data.LastError,
		ReceivedAt:  data.ReceivedAt,
		ProcessedAt: data.ProcessedAt,
	}
}
