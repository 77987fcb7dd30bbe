// Package worker contains the background delivery that drains the
// payment event outbox.
package worker

import (
	"context"
	"log/slog"
	"time"

	"storefront/config"
	"storefront/internal/delivery"
	"storefront/internal/usecase"

	"go.uber.org/fx"
)

const (
	defaultPollInterval = 15 * time.Second
	defaultBatchSize    = 20
)

type WorkerParams struct {
	fx.In
	fx.Lifecycle

	Config         *config.Config
	Logger         *slog.Logger
	PaymentUsecase usecase.PaymentUsecase
}

// outboxWorker polls the payment event outbox and reconciles orders
// against the gateway. It is the only consumer of the outbox, so
// claimed batches never overlap between ticks.
type outboxWorker struct {
	pollInterval time.Duration
	batchSize    int
	paymentUC    usecase.PaymentUsecase
	logger       *slog.Logger
	done         chan struct{}
}

// NewWorker is the constructor for outboxWorker.
func NewWorker(params WorkerParams) (delivery.Delivery, error) {
	pollInterval := defaultPollInterval
	batchSize := defaultBatchSize
	if params.Config.Outbox != nil {
		if params.Config.Outbox.PollInterval > 0 {
			pollInterval = params.Config.Outbox.PollInterval
		}
		if params.Config.Outbox.BatchSize > 0 {
			batchSize = params.Config.Outbox.BatchSize
		}
	}

	worker := &outboxWorker{
		pollInterval: pollInterval,
		batchSize:    batchSize,
		paymentUC:    params.PaymentUsecase,
		logger:       params.Logger,
		done:         make(chan struct{}),
	}

	params.Append(fx.Hook{
		OnStop: worker.stop,
	})

	return worker, nil
}

func (w *outboxWorker) Serve(ctx context.Context) error {
	w.logger.Info("Starting outbox worker",
		slog.Duration("pollInterval", w.pollInterval),
		slog.Int("batchSize", w.batchSize),
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain keeps claiming batches until the outbox yields less than a full
// batch, so a burst of webhooks does not wait one tick per batch.
func (w *outboxWorker) drain(ctx context.Context) {
	for {
		processed, err := w.paymentUC.ProcessOutbox(ctx, w.batchSize)
		if err != nil {
			w.logger.Error("Outbox pass failed", slog.Any("error", err))

			return
		}
		if processed > 0 {
			w.logger.Info("Processed payment events", slog.Int("count", processed))
		}
		if processed < w.batchSize {
			return
		}
	}
}

func (w *outboxWorker) stop(ctx context.Context) error {
	w.logger.Info("Shutting down outbox worker")
	close(w.done)

	return nil
}
