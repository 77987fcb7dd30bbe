package impl

import (
	"context"
	"log/slog"
	"time"

	"storefront/config"
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const paymentTopic = "payment"

// paymentService implements the PaymentUsecase interface.
type paymentService struct {
	txManager   repository.TransactionManager
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	eventRepo   repository.PaymentEventRepository
	gateway     service.PaymentGateway
	appURL      string
	currencyID  string
	maxAttempts int
	logger      *slog.Logger
}

// PaymentServiceParams holds dependencies for paymentService, injected by Fx.
type PaymentServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	OrderRepo repository.OrderRepository
	UserRepo  repository.UserRepository
	EventRepo repository.PaymentEventRepository
	Gateway   service.PaymentGateway
	Config    *config.Config
	Logger    *slog.Logger
}

// NewPaymentService is the constructor for paymentService.
func NewPaymentService(params PaymentServiceParams) usecase.PaymentUsecase {
	appURL := ""
	currencyID := ""
	if params.Config != nil && params.Config.Payment != nil {
		appURL = params.Config.Payment.AppURL
		currencyID = params.Config.Payment.CurrencyID
	}
	maxAttempts := 5
	if params.Config != nil && params.Config.Outbox != nil && params.Config.Outbox.MaxAttempts > 0 {
		maxAttempts = params.Config.Outbox.MaxAttempts
	}

	return &paymentService{
		txManager:   params.TxManager,
		orderRepo:   params.OrderRepo,
		userRepo:    params.UserRepo,
		eventRepo:   params.EventRepo,
		gateway:     params.Gateway,
		appURL:      appURL,
		currencyID:  currencyID,
		maxAttempts: maxAttempts,
		logger:      params.Logger,
	}
}

func (srv *paymentService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateCheckout opens a hosted checkout session for an unpaid pending
// order. The order ID travels as the external reference so webhook
// notifications can be correlated back.
func (srv *paymentService) CreateCheckout(ctx context.Context, input *usecase.CheckoutInput) (*usecase.CheckoutOutput, error) {
	srv.log(ctx).Info("Creating checkout", slog.Any("orderID", input.OrderID))

	order, err := srv.orderRepo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, errors.Wrap(domainerrors.ErrOrderNotFound, "checkout failed")
		}

		return nil, errors.Wrap(err, "failed to find order by id")
	}
	if order.UserID != input.UserID {
		return nil, errors.Wrap(domainerrors.ErrOrderNotFound, "checkout failed")
	}
	if order.Status != entity.OrderStatusPending || order.IsPaid {
		return nil, errors.Wrap(domainerrors.ErrOrderNotModifiable, "order is not awaiting payment")
	}

	buyer, err := srv.userRepo.FindByID(ctx, order.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load buyer")
	}

	items := make([]service.PreferenceItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, service.PreferenceItem{
			ID:        item.ProductID.String(),
			Title:     item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	preference, err := srv.gateway.CreatePreference(ctx, &service.PreferenceRequest{
		Items:             items,
		PayerEmail:        buyer.Email,
		ExternalReference: order.ID.String(),
		BackURLs: service.BackURLs{
			Success: srv.appURL + "/api/payments/success",
			Failure: srv.appURL + "/api/payments/failure",
			Pending: srv.appURL + "/api/payments/pending",
		},
		NotificationURL: srv.appURL + "/api/payments/webhook",
	})
	if err != nil {
		srv.log(ctx).Error("Checkout creation failed", slog.Any("orderID", input.OrderID), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPaymentGateway, "failed to create checkout preference")
	}

	return &usecase.CheckoutOutput{
		PreferenceID:     preference.ID,
		InitPoint:        preference.InitPoint,
		SandboxInitPoint: preference.SandboxInitPoint,
	}, nil
}

// GetPayment fetches the authoritative payment state from the gateway.
func (srv *paymentService) GetPayment(ctx context.Context, paymentID string) (*service.Payment, error) {
	payment, err := srv.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrPaymentNotFound, "failed to fetch payment")
	}

	return payment, nil
}

// HandleWebhook persists the gateway notification into the outbox.
// Notifications with no usable resource identifier are dropped, not
// failed, so the gateway stops retrying them.
func (srv *paymentService) HandleWebhook(ctx context.Context, input *usecase.WebhookInput) error {
	topic := input.Type
	if topic == "" {
		topic = input.Topic
	}
	resourceID := input.DataID
	if resourceID == "" {
		resourceID = input.ProviderID
	}

	if resourceID == "" {
		srv.log(ctx).Warn("Dropping webhook without resource id", slog.String("topic", topic))

		return nil
	}

	event := &entity.PaymentEvent{
		Topic:      topic,
		ResourceID: resourceID,
		Status:     entity.PaymentEventPending,
	}

	if err := srv.eventRepo.Enqueue(ctx, event); err != nil {
		srv.log(ctx).Error("Failed to enqueue payment event",
			slog.String("topic", topic),
			slog.String("resourceID", resourceID),
			slog.Any("error", err),
		)

		return errors.Wrap(err, "failed to enqueue payment event")
	}

	srv.log(ctx).Info("Payment event enqueued", slog.String("topic", topic), slog.String("resourceID", resourceID))

	return nil
}

// VerifyPayment reconciles one order against the gateway by payment id.
// This is the synchronous fallback for the asynchronous outbox path.
func (srv *paymentService) VerifyPayment(ctx context.Context, input *usecase.VerifyPaymentInput) (*entity.Order, error) {
	srv.log(ctx).Info("Verifying payment", slog.String("paymentID", input.PaymentID))

	payment, err := srv.gateway.GetPayment(ctx, input.PaymentID)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrPaymentNotFound, "failed to fetch payment")
	}

	order, err := srv.applyPayment(ctx, payment)
	if err != nil {
		return nil, err
	}

	return order, nil
}

// ProcessOutbox claims up to limit pending events and reconciles each
// against the gateway. Failures are recorded per event and never stop
// the batch.
func (srv *paymentService) ProcessOutbox(ctx context.Context, limit int) (int, error) {
	events, err := srv.eventRepo.ClaimBatch(ctx, limit)
	if err != nil {
		return 0, errors.Wrap(err, "failed to claim payment events")
	}

	processed := 0
	for _, event := range events {
		if err := srv.processEvent(ctx, event); err != nil {
			srv.log(ctx).Warn("Payment event processing failed",
				slog.Any("eventID", event.ID),
				slog.String("resourceID", event.ResourceID),
				slog.Int("attempts", event.Attempts),
				slog.Any("error", err),
			)

			if markErr := srv.eventRepo.MarkFailed(ctx, event.ID, err.Error(), srv.maxAttempts); markErr != nil {
				srv.log(ctx).Error("Failed to mark payment event failed", slog.Any("eventID", event.ID), slog.Any("error", markErr))
			}

			continue
		}

		if err := srv.eventRepo.MarkProcessed(ctx, event.ID); err != nil {
			srv.log(ctx).Error("Failed to mark payment event processed", slog.Any("eventID", event.ID), slog.Any("error", err))

			continue
		}
		processed++
	}

	return processed, nil
}

func (srv *paymentService) processEvent(ctx context.Context, event *entity.PaymentEvent) error {
	// Only payment notifications carry a payment id worth reconciling;
	// other topics (e.g. merchant_order) are acknowledged and skipped.
	if event.Topic != paymentTopic {
		return nil
	}

	payment, err := srv.gateway.GetPayment(ctx, event.ResourceID)
	if err != nil {
		return errors.Wrap(err, "failed to fetch payment from gateway")
	}

	if _, err := srv.applyPayment(ctx, payment); err != nil {
		return err
	}

	return nil
}

// applyPayment locks the referenced order and mirrors the gateway
// status onto it. Approved payments confirm the order; rejected or
// cancelled payments cancel an unpaid pending order and restock it.
func (srv *paymentService) applyPayment(ctx context.Context, payment *service.Payment) (*entity.Order, error) {
	orderID, err := uuid.Parse(payment.ExternalReference)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrOrderNotFound, "payment has no order reference")
	}

	var updated *entity.Order
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		orderRepo := repoFactory.NewOrderRepository()
		productRepo := repoFactory.NewProductRepository()

		order, err := orderRepo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return errors.Wrap(domainerrors.ErrOrderNotFound, "payment reconciliation failed")
			}

			return errors.Wrap(err, "failed to lock order")
		}

		order.PaymentID = payment.ID
		order.PaymentStatus = mapPaymentStatus(payment.Status)

		switch order.PaymentStatus {
		case entity.PaymentStatusApproved:
			if !order.IsPaid {
				now := time.Now()
				order.IsPaid = true
				order.PaidAt = &now
			}
			if order.Status.CanTransitionTo(entity.OrderStatusConfirmed) {
				order.Status = entity.OrderStatusConfirmed
			}

		case entity.PaymentStatusRejected, entity.PaymentStatusCancelled:
			// A failed payment releases the reservation, but never undoes
			// an order that was already paid or moved along.
			if !order.IsPaid && order.Status == entity.OrderStatusPending {
				for _, item := range order.Items {
					if err := productRepo.AdjustStock(ctx, item.ProductID, item.Quantity, -item.Quantity); err != nil {
						if errors.Is(err, repository.ErrProductNotFound) {
							continue
						}

						return errors.Wrap(err, "failed to restock order")
					}
				}
				order.Status = entity.OrderStatusCancelled
			}

		case entity.PaymentStatusRefunded, entity.PaymentStatusChargedBack:
			order.IsPaid = false
		}

		if err := orderRepo.Update(ctx, order); err != nil {
			return errors.Wrap(err, "failed to update order payment state")
		}
		updated = order

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute payment reconciliation transaction")
	}

	srv.log(ctx).Info("Payment reconciled",
		slog.Any("orderID", updated.ID),
		slog.String("paymentStatus", updated.PaymentStatus.String()),
		slog.String("orderStatus", updated.Status.String()),
	)

	return updated, nil
}

// CreateSubscription opens a recurring charge authorization.
func (srv *paymentService) CreateSubscription(ctx context.Context, input *usecase.CreateSubscriptionInput) (*service.Subscription, error) {
	srv.log(ctx).Info("Creating subscription", slog.Any("userID", input.UserID))

	subscription, err := srv.gateway.CreateSubscription(ctx, &service.SubscriptionRequest{
		Reason:            input.Reason,
		PayerEmail:        input.PayerEmail,
		Amount:            input.Amount,
		CurrencyID:        srv.currencyID,
		FrequencyDays:     input.FrequencyDays,
		ExternalReference: input.UserID.String(),
		BackURL:           srv.appURL + "/api/payments/success",
	})
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrPaymentGateway, "failed to create subscription")
	}

	return subscription, nil
}

// GetSubscription fetches a subscription by gateway ID.
func (srv *paymentService) GetSubscription(ctx context.Context, subscriptionID string) (*service.Subscription, error) {
	subscription, err := srv.gateway.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrPaymentNotFound, "failed to fetch subscription")
	}

	return subscription, nil
}

// CancelSubscription cancels a subscription at the gateway.
func (srv *paymentService) CancelSubscription(ctx context.Context, subscriptionID string) (*service.Subscription, error) {
	srv.log(ctx).Info("Cancelling subscription", slog.String("subscriptionID", subscriptionID))

	subscription, err := srv.gateway.CancelSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrPaymentGateway, "failed to cancel subscription")
	}

	return subscription, nil
}

// mapPaymentStatus converts a gateway status string to the order's
// payment mirror. Unknown and in-flight statuses stay pending.
func mapPaymentStatus(status string) entity.PaymentStatus {
	switch status {
	case "approved":
		return entity.PaymentStatusApproved
	case "rejected":
		return entity.PaymentStatusRejected
	case "cancelled":
		return entity.PaymentStatusCancelled
	case "refunded":
		return entity.PaymentStatusRefunded
	case "charged_back":
		return entity.PaymentStatusChargedBack
	default:
		return entity.PaymentStatusPending
	}
}
