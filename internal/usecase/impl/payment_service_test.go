package impl

import (
	"context"
	"testing"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/service"
	mockRepo "storefront/internal/mocks/repository"
	mockSvc "storefront/internal/mocks/service"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// paymentServiceFixtures holds all test dependencies for payment service tests.
type paymentServiceFixtures struct {
	service     usecase.PaymentUsecase
	txManager   *mockRepo.MockTransactionManager
	orderRepo   *mockRepo.MockOrderRepository
	txOrderRepo *mockRepo.MockOrderRepository
	productRepo *mockRepo.MockProductRepository
	userRepo    *mockRepo.MockUserRepository
	eventRepo   *mockRepo.MockPaymentEventRepository
	gateway     *mockSvc.MockPaymentGateway
}

func createTestPaymentService(t *testing.T) paymentServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	orderRepo := mockRepo.NewMockOrderRepository(t)
	txOrderRepo := mockRepo.NewMockOrderRepository(t)
	productRepo := mockRepo.NewMockProductRepository(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	eventRepo := mockRepo.NewMockPaymentEventRepository(t)
	gateway := mockSvc.NewMockPaymentGateway(t)

	factory := mockRepo.NewMockRepositoryFactory(t)
	factory.On("NewOrderRepository").Return(txOrderRepo).Maybe()
	factory.On("NewProductRepository").Return(productRepo).Maybe()
	txManager.Factory = factory

	service := NewPaymentService(PaymentServiceParams{
		TxManager: txManager,
		OrderRepo: orderRepo,
		UserRepo:  userRepo,
		EventRepo: eventRepo,
		Gateway:   gateway,
		Config:    newTestConfig(),
		Logger:    newDiscardLogger(),
	})

	return paymentServiceFixtures{
		service:     service,
		txManager:   txManager,
		orderRepo:   orderRepo,
		txOrderRepo: txOrderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		eventRepo:   eventRepo,
		gateway:     gateway,
	}
}

func TestPaymentService_CreateCheckout_Success(t *testing.T) {
	fx := createTestPaymentService(t)

	ctx := context.Background()
	userID := uuid.New()
	order := &entity.Order{
		ID:     uuid.New(),
		UserID: userID,
		Status: entity.OrderStatusPending,
		Items: []entity.OrderItem{
			{ProductID: uuid.New(), Name: "Widget", Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
		},
	}

	fx.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
	fx.userRepo.On("FindByID", ctx, userID).
		Return(&entity.User{ID: userID, Email: "buyer@example.com"}, nil)

	fx.gateway.On("CreatePreference", ctx, mock.MatchedBy(func(req *service.PreferenceRequest) bool {
		return req.ExternalReference == order.ID.String() &&
			req.PayerEmail == "buyer@example.com" &&
			req.NotificationURL == "https://shop.example.com/api/payments/webhook" &&
			len(req.Items) == 1 && req.Items[0].Quantity == 2
	})).Return(&service.Preference{ID: "pref-1", InitPoint: "https://mp.example/init"}, nil)

	output, err := fx.service.CreateCheckout(ctx, &usecase.CheckoutInput{UserID: userID, OrderID: order.ID})

	require.NoError(t, err)
	assert.Equal(t, "pref-1", output.PreferenceID)
	assert.Equal(t, "https://mp.example/init", output.InitPoint)
}

func TestPaymentService_CreateCheckout_PaidOrderRejected(t *testing.T) {
	fx := createTestPaymentService(t)

	ctx := context.Background()
	userID := uuid.New()
	order := &entity.Order{
		ID:     uuid.New(),
		UserID: userID,
		Status: entity.OrderStatusPending,
		IsPaid: true,
	}

	fx.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)

	output, err := fx.service.CreateCheckout(ctx, &usecase.CheckoutInput{UserID: userID, OrderID: order.ID})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrOrderNotModifiable))
}

func TestPaymentService_CreateCheckout_ForeignOrderHidden(t *testing.T) {
	fx := createTestPaymentService(t)

	ctx := context.Background()
	order := &entity.Order{ID: uuid.New(), UserID: uuid.New(), Status: entity.OrderStatusPending}

	fx.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)

	output, err := fx.service.CreateCheckout(ctx, &usecase.CheckoutInput{UserID: uuid.New(), OrderID: order.ID})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrOrderNotFound))
}

func TestPaymentService_HandleWebhook_Enqueues(t *testing.T) {
	fx := createTestPaymentService(t)

	ctx := context.Background()

	fx.eventRepo.On("Enqueue", ctx, mock.MatchedBy(func(event *entity.PaymentEvent) bool {
		return event.Topic == "payment" && event.ResourceID == "12345" &&
			event.Status == entity.PaymentEventPending
	})).Return(nil)

	err := fx.service.HandleWebhook(ctx, &usecase.WebhookInput{Type: "payment", DataID: "12345"})

	require.NoError(t, err)
}

func TestPaymentService_HandleWebhook_DropsWithoutResourceID(t *testing.T) {
	fx := createTestPaymentService(t)

	err := fx.service.HandleWebhook(context.Background(), &usecase.WebhookInput{Type: "payment"})

	require.NoError(t, err)
	fx.eventRepo.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestPaymentService_VerifyPayment_ApprovedConfirmsOrder(t *testing.T) {
	fx := createTestPaymentService(t)

	ctx := context.Background()
	order := &entity.Order{
		ID:            uuid.New(),
		Status:        entity.OrderStatusPending,
		PaymentStatus: entity.PaymentStatusPending,
	}

	fx.gateway.On("GetPayment", ctx, "pay-1").Return(&service.Payment{
		ID:                "pay-1",
		Status:            "approved",
		ExternalReference: order.ID.String(),
	}, nil)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)
	fx.txOrderRepo.On("FindByIDForUpdate", ctx, order.ID).Return(order, nil)
	fx.txOrderRepo.On("Update", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)

	updated, err := fx.service.VerifyPayment(ctx, &usecase.VerifyPaymentInput{PaymentID: "pay-1"})

	require.NoError(t, err)
	assert.True(t, updated.IsPaid)
	require.NotNil(t, updated.PaidAt)
	assert.Equal(t, entity.OrderStatusConfirmed, updated.Status)
	assert.Equal(t, entity.PaymentStatusApproved, updated.PaymentStatus)
	assert.Equal(t, "pay-1", updated.PaymentID)
}

func TestPaymentService_VerifyPayment_RejectedRestocksPendingOrder(t *testing.T) {
	fx := createTestPaymentService(t)

	ctx := context.Background()
	productID := uuid.New()
	order := &entity.Order{
		ID:            uuid.New(),
		Status:        entity.OrderStatusPending,
		PaymentStatus: entity.PaymentStatusPending,
		Items:         []entity.OrderItem{{ProductID: productID, Quantity: 3}},
	}

	fx.gateway.On("GetPayment", ctx, "pay-2").Return(&service.Payment{
		ID:                "pay-2",
		Status:            "rejected",
		ExternalReference: order.ID.String(),
	}, nil)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)
	fx.txOrderRepo.On("FindByIDForUpdate", ctx, order.ID).Return(order, nil)
	fx.productRepo.On("AdjustStock", ctx, productID, 3, -3).Return(nil)
	fx.txOrderRepo.On("Update", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)

	updated, err := fx.service.VerifyPayment(ctx, &usecase.VerifyPaymentInput{PaymentID: "pay-2"})

	require.NoError(t, err)
	assert.False(t, updated.IsPaid)
	assert.Equal(t, entity.OrderStatusCancelled, updated.Status)
}

func TestPaymentService_VerifyPayment_RejectionNeverUndoesPaidOrder(t *testing.T) {
	fx := createTestPaymentService(t)

	ctx := context.Background()
	order := &entity.Order{
		ID:            uuid.New(),
		Status:        entity.OrderStatusConfirmed,
		PaymentStatus: entity.PaymentStatusApproved,
		IsPaid:        true,
	}

	fx.gateway.On("GetPayment", ctx, "pay-3").Return(&service.Payment{
		ID:                "pay-3",
		Status:            "rejected",
		ExternalReference: order.ID.String(),
	}, nil)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)
	fx.txOrderRepo.On("FindByIDForUpdate", ctx, order.ID).Return(order, nil)
	fx.txOrderRepo.On("Update", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)

	updated, err := fx.service.VerifyPayment(ctx, &usecase.VerifyPaymentInput{PaymentID: "pay-3"})

	require.NoError(t, err)
	assert.True(t, updated.IsPaid)
	assert.Equal(t, entity.OrderStatusConfirmed, updated.Status)
	fx.productRepo.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_ProcessOutbox_MixedBatch(t *testing.T) {
	fx := createTestPaymentService(t)

	ctx := context.Background()
	order := &entity.Order{
		ID:            uuid.New(),
		Status:        entity.OrderStatusPending,
		PaymentStatus: entity.PaymentStatusPending,
	}

	good := &entity.PaymentEvent{ID: uuid.New(), Topic: "payment", ResourceID: "pay-ok"}
	bad := &entity.PaymentEvent{ID: uuid.New(), Topic: "payment", ResourceID: "pay-bad"}
	skipped := &entity.PaymentEvent{ID: uuid.New(), Topic: "merchant_order", ResourceID: "mo-1"}

	fx.eventRepo.On("ClaimBatch", ctx, 10).
		Return([]*entity.PaymentEvent{good, bad, skipped}, nil)

	fx.gateway.On("GetPayment", ctx, "pay-ok").Return(&service.Payment{
		ID:                "pay-ok",
		Status:            "approved",
		ExternalReference: order.ID.String(),
	}, nil)
	fx.gateway.On("GetPayment", ctx, "pay-bad").Return(nil, errors.New("gateway timeout"))

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)
	fx.txOrderRepo.On("FindByIDForUpdate", ctx, order.ID).Return(order, nil)
	fx.txOrderRepo.On("Update", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)

	fx.eventRepo.On("MarkProcessed", ctx, good.ID).Return(nil)
	fx.eventRepo.On("MarkFailed", ctx, bad.ID, mock.AnythingOfType("string"), 3).Return(nil)
	fx.eventRepo.On("MarkProcessed", ctx, skipped.ID).Return(nil)

	processed, err := fx.service.ProcessOutbox(ctx, 10)

	require.NoError(t, err)
	assert.Equal(t, 2, processed)
}

func TestPaymentService_CreateSubscription_UsesConfiguredCurrency(t *testing.T) {
	fx := createTestPaymentService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.gateway.On("CreateSubscription", ctx, mock.MatchedBy(func(req *service.SubscriptionRequest) bool {
		return req.CurrencyID == "ARS" && req.ExternalReference == userID.String() && req.FrequencyDays == 30
	})).Return(&service.Subscription{ID: "sub-1", Status: "pending"}, nil)

	subscription, err := fx.service.CreateSubscription(ctx, &usecase.CreateSubscriptionInput{
		UserID:        userID,
		Reason:        "Monthly box",
		Amount:        decimal.NewFromInt(500),
		FrequencyDays: 30,
		PayerEmail:    "buyer@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "sub-1", subscription.ID)
}

func TestMapPaymentStatus_UnknownStaysPending(t *testing.T) {
	assert.Equal(t, entity.PaymentStatusApproved, mapPaymentStatus("approved"))
	assert.Equal(t, entity.PaymentStatusChargedBack, mapPaymentStatus("charged_back"))
	assert.Equal(t, entity.PaymentStatusPending, mapPaymentStatus("in_process"))
	assert.Equal(t, entity.PaymentStatusPending, mapPaymentStatus(""))
}
