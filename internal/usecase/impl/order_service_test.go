package impl

import (
	"context"
	"testing"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	mockRepo "storefront/internal/mocks/repository"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// orderServiceFixtures holds all test dependencies for order service tests.
type orderServiceFixtures struct {
	service     usecase.OrderUsecase
	txManager   *mockRepo.MockTransactionManager
	orderRepo   *mockRepo.MockOrderRepository
	txOrderRepo *mockRepo.MockOrderRepository
	productRepo *mockRepo.MockProductRepository
	cartRepo    *mockRepo.MockCartRepository
}

func createTestOrderService(t *testing.T) orderServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	orderRepo := mockRepo.NewMockOrderRepository(t)
	txOrderRepo := mockRepo.NewMockOrderRepository(t)
	productRepo := mockRepo.NewMockProductRepository(t)
	cartRepo := mockRepo.NewMockCartRepository(t)

	factory := mockRepo.NewMockRepositoryFactory(t)
	factory.On("NewOrderRepository").Return(txOrderRepo).Maybe()
	factory.On("NewProductRepository").Return(productRepo).Maybe()
	factory.On("NewCartRepository").Return(cartRepo).Maybe()
	txManager.Factory = factory

	service := NewOrderService(OrderServiceParams{
		TxManager: txManager,
		OrderRepo: orderRepo,
		Logger:    newDiscardLogger(),
	})

	return orderServiceFixtures{
		service:     service,
		txManager:   txManager,
		orderRepo:   orderRepo,
		txOrderRepo: txOrderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
	}
}

func testProduct(stock int, price int64) *entity.Product {
	return &entity.Product{
		ID:     uuid.New(),
		Name:   "Test Product",
		Price:  decimal.NewFromInt(price),
		Stock:  stock,
		Status: entity.RecordStatusActive,
	}
}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	product := testProduct(5, 10)
	userID := uuid.New()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.productRepo.On("FindByIDsForUpdate", ctx, []uuid.UUID{product.ID}).
		Return([]*entity.Product{product}, nil)

	fx.txOrderRepo.On("Create", ctx, mock.AnythingOfType("*entity.Order")).
		Run(func(args mock.Arguments) {
			order := args.Get(1).(*entity.Order)
			order.ID = uuid.New()
		}).
		Return(nil)

	fx.productRepo.On("AdjustStock", ctx, product.ID, -3, 3).Return(nil)

	order, err := fx.service.CreateOrder(ctx, &usecase.CreateOrderInput{
		UserID: userID,
		Items:  []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 3}},
		ShippingAddress: entity.ShippingAddress{
			Street: "Av. Test 123", City: "Testville", ZipCode: "1000", Country: "AR",
		},
	})

	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, entity.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, product.Name, order.Items[0].Name)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(30)))
}

func TestOrderService_CreateOrder_MergesDuplicateLines(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	product := testProduct(10, 5)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.productRepo.On("FindByIDsForUpdate", ctx, []uuid.UUID{product.ID}).
		Return([]*entity.Product{product}, nil)
	fx.txOrderRepo.On("Create", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)
	fx.productRepo.On("AdjustStock", ctx, product.ID, -5, 5).Return(nil)

	order, err := fx.service.CreateOrder(ctx, &usecase.CreateOrderInput{
		UserID: uuid.New(),
		Items: []usecase.OrderItemInput{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: product.ID, Quantity: 3},
		},
	})

	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 5, order.Items[0].Quantity)
}

func TestOrderService_CreateOrder_InsufficientStock(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	product := testProduct(2, 10)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.productRepo.On("FindByIDsForUpdate", ctx, []uuid.UUID{product.ID}).
		Return([]*entity.Product{product}, nil)

	order, err := fx.service.CreateOrder(ctx, &usecase.CreateOrderInput{
		UserID: uuid.New(),
		Items:  []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 3}},
	})

	assert.Nil(t, order)
	assert.True(t, errors.Is(err, domainerrors.ErrInsufficientStock))
	fx.txOrderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrder_UnknownProduct(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	missingID := uuid.New()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.productRepo.On("FindByIDsForUpdate", ctx, []uuid.UUID{missingID}).
		Return([]*entity.Product{}, nil)

	order, err := fx.service.CreateOrder(ctx, &usecase.CreateOrderInput{
		UserID: uuid.New(),
		Items:  []usecase.OrderItemInput{{ProductID: missingID, Quantity: 1}},
	})

	assert.Nil(t, order)
	assert.True(t, errors.Is(err, domainerrors.ErrProductNotFound))
}

func TestOrderService_CreateOrder_FromCart_Empty(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.cartRepo.On("FindByUserID", ctx, userID).
		Return(&entity.Cart{UserID: userID}, nil)

	order, err := fx.service.CreateOrder(ctx, &usecase.CreateOrderInput{
		UserID:   userID,
		FromCart: true,
	})

	assert.Nil(t, order)
	assert.True(t, errors.Is(err, domainerrors.ErrCartEmpty))
}

func TestOrderService_CreateOrder_FromCart_ClearsCart(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	product := testProduct(4, 20)
	userID := uuid.New()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.cartRepo.On("FindByUserID", ctx, userID).
		Return(&entity.Cart{
			UserID: userID,
			Items:  []entity.CartItem{{ProductID: product.ID, Quantity: 2}},
		}, nil)

	fx.productRepo.On("FindByIDsForUpdate", ctx, []uuid.UUID{product.ID}).
		Return([]*entity.Product{product}, nil)
	fx.txOrderRepo.On("Create", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)
	fx.productRepo.On("AdjustStock", ctx, product.ID, -2, 2).Return(nil)
	fx.cartRepo.On("Clear", ctx, userID).Return(nil)

	order, err := fx.service.CreateOrder(ctx, &usecase.CreateOrderInput{
		UserID:   userID,
		FromCart: true,
	})

	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(40)))
}

func TestOrderService_GetUserOrder_ForeignOrderHidden(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	orderID := uuid.New()

	fx.orderRepo.On("FindByID", ctx, orderID).
		Return(&entity.Order{ID: orderID, UserID: uuid.New()}, nil)

	order, err := fx.service.GetUserOrder(ctx, uuid.New(), orderID)

	assert.Nil(t, order)
	assert.True(t, errors.Is(err, domainerrors.ErrOrderNotFound))
}

func TestOrderService_UpdateStatus_InvalidTransition(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	orderID := uuid.New()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txOrderRepo.On("FindByIDForUpdate", ctx, orderID).
		Return(&entity.Order{ID: orderID, Status: entity.OrderStatusShipped}, nil)

	order, err := fx.service.UpdateStatus(ctx, &usecase.UpdateOrderStatusInput{
		OrderID: orderID,
		Status:  entity.OrderStatusCancelled,
	})

	assert.Nil(t, order)
	assert.True(t, errors.Is(err, domainerrors.ErrOrderNotModifiable))
	fx.txOrderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestOrderService_UpdateStatus_DeliveredIdempotent(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	orderID := uuid.New()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txOrderRepo.On("FindByIDForUpdate", ctx, orderID).
		Return(&entity.Order{ID: orderID, Status: entity.OrderStatusDelivered}, nil)

	order, err := fx.service.UpdateStatus(ctx, &usecase.UpdateOrderStatusInput{
		OrderID: orderID,
		Status:  entity.OrderStatusDelivered,
	})

	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, order.Status)
	fx.txOrderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestOrderService_CancelOrder_Restocks(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()
	orderID := uuid.New()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txOrderRepo.On("FindByIDForUpdate", ctx, orderID).
		Return(&entity.Order{
			ID:     orderID,
			UserID: userID,
			Status: entity.OrderStatusPending,
			Items:  []entity.OrderItem{{ProductID: productID, Quantity: 2}},
		}, nil)

	fx.productRepo.On("AdjustStock", ctx, productID, 2, -2).Return(nil)
	fx.txOrderRepo.On("Update", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)

	order, err := fx.service.CancelOrder(ctx, userID, orderID)

	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, order.Status)
}

func TestOrderService_UpdateStatus_CancelPaidOrderKeepsStock(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	orderID := uuid.New()
	productID := uuid.New()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txOrderRepo.On("FindByIDForUpdate", ctx, orderID).
		Return(&entity.Order{
			ID:     orderID,
			Status: entity.OrderStatusConfirmed,
			IsPaid: true,
			Items:  []entity.OrderItem{{ProductID: productID, Quantity: 2}},
		}, nil)

	fx.txOrderRepo.On("Update", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)

	order, err := fx.service.UpdateStatus(ctx, &usecase.UpdateOrderStatusInput{
		OrderID: orderID,
		Status:  entity.OrderStatusCancelled,
	})

	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, order.Status)
	fx.productRepo.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_CancelOrder_ForeignOrderHidden(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	orderID := uuid.New()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txOrderRepo.On("FindByIDForUpdate", ctx, orderID).
		Return(&entity.Order{ID: orderID, UserID: uuid.New(), Status: entity.OrderStatusPending}, nil)

	order, err := fx.service.CancelOrder(ctx, uuid.New(), orderID)

	assert.Nil(t, order)
	assert.True(t, errors.Is(err, domainerrors.ErrOrderNotFound))
}

func TestOrderService_ListOrders_NormalizesPagination(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()

	fx.orderRepo.On("List", ctx, mock.MatchedBy(func(filter repository.OrderFilter) bool {
		return filter.Page == 1 && filter.Limit == 20 && filter.UserID == nil
	})).Return([]*entity.Order{}, int64(0), nil)

	output, err := fx.service.ListOrders(ctx, &usecase.ListOrdersInput{})

	require.NoError(t, err)
	assert.Equal(t, 1, output.Page)
	assert.Equal(t, 20, output.Limit)
}
