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

// cartServiceFixtures holds all test dependencies for cart service tests.
type cartServiceFixtures struct {
	service       usecase.CartUsecase
	txManager     *mockRepo.MockTransactionManager
	cartRepo      *mockRepo.MockCartRepository
	txCartRepo    *mockRepo.MockCartRepository
	txProductRepo *mockRepo.MockProductRepository
	productRepo   *mockRepo.MockProductRepository
}

func createTestCartService(t *testing.T) cartServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	cartRepo := mockRepo.NewMockCartRepository(t)
	txCartRepo := mockRepo.NewMockCartRepository(t)
	txProductRepo := mockRepo.NewMockProductRepository(t)
	productRepo := mockRepo.NewMockProductRepository(t)

	factory := mockRepo.NewMockRepositoryFactory(t)
	factory.On("NewCartRepository").Return(txCartRepo).Maybe()
	factory.On("NewProductRepository").Return(txProductRepo).Maybe()
	txManager.Factory = factory

	svc := NewCartService(CartServiceParams{
		TxManager:   txManager,
		CartRepo:    cartRepo,
		ProductRepo: productRepo,
		Logger:      newDiscardLogger(),
	})

	return cartServiceFixtures{
		service:       svc,
		txManager:     txManager,
		cartRepo:      cartRepo,
		txCartRepo:    txCartRepo,
		txProductRepo: txProductRepo,
		productRepo:   productRepo,
	}
}

func TestCartService_GetCart_MissingCartIsEmpty(t *testing.T) {
	fx := createTestCartService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.cartRepo.On("FindByUserID", ctx, userID).Return(nil, repository.ErrCartNotFound)

	output, err := fx.service.GetCart(ctx, userID)

	require.NoError(t, err)
	assert.Empty(t, output.Items)
	assert.Zero(t, output.ItemCount)
	assert.True(t, output.Total.IsZero())
}

func TestCartService_AddItem_FirstLineCreatesCart(t *testing.T) {
	fx := createTestCartService(t)

	ctx := context.Background()
	userID := uuid.New()
	product := testProduct(10, 5)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txProductRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	fx.txCartRepo.On("FindByUserID", ctx, userID).Return(nil, repository.ErrCartNotFound)
	fx.txCartRepo.On("Save", ctx, mock.MatchedBy(func(cart *entity.Cart) bool {
		return cart.UserID == userID &&
			len(cart.Items) == 1 &&
			cart.Items[0].ProductID == product.ID &&
			cart.Items[0].Quantity == 2
	})).Return(nil)

	fx.productRepo.On("FindByIDs", ctx, []uuid.UUID{product.ID}).
		Return([]*entity.Product{product}, nil)

	output, err := fx.service.AddItem(ctx, &usecase.AddCartItemInput{
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  2,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, output.ItemCount)
	assert.True(t, output.Total.Equal(decimal.NewFromInt(10)))
	require.Len(t, output.Items, 1)
	assert.True(t, output.Items[0].Available)
}

func TestCartService_AddItem_MergesExistingLine(t *testing.T) {
	fx := createTestCartService(t)

	ctx := context.Background()
	userID := uuid.New()
	product := testProduct(10, 5)
	existing := &entity.Cart{
		UserID: userID,
		Items:  []entity.CartItem{{ProductID: product.ID, Quantity: 2}},
	}

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txProductRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	fx.txCartRepo.On("FindByUserID", ctx, userID).Return(existing, nil)
	fx.txCartRepo.On("Save", ctx, mock.MatchedBy(func(cart *entity.Cart) bool {
		return len(cart.Items) == 1 && cart.Items[0].Quantity == 5
	})).Return(nil)

	fx.productRepo.On("FindByIDs", ctx, []uuid.UUID{product.ID}).
		Return([]*entity.Product{product}, nil)

	output, err := fx.service.AddItem(ctx, &usecase.AddCartItemInput{
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  3,
	})

	require.NoError(t, err)
	assert.Equal(t, 5, output.ItemCount)
	assert.True(t, output.Total.Equal(decimal.NewFromInt(25)))
}

func TestCartService_AddItem_MergedQuantityExceedsStock(t *testing.T) {
	fx := createTestCartService(t)

	ctx := context.Background()
	userID := uuid.New()
	product := testProduct(4, 5)
	existing := &entity.Cart{
		UserID: userID,
		Items:  []entity.CartItem{{ProductID: product.ID, Quantity: 2}},
	}

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txProductRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	fx.txCartRepo.On("FindByUserID", ctx, userID).Return(existing, nil)

	output, err := fx.service.AddItem(ctx, &usecase.AddCartItemInput{
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  3,
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInsufficientStock))
	fx.txCartRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCartService_AddItem_InactiveProductRejected(t *testing.T) {
	fx := createTestCartService(t)

	ctx := context.Background()
	product := testProduct(10, 5)
	product.Status = entity.RecordStatusDisabled

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txProductRepo.On("FindByID", ctx, product.ID).Return(product, nil)

	output, err := fx.service.AddItem(ctx, &usecase.AddCartItemInput{
		UserID:    uuid.New(),
		ProductID: product.ID,
		Quantity:  1,
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrProductInactive))
}

func TestCartService_AddItem_ZeroQuantityRejected(t *testing.T) {
	fx := createTestCartService(t)

	output, err := fx.service.AddItem(context.Background(), &usecase.AddCartItemInput{
		UserID:    uuid.New(),
		ProductID: uuid.New(),
		Quantity:  0,
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	fx.txManager.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestCartService_UpdateItem_ReplacesQuantity(t *testing.T) {
	fx := createTestCartService(t)

	ctx := context.Background()
	userID := uuid.New()
	product := testProduct(10, 5)
	existing := &entity.Cart{
		UserID: userID,
		Items:  []entity.CartItem{{ProductID: product.ID, Quantity: 2}},
	}

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txCartRepo.On("FindByUserID", ctx, userID).Return(existing, nil)
	fx.txProductRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	fx.txCartRepo.On("Save", ctx, mock.MatchedBy(func(cart *entity.Cart) bool {
		return cart.Items[0].Quantity == 7
	})).Return(nil)

	fx.productRepo.On("FindByIDs", ctx, []uuid.UUID{product.ID}).
		Return([]*entity.Product{product}, nil)

	output, err := fx.service.UpdateItem(ctx, &usecase.UpdateCartItemInput{
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  7,
	})

	require.NoError(t, err)
	assert.Equal(t, 7, output.ItemCount)
}

func TestCartService_UpdateItem_MissingLine(t *testing.T) {
	fx := createTestCartService(t)

	ctx := context.Background()
	userID := uuid.New()
	existing := &entity.Cart{
		UserID: userID,
		Items:  []entity.CartItem{{ProductID: uuid.New(), Quantity: 1}},
	}

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txCartRepo.On("FindByUserID", ctx, userID).Return(existing, nil)

	output, err := fx.service.UpdateItem(ctx, &usecase.UpdateCartItemInput{
		UserID:    userID,
		ProductID: uuid.New(),
		Quantity:  3,
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrCartItemNotFound))
}

func TestCartService_RemoveItem_DropsLine(t *testing.T) {
	fx := createTestCartService(t)

	ctx := context.Background()
	userID := uuid.New()
	keep := testProduct(10, 5)
	drop := testProduct(10, 3)
	existing := &entity.Cart{
		UserID: userID,
		Items: []entity.CartItem{
			{ProductID: keep.ID, Quantity: 1},
			{ProductID: drop.ID, Quantity: 2},
		},
	}

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txCartRepo.On("FindByUserID", ctx, userID).Return(existing, nil)
	fx.txCartRepo.On("Save", ctx, mock.MatchedBy(func(cart *entity.Cart) bool {
		return len(cart.Items) == 1 && cart.Items[0].ProductID == keep.ID
	})).Return(nil)

	fx.productRepo.On("FindByIDs", ctx, []uuid.UUID{keep.ID}).
		Return([]*entity.Product{keep}, nil)

	output, err := fx.service.RemoveItem(ctx, userID, drop.ID)

	require.NoError(t, err)
	require.Len(t, output.Items, 1)
	assert.Equal(t, keep.ID, output.Items[0].ProductID)
}

func TestCartService_GetCart_VanishedProductFlaggedUnavailable(t *testing.T) {
	fx := createTestCartService(t)

	ctx := context.Background()
	userID := uuid.New()
	goneID := uuid.New()
	cart := &entity.Cart{
		UserID: userID,
		Items:  []entity.CartItem{{ProductID: goneID, Quantity: 2}},
	}

	fx.cartRepo.On("FindByUserID", ctx, userID).Return(cart, nil)
	fx.productRepo.On("FindByIDs", ctx, []uuid.UUID{goneID}).
		Return([]*entity.Product{}, nil)

	output, err := fx.service.GetCart(ctx, userID)

	require.NoError(t, err)
	require.Len(t, output.Items, 1)
	assert.False(t, output.Items[0].Available)
	assert.True(t, output.Total.IsZero())
}

func TestCartService_ClearCart_Delegates(t *testing.T) {
	fx := createTestCartService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.cartRepo.On("Clear", ctx, userID).Return(nil)

	require.NoError(t, fx.service.ClearCart(ctx, userID))
}
