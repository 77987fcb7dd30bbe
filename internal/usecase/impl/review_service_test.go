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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// reviewServiceFixtures holds all test dependencies for review service tests.
type reviewServiceFixtures struct {
	service      usecase.ReviewUsecase
	txManager    *mockRepo.MockTransactionManager
	reviewRepo   *mockRepo.MockReviewRepository
	orderRepo    *mockRepo.MockOrderRepository
	txReviewRepo *mockRepo.MockReviewRepository
	txOrderRepo  *mockRepo.MockOrderRepository
	productRepo  *mockRepo.MockProductRepository
}

func createTestReviewService(t *testing.T) reviewServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	reviewRepo := mockRepo.NewMockReviewRepository(t)
	orderRepo := mockRepo.NewMockOrderRepository(t)
	txReviewRepo := mockRepo.NewMockReviewRepository(t)
	txOrderRepo := mockRepo.NewMockOrderRepository(t)
	productRepo := mockRepo.NewMockProductRepository(t)

	factory := mockRepo.NewMockRepositoryFactory(t)
	factory.On("NewReviewRepository").Return(txReviewRepo).Maybe()
	factory.On("NewOrderRepository").Return(txOrderRepo).Maybe()
	factory.On("NewProductRepository").Return(productRepo).Maybe()
	txManager.Factory = factory

	service := NewReviewService(ReviewServiceParams{
		TxManager:  txManager,
		ReviewRepo: reviewRepo,
		OrderRepo:  orderRepo,
		Logger:     newDiscardLogger(),
	})

	return reviewServiceFixtures{
		service:      service,
		txManager:    txManager,
		reviewRepo:   reviewRepo,
		orderRepo:    orderRepo,
		txReviewRepo: txReviewRepo,
		txOrderRepo:  txOrderRepo,
		productRepo:  productRepo,
	}
}

func TestReviewService_CreateReview_Success(t *testing.T) {
	fx := createTestReviewService(t)

	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()
	orderID := uuid.New()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.productRepo.On("FindByID", ctx, productID).
		Return(&entity.Product{ID: productID, Status: entity.RecordStatusActive}, nil)
	fx.txOrderRepo.On("HasDeliveredProduct", ctx, userID, productID).
		Return(orderID, true, nil)
	fx.txReviewRepo.On("FindByProductAndUser", ctx, productID, userID).
		Return(nil, repository.ErrReviewNotFound)
	fx.txReviewRepo.On("Create", ctx, mock.AnythingOfType("*entity.Review")).Return(nil)

	// 4 and 5 average to 4.5 after rounding to one decimal.
	fx.txReviewRepo.On("RatingStats", ctx, productID).
		Return(&repository.RatingStats{Average: 4.5, Count: 2}, nil)
	fx.productRepo.On("SetRatingStats", ctx, productID, 4.5, 2).Return(nil)

	review, err := fx.service.CreateReview(ctx, &usecase.CreateReviewInput{
		UserID:    userID,
		ProductID: productID,
		Rating:    5,
		Comment:   "Great product",
	})

	require.NoError(t, err)
	assert.Equal(t, orderID, review.OrderID)
	assert.Equal(t, entity.RecordStatusActive, review.Status)
}

func TestReviewService_CreateReview_RoundsAverageToOneDecimal(t *testing.T) {
	fx := createTestReviewService(t)

	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.productRepo.On("FindByID", ctx, productID).
		Return(&entity.Product{ID: productID, Status: entity.RecordStatusActive}, nil)
	fx.txOrderRepo.On("HasDeliveredProduct", ctx, userID, productID).
		Return(uuid.New(), true, nil)
	fx.txReviewRepo.On("FindByProductAndUser", ctx, productID, userID).
		Return(nil, repository.ErrReviewNotFound)
	fx.txReviewRepo.On("Create", ctx, mock.AnythingOfType("*entity.Review")).Return(nil)

	// 4, 4, 5 average to 4.333...; stored as 4.3.
	fx.txReviewRepo.On("RatingStats", ctx, productID).
		Return(&repository.RatingStats{Average: 4.333333333, Count: 3}, nil)
	fx.productRepo.On("SetRatingStats", ctx, productID, 4.3, 3).Return(nil)

	_, err := fx.service.CreateReview(ctx, &usecase.CreateReviewInput{
		UserID:    userID,
		ProductID: productID,
		Rating:    4,
	})

	require.NoError(t, err)
}

func TestReviewService_CreateReview_NotDeliveredRejected(t *testing.T) {
	fx := createTestReviewService(t)

	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.productRepo.On("FindByID", ctx, productID).
		Return(&entity.Product{ID: productID, Status: entity.RecordStatusActive}, nil)
	fx.txOrderRepo.On("HasDeliveredProduct", ctx, userID, productID).
		Return(uuid.Nil, false, nil)

	review, err := fx.service.CreateReview(ctx, &usecase.CreateReviewInput{
		UserID:    userID,
		ProductID: productID,
		Rating:    5,
	})

	assert.Nil(t, review)
	assert.True(t, errors.Is(err, domainerrors.ErrReviewNotAllowed))
}

func TestReviewService_CreateReview_DuplicateRejected(t *testing.T) {
	fx := createTestReviewService(t)

	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.productRepo.On("FindByID", ctx, productID).
		Return(&entity.Product{ID: productID, Status: entity.RecordStatusActive}, nil)
	fx.txOrderRepo.On("HasDeliveredProduct", ctx, userID, productID).
		Return(uuid.New(), true, nil)
	fx.txReviewRepo.On("FindByProductAndUser", ctx, productID, userID).
		Return(&entity.Review{ID: uuid.New(), Status: entity.RecordStatusActive}, nil)

	review, err := fx.service.CreateReview(ctx, &usecase.CreateReviewInput{
		UserID:    userID,
		ProductID: productID,
		Rating:    5,
	})

	assert.Nil(t, review)
	assert.True(t, errors.Is(err, domainerrors.ErrReviewExists))
}

func TestReviewService_CreateReview_RevivesDeletedReview(t *testing.T) {
	fx := createTestReviewService(t)

	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()
	orderID := uuid.New()
	deleted := &entity.Review{
		ID:        uuid.New(),
		ProductID: productID,
		UserID:    userID,
		Rating:    2,
		Status:    entity.RecordStatusDeleted,
	}

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.productRepo.On("FindByID", ctx, productID).
		Return(&entity.Product{ID: productID, Status: entity.RecordStatusActive}, nil)
	fx.txOrderRepo.On("HasDeliveredProduct", ctx, userID, productID).
		Return(orderID, true, nil)
	fx.txReviewRepo.On("FindByProductAndUser", ctx, productID, userID).
		Return(deleted, nil)
	fx.txReviewRepo.On("Update", ctx, deleted).Return(nil)
	fx.txReviewRepo.On("RatingStats", ctx, productID).
		Return(&repository.RatingStats{Average: 5, Count: 1}, nil)
	fx.productRepo.On("SetRatingStats", ctx, productID, 5.0, 1).Return(nil)

	review, err := fx.service.CreateReview(ctx, &usecase.CreateReviewInput{
		UserID:    userID,
		ProductID: productID,
		Rating:    5,
		Comment:   "Changed my mind",
	})

	require.NoError(t, err)
	assert.Equal(t, deleted.ID, review.ID)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, entity.RecordStatusActive, review.Status)
	fx.txReviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_CreateReview_InvalidRating(t *testing.T) {
	fx := createTestReviewService(t)

	review, err := fx.service.CreateReview(context.Background(), &usecase.CreateReviewInput{
		UserID:    uuid.New(),
		ProductID: uuid.New(),
		Rating:    6,
	})

	assert.Nil(t, review)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestReviewService_DeleteReview_AdminDeletesForeignReview(t *testing.T) {
	fx := createTestReviewService(t)

	ctx := context.Background()
	productID := uuid.New()
	review := &entity.Review{
		ID:        uuid.New(),
		ProductID: productID,
		UserID:    uuid.New(),
		Status:    entity.RecordStatusActive,
	}

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txReviewRepo.On("FindByID", ctx, review.ID).Return(review, nil)
	fx.txReviewRepo.On("Update", ctx, review).Return(nil)
	fx.txReviewRepo.On("RatingStats", ctx, productID).
		Return(&repository.RatingStats{}, nil)
	fx.productRepo.On("SetRatingStats", ctx, productID, 0.0, 0).Return(nil)

	err := fx.service.DeleteReview(ctx, &usecase.DeleteReviewInput{
		UserID:   uuid.New(),
		ReviewID: review.ID,
		IsAdmin:  true,
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RecordStatusDeleted, review.Status)
}

func TestReviewService_DeleteReview_ForeignReviewForbidden(t *testing.T) {
	fx := createTestReviewService(t)

	ctx := context.Background()
	review := &entity.Review{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: entity.RecordStatusActive,
	}

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txReviewRepo.On("FindByID", ctx, review.ID).Return(review, nil)

	err := fx.service.DeleteReview(ctx, &usecase.DeleteReviewInput{
		UserID:   uuid.New(),
		ReviewID: review.ID,
	})

	assert.True(t, errors.Is(err, domainerrors.ErrForbidden))
	fx.txReviewRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestReviewService_CanReview_Eligible(t *testing.T) {
	fx := createTestReviewService(t)

	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()
	orderID := uuid.New()

	fx.orderRepo.On("HasDeliveredProduct", ctx, userID, productID).
		Return(orderID, true, nil)
	fx.reviewRepo.On("FindByProductAndUser", ctx, productID, userID).
		Return(nil, repository.ErrReviewNotFound)

	output, err := fx.service.CanReview(ctx, userID, productID)

	require.NoError(t, err)
	assert.True(t, output.CanReview)
	require.NotNil(t, output.OrderID)
	assert.Equal(t, orderID, *output.OrderID)
}

func TestReviewService_CanReview_NoDeliveredPurchase(t *testing.T) {
	fx := createTestReviewService(t)

	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	fx.orderRepo.On("HasDeliveredProduct", ctx, userID, productID).
		Return(uuid.Nil, false, nil)

	output, err := fx.service.CanReview(ctx, userID, productID)

	require.NoError(t, err)
	assert.False(t, output.CanReview)
	assert.Equal(t, "no delivered order contains this product", output.Reason)
}

func TestReviewService_CanReview_AlreadyReviewed(t *testing.T) {
	fx := createTestReviewService(t)

	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	fx.orderRepo.On("HasDeliveredProduct", ctx, userID, productID).
		Return(uuid.New(), true, nil)
	fx.reviewRepo.On("FindByProductAndUser", ctx, productID, userID).
		Return(&entity.Review{Status: entity.RecordStatusActive}, nil)

	output, err := fx.service.CanReview(ctx, userID, productID)

	require.NoError(t, err)
	assert.False(t, output.CanReview)
	assert.Equal(t, "product already reviewed", output.Reason)
}
