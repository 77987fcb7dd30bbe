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

// catalogServiceFixtures holds all test dependencies for catalog service tests.
type catalogServiceFixtures struct {
	service        usecase.CatalogUsecase
	txManager      *mockRepo.MockTransactionManager
	productRepo    *mockRepo.MockProductRepository
	txProductRepo  *mockRepo.MockProductRepository
	categoryRepo   *mockRepo.MockCategoryRepository
	txCategoryRepo *mockRepo.MockCategoryRepository
}

func createTestCatalogService(t *testing.T) catalogServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	productRepo := mockRepo.NewMockProductRepository(t)
	txProductRepo := mockRepo.NewMockProductRepository(t)
	categoryRepo := mockRepo.NewMockCategoryRepository(t)
	txCategoryRepo := mockRepo.NewMockCategoryRepository(t)

	factory := mockRepo.NewMockRepositoryFactory(t)
	factory.On("NewProductRepository").Return(txProductRepo).Maybe()
	factory.On("NewCategoryRepository").Return(txCategoryRepo).Maybe()
	txManager.Factory = factory

	svc := NewCatalogService(CatalogServiceParams{
		TxManager:    txManager,
		ProductRepo:  productRepo,
		CategoryRepo: categoryRepo,
		Logger:       newDiscardLogger(),
	})

	return catalogServiceFixtures{
		service:        svc,
		txManager:      txManager,
		productRepo:    productRepo,
		txProductRepo:  txProductRepo,
		categoryRepo:   categoryRepo,
		txCategoryRepo: txCategoryRepo,
	}
}

func activeCategory() *entity.Category {
	return &entity.Category{
		ID:     uuid.New(),
		Name:   "Electronics",
		Status: entity.RecordStatusActive,
	}
}

func TestCatalogService_GetProduct_NotFound(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()
	productID := uuid.New()

	fx.productRepo.On("FindByID", ctx, productID).Return(nil, repository.ErrProductNotFound)

	product, err := fx.service.GetProduct(ctx, productID)

	assert.Nil(t, product)
	assert.True(t, errors.Is(err, domainerrors.ErrProductNotFound))
}

func TestCatalogService_ListProducts_NormalizesPagination(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()

	fx.productRepo.On("List", ctx, mock.MatchedBy(func(filter repository.ProductFilter) bool {
		return filter.Page == 1 && filter.Limit == 20
	})).Return([]*entity.Product{}, int64(0), nil)

	output, err := fx.service.ListProducts(ctx, &usecase.ListProductsInput{Page: -3, Limit: 0})

	require.NoError(t, err)
	assert.Equal(t, 1, output.Page)
	assert.Equal(t, 20, output.Limit)
}

func TestCatalogService_CreateProduct_Success(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()
	category := activeCategory()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txCategoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
	fx.txProductRepo.On("Create", ctx, mock.AnythingOfType("*entity.Product")).
		Run(func(args mock.Arguments) {
			product, ok := args.Get(1).(*entity.Product)
			require.True(t, ok)
			product.ID = uuid.New()
		}).
		Return(nil)

	product, err := fx.service.CreateProduct(ctx, &usecase.CreateProductInput{
		Name:       "Keyboard",
		SKU:        "KB-100",
		Price:      decimal.NewFromInt(50),
		CategoryID: category.ID,
		Stock:      12,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, product.ID)
	assert.Equal(t, entity.RecordStatusActive, product.Status)
}

func TestCatalogService_CreateProduct_UnknownCategory(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()
	categoryID := uuid.New()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txCategoryRepo.On("FindByID", ctx, categoryID).Return(nil, repository.ErrCategoryNotFound)

	product, err := fx.service.CreateProduct(ctx, &usecase.CreateProductInput{
		Name:       "Keyboard",
		Price:      decimal.NewFromInt(50),
		CategoryID: categoryID,
	})

	assert.Nil(t, product)
	assert.True(t, errors.Is(err, domainerrors.ErrCategoryNotFound))
	fx.txProductRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCatalogService_CreateProduct_NegativePriceRejected(t *testing.T) {
	fx := createTestCatalogService(t)

	product, err := fx.service.CreateProduct(context.Background(), &usecase.CreateProductInput{
		Name:       "Keyboard",
		Price:      decimal.NewFromInt(-1),
		CategoryID: uuid.New(),
	})

	assert.Nil(t, product)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	fx.txManager.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestCatalogService_UpdateProduct_AppliesOnlyProvidedFields(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()
	product := testProduct(5, 10)
	product.SKU = "KB-100"

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txProductRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	fx.txProductRepo.On("Update", ctx, product).Return(nil)

	name := "Mechanical Keyboard"
	stock := 30
	updated, err := fx.service.UpdateProduct(ctx, &usecase.UpdateProductInput{
		ProductID: product.ID,
		Name:      &name,
		Stock:     &stock,
	})

	require.NoError(t, err)
	assert.Equal(t, "Mechanical Keyboard", updated.Name)
	assert.Equal(t, 30, updated.Stock)
	assert.Equal(t, "KB-100", updated.SKU)
}

func TestCatalogService_UpdateProduct_UnknownCategoryRejected(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()
	product := testProduct(5, 10)
	categoryID := uuid.New()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txProductRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	fx.txCategoryRepo.On("FindByID", ctx, categoryID).Return(nil, repository.ErrCategoryNotFound)

	updated, err := fx.service.UpdateProduct(ctx, &usecase.UpdateProductInput{
		ProductID:  product.ID,
		CategoryID: &categoryID,
	})

	assert.Nil(t, updated)
	assert.True(t, errors.Is(err, domainerrors.ErrCategoryNotFound))
	fx.txProductRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCatalogService_DeleteProduct_SoftDeletes(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()
	product := testProduct(5, 10)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txProductRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	fx.txProductRepo.On("Update", ctx, product).Return(nil)

	err := fx.service.DeleteProduct(ctx, product.ID)

	require.NoError(t, err)
	assert.Equal(t, entity.RecordStatusDeleted, product.Status)
	assert.NotNil(t, product.DeletedAt)
}

func TestCatalogService_CreateCategory_DefaultsActive(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()

	fx.categoryRepo.On("Create", ctx, mock.AnythingOfType("*entity.Category")).
		Run(func(args mock.Arguments) {
			category, ok := args.Get(1).(*entity.Category)
			require.True(t, ok)
			category.ID = uuid.New()
		}).
		Return(nil)

	category, err := fx.service.CreateCategory(ctx, &usecase.CreateCategoryInput{
		Name:        "Audio",
		Description: "Headphones and speakers",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, category.ID)
	assert.Equal(t, entity.RecordStatusActive, category.Status)
}

func TestCatalogService_GetCategory_NotFound(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()
	categoryID := uuid.New()

	fx.categoryRepo.On("FindByID", ctx, categoryID).Return(nil, repository.ErrCategoryNotFound)

	category, err := fx.service.GetCategory(ctx, categoryID)

	assert.Nil(t, category)
	assert.True(t, errors.Is(err, domainerrors.ErrCategoryNotFound))
}

func TestCatalogService_DeleteCategory_SoftDeletes(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()
	category := activeCategory()

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txCategoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
	fx.txCategoryRepo.On("Update", ctx, category).Return(nil)

	err := fx.service.DeleteCategory(ctx, category.ID)

	require.NoError(t, err)
	assert.Equal(t, entity.RecordStatusDeleted, category.Status)
}
