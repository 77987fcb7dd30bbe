// Package repository provides hand-maintained testify doubles for the
// domain repository interfaces.
package repository

import (
	"context"
	"testing"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func register(t *testing.T, m *mock.Mock) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// MockTransactionManager mocks repository.TransactionManager. When
// Factory is set, Execute runs the callback against it and propagates
// the callback error, mimicking a rollback.
type MockTransactionManager struct {
	mock.Mock

	Factory repository.RepositoryFactory
}

func NewMockTransactionManager(t *testing.T) *MockTransactionManager {
	m := &MockTransactionManager{}
	register(t, &m.Mock)

	return m
}

func (m *MockTransactionManager) Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	args := m.Called(ctx, fn)
	if m.Factory != nil {
		if err := fn(m.Factory); err != nil {
			return err
		}
	}

	return args.Error(0)
}

// MockRepositoryFactory mocks repository.RepositoryFactory.
type MockRepositoryFactory struct {
	mock.Mock
}

func NewMockRepositoryFactory(t *testing.T) *MockRepositoryFactory {
	m := &MockRepositoryFactory{}
	register(t, &m.Mock)

	return m
}

func (m *MockRepositoryFactory) NewUserRepository() repository.UserRepository {
	return m.Called().Get(0).(repository.UserRepository)
}

func (m *MockRepositoryFactory) NewProductRepository() repository.ProductRepository {
	return m.Called().Get(0).(repository.ProductRepository)
}

func (m *MockRepositoryFactory) NewCategoryRepository() repository.CategoryRepository {
	return m.Called().Get(0).(repository.CategoryRepository)
}

func (m *MockRepositoryFactory) NewCartRepository() repository.CartRepository {
	return m.Called().Get(0).(repository.CartRepository)
}

func (m *MockRepositoryFactory) NewOrderRepository() repository.OrderRepository {
	return m.Called().Get(0).(repository.OrderRepository)
}

func (m *MockRepositoryFactory) NewReviewRepository() repository.ReviewRepository {
	return m.Called().Get(0).(repository.ReviewRepository)
}

func (m *MockRepositoryFactory) NewPaymentEventRepository() repository.PaymentEventRepository {
	return m.Called().Get(0).(repository.PaymentEventRepository)
}

func (m *MockRepositoryFactory) NewRefreshTokenRepository() repository.RefreshTokenRepository {
	return m.Called().Get(0).(repository.RefreshTokenRepository)
}

// MockUserRepository mocks repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository(t *testing.T) *MockUserRepository {
	m := &MockUserRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, filter repository.UserFilter) ([]*entity.User, int64, error) {
	args := m.Called(ctx, filter)
	users, _ := args.Get(0).([]*entity.User)

	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) CountActiveAdmins(ctx context.Context, excludeID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, excludeID)

	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)

	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository mocks repository.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func NewMockProductRepository(t *testing.T) *MockProductRepository {
	m := &MockProductRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*entity.Product)

	return product, args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error) {
	args := m.Called(ctx, ids)
	products, _ := args.Get(0).([]*entity.Product)

	return products, args.Error(1)
}

func (m *MockProductRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error) {
	args := m.Called(ctx, ids)
	products, _ := args.Get(0).([]*entity.Product)

	return products, args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *entity.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *entity.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, int64, error) {
	args := m.Called(ctx, filter)
	products, _ := args.Get(0).([]*entity.Product)

	return products, args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, stockDelta, soldDelta int) error {
	return m.Called(ctx, id, stockDelta, soldDelta).Error(0)
}

func (m *MockProductRepository) SetRatingStats(ctx context.Context, id uuid.UUID, averageRating float64, reviewsCount int) error {
	return m.Called(ctx, id, averageRating, reviewsCount).Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)

	return args.Get(0).(int64), args.Error(1)
}

// MockCategoryRepository mocks repository.CategoryRepository.
type MockCategoryRepository struct {
	mock.Mock
}

func NewMockCategoryRepository(t *testing.T) *MockCategoryRepository {
	m := &MockCategoryRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	args := m.Called(ctx, id)
	category, _ := args.Get(0).(*entity.Category)

	return category, args.Error(1)
}

func (m *MockCategoryRepository) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	args := m.Called(ctx, name)
	category, _ := args.Get(0).(*entity.Category)

	return category, args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *entity.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]*entity.Category)

	return categories, args.Error(1)
}

// MockCartRepository mocks repository.CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func NewMockCartRepository(t *testing.T) *MockCartRepository {
	m := &MockCartRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockCartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	args := m.Called(ctx, userID)
	cart, _ := args.Get(0).(*entity.Cart)

	return cart, args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, cart *entity.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

func (m *MockCartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

// MockOrderRepository mocks repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func NewMockOrderRepository(t *testing.T) *MockOrderRepository {
	m := &MockOrderRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*entity.Order)

	return order, args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*entity.Order)

	return order, args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *entity.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, int64, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]*entity.Order)

	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) HasDeliveredProduct(ctx context.Context, userID, productID uuid.UUID) (uuid.UUID, bool, error) {
	args := m.Called(ctx, userID, productID)

	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *MockOrderRepository) Revenue(ctx context.Context, statuses []entity.OrderStatus) (*repository.RevenueStats, error) {
	args := m.Called(ctx, statuses)
	stats, _ := args.Get(0).(*repository.RevenueStats)

	return stats, args.Error(1)
}

func (m *MockOrderRepository) TopProducts(ctx context.Context, limit int) ([]repository.ProductSales, error) {
	args := m.Called(ctx, limit)
	sales, _ := args.Get(0).([]repository.ProductSales)

	return sales, args.Error(1)
}

func (m *MockOrderRepository) Recent(ctx context.Context, limit int) ([]*entity.Order, error) {
	args := m.Called(ctx, limit)
	orders, _ := args.Get(0).([]*entity.Order)

	return orders, args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)

	return args.Get(0).(int64), args.Error(1)
}

// MockReviewRepository mocks repository.ReviewRepository.
type MockReviewRepository struct {
	mock.Mock
}

func NewMockReviewRepository(t *testing.T) *MockReviewRepository {
	m := &MockReviewRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	args := m.Called(ctx, id)
	review, _ := args.Get(0).(*entity.Review)

	return review, args.Error(1)
}

func (m *MockReviewRepository) FindByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*entity.Review, error) {
	args := m.Called(ctx, productID, userID)
	review, _ := args.Get(0).(*entity.Review)

	return review, args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *entity.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]*entity.Review, int64, error) {
	args := m.Called(ctx, productID, page, limit)
	reviews, _ := args.Get(0).([]*entity.Review)

	return reviews, args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) List(ctx context.Context, filter repository.ReviewFilter) ([]*entity.Review, int64, error) {
	args := m.Called(ctx, filter)
	reviews, _ := args.Get(0).([]*entity.Review)

	return reviews, args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) RatingStats(ctx context.Context, productID uuid.UUID) (*repository.RatingStats, error) {
	args := m.Called(ctx, productID)
	stats, _ := args.Get(0).(*repository.RatingStats)

	return stats, args.Error(1)
}

func (m *MockReviewRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)

	return args.Get(0).(int64), args.Error(1)
}

// MockPaymentEventRepository mocks repository.PaymentEventRepository.
type MockPaymentEventRepository struct {
	mock.Mock
}

func NewMockPaymentEventRepository(t *testing.T) *MockPaymentEventRepository {
	m := &MockPaymentEventRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockPaymentEventRepository) Enqueue(ctx context.Context, event *entity.PaymentEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockPaymentEventRepository) ClaimBatch(ctx context.Context, limit int) ([]*entity.PaymentEvent, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]*entity.PaymentEvent)

	return events, args.Error(1)
}

func (m *MockPaymentEventRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPaymentEventRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, maxAttempts int) error {
	return m.Called(ctx, id, lastError, maxAttempts).Error(0)
}

// MockRefreshTokenRepository mocks repository.RefreshTokenRepository.
type MockRefreshTokenRepository struct {
	mock.Mock
}

func NewMockRefreshTokenRepository(t *testing.T) *MockRefreshTokenRepository {
	m := &MockRefreshTokenRepository{}
	register(t, &m.Mock)

	return m
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *entity.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockRefreshTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	token, _ := args.Get(0).(*entity.RefreshToken)

	return token, args.Error(1)
}

func (m *MockRefreshTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *MockRefreshTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}
