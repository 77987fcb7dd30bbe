// Package service provides hand-maintained testify doubles for the
// domain service interfaces.
package service

import (
	"context"
	"io"
	"testing"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func register(t *testing.T, m *mock.Mock) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// MockPasswordHasher mocks service.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	register(t, &m.Mock)

	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Check(password, hash string) bool {
	return m.Called(password, hash).Bool(0)
}

// MockTokenService mocks service.TokenService.
type MockTokenService struct {
	mock.Mock
}

func NewMockTokenService(t *testing.T) *MockTokenService {
	m := &MockTokenService{}
	register(t, &m.Mock)

	return m
}

func (m *MockTokenService) GenerateTokens(userID uuid.UUID, role entity.Role) (string, string, error) {
	args := m.Called(userID, role)

	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockTokenService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*service.Claims)

	return claims, args.Error(1)
}

func (m *MockTokenService) ValidateRefreshToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*service.Claims)

	return claims, args.Error(1)
}

func (m *MockTokenService) HashToken(raw string) string {
	return m.Called(raw).String(0)
}

func (m *MockTokenService) GetRefreshTokenDuration() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

// MockPaymentGateway mocks service.PaymentGateway.
type MockPaymentGateway struct {
	mock.Mock
}

func NewMockPaymentGateway(t *testing.T) *MockPaymentGateway {
	m := &MockPaymentGateway{}
	register(t, &m.Mock)

	return m
}

func (m *MockPaymentGateway) CreatePreference(ctx context.Context, req *service.PreferenceRequest) (*service.Preference, error) {
	args := m.Called(ctx, req)
	preference, _ := args.Get(0).(*service.Preference)

	return preference, args.Error(1)
}

func (m *MockPaymentGateway) GetPayment(ctx context.Context, paymentID string) (*service.Payment, error) {
	args := m.Called(ctx, paymentID)
	payment, _ := args.Get(0).(*service.Payment)

	return payment, args.Error(1)
}

func (m *MockPaymentGateway) CreateSubscription(ctx context.Context, req *service.SubscriptionRequest) (*service.Subscription, error) {
	args := m.Called(ctx, req)
	subscription, _ := args.Get(0).(*service.Subscription)

	return subscription, args.Error(1)
}

func (m *MockPaymentGateway) GetSubscription(ctx context.Context, subscriptionID string) (*service.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	subscription, _ := args.Get(0).(*service.Subscription)

	return subscription, args.Error(1)
}

func (m *MockPaymentGateway) CancelSubscription(ctx context.Context, subscriptionID string) (*service.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	subscription, _ := args.Get(0).(*service.Subscription)

	return subscription, args.Error(1)
}

// MockMediaStorage mocks service.MediaStorage.
type MockMediaStorage struct {
	mock.Mock
}

func NewMockMediaStorage(t *testing.T) *MockMediaStorage {
	m := &MockMediaStorage{}
	register(t, &m.Mock)

	return m
}

func (m *MockMediaStorage) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	args := m.Called(ctx, filename, contentType, body)

	return args.String(0), args.Error(1)
}
