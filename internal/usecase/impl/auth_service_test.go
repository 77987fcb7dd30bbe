package impl

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	mockRepo "storefront/internal/mocks/repository"
	mockSvc "storefront/internal/mocks/service"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// authServiceFixtures holds all test dependencies for auth service tests.
type authServiceFixtures struct {
	service            usecase.AuthUsecase
	txManager          *mockRepo.MockTransactionManager
	userRepo           *mockRepo.MockUserRepository
	txUserRepo         *mockRepo.MockUserRepository
	refreshTokenRepo   *mockRepo.MockRefreshTokenRepository
	txRefreshTokenRepo *mockRepo.MockRefreshTokenRepository
	hasher             *mockSvc.MockPasswordHasher
	tokenService       *mockSvc.MockTokenService
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	txUserRepo := mockRepo.NewMockUserRepository(t)
	refreshTokenRepo := mockRepo.NewMockRefreshTokenRepository(t)
	txRefreshTokenRepo := mockRepo.NewMockRefreshTokenRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)

	factory := mockRepo.NewMockRepositoryFactory(t)
	factory.On("NewUserRepository").Return(txUserRepo).Maybe()
	factory.On("NewRefreshTokenRepository").Return(txRefreshTokenRepo).Maybe()
	txManager.Factory = factory

	svc := NewAuthService(AuthServiceParams{
		TxManager:        txManager,
		UserRepo:         userRepo,
		RefreshTokenRepo: refreshTokenRepo,
		Hasher:           hasher,
		TokenService:     tokenService,
		Logger:           newDiscardLogger(),
	})

	return authServiceFixtures{
		service:            svc,
		txManager:          txManager,
		userRepo:           userRepo,
		txUserRepo:         txUserRepo,
		refreshTokenRepo:   refreshTokenRepo,
		txRefreshTokenRepo: txRefreshTokenRepo,
		hasher:             hasher,
		tokenService:       tokenService,
	}
}

func activeUser(role entity.Role) *entity.User {
	return &entity.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "hashed_password",
		Role:         role,
		Status:       entity.RecordStatusActive,
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "Password123!",
	}

	fx.hasher.On("Hash", input.Password).Return("hashed_password", nil)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txUserRepo.On("FindByEmail", ctx, input.Email).
		Return(nil, repository.ErrUserNotFound)
	fx.txUserRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) {
			user := args.Get(1).(*entity.User)
			user.ID = uuid.New()
		}).
		Return(nil)

	output, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, input.Email, output.User.Email)
	assert.Equal(t, entity.RoleUser, output.User.Role)
	assert.Equal(t, entity.RecordStatusActive, output.User.Status)
	assert.Equal(t, "hashed_password", output.User.PasswordHash)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Name:     "Test User",
		Email:    "taken@example.com",
		Password: "Password123!",
	}

	fx.hasher.On("Hash", input.Password).Return("hashed_password", nil)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txUserRepo.On("FindByEmail", ctx, input.Email).
		Return(activeUser(entity.RoleUser), nil)

	output, err := fx.service.Register(ctx, input)

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrEmailTaken))
	fx.txUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login_Success(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	user := activeUser(entity.RoleUser)

	fx.userRepo.On("FindByEmail", ctx, user.Email).Return(user, nil)
	fx.hasher.On("Check", "Password123!", user.PasswordHash).Return(true)
	fx.tokenService.On("GenerateTokens", user.ID, user.Role).
		Return("access_token", "refresh_token", nil)
	fx.tokenService.On("HashToken", "refresh_token").Return("token_hash")
	fx.tokenService.On("GetRefreshTokenDuration").Return(24 * time.Hour)
	fx.refreshTokenRepo.On("Create", ctx, mock.MatchedBy(func(token *entity.RefreshToken) bool {
		return token.UserID == user.ID && token.TokenHash == "token_hash"
	})).Return(nil)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{
		Email:    user.Email,
		Password: "Password123!",
	})

	require.NoError(t, err)
	assert.Equal(t, "access_token", output.AccessToken)
	assert.Equal(t, "refresh_token", output.RefreshToken)
	assert.Equal(t, user.ID, output.User.ID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	user := activeUser(entity.RoleUser)

	fx.userRepo.On("FindByEmail", ctx, user.Email).Return(user, nil)
	fx.hasher.On("Check", "wrong", user.PasswordHash).Return(false)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{Email: user.Email, Password: "wrong"})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_Login_UnknownEmailSameError(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()

	fx.userRepo.On("FindByEmail", ctx, "nobody@example.com").
		Return(nil, repository.ErrUserNotFound)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "nobody@example.com", Password: "whatever"})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_Login_DisabledAccount(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	user := activeUser(entity.RoleUser)
	user.Status = entity.RecordStatusDisabled

	fx.userRepo.On("FindByEmail", ctx, user.Email).Return(user, nil)
	fx.hasher.On("Check", "Password123!", user.PasswordHash).Return(true)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{Email: user.Email, Password: "Password123!"})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrAccountDisabled))
}

func TestAuthService_RefreshToken_Success(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	user := activeUser(entity.RoleUser)

	fx.tokenService.On("ValidateRefreshToken", "refresh_token").
		Return(&service.Claims{UserID: user.ID, Type: "refresh"}, nil)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.tokenService.On("HashToken", "refresh_token").Return("token_hash")
	fx.txRefreshTokenRepo.On("FindByHash", ctx, "token_hash").
		Return(&entity.RefreshToken{
			UserID:    user.ID,
			TokenHash: "token_hash",
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil)
	fx.txUserRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	fx.tokenService.On("GenerateTokens", user.ID, user.Role).
		Return("new_access_token", "unused_refresh", nil)

	output, err := fx.service.RefreshToken(ctx, &usecase.RefreshTokenInput{RefreshToken: "refresh_token"})

	require.NoError(t, err)
	assert.Equal(t, "new_access_token", output.AccessToken)
}

func TestAuthService_RefreshToken_RevokedToken(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.tokenService.On("ValidateRefreshToken", "refresh_token").
		Return(&service.Claims{UserID: userID, Type: "refresh"}, nil)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.tokenService.On("HashToken", "refresh_token").Return("token_hash")
	fx.txRefreshTokenRepo.On("FindByHash", ctx, "token_hash").
		Return(nil, repository.ErrRefreshTokenNotFound)

	output, err := fx.service.RefreshToken(ctx, &usecase.RefreshTokenInput{RefreshToken: "refresh_token"})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAuthService_RefreshToken_Expired(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.tokenService.On("ValidateRefreshToken", "refresh_token").
		Return(&service.Claims{UserID: userID, Type: "refresh"}, nil)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.tokenService.On("HashToken", "refresh_token").Return("token_hash")
	fx.txRefreshTokenRepo.On("FindByHash", ctx, "token_hash").
		Return(&entity.RefreshToken{
			UserID:    userID,
			TokenHash: "token_hash",
			ExpiresAt: time.Now().Add(-time.Minute),
		}, nil)

	output, err := fx.service.RefreshToken(ctx, &usecase.RefreshTokenInput{RefreshToken: "refresh_token"})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAuthService_Logout_DeletesToken(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()

	fx.tokenService.On("ValidateRefreshToken", "refresh_token").
		Return(&service.Claims{UserID: uuid.New(), Type: "refresh"}, nil)
	fx.tokenService.On("HashToken", "refresh_token").Return("token_hash")
	fx.refreshTokenRepo.On("DeleteByHash", ctx, "token_hash").Return(nil)

	err := fx.service.Logout(ctx, &usecase.LogoutInput{RefreshToken: "refresh_token"})

	require.NoError(t, err)
}

func TestAuthService_UpdateProfile_AppliesOnlyProvidedFields(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	user := activeUser(entity.RoleUser)
	user.Phone = "111"

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).Return(nil)

	fx.txUserRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	fx.txUserRepo.On("Update", ctx, user).Return(nil)

	newName := "Renamed"
	updated, err := fx.service.UpdateProfile(ctx, &usecase.UpdateProfileInput{
		UserID: user.ID,
		Name:   &newName,
	})

	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "111", updated.Phone)
}
