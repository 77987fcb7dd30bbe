// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

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

// authService implements the AuthUsecase interface.
type authService struct {
	txManager        repository.TransactionManager
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	hasher           service.PasswordHasher
	tokenService     service.TokenService
	logger           *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	Hasher           service.PasswordHasher
	TokenService     service.TokenService
	Logger           *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:        params.TxManager,
		userRepo:         params.UserRepo,
		refreshTokenRepo: params.RefreshTokenRepo,
		hasher:           params.Hasher,
		tokenService:     params.TokenService,
		logger:           params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new customer account.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	// Hash outside the transaction (bcrypt is CPU-bound).
	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	newUser := &entity.User{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hashedPassword,
		Role:         entity.RoleUser,
		Status:       entity.RecordStatusActive,
		Phone:        input.Phone,
		Address:      input.Address,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		_, findErr := userRepo.FindByEmail(ctx, input.Email)
		if findErr == nil {
			return errors.Wrap(domainerrors.ErrEmailTaken, "registration failed")
		}
		if !errors.Is(findErr, repository.ErrUserNotFound) {
			return errors.Wrap(findErr, "failed to check existing email")
		}

		return userRepo.Create(ctx, newUser)
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", newUser.ID))

	return &usecase.RegisterOutput{User: newUser}, nil
}

// Login verifies credentials and issues an access/refresh token pair.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	loggedInUser, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	// Check password outside transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, loggedInUser.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrInvalidCredentials))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	if err := checkAccountUsable(loggedInUser); err != nil {
		srv.log(ctx).Warn("Login rejected", slog.Any("userID", loggedInUser.ID), slog.Any("error", err))

		return nil, err
	}

	accessToken, refreshTokenString, err := srv.tokenService.GenerateTokens(loggedInUser.ID, loggedInUser.Role)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	if err := srv.storeRefreshToken(ctx, loggedInUser.ID, refreshTokenString); err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to store refresh token during login")
	}
	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", loggedInUser.ID))

	return &usecase.LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         loggedInUser,
	}, nil
}

// RefreshToken issues a new access token from a valid refresh token.
// The refresh token itself remains unchanged.
func (srv *authService) RefreshToken(ctx context.Context, input *usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error) {
	srv.log(ctx).Info("Attempting to refresh access token")

	claims, err := srv.tokenService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "invalid refresh token")
	}

	var newAccessToken string

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()
		refreshRepo := repoFactory.NewRefreshTokenRepository()

		// The token must still exist in the database; logout deletes it.
		tokenHash := srv.tokenService.HashToken(input.RefreshToken)

		stored, err := refreshRepo.FindByHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "refresh token revoked")
			}

			return errors.Wrap(err, "failed to find refresh token")
		}
		if time.Now().After(stored.ExpiresAt) {
			return errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "refresh token expired")
		}

		user, err := userRepo.FindByID(ctx, claims.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to find user")
		}
		if err := checkAccountUsable(user); err != nil {
			return err
		}

		// Generate only a new access token; the refresh token stays valid
		// until it expires or the session is revoked.
		newAccessToken, _, err = srv.tokenService.GenerateTokens(user.ID, user.Role)
		if err != nil {
			return errors.Wrap(err, "failed to generate new access token")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to refresh access token", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute refresh token transaction")
	}

	return &usecase.RefreshTokenOutput{AccessToken: newAccessToken}, nil
}

// Logout invalidates a session by deleting its refresh token.
func (srv *authService) Logout(ctx context.Context, input *usecase.LogoutInput) error {
	srv.log(ctx).Info("Attempting to log out")

	if _, err := srv.tokenService.ValidateRefreshToken(input.RefreshToken); err != nil {
		// Even if the token is invalid, proceed to delete it from the database.
		srv.log(ctx).Warn("Logout with invalid token", slog.Any("error", err))
	}

	tokenHash := srv.tokenService.HashToken(input.RefreshToken)

	if err := srv.refreshTokenRepo.DeleteByHash(ctx, tokenHash); err != nil {
		srv.log(ctx).Error("Failed to delete refresh token", slog.Any("error", err))

		return errors.Wrap(err, "failed to delete refresh token")
	}
	srv.log(ctx).Info("Successfully logged out")

	return nil
}

// GetProfile returns the account of the authenticated caller.
func (srv *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "profile lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return user, nil
}

// UpdateProfile applies the caller's self-service profile changes.
func (srv *authService) UpdateProfile(ctx context.Context, input *usecase.UpdateProfileInput) (*entity.User, error) {
	srv.log(ctx).Debug("Updating profile", slog.Any("userID", input.UserID))

	var updated *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		user, err := userRepo.FindByID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "profile update failed")
			}

			return errors.Wrap(err, "failed to find user by id")
		}

		if input.Name != nil {
			user.Name = *input.Name
		}
		if input.Phone != nil {
			user.Phone = *input.Phone
		}
		if input.Address != nil {
			user.Address = *input.Address
		}

		if err := userRepo.Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to update user")
		}
		updated = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Profile update failed", slog.Any("userID", input.UserID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute profile update transaction")
	}

	return updated, nil
}

func (srv *authService) storeRefreshToken(ctx context.Context, userID uuid.UUID, refreshTokenString string) error {
	newRefreshToken := &entity.RefreshToken{
		UserID:    userID,
		TokenHash: srv.tokenService.HashToken(refreshTokenString),
		ExpiresAt: time.Now().Add(srv.tokenService.GetRefreshTokenDuration()),
	}

	if err := srv.refreshTokenRepo.Create(ctx, newRefreshToken); err != nil {
		return errors.Wrap(err, "failed to store refresh token")
	}

	return nil
}

// checkAccountUsable rejects disabled and soft-deleted accounts.
func checkAccountUsable(user *entity.User) error {
	switch user.Status {
	case entity.RecordStatusActive:
		return nil
	case entity.RecordStatusDisabled:
		return errors.Wrap(domainerrors.ErrAccountDisabled, "account disabled")
	default:
		return errors.Wrap(domainerrors.ErrInvalidCredentials, "account unavailable")
	}
}
