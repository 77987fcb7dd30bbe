// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// RefreshTokenInput carries the raw refresh token presented by a client.
type RefreshTokenInput struct {
	RefreshToken string
}

// LogoutInput carries the refresh token of the session being revoked.
type LogoutInput struct {
	RefreshToken string
}

// UpdateProfileInput defines the self-service profile fields.
type UpdateProfileInput struct {
	UserID  uuid.UUID
	Name    *string
	Phone   *string
	Address *string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's basic information.
type RegisterOutput struct {
	User *entity.User
}

// LoginOutput returns the generated tokens after a successful login.
type LoginOutput struct {
	AccessToken  string
	RefreshToken string
	User         *entity.User
}

// RefreshTokenOutput returns the newly issued access token.
type RefreshTokenOutput struct {
	AccessToken string
}

// AuthUsecase defines the interface for authentication and self-service
// account operations. This is the contract the delivery layer depends on.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	RefreshToken(ctx context.Context, input *RefreshTokenInput) (*RefreshTokenOutput, error)
	Logout(ctx context.Context, input *LogoutInput) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.User, error)
}
