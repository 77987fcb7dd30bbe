package service

import (
	"time"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// Claims carries the identity extracted from a validated token.
type Claims struct {
	UserID uuid.UUID
	Role   entity.Role // Present on access tokens only.
	Type   string      // "access" or "refresh".
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateTokens creates a new access token and refresh token for a given user.
	GenerateTokens(userID uuid.UUID, role entity.Role) (accessToken string, refreshToken string, err error)

	// ValidateAccessToken checks an access token and returns its claims.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// ValidateRefreshToken checks a refresh token and returns its claims.
	ValidateRefreshToken(tokenString string) (*Claims, error)

	// HashToken returns the hash under which a raw refresh token is persisted.
	HashToken(raw string) string

	// GetRefreshTokenDuration returns the configured duration for refresh tokens.
	GetRefreshTokenDuration() time.Duration
}
