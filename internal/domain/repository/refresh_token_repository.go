package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrRefreshTokenNotFound is returned when no stored token matches the hash.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository persists refresh token hashes for session revocation.
type RefreshTokenRepository interface {
	// Create persists a new refresh token record.
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindByHash retrieves a token record by its SHA-256 hash.
	FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// DeleteByHash removes a single token record, revoking that session.
	DeleteByHash(ctx context.Context, tokenHash string) error

	// DeleteByUserID removes all token records of a user, revoking every session.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
