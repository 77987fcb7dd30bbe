package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/config"
	"storefront/internal/domain/entity"
)

func newTestJWTService(t *testing.T) *jwtService {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Access = "test-access-secret"
	cfg.SecretKey.Refresh = "test-refresh-secret"
	cfg.Auth = &config.AuthConfig{
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	}

	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	return svc.(*jwtService)
}

func TestNewJWTServiceRequiresSecrets(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(&config.Config{})
	assert.Error(t, err)
}

func TestGenerateAndValidateTokens(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	userID := uuid.New()

	access, refresh, err := svc.GenerateTokens(userID, entity.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	accessClaims, err := svc.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, userID, accessClaims.UserID)
	assert.Equal(t, entity.RoleAdmin, accessClaims.Role)
	assert.Equal(t, "access", accessClaims.Type)

	refreshClaims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, refreshClaims.UserID)
	assert.Empty(t, refreshClaims.Role)
}

func TestValidateRejectsWrongTokenType(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)

	access, refresh, err := svc.GenerateTokens(uuid.New(), entity.RoleUser)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(refresh)
	assert.Error(t, err)

	_, err = svc.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)

	access, _, err := svc.GenerateTokens(uuid.New(), entity.RoleUser)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(access + "x")
	assert.Error(t, err)
}

func TestHashTokenIsStableAndOpaque(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)

	hash := svc.HashToken("raw-token")
	assert.Equal(t, svc.HashToken("raw-token"), hash)
	assert.NotEqual(t, svc.HashToken("other-token"), hash)
	assert.Len(t, hash, 64)
}

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Auth: &config.AuthConfig{BcryptCost: 4}}
	hasher := NewBcryptHasher(cfg)

	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, hasher.Check("s3cret", hash))
	assert.False(t, hasher.Check("wrong", hash))
}
