package jwt

import (
	"testing"
	"time"

	"clinic-appointment-service/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Minute})
	userID := uuid.New()

	token, tokenID, err := svc.GenerateAccessToken(userID, "admin@clinic.test", 1)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, 1, claims.RoleID)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, tokenID, claims.TokenID)
}

func TestJWTService_RejectsForeignAndExpiredTokens(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Minute})
	other := NewJWTService(config.JWTConfig{Secret: "other-secret", AccessExpiry: time.Minute})
	expired := NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: -time.Minute})

	foreign, _, err := other.GenerateAccessToken(uuid.New(), "x@clinic.test", 1)
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.Error(t, err)

	stale, _, err := expired.GenerateAccessToken(uuid.New(), "x@clinic.test", 1)
	require.NoError(t, err)
	_, err = svc.ValidateToken(stale)
	assert.Error(t, err)
}
