package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateToken(t *testing.T) {
	service := NewJWTService("test-secret-key", "test-issuer", time.Hour)

	token, err := service.GenerateToken(1, "test@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestJWTService_ValidateToken(t *testing.T) {
	service := NewJWTService("test-secret-key", "test-issuer", time.Hour)

	token, err := service.GenerateToken(42, "test@example.com")
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, "test-issuer", claims.Issuer)
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	service := NewJWTService("test-secret-key", "test-issuer", time.Hour)
	other := NewJWTService("different-secret", "test-issuer", time.Hour)

	token, err := service.GenerateToken(1, "test@example.com")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	service := NewJWTService("test-secret-key", "test-issuer", -time.Minute)

	token, err := service.GenerateToken(1, "test@example.com")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}

func TestNewJWTService_EmptySecretPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewJWTService("", "issuer", time.Hour)
	})
}
