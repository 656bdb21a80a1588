package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService("test-secret-key-for-testing-purposes", 15*time.Minute, 7*24*time.Hour)
}

func TestJWTService_AccessToken_RoundTrip(t *testing.T) {
	service := newTestJWTService()

	token, expiresAt, err := service.GenerateAccessToken("user-456", "test@example.com", RoleAdmin)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := service.ValidateAccessToken(token)

	require.NoError(t, err)
	assert.Equal(t, "user-456", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "user-456", claims.Subject)
}

func TestJWTService_ValidateAccessToken_Expired(t *testing.T) {
	service := NewJWTService("test-secret", time.Millisecond, time.Hour)

	token, _, err := service.GenerateAccessToken("user-123", "test@example.com", RoleUser)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	claims, err := service.ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateAccessToken_Invalid(t *testing.T) {
	service := newTestJWTService()

	for _, token := range []string{"", "invalid", "a.b.c"} {
		claims, err := service.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	}
}

func TestJWTService_ValidateAccessToken_WrongSignature(t *testing.T) {
	token, _, err := NewJWTService("secret-1", time.Minute, time.Hour).GenerateAccessToken("u", "e", RoleUser)
	require.NoError(t, err)

	_, err = NewJWTService("secret-2", time.Minute, time.Hour).ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateAccessToken_WrongAlgorithm(t *testing.T) {
	claims := Claims{
		UserID:    "user-123",
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RefreshToken_RoundTrip(t *testing.T) {
	service := newTestJWTService()

	token, tokenID, expiresAt, err := service.GenerateRefreshToken("user-123")
	require.NoError(t, err)
	assert.NotEmpty(t, tokenID)
	assert.True(t, expiresAt.After(time.Now().Add(6*24*time.Hour)))

	claims, err := service.ValidateRefreshToken(token)

	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, tokenID, claims.ID)
}

func TestJWTService_TokenTypesAreNotInterchangeable(t *testing.T) {
	service := newTestJWTService()

	refreshToken, _, _, err := service.GenerateRefreshToken("user-123")
	require.NoError(t, err)
	accessToken, _, err := service.GenerateAccessToken("user-123", "a@b.c", RoleUser)
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(refreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = service.ValidateRefreshToken(accessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Expiry(t *testing.T) {
	service := NewJWTService("secret", 30*time.Minute, 14*24*time.Hour)

	assert.Equal(t, 30*time.Minute, service.AccessTokenExpiry())
	assert.Equal(t, 14*24*time.Hour, service.RefreshTokenExpiry())
}
