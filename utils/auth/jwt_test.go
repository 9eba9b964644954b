package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "test",
	})
}

func TestTokenPair(t *testing.T) {
	m := newTestManager()

	pair, err := m.GenerateTokenPair(7, "c@example.edu", model.RoleCollege, 2)
	require.NoError(t, err)

	claims, err := m.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, model.RoleCollege, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, 2, claims.TokenVersion)
	assert.NotEmpty(t, claims.ID)

	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refresh, err := m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, refresh.ID)
}

func TestValidateToken_Rejects(t *testing.T) {
	m := newTestManager()

	sign := func(claims Claims, secret string) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	valid := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))}

	t.Run("unknown role", func(t *testing.T) {
		token := sign(Claims{UserID: 1, Role: model.Role("college-admin"), TokenType: TokenTypeAccess, RegisteredClaims: valid}, "test-secret")
		_, err := m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := sign(Claims{UserID: 1, Role: model.RoleStudent, RegisteredClaims: valid}, "other-secret")
		_, err := m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}
		token := sign(Claims{UserID: 1, Role: model.RoleStudent, RegisteredClaims: expired}, "test-secret")
		_, err := m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPasswords(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	hash, err := HashPassword("long enough 1")
	require.NoError(t, err)
	assert.NoError(t, VerifyPassword(hash, "long enough 1"))
	assert.ErrorIs(t, VerifyPassword(hash, "long enough 2"), ErrPasswordMismatch)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, HashCost, cost)

	assert.Error(t, VerifyPassword("not-a-hash", "long enough 1"))
}
