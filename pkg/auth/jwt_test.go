package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func baseClaims() Claims {
	return Claims{
		PlayerID: "player-1",
		Email:    "alice@example.com",
		Roles:    []string{"player"},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "scandex",
			Audience:  jwt.ClaimStrings{"scandex-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newTestValidator(t *testing.T) *JWTValidator {
	t.Helper()
	v, err := NewJWTValidator(JWTConfig{
		SecretKey: testSecret,
		Issuer:    "scandex",
		Audience:  []string{"scandex-api"},
	})
	require.NoError(t, err)
	return v
}

func TestValidateToken(t *testing.T) {
	v := newTestValidator(t)
	token := signToken(t, testSecret, baseClaims())

	claims, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "player-1", claims.PlayerID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Contains(t, claims.Roles, "player")
}

func TestValidateToken_StripsBearerPrefix(t *testing.T) {
	v := newTestValidator(t)
	token := signToken(t, testSecret, baseClaims())

	claims, err := v.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "player-1", claims.PlayerID)
}

func TestValidateToken_Expired(t *testing.T) {
	v := newTestValidator(t)
	claims := baseClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	token := signToken(t, testSecret, claims)

	_, err := v.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	v := newTestValidator(t)
	token := signToken(t, "other-secret", baseClaims())

	_, err := v.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	v := newTestValidator(t)
	claims := baseClaims()
	claims.Issuer = "someone-else"
	token := signToken(t, testSecret, claims)

	_, err := v.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestValidateToken_MissingSubject(t *testing.T) {
	v := newTestValidator(t)
	claims := baseClaims()
	claims.PlayerID = ""
	token := signToken(t, testSecret, claims)

	_, err := v.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestValidateToken_Missing(t *testing.T) {
	v := newTestValidator(t)

	_, err := v.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}
