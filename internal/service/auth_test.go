package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateAccessToken(t *testing.T) {
	s := NewAuthService(nil, nil, "test-secret")

	token := signTestToken(t, "test-secret", jwt.MapClaims{
		"sub":   "u1",
		"email": "alice@example.com",
		"exp":   time.Now().Add(time.Minute).Unix(),
	})

	userID, email, err := s.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "u1", userID)
	require.Equal(t, "alice@example.com", email)
}

func TestValidateAccessTokenRejectsExpired(t *testing.T) {
	s := NewAuthService(nil, nil, "test-secret")

	token := signTestToken(t, "test-secret", jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})

	_, _, err := s.ValidateAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessTokenRejectsWrongSignature(t *testing.T) {
	s := NewAuthService(nil, nil, "test-secret")

	token := signTestToken(t, "other-secret", jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Minute).Unix(),
	})

	_, _, err := s.ValidateAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessTokenRejectsGarbage(t *testing.T) {
	s := NewAuthService(nil, nil, "test-secret")

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, _, err := s.ValidateAccessToken(tok)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestHashTokenIsDeterministicAndOpaque(t *testing.T) {
	h1 := hashToken("refresh-token-1")
	h2 := hashToken("refresh-token-1")
	h3 := hashToken("refresh-token-2")

	require.Equal(t, h1, h2)
	require.NotEqual(t, h1, h3)
	require.NotContains(t, h1, "refresh-token")
	require.Len(t, h1, 64)
}
