package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func TestInspect_StandardClaims(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	raw := sign(t, jwt.MapClaims{
		"sub":   "u-1",
		"email": "ada@example.com",
		"exp":   exp.Unix(),
	})

	info, ok := Inspect(raw)
	require.True(t, ok)
	assert.Equal(t, "u-1", info.Subject)
	assert.Equal(t, "ada@example.com", info.Label())
	assert.True(t, info.ExpiresAt.Equal(exp))
	assert.False(t, info.Expired(exp.Add(-time.Minute)))
	assert.True(t, info.Expired(exp.Add(time.Minute)))
}

func TestInspect_UserIDFallback(t *testing.T) {
	info, ok := Inspect(sign(t, jwt.MapClaims{"user_id": "42"}))
	require.True(t, ok)
	assert.Equal(t, "42", info.Label())
	assert.True(t, info.ExpiresAt.IsZero())
	assert.False(t, info.Expired(time.Now()))
}

func TestInspect_OpaqueToken(t *testing.T) {
	_, ok := Inspect("not-a-jwt")
	assert.False(t, ok)
}
