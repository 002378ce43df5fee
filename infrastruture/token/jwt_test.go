package token

import (
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func secret(t *testing.T) string {
	t.Helper()
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	require.NoError(t, err)
	return base64.URLEncoding.EncodeToString(bytes)
}

func TestJwtService(t *testing.T) {
	secretKey := secret(t)
	svc := NewJwtService(secretKey, "beppo-laughs")

	t.Run("Generate and Decode valid token", func(t *testing.T) {
		token, err := svc.Generate(map[string]interface{}{"session_id": "abc"}, 5*time.Minute)
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := svc.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, "abc", claims["session_id"])
		assert.Equal(t, "beppo-laughs", claims["iss"])
	})

	t.Run("Decode invalid token", func(t *testing.T) {
		_, err := svc.Decode("invalidTokenString")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Decode expired token", func(t *testing.T) {
		token, err := svc.Generate(map[string]interface{}{"session_id": "abc"}, -time.Minute)
		require.NoError(t, err)

		_, err = svc.Decode(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Reserved claims cannot be overridden", func(t *testing.T) {
		token, err := svc.Generate(map[string]interface{}{"iss": "mallory", "exp": 1}, time.Minute)
		require.NoError(t, err)

		claims, err := svc.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, "beppo-laughs", claims["iss"])
	})

	t.Run("Token from another issuer", func(t *testing.T) {
		other := NewJwtService(secretKey, "someone-else")
		token, err := other.Generate(map[string]interface{}{}, time.Minute)
		require.NoError(t, err)

		_, err = svc.Decode(token)
		assert.ErrorIs(t, err, ErrUnexpectedIss)
	})

	t.Run("Token signed with another secret", func(t *testing.T) {
		other := NewJwtService(secret(t), "beppo-laughs")
		token, err := other.Generate(map[string]interface{}{}, time.Minute)
		require.NoError(t, err)

		_, err = svc.Decode(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
