package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cuongbtq/petstore/shared/apperr"
)

func TestHasher(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	assert.True(t, h.Verify("secret", hash))
	assert.False(t, h.Verify("wrong", hash))
	assert.False(t, h.Verify("secret", "not-a-hash"))
}

func TestHasher_PasswordTooLong(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordBytes+8))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}

func TestNewHasher_InvalidCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(99).cost)
}

func TestTokenService_RoundTrip(t *testing.T) {
	ts := NewTokenService("test-secret", "petstore-auth", 30*time.Minute)

	token, err := ts.GenerateAccessToken(7, "a@x.com")
	require.NoError(t, err)

	claims, err := ts.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "7", claims.Subject)
}

func TestTokenService_Rejects(t *testing.T) {
	ts := NewTokenService("test-secret", "petstore-auth", time.Minute)
	token, err := ts.GenerateAccessToken(1, "a@x.com")
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		_, err := NewTokenService("other", "petstore-auth", time.Minute).ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		_, err := NewTokenService("test-secret", "someone-else", time.Minute).ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokenService("test-secret", "petstore-auth", time.Minute)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ts.ValidateToken("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExtractBearer(t *testing.T) {
	token, err := ExtractBearer("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	token, err = ExtractBearer("bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc"} {
		_, err := ExtractBearer(h)
		assert.ErrorIs(t, err, ErrMissingToken, h)
	}
}
