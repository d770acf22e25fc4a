package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("changeme123")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "changeme123", hash)

	// Salted: hashing the same password twice yields different hashes.
	again, err := HashPassword("changeme123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}

func TestHashPassword_TooShort(t *testing.T) {
	for _, password := range []string{"", "a", "1234567"} {
		hash, err := HashPassword(password)
		assert.ErrorIs(t, err, ErrPasswordTooShort)
		assert.Empty(t, hash)
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("changeme123")
	require.NoError(t, err)

	assert.True(t, CheckPassword("changeme123", hash))
	assert.False(t, CheckPassword("CHANGEME123", hash))
	assert.False(t, CheckPassword("wrong", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	assert.False(t, CheckPassword("changeme123", "not-a-bcrypt-hash"))
	assert.False(t, CheckPassword("changeme123", ""))
}
