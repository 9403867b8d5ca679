package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestVerifyPassword(t *testing.T) {
	digest, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.DefaultCost)
	require.NoError(t, err)

	t.Run("bcrypt digest match", func(t *testing.T) {
		ok, scheme := VerifyPassword("secret1", string(digest))
		require.True(t, ok)
		require.Equal(t, SchemeBcrypt, scheme)
	})

	t.Run("bcrypt digest mismatch", func(t *testing.T) {
		ok, _ := VerifyPassword("wrong", string(digest))
		require.False(t, ok)
	})

	t.Run("legacy plaintext match", func(t *testing.T) {
		ok, scheme := VerifyPassword("secret1", "secret1")
		require.True(t, ok)
		require.Equal(t, SchemePlaintext, scheme)
	})

	t.Run("malformed digest is a failure, not an error", func(t *testing.T) {
		ok, _ := VerifyPassword("secret1", "not-a-digest")
		require.False(t, ok)
	})

	t.Run("exact equality holds for empty values", func(t *testing.T) {
		ok, scheme := VerifyPassword("", "")
		require.True(t, ok)
		require.Equal(t, SchemePlaintext, scheme)
	})

	t.Run("empty submitted against a digest fails", func(t *testing.T) {
		ok, _ := VerifyPassword("", string(digest))
		require.False(t, ok)
	})
}

func TestHashPassword(t *testing.T) {
	digest, err := HashPassword("secret1")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", digest)

	ok, scheme := VerifyPassword("secret1", digest)
	require.True(t, ok)
	require.Equal(t, SchemeBcrypt, scheme)
}
