package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServerCmdValidate(t *testing.T) {
	validSecret := strings.Repeat("s", 32)

	t.Run("valid config", func(t *testing.T) {
		cmd := &ServerCmd{TokenSecret: validSecret, StoreType: "memory"}
		require.NoError(t, cmd.Validate())
	})

	t.Run("missing secret", func(t *testing.T) {
		cmd := &ServerCmd{StoreType: "memory"}
		err := cmd.Validate()
		require.ErrorContains(t, err, "token signing secret is required")
	})

	t.Run("short secret", func(t *testing.T) {
		cmd := &ServerCmd{TokenSecret: "too-short", StoreType: "memory"}
		err := cmd.Validate()
		require.ErrorContains(t, err, "at least 32 bytes")
	})

	t.Run("postgres without connection string", func(t *testing.T) {
		cmd := &ServerCmd{TokenSecret: validSecret, StoreType: "postgres"}
		err := cmd.Validate()
		require.ErrorContains(t, err, "connection string is required")
	})
}
