package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("explicit date", func(t *testing.T) {
		date, err := parseDate("2026-03-14")
		require.NoError(t, err)
		require.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), date)
	})

	t.Run("empty defaults to today", func(t *testing.T) {
		date, err := parseDate("")
		require.NoError(t, err)

		now := time.Now()
		require.Equal(t, now.Year(), date.Year())
		require.Equal(t, now.Month(), date.Month())
		require.Equal(t, now.Day(), date.Day())
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := parseDate("14/03/2026")
		require.Error(t, err)
	})
}

func TestResolveServer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Run("flag wins", func(t *testing.T) {
		server, err := resolveServer("http://example.test:9000")
		require.NoError(t, err)
		require.Equal(t, "http://example.test:9000", server)
	})

	t.Run("config file", func(t *testing.T) {
		require.NoError(t, saveConfig(&Config{Server: "http://configured:8080"}))

		server, err := resolveServer("")
		require.NoError(t, err)
		require.Equal(t, "http://configured:8080", server)
	})
}

func TestResolveServerDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	server, err := resolveServer("")
	require.NoError(t, err)
	require.Equal(t, DefaultServer, server)
}
