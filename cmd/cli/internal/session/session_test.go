package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tmaekawa/nippo/internal/api"
)

func newTestManager(t *testing.T) (*Manager, *Store) {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return NewManager(store), store
}

func TestManagerRestore(t *testing.T) {
	t.Run("starts uninitialized", func(t *testing.T) {
		manager, _ := newTestManager(t)
		require.Equal(t, StateUninitialized, manager.State())
	})

	t.Run("empty slot settles unauthenticated", func(t *testing.T) {
		manager, _ := newTestManager(t)

		require.NoError(t, manager.Restore())
		require.Equal(t, StateUnauthenticated, manager.State())
		require.Empty(t, manager.Token())
		require.Nil(t, manager.Profile())
		require.NoError(t, manager.Err())
	})

	t.Run("valid token settles authenticated", func(t *testing.T) {
		manager, store := newTestManager(t)
		token := issueToken(t, time.Hour, "alice")
		require.NoError(t, store.Save(token, ""))

		require.NoError(t, manager.Restore())
		require.Equal(t, StateAuthenticated, manager.State())
		require.Equal(t, token, manager.Token())
		require.Equal(t, "alice", manager.Profile().Username)
	})

	t.Run("expired token settles unauthenticated and clears the slot", func(t *testing.T) {
		manager, store := newTestManager(t)
		token := issueToken(t, time.Nanosecond, "alice")
		require.NoError(t, store.Save(token, ""))
		time.Sleep(10 * time.Millisecond)

		require.NoError(t, manager.Restore())
		require.Equal(t, StateUnauthenticated, manager.State())
		require.ErrorContains(t, manager.Err(), "session expired")

		_, err := store.Load()
		require.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("malformed token settles unauthenticated and clears the slot", func(t *testing.T) {
		manager, store := newTestManager(t)
		require.NoError(t, store.Save("garbage", ""))

		require.NoError(t, manager.Restore())
		require.Equal(t, StateUnauthenticated, manager.State())
		require.ErrorContains(t, manager.Err(), "invalid credentials")

		_, err := store.Load()
		require.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("login after a failed restore wipes the recorded reason", func(t *testing.T) {
		manager, store := newTestManager(t)
		require.NoError(t, store.Save("garbage", ""))
		require.NoError(t, manager.Restore())
		require.Error(t, manager.Err())

		require.NoError(t, manager.Login(issueToken(t, time.Hour, "alice"), ""))
		require.NoError(t, manager.Err())
	})
}

func TestManagerLoginLogout(t *testing.T) {
	t.Run("login persists the token", func(t *testing.T) {
		manager, store := newTestManager(t)
		token := issueToken(t, time.Hour, "alice")

		require.NoError(t, manager.Login(token, "http://localhost:8080"))
		require.Equal(t, StateAuthenticated, manager.State())
		require.Equal(t, "alice", manager.Profile().Username)

		saved, err := store.Load()
		require.NoError(t, err)
		require.Equal(t, token, saved)
	})

	t.Run("login rejects an unusable token", func(t *testing.T) {
		manager, store := newTestManager(t)

		require.Error(t, manager.Login("garbage", ""))
		require.NotEqual(t, StateAuthenticated, manager.State())

		_, err := store.Load()
		require.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("logout clears everything and is idempotent", func(t *testing.T) {
		manager, store := newTestManager(t)
		require.NoError(t, manager.Login(issueToken(t, time.Hour, "alice"), ""))

		require.NoError(t, manager.Logout())
		require.Equal(t, StateUnauthenticated, manager.State())
		require.Empty(t, manager.Token())
		require.Nil(t, manager.Profile())

		_, err := store.Load()
		require.ErrorIs(t, err, ErrTokenNotFound)

		require.NoError(t, manager.Logout())
		require.Equal(t, StateUnauthenticated, manager.State())
	})
}

type fakeAuthenticator struct {
	result *api.LoginResult
	err    error
}

func (f *fakeAuthenticator) Login(ctx context.Context, username, password string) (*api.LoginResult, error) {
	return f.result, f.err
}

func TestManagerAuthenticate(t *testing.T) {
	t.Run("success persists and authenticates", func(t *testing.T) {
		manager, store := newTestManager(t)
		token := issueToken(t, time.Hour, "alice")
		client := &fakeAuthenticator{result: &api.LoginResult{Token: token}}

		require.True(t, manager.Authenticate(t.Context(), client, "alice", "secret1", ""))
		require.Equal(t, StateAuthenticated, manager.State())
		require.NoError(t, manager.Err())

		saved, err := store.Load()
		require.NoError(t, err)
		require.Equal(t, token, saved)
	})

	t.Run("rejection records the server message, state untouched", func(t *testing.T) {
		manager, store := newTestManager(t)
		require.NoError(t, manager.Restore())
		client := &fakeAuthenticator{err: &api.APIError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Invalid credentials",
		}}

		require.False(t, manager.Authenticate(t.Context(), client, "alice", "wrong", ""))
		require.Equal(t, StateUnauthenticated, manager.State())
		require.Nil(t, manager.Profile())
		require.EqualError(t, manager.Err(), "Invalid credentials")

		_, err := store.Load()
		require.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("transport failure records a generic error", func(t *testing.T) {
		manager, _ := newTestManager(t)
		client := &fakeAuthenticator{err: errors.New("dial tcp: connection refused")}

		require.False(t, manager.Authenticate(t.Context(), client, "alice", "secret1", ""))
		require.ErrorContains(t, manager.Err(), "could not reach the server")
		require.NotContains(t, manager.Err().Error(), "dial tcp")
	})
}

func TestManagerError(t *testing.T) {
	manager, _ := newTestManager(t)
	require.NoError(t, manager.Restore())

	authErr := errors.New("invalid credentials")
	manager.SetError(authErr)
	require.Equal(t, authErr, manager.Err())
	require.Equal(t, StateUnauthenticated, manager.State())

	manager.ClearError()
	require.NoError(t, manager.Err())

	// Login after a failure wipes any stale error.
	manager.SetError(authErr)
	require.NoError(t, manager.Login(issueToken(t, time.Hour, "alice"), ""))
	require.NoError(t, manager.Err())
}
