package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tmaekawa/nippo/internal/models"
	"github.com/tmaekawa/nippo/internal/store"
)

func newUser(t *testing.T, username string) *models.User {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)

	now := time.Now()
	return &models.User{
		ID:        id,
		Username:  username,
		Password:  "$2a$10$fakefakefakefakefakefakefakefakefakefakefakefakefakef",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryUserStore_Create(t *testing.T) {
	t.Run("create new user", func(t *testing.T) {
		st := NewUserStore()
		err := st.Create(context.Background(), newUser(t, "alice"))
		require.NoError(t, err)
	})

	t.Run("duplicate username returns error", func(t *testing.T) {
		st := NewUserStore()
		ctx := context.Background()

		require.NoError(t, st.Create(ctx, newUser(t, "alice")))

		err := st.Create(ctx, newUser(t, "alice"))
		require.ErrorIs(t, err, store.ErrUserAlreadyExists)
	})
}

func TestMemoryUserStore_Get(t *testing.T) {
	st := NewUserStore()
	ctx := context.Background()

	user := newUser(t, "alice")
	require.NoError(t, st.Create(ctx, user))

	t.Run("by id", func(t *testing.T) {
		got, err := st.Get(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, "alice", got.Username)
	})

	t.Run("by username", func(t *testing.T) {
		got, err := st.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := st.Get(ctx, uuid.Must(uuid.NewV7()))
		require.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := st.GetByUsername(ctx, "bob")
		require.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestMemoryUserStore_UpdatePassword(t *testing.T) {
	st := NewUserStore()
	ctx := context.Background()

	user := newUser(t, "alice")
	user.Password = "plaintext-legacy"
	require.NoError(t, st.Create(ctx, user))

	err := st.UpdatePassword(ctx, user.ID, "$2a$10$rotateddigest")
	require.NoError(t, err)

	got, err := st.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "$2a$10$rotateddigest", got.Password)

	t.Run("unknown user", func(t *testing.T) {
		err := st.UpdatePassword(ctx, uuid.Must(uuid.NewV7()), "x")
		require.ErrorIs(t, err, store.ErrUserNotFound)
	})
}
