//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tmaekawa/nippo/internal/models"
	"github.com/tmaekawa/nippo/internal/store"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) (*UserStore, *ReportStore, func()) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := NewPool(ctx, &PoolConfig{ConnString: connString})
	require.NoError(t, err)

	require.NoError(t, RunMigrations(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return NewUserStore(pool), NewReportStore(pool), cleanup
}

func TestIntegration_UserLifecycle(t *testing.T) {
	ctx := context.Background()
	users, _, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.Must(uuid.NewV7()),
		Username:  "alice",
		Password:  "$2a$10$somedigest",
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.Run("create user", func(t *testing.T) {
		require.NoError(t, users.Create(ctx, user))
	})

	t.Run("duplicate username", func(t *testing.T) {
		dup := *user
		dup.ID = uuid.Must(uuid.NewV7())
		err := users.Create(ctx, &dup)
		require.ErrorIs(t, err, store.ErrUserAlreadyExists)
	})

	t.Run("get by username", func(t *testing.T) {
		got, err := users.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	})

	t.Run("rotate password", func(t *testing.T) {
		require.NoError(t, users.UpdatePassword(ctx, user.ID, "$2a$10$rotated"))

		got, err := users.Get(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, "$2a$10$rotated", got.Password)
	})
}

func TestIntegration_ReportLifecycle(t *testing.T) {
	ctx := context.Background()
	users, reports, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	now := time.Now().UTC()
	author := &models.User{
		ID:        uuid.Must(uuid.NewV7()),
		Username:  "alice",
		Password:  "$2a$10$somedigest",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, users.Create(ctx, author))

	report := &models.Report{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    author.ID,
		UserName:  author.Username,
		Title:     "standup notes",
		Content:   "did things",
		Date:      now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.Run("create and get", func(t *testing.T) {
		require.NoError(t, reports.Create(ctx, report))

		got, err := reports.Get(ctx, report.ID)
		require.NoError(t, err)
		require.Equal(t, "standup notes", got.Title)
	})

	t.Run("list filtered by author", func(t *testing.T) {
		list, err := reports.List(ctx, store.ListReportsOptions{Author: "alice"})
		require.NoError(t, err)
		require.Len(t, list, 1)

		list, err = reports.List(ctx, store.ListReportsOptions{Author: "bob"})
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("update", func(t *testing.T) {
		report.Title = "revised"
		require.NoError(t, reports.Update(ctx, report))

		got, err := reports.Get(ctx, report.ID)
		require.NoError(t, err)
		require.Equal(t, "revised", got.Title)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, reports.Delete(ctx, report.ID))

		_, err := reports.Get(ctx, report.ID)
		require.ErrorIs(t, err, store.ErrReportNotFound)

		err = reports.Delete(ctx, report.ID)
		require.ErrorIs(t, err, store.ErrReportNotFound)
	})
}
