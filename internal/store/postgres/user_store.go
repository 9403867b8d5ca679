package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/tmaekawa/nippo/internal/models"
	"github.com/tmaekawa/nippo/internal/store"
)

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed user store.
// It shares the connection pool with other stores.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Create creates a new user in the database.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (user_id, username, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("Created user")

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT user_id, username, password, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`

	return s.scanUser(s.pool.QueryRow(ctx, query, userID))
}

// GetByUsername retrieves a user by username.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT user_id, username, password, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	return s.scanUser(s.pool.QueryRow(ctx, query, username))
}

// UpdatePassword replaces the stored password representation.
func (s *UserStore) UpdatePassword(ctx context.Context, userID uuid.UUID, password string) error {
	query := `
		UPDATE users
		SET password = $2, updated_at = $3
		WHERE user_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, userID, password, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update password: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}

	log.Debug().Str("user_id", userID.String()).Msg("Updated stored password")

	return nil
}

func (s *UserStore) scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Password,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", mapPostgresError(err))
	}

	return &u, nil
}
