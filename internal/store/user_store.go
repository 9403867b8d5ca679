package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tmaekawa/nippo/internal/models"
)

// Errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserStore manages user credential records.
// Records are created by registration and updated only for password rotation;
// deletion is an administrative action outside this interface.
type UserStore interface {
	// Create creates a new user. Returns ErrUserAlreadyExists if the
	// username is taken.
	Create(ctx context.Context, user *models.User) error

	// Get retrieves a user by ID.
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdatePassword replaces the stored password representation.
	// Used to rotate legacy plaintext records to a digest on login.
	UpdatePassword(ctx context.Context, userID uuid.UUID, password string) error
}
