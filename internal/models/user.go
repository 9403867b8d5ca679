package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
// The Password field holds a bcrypt digest for accounts created through
// registration. Records seeded before hashing was introduced may still hold a
// plaintext password; those are rotated to a digest on first successful login.
type User struct {
	ID       uuid.UUID // UUIDv7, store-assigned
	Username string    // unique, non-empty
	Password string    // bcrypt digest, or legacy plaintext

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicUser is the identity shape returned to clients. It never carries the
// password field.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Public returns the client-facing view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID.String(),
		Username: u.Username,
	}
}
