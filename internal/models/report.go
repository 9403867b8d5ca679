package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is a dated daily report written by a user.
// UserID and UserName are denormalized from the author's verified identity at
// creation time; they are never taken from the request body.
type Report struct {
	ID       uuid.UUID `json:"id"` // UUIDv7, store-assigned
	UserID   uuid.UUID `json:"userId"`
	UserName string    `json:"userName"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Date     time.Time `json:"date"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
