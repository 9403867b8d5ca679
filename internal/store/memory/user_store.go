package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tmaekawa/nippo/internal/models"
	"github.com/tmaekawa/nippo/internal/store"
)

// UserStore implements store.UserStore using in-memory storage.
// Data is lost on restart; intended for development and tests.
type UserStore struct {
	mu sync.RWMutex

	users           map[uuid.UUID]*models.User // user_id -> User
	usersByUsername map[string]*models.User    // username -> User
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users:           make(map[uuid.UUID]*models.User),
		usersByUsername: make(map[string]*models.User),
	}
}

// Create creates a new user in memory.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return store.ErrUserAlreadyExists
	}
	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrUserAlreadyExists
	}

	// Clone to avoid external modifications
	clone := *user
	s.users[user.ID] = &clone
	s.usersByUsername[user.Username] = &clone

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

// GetByUsername retrieves a user by username.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

// UpdatePassword replaces the stored password representation.
func (s *UserStore) UpdatePassword(ctx context.Context, userID uuid.UUID, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[userID]
	if !exists {
		return store.ErrUserNotFound
	}

	user.Password = password
	user.UpdatedAt = time.Now()

	return nil
}
