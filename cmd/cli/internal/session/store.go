package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Sentinel errors
var (
	// ErrTokenNotFound is returned when no token has been saved yet.
	ErrTokenNotFound = errors.New("token not found")
)

// savedToken is the on-disk token slot.
type savedToken struct {
	Version   int       `json:"version"`
	Token     string    `json:"token"`
	UpdatedAt time.Time `json:"updated_at"`
	ServerURL string    `json:"server_url,omitempty"`
}

// Store keeps the session token on the local filesystem. There is a single
// slot: saving a token replaces whatever was there before.
type Store struct {
	baseDir string
}

// NewStore creates a token store.
// If baseDir is empty, uses ~/.nippo/
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".nippo")
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	log.Debug().Str("baseDir", baseDir).Msg("session store initialized")

	return &Store{baseDir: baseDir}, nil
}

func (s *Store) tokenPath() string {
	return filepath.Join(s.baseDir, "token.json")
}

// Save writes the token atomically, replacing any previous one.
func (s *Store) Save(token, serverURL string) error {
	data, err := json.MarshalIndent(savedToken{
		Version:   1,
		Token:     token,
		UpdatedAt: time.Now().UTC(),
		ServerURL: serverURL,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	tokenPath := s.tokenPath()
	tempPath := tokenPath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}

	if err := os.Rename(tempPath, tokenPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// Load reads the saved token. Returns ErrTokenNotFound when the slot is
// empty, and treats a corrupt file the same way.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.tokenPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	var saved savedToken
	if err := json.Unmarshal(data, &saved); err != nil || saved.Token == "" {
		log.Debug().Str("path", s.tokenPath()).Msg("token file unreadable, treating as absent")
		return "", ErrTokenNotFound
	}

	return saved.Token, nil
}

// Clear removes the saved token. Clearing an empty slot is a no-op.
func (s *Store) Clear() error {
	if err := os.Remove(s.tokenPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}
