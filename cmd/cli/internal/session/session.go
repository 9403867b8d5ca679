package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmaekawa/nippo/internal/api"
)

// User-facing reasons a restored session settled unauthenticated.
var (
	errSessionExpired = errors.New("session expired, please log in again")
	errSessionInvalid = errors.New("invalid credentials, please log in again")
)

// State is the lifecycle phase of the local session.
type State int

const (
	// StateUninitialized means Restore has not run yet.
	StateUninitialized State = iota
	// StateLoading means a restore is in progress.
	StateLoading
	// StateAuthenticated means a usable token is held.
	StateAuthenticated
	// StateUnauthenticated means no usable token is held.
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Manager tracks the current session: which state it is in, the token and
// profile when authenticated, and the last auth error. It always settles in
// either StateAuthenticated or StateUnauthenticated; restore failures never
// leave it stuck in StateLoading.
type Manager struct {
	store *Store

	state   State
	token   string
	profile *Profile
	err     error
}

// NewManager creates a session manager over the given token store.
func NewManager(store *Store) *Manager {
	return &Manager{store: store, state: StateUninitialized}
}

// Restore loads the saved token, checks it locally and settles the session
// state. A missing, malformed or expired token leaves the session
// unauthenticated with the slot cleared, and for a bad token the reason is
// recorded and readable via Err. Only unexpected I/O failures return an
// error, and even then the state settles as unauthenticated.
func (m *Manager) Restore() error {
	m.state = StateLoading

	token, err := m.store.Load()
	if err != nil {
		m.setUnauthenticated()
		if errors.Is(err, ErrTokenNotFound) {
			return nil
		}
		return err
	}

	profile, err := Inspect(token)
	if err != nil {
		log.Debug().Err(err).Msg("saved token unusable, clearing")
		m.setUnauthenticated()
		if errors.Is(err, ErrTokenExpired) {
			m.err = errSessionExpired
		} else {
			m.err = errSessionInvalid
		}
		if clearErr := m.store.Clear(); clearErr != nil {
			return clearErr
		}
		return nil
	}

	m.state = StateAuthenticated
	m.token = token
	m.profile = profile
	return nil
}

// Authenticator performs the credential exchange with the server.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*api.LoginResult, error)
}

// Authenticate exchanges credentials for a token and settles the session.
// A rejection records the server's message as the session error and leaves
// the previous state untouched; a transport failure records a generic
// connectivity error. Returns true only when the session is authenticated
// and the token persisted.
func (m *Manager) Authenticate(ctx context.Context, client Authenticator, username, password, serverURL string) bool {
	result, err := client.Login(ctx, username, password)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			m.err = errors.New(apiErr.Message)
		} else {
			log.Debug().Err(err).Msg("login request failed")
			m.err = errors.New("could not reach the server, check your connection and server URL")
		}
		return false
	}

	if err := m.Login(result.Token, serverURL); err != nil {
		m.err = err
		return false
	}
	return true
}

// Login stores a fresh token and moves the session to authenticated. The
// token must decode cleanly; a server handing back garbage is an error, not
// a silent unauthenticated state.
func (m *Manager) Login(token, serverURL string) error {
	profile, err := Inspect(token)
	if err != nil {
		return fmt.Errorf("server returned an unusable token: %w", err)
	}

	if err := m.store.Save(token, serverURL); err != nil {
		return err
	}

	m.state = StateAuthenticated
	m.token = token
	m.profile = profile
	m.err = nil
	return nil
}

// Logout clears the in-memory session and removes the stored token. The
// in-memory state is cleared even when the removal fails; the failure is
// recorded and returned so the caller can warn about the leftover file.
// Logging out of an unauthenticated session is a no-op.
func (m *Manager) Logout() error {
	m.setUnauthenticated()

	if err := m.store.Clear(); err != nil {
		m.err = err
		return err
	}
	return nil
}

// SetError records an auth error without changing the session state.
func (m *Manager) SetError(err error) { m.err = err }

// ClearError drops the recorded auth error.
func (m *Manager) ClearError() { m.err = nil }

// Err returns the recorded auth error, if any.
func (m *Manager) Err() error { return m.err }

// State returns the current lifecycle state.
func (m *Manager) State() State { return m.state }

// Token returns the held token, or "" when unauthenticated.
func (m *Manager) Token() string { return m.token }

// Profile returns the identity decoded from the held token, or nil when
// unauthenticated.
func (m *Manager) Profile() *Profile { return m.profile }

func (m *Manager) setUnauthenticated() {
	m.state = StateUnauthenticated
	m.token = ""
	m.profile = nil
}
