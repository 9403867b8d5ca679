package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tmaekawa/nippo/internal/auth"
	"github.com/tmaekawa/nippo/internal/httpx"
	"github.com/tmaekawa/nippo/internal/models"
	"github.com/tmaekawa/nippo/internal/store"
)

// AuthHandler serves the credential-verification endpoints: login issues a
// session token after password verification, register creates a new account.
type AuthHandler struct {
	users  store.UserStore
	issuer *auth.TokenIssuer
}

// NewAuthHandler creates the auth endpoints handler.
func NewAuthHandler(users store.UserStore, issuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type registerResponse struct {
	Message string            `json:"message"`
	User    models.PublicUser `json:"user"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Info().
				Str("username", req.Username).
				Str("client_ip", httpx.ClientIPFromContext(r.Context())).
				Msg("login failed: unknown username")
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Error().Err(err).Msg("login failed: user lookup")
		internalError(w)
		return
	}

	ok, scheme := auth.VerifyPassword(req.Password, user.Password)
	if !ok {
		log.Info().
			Str("username", req.Username).
			Str("client_ip", httpx.ClientIPFromContext(r.Context())).
			Msg("login failed: bad password")
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if scheme == auth.SchemePlaintext {
		h.rotatePlaintextPassword(r, user)
	}

	token, err := h.issuer.Issue(user.ID, user.Username)
	if err != nil {
		log.Error().Err(err).Msg("login failed: token issuance")
		internalError(w)
		return
	}

	log.Info().
		Str("username", user.Username).
		Str("client_ip", httpx.ClientIPFromContext(r.Context())).
		Msg("login succeeded")

	writeJSON(w, http.StatusOK, loginResponse{
		Token: token,
		User:  user.Public(),
	})
}

// rotatePlaintextPassword rehashes a legacy plaintext record after a
// successful login. Rotation failure doesn't fail the login; the record
// simply stays plaintext until the next attempt.
func (h *AuthHandler) rotatePlaintextPassword(r *http.Request, user *models.User) {
	log.Warn().
		Str("username", user.Username).
		Msg("stored password matched as plaintext, rotating to digest")

	digest, err := auth.HashPassword(user.Password)
	if err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("password rotation: hash failed")
		return
	}

	if err := h.users.UpdatePassword(r.Context(), user.ID, digest); err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("password rotation: update failed")
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	digest, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("registration failed: hash")
		internalError(w)
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		internalError(w)
		return
	}

	now := time.Now()
	user := &models.User{
		ID:        id,
		Username:  req.Username,
		Password:  digest,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			writeMessage(w, http.StatusConflict, "Username already exists")
			return
		}
		log.Error().Err(err).Msg("registration failed: create")
		internalError(w)
		return
	}

	log.Info().
		Str("username", user.Username).
		Str("client_ip", httpx.ClientIPFromContext(r.Context())).
		Msg("user registered")

	writeJSON(w, http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		User:    user.Public(),
	})
}
