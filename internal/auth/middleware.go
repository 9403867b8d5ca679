package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the verified caller identity attached to request contexts by
// RequireToken.
type Identity struct {
	UserID   string
	Username string
}

// IdentityFromContext extracts the verified identity from the request context.
// This should only be called from handlers wrapped by RequireToken.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	return id, ok
}

// WithIdentity returns a context carrying the given identity. Used by tests
// and by the website session guard, which verifies the token itself.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// RequireToken is a middleware that verifies the Bearer token on every
// request before the handler runs. This is the trust boundary for all
// state-changing operations: the client's local expiry check is display-only
// and never stands in for this verification.
func RequireToken(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "Authorization required")
				return
			}

			claims, err := issuer.Verify(tokenStr)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("token verification failed")
				if errors.Is(err, ErrTokenExpired) {
					unauthorized(w, "Token expired")
					return
				}
				unauthorized(w, "Invalid token")
				return
			}

			id := &Identity{UserID: claims.ID, Username: claims.Username}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
