package website

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/tmaekawa/nippo/internal/auth"
)

// sessionCookie is the browser-side token slot, the cookie equivalent of the
// CLI's local token file.
const sessionCookie = "token"

// RequireSession is a middleware that guards protected pages. Requests
// without a valid session token are redirected to the login page and the
// protected handler never runs, so no protected content is emitted for that
// pass. The redirect carries an error_code so the login page can explain why.
func (w *Website) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			http.Redirect(rw, r, "/login", http.StatusFound)
			return
		}

		claims, err := w.issuer.Verify(cookie.Value)
		if err != nil {
			clearSessionCookie(rw)

			errorCode := "invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				errorCode = "expired"
				log.Debug().Str("path", r.URL.Path).Msg("session expired, redirecting to login")
			} else {
				log.Debug().Str("path", r.URL.Path).Msg("invalid session, redirecting to login")
			}

			http.Redirect(rw, r, "/login?error_code="+errorCode, http.StatusFound)
			return
		}

		id := &auth.Identity{UserID: claims.ID, Username: claims.Username}
		next(rw, r.WithContext(auth.WithIdentity(r.Context(), id)))
	}
}

func setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
