package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors for token inspection.
var (
	// ErrTokenMalformed is returned when the token cannot be decoded.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrTokenExpired is returned when the token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Profile is the identity decoded from a token payload.
type Profile struct {
	UserID    string
	Username  string
	ExpiresAt time.Time
}

// tokenClaims mirrors the server's token payload.
type tokenClaims struct {
	jwt.RegisteredClaims
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Inspect decodes the token payload without verifying the signature and
// checks the expiry against the local clock. Only the server can verify the
// signature; here the token is treated as an opaque pass whose payload tells
// us who we are logged in as and until when.
func Inspect(token string) (*Profile, error) {
	parser := jwt.NewParser()

	var claims tokenClaims
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil, ErrTokenMalformed
	}
	if claims.ExpiresAt == nil {
		return nil, ErrTokenMalformed
	}

	profile := &Profile{
		UserID:    claims.ID,
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	if time.Now().After(profile.ExpiresAt) {
		return profile, ErrTokenExpired
	}

	return profile, nil
}
