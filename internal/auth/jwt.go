package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "nippo"

// MinSecretLength is the minimum signing secret size for HMAC-SHA256.
const MinSecretLength = 32

var (
	// ErrTokenInvalid is returned for tokens that fail signature or
	// structural validation.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenExpired is returned for well-formed tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the token payload. ID and Username mirror the JSON shape clients
// decode locally: {id, username, exp}.
type Claims struct {
	jwt.RegisteredClaims
	ID       string `json:"id"`
	Username string `json:"username"`
}

// TokenIssuer creates and verifies HS256-signed session tokens.
// The server is stateless with respect to sessions: validity is entirely
// determined by the signature and the embedded expiry.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer. The secret must be configured and at
// least MinSecretLength bytes; there is deliberately no fallback default.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token signing secret is required")
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("token signing secret must be at least %d bytes (256 bits) for HMAC-SHA256", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, errors.New("token TTL must be greater than 0")
	}

	return &TokenIssuer{secret: []byte(secret), ttl: ttl}, nil
}

// Issue creates a signed token for the given user, valid for the configured
// TTL from now.
func (ti *TokenIssuer) Issue(userID uuid.UUID, username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
		ID:       userID.String(),
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

// Verify parses and validates a token, checking signature, signing method and
// expiry. Returns the embedded claims on success.
func (ti *TokenIssuer) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("invalid signing method")
		}
		return ti.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}

// TTL returns the configured token lifetime.
func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}
