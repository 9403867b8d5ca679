package auth

import "golang.org/x/crypto/bcrypt"

// Scheme identifies which comparison matched a stored password.
type Scheme string

const (
	// SchemeBcrypt means the stored value is a bcrypt digest.
	SchemeBcrypt Scheme = "bcrypt"

	// SchemePlaintext means the stored value matched by exact string
	// equality. Only legacy records seeded before hashing was introduced
	// should ever match this way; callers must flag it and rotate the
	// record.
	SchemePlaintext Scheme = "plaintext"
)

// VerifyPassword checks a submitted password against the stored
// representation. It is a pure predicate: a malformed digest is a failed
// verification, never an error.
//
// Plaintext equality is tried first to support unmigrated legacy records,
// then bcrypt comparison against the stored value as a digest.
func VerifyPassword(submitted, stored string) (bool, Scheme) {
	if submitted == stored {
		return true, SchemePlaintext
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(submitted)); err != nil {
		return false, ""
	}

	return true, SchemeBcrypt
}

// HashPassword produces a bcrypt digest for storage.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}
