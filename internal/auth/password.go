package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost matches the cost the original deployment hashed with,
// so stored hashes keep verifying after migration.
const DefaultHashCost = 10

// Hasher derives and verifies salted bcrypt password hashes. Verification
// is constant time with respect to the stored hash.
type Hasher struct {
	cost int
}

// NewHasher builds a Hasher with the given bcrypt cost. Costs outside
// bcrypt's supported range fall back to DefaultHashCost.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return Hasher{cost: cost}
}

// Hash returns an opaque hash of the plaintext. Two calls on the same
// input produce different outputs (bcrypt embeds a random salt).
func (h Hasher) Hash(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares plaintext with the stored hash.
func (h Hasher) Verify(hash, password string) error {
	if hash == "" {
		return errors.New("password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
