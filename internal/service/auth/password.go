package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for password hashing. bcrypt.DefaultCost
// keeps login latency reasonable while staying above the library minimum.
const BcryptCost = bcrypt.DefaultCost

// PasswordHasher defines the interface for one-way password hashing.
type PasswordHasher interface {
	// Hash produces a salted one-way hash of the plaintext password.
	// Returns ErrHashingFailed if the underlying primitive fails.
	Hash(password string) (string, error)
}

// PasswordVerifier defines the interface for comparing passwords.
type PasswordVerifier interface {
	// Compare compares a hashed password with its possible plaintext
	// equivalent. Returns nil on success, ErrPasswordMismatch on mismatch,
	// or another error if the stored hash is malformed.
	Compare(hashedPassword, password string) error
}

// ErrPasswordMismatch indicates the plaintext did not match the stored hash.
var ErrPasswordMismatch = errors.New("password does not match")

// BcryptHasher implements PasswordHasher and PasswordVerifier using bcrypt,
// which performs constant-time comparison internally.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher with the given cost.
// A cost of 0 selects BcryptCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = BcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash implements the PasswordHasher interface.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailed, err)
	}
	return string(hashed), nil
}

// Compare implements the PasswordVerifier interface.
func (h *BcryptHasher) Compare(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("malformed password hash: %w", err)
	}
	return nil
}
