package mocks

import (
	"github.com/calvora/conduit/internal/service/auth"
)

// MockPasswordHasher implements auth.PasswordHasher for testing. The default
// behavior prefixes the password so tests can assert on the stored value
// without paying for bcrypt.
type MockPasswordHasher struct {
	// HashFn allows for custom hashing logic in tests
	HashFn func(password string) (string, error)

	// Err is returned from Hash when set and HashFn is nil
	Err error
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// Hash implements the auth.PasswordHasher interface.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return "hashed:" + password, nil
}

// MockPasswordVerifier implements auth.PasswordVerifier for testing. The
// default behavior accepts hashes produced by MockPasswordHasher.
type MockPasswordVerifier struct {
	// CompareFn allows for custom comparison logic in tests
	CompareFn func(hashedPassword, password string) error

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

// Compare implements the auth.PasswordVerifier interface.
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.CompareCallCount++

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}

	if hashedPassword == "hashed:"+password {
		return nil
	}
	return auth.ErrPasswordMismatch
}
