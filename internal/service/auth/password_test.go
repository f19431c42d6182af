package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	t.Parallel()

	// MinCost keeps the test fast; the production default is applied by
	// NewBcryptHasher(0).
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.NoError(t, hasher.Compare(hash, "correct horse battery"))
	assert.ErrorIs(t, hasher.Compare(hash, "wrong password"), ErrPasswordMismatch)
}

func TestBcryptHasherDefaultCost(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(0)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)
}

func TestBcryptHasherMalformedHash(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(bcrypt.MinCost)

	err := hasher.Compare("not-a-bcrypt-hash", "whatever")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}
