package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("jake", "jake@example.com", "hashedpassword123")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "jake", user.Username)
	assert.Equal(t, "jake@example.com", user.Email)
	assert.Equal(t, "hashedpassword123", user.HashedPassword)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt, "fresh users carry identical timestamps")
}

func TestNewUserValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		email    string
		hashed   string
		wantErr  error
	}{
		{"empty username", "", "a@b.co", "hash", ErrEmptyUsername},
		{"username with spaces", "jake smith", "a@b.co", "hash", ErrInvalidUsername},
		{"username with at sign", "jake@home", "a@b.co", "hash", ErrInvalidUsername},
		{"hyphens and underscores allowed", "jake_smith-2", "a@b.co", "hash", nil},
		{"empty email", "jake", "", "hash", ErrEmptyEmail},
		{"email without at", "jake", "nobody", "hash", ErrInvalidEmail},
		{"email without domain dot", "jake", "a@b", "hash", ErrInvalidEmail},
		{"email with two at signs", "jake", "a@b@c.co", "hash", ErrInvalidEmail},
		{"empty hash", "jake", "a@b.co", "", ErrEmptyHashedPassword},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewUser(tc.username, tc.email, tc.hashed)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ValidatePassword("short"), ErrPasswordTooShort)
	assert.NoError(t, ValidatePassword("exactly8"))

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	assert.ErrorIs(t, ValidatePassword(string(long)), ErrPasswordTooLong)
	assert.NoError(t, ValidatePassword(string(long[:72])))
}

func TestUserProfile(t *testing.T) {
	t.Parallel()

	user, err := NewUser("anna", "anna@example.com", "hash")
	require.NoError(t, err)
	user.Bio = "writes things"
	user.Image = "https://example.com/anna.png"

	profile := user.Profile(true)
	assert.Equal(t, "anna", profile.Username)
	assert.Equal(t, "writes things", profile.Bio)
	assert.Equal(t, "https://example.com/anna.png", profile.Image)
	assert.True(t, profile.Following)

	assert.False(t, user.Profile(false).Following)
}
