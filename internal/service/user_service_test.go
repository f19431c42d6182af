package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvora/conduit/internal/domain"
	"github.com/calvora/conduit/internal/mocks"
	"github.com/calvora/conduit/internal/service"
	"github.com/calvora/conduit/internal/store"
)

func newUserService(t *testing.T) (service.UserService, *mocks.MockUserStore) {
	t.Helper()

	userStore := mocks.NewMockUserStore()
	svc, err := service.NewUserService(
		userStore,
		nil,
		&mocks.MockPasswordHasher{},
		&mocks.MockPasswordVerifier{},
		&mocks.MockJWTService{Token: "test-token"},
		nil,
	)
	require.NoError(t, err)
	return svc, userStore
}

func registerUser(t *testing.T, svc service.UserService, username, email string) *domain.User {
	t.Helper()

	user, token, err := svc.Register(context.Background(), username, email, "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return user
}

func TestRegister(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)

	user, token, err := svc.Register(context.Background(), "jake", "jake@example.com", "password123")
	require.NoError(t, err)

	assert.Equal(t, "jake", user.Username)
	assert.Equal(t, "jake@example.com", user.Email)
	assert.Equal(t, "test-token", token)
	assert.Equal(t, "hashed:password123", user.HashedPassword)
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		username  string
		email     string
		password  string
		wantField string
	}{
		{"blank username", "", "a@b.co", "password123", "username"},
		{"username with spaces", "jake smith", "a@b.co", "password123", "username"},
		{"blank email", "jake", "", "password123", "email"},
		{"malformed email", "jake", "not-an-email", "password123", "email"},
		{"short password", "jake", "a@b.co", "short", "password"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, _ := newUserService(t)
			_, _, err := svc.Register(context.Background(), tc.username, tc.email, tc.password)
			require.Error(t, err)

			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.wantField, verr.Field)
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}
}

func TestRegisterConflicts(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	registerUser(t, svc, "jake", "jake@example.com")

	// Case-insensitive: JAKE collides with jake.
	_, _, err := svc.Register(context.Background(), "JAKE", "other@example.com", "password123")
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username", verr.Field)

	_, _, err = svc.Register(context.Background(), "other", "JAKE@example.com", "password123")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	registered := registerUser(t, svc, "jake", "jake@example.com")

	// Identifiers with '@' resolve by email, others by username.
	byEmail, token, err := svc.Login(context.Background(), "jake@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, byEmail.ID)
	assert.NotEmpty(t, token)

	byUsername, _, err := svc.Login(context.Background(), "jake", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, byUsername.ID)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	registerUser(t, svc, "jake", "jake@example.com")

	// Unknown identifier and wrong password yield the same error, so a
	// caller cannot probe which accounts exist.
	_, _, err := svc.Login(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "jake", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestGetCurrentUser(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	registered := registerUser(t, svc, "jake", "jake@example.com")

	user, err := svc.GetCurrentUser(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "jake", user.Username)

	_, err = svc.GetCurrentUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	registered := registerUser(t, svc, "jake", "jake@example.com")

	bio := "writes Go"
	email := "new@example.com"
	password := "newpassword1"

	updated, err := svc.Update(context.Background(), registered.ID, service.UserUpdate{
		Email:    &email,
		Bio:      &bio,
		Password: &password,
	})
	require.NoError(t, err)

	assert.Equal(t, "jake", updated.Username, "unset fields stay unchanged")
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "writes Go", updated.Bio)
	assert.Equal(t, "hashed:newpassword1", updated.HashedPassword)

	// The new password works for login, the old one does not.
	_, _, err = svc.Login(context.Background(), "jake", "newpassword1")
	assert.NoError(t, err)
	_, _, err = svc.Login(context.Background(), "jake", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestUpdateUserConflicts(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	registerUser(t, svc, "jake", "jake@example.com")
	anna := registerUser(t, svc, "anna", "anna@example.com")

	taken := "Jake"
	_, err := svc.Update(context.Background(), anna.ID, service.UserUpdate{Username: &taken})

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username", verr.Field)
}

func TestUpdateUserInvalidPassword(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	registered := registerUser(t, svc, "jake", "jake@example.com")

	short := "short"
	_, err := svc.Update(context.Background(), registered.ID, service.UserUpdate{Password: &short})

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
}

func TestGetProfile(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	registerUser(t, svc, "anna", "anna@example.com")
	viewer := registerUser(t, svc, "jake", "jake@example.com")

	// Anonymous viewers never see following=true.
	profile, err := svc.GetProfile(context.Background(), nil, "anna")
	require.NoError(t, err)
	assert.Equal(t, "anna", profile.Username)
	assert.False(t, profile.Following)

	_, err = svc.Follow(context.Background(), viewer.ID, "anna")
	require.NoError(t, err)

	profile, err = svc.GetProfile(context.Background(), &viewer.ID, "anna")
	require.NoError(t, err)
	assert.True(t, profile.Following)

	_, err = svc.GetProfile(context.Background(), nil, "nobody")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestFollowAndUnfollow(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	registerUser(t, svc, "anna", "anna@example.com")
	jake := registerUser(t, svc, "jake", "jake@example.com")

	profile, err := svc.Follow(context.Background(), jake.ID, "anna")
	require.NoError(t, err)
	assert.True(t, profile.Following)

	// Following twice is a no-op.
	profile, err = svc.Follow(context.Background(), jake.ID, "anna")
	require.NoError(t, err)
	assert.True(t, profile.Following)

	profile, err = svc.Unfollow(context.Background(), jake.ID, "anna")
	require.NoError(t, err)
	assert.False(t, profile.Following)

	// Unfollowing when not following is also a no-op.
	profile, err = svc.Unfollow(context.Background(), jake.ID, "anna")
	require.NoError(t, err)
	assert.False(t, profile.Following)
}

func TestFollowSelf(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	jake := registerUser(t, svc, "jake", "jake@example.com")

	_, err := svc.Follow(context.Background(), jake.ID, "jake")
	assert.ErrorIs(t, err, service.ErrSelfFollow)

	_, err = svc.Unfollow(context.Background(), jake.ID, "jake")
	assert.ErrorIs(t, err, service.ErrSelfFollow)
}

func TestFollowUnknownUser(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	jake := registerUser(t, svc, "jake", "jake@example.com")

	_, err := svc.Follow(context.Background(), jake.ID, "nobody")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
