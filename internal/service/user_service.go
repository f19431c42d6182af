package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/calvora/conduit/internal/domain"
	"github.com/calvora/conduit/internal/service/auth"
	"github.com/calvora/conduit/internal/store"
)

// UserUpdate is a partial update of a user's own account.
// Nil fields are left unchanged.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
	Bio      *string
	Image    *string
}

// UserService provides account and social-graph operations.
type UserService interface {
	// Register creates a new account and returns the user with a signed
	// token. Username/email conflicts surface as field-level
	// ValidationErrors.
	Register(ctx context.Context, username, email, password string) (*domain.User, string, error)

	// Login authenticates by username or email plus password and returns
	// the user with a signed token. Unknown identifiers and wrong passwords
	// both yield ErrInvalidCredentials.
	Login(ctx context.Context, identifier, password string) (*domain.User, string, error)

	// GetCurrentUser returns the account behind a validated token.
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// Update applies a partial update to the user's account.
	Update(ctx context.Context, userID uuid.UUID, update UserUpdate) (*domain.User, error)

	// GetProfile returns the target's public profile. Following is computed
	// relative to the viewer and is false for anonymous viewers.
	GetProfile(ctx context.Context, viewerID *uuid.UUID, username string) (domain.Profile, error)

	// Follow makes the follower follow the named user. Idempotent; returns
	// ErrSelfFollow when follower and target coincide.
	Follow(ctx context.Context, followerID uuid.UUID, username string) (domain.Profile, error)

	// Unfollow removes the follow edge if present. Idempotent.
	Unfollow(ctx context.Context, followerID uuid.UUID, username string) (domain.Profile, error)
}

// UserServiceImpl implements the UserService interface.
type UserServiceImpl struct {
	userStore  store.UserStore
	db         *sql.DB
	hasher     auth.PasswordHasher
	verifier   auth.PasswordVerifier
	jwtService auth.JWTService
	logger     *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService. db may be nil when the stores
// are not database-backed (in-memory test doubles).
func NewUserService(
	userStore store.UserStore,
	db *sql.DB,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	jwtService auth.JWTService,
	logger *slog.Logger,
) (*UserServiceImpl, error) {
	if userStore == nil {
		return nil, fmt.Errorf("userStore cannot be nil")
	}
	if hasher == nil {
		return nil, fmt.Errorf("hasher cannot be nil")
	}
	if verifier == nil {
		return nil, fmt.Errorf("verifier cannot be nil")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("jwtService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceImpl{
		userStore:  userStore,
		db:         db,
		hasher:     hasher,
		verifier:   verifier,
		jwtService: jwtService,
		logger:     logger.With("component", "user_service"),
	}, nil
}

// Register creates a new account.
func (s *UserServiceImpl) Register(ctx context.Context, username, email, password string) (*domain.User, string, error) {
	if err := validateRegistration(username, email, password); err != nil {
		return nil, "", err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("failed to hash password during registration", "error", err)
		return nil, "", fmt.Errorf("failed to register user: %w", err)
	}

	user, err := domain.NewUser(username, email, hashed)
	if err != nil {
		return nil, "", mapDomainValidation(err)
	}

	err = runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		us := s.userStore
		if tx != nil {
			us = us.WithTx(tx)
		}
		return us.Create(ctx, user)
	})
	if err != nil {
		if mapped := mapUserConflict(err); mapped != nil {
			s.logger.Debug("registration conflict", "username", username)
			return nil, "", mapped
		}
		s.logger.Error("failed to create user", "error", err, "username", username)
		return nil, "", fmt.Errorf("failed to register user: %w", err)
	}

	token, err := s.jwtService.GenerateToken(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to issue token after registration", "error", err, "user_id", user.ID)
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, token, nil
}

// Login authenticates a user by username or email.
func (s *UserServiceImpl) Login(ctx context.Context, identifier, password string) (*domain.User, string, error) {
	var (
		user *domain.User
		err  error
	)

	// Identifiers containing '@' are treated as emails, everything else as
	// a username. Usernames cannot contain '@' so the split is unambiguous.
	if strings.ContainsRune(identifier, '@') {
		user, err = s.userStore.GetByEmail(ctx, identifier)
	} else {
		user, err = s.userStore.GetByUsername(ctx, identifier)
	}

	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Same error as a wrong password; see ErrInvalidCredentials.
			return nil, "", ErrInvalidCredentials
		}
		s.logger.Error("failed to look up user for login", "error", err)
		return nil, "", fmt.Errorf("failed to log in: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, "", ErrInvalidCredentials
		}
		s.logger.Error("failed to verify password", "error", err, "user_id", user.ID)
		return nil, "", fmt.Errorf("failed to log in: %w", err)
	}

	token, err := s.jwtService.GenerateToken(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to issue token for login", "error", err, "user_id", user.ID)
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

// GetCurrentUser returns the account behind a validated token.
func (s *UserServiceImpl) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// Update applies a partial update to the user's account.
func (s *UserServiceImpl) Update(ctx context.Context, userID uuid.UUID, update UserUpdate) (*domain.User, error) {
	var hashed string
	if update.Password != nil {
		if err := domain.ValidatePassword(*update.Password); err != nil {
			return nil, NewValidationError("password", err.Error())
		}
		var err error
		hashed, err = s.hasher.Hash(*update.Password)
		if err != nil {
			s.logger.Error("failed to hash password during update", "error", err, "user_id", userID)
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	var updated *domain.User
	err := runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		us := s.userStore
		if tx != nil {
			us = us.WithTx(tx)
		}

		user, err := us.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if update.Username != nil {
			user.Username = *update.Username
		}
		if update.Email != nil {
			user.Email = *update.Email
		}
		if update.Bio != nil {
			user.Bio = *update.Bio
		}
		if update.Image != nil {
			user.Image = *update.Image
		}
		if hashed != "" {
			user.HashedPassword = hashed
		}

		if err := user.Validate(); err != nil {
			return err
		}

		if err := us.Update(ctx, user); err != nil {
			return err
		}

		updated = user
		return nil
	})

	if err != nil {
		if mapped := mapUserConflict(err); mapped != nil {
			return nil, mapped
		}
		if verr := mapDomainValidation(err); verr != err {
			return nil, verr
		}
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update user", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("user updated", "user_id", userID)
	return updated, nil
}

// GetProfile returns the target's public profile.
func (s *UserServiceImpl) GetProfile(ctx context.Context, viewerID *uuid.UUID, username string) (domain.Profile, error) {
	target, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		return domain.Profile{}, err
	}

	following := false
	if viewerID != nil {
		following, err = s.userStore.IsFollowing(ctx, *viewerID, target.ID)
		if err != nil {
			s.logger.Error("failed to compute following state", "error", err, "target", username)
			return domain.Profile{}, fmt.Errorf("failed to fetch profile: %w", err)
		}
	}

	return target.Profile(following), nil
}

// Follow makes the follower follow the named user.
func (s *UserServiceImpl) Follow(ctx context.Context, followerID uuid.UUID, username string) (domain.Profile, error) {
	return s.setFollow(ctx, followerID, username, true)
}

// Unfollow removes the follow edge if present.
func (s *UserServiceImpl) Unfollow(ctx context.Context, followerID uuid.UUID, username string) (domain.Profile, error) {
	return s.setFollow(ctx, followerID, username, false)
}

func (s *UserServiceImpl) setFollow(ctx context.Context, followerID uuid.UUID, username string, follow bool) (domain.Profile, error) {
	target, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		return domain.Profile{}, err
	}

	if target.ID == followerID {
		return domain.Profile{}, ErrSelfFollow
	}

	if err := s.userStore.SetFollow(ctx, followerID, target.ID, follow); err != nil {
		s.logger.Error("failed to set follow state",
			"error", err,
			"follower_id", followerID,
			"target", username)
		return domain.Profile{}, fmt.Errorf("failed to update follow state: %w", err)
	}

	return target.Profile(follow), nil
}

// validateRegistration checks input shape before touching the store.
func validateRegistration(username, email, password string) error {
	if username == "" {
		return NewValidationError("username", "can't be blank")
	}
	if email == "" {
		return NewValidationError("email", "can't be blank")
	}
	if !domain.ValidEmailFormat(email) {
		return NewValidationError("email", "is invalid")
	}
	if err := domain.ValidatePassword(password); err != nil {
		return NewValidationError("password", err.Error())
	}
	return nil
}

// mapUserConflict turns store duplicate errors into field-level validation
// errors. Returns nil when the error is not a user uniqueness conflict.
func mapUserConflict(err error) error {
	switch {
	case errors.Is(err, store.ErrUsernameExists):
		return NewValidationError("username", "is already taken")
	case errors.Is(err, store.ErrEmailExists):
		return NewValidationError("email", "is already taken")
	default:
		return nil
	}
}

// mapDomainValidation turns domain entity validation errors into
// field-level validation errors, passing other errors through unchanged.
func mapDomainValidation(err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptyUsername), errors.Is(err, domain.ErrInvalidUsername):
		return NewValidationError("username", err.Error())
	case errors.Is(err, domain.ErrEmptyEmail), errors.Is(err, domain.ErrInvalidEmail):
		return NewValidationError("email", err.Error())
	case errors.Is(err, domain.ErrPasswordTooShort), errors.Is(err, domain.ErrPasswordTooLong):
		return NewValidationError("password", err.Error())
	default:
		return err
	}
}
