package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/calvora/conduit/internal/domain"
)

// UserStore defines the interface for user and follow-graph persistence.
//
// Username and email uniqueness is enforced case-insensitively by every
// implementation; callers receive ErrUsernameExists / ErrEmailExists and
// decide how to surface them.
type UserStore interface {
	// Create saves a new user to the store.
	// Returns ErrUsernameExists or ErrEmailExists on a uniqueness violation.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by username, matched case-insensitively.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by email, matched case-insensitively.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update persists the complete user object.
	// Returns ErrUserNotFound if the user does not exist and
	// ErrUsernameExists / ErrEmailExists on uniqueness violations.
	Update(ctx context.Context, user *domain.User) error

	// SetFollow makes follower follow (or unfollow) followed. The operation
	// is idempotent: following an already-followed user and unfollowing a
	// non-followed one are both no-ops. Returns ErrUserNotFound if either
	// endpoint does not exist.
	SetFollow(ctx context.Context, followerID, followedID uuid.UUID, follow bool) error

	// IsFollowing reports whether follower currently follows followed.
	IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error)

	// WithTx returns a UserStore bound to the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
