package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/calvora/conduit/internal/domain"
	"github.com/calvora/conduit/internal/platform/logger"
	"github.com/calvora/conduit/internal/store"
)

// Unique constraint names from the users/follows migrations. Mapped to the
// field-specific duplicate errors so services can blame the right field.
const (
	usersUsernameKey = "users_username_lower_key"
	usersEmailKey    = "users_email_lower_key"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	query := `
		INSERT INTO users (id, username, email, bio, image, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Username,
		user.Email,
		user.Bio,
		user.Image,
		user.HashedPassword,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if mapped := mapUserConstraintError(err); mapped != nil {
			log.Debug("unique violation during user creation",
				slog.String("error", err.Error()),
				slog.String("username", user.Username))
			return mapped
		}

		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	log.Info("user created successfully",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getUser(ctx, `WHERE id = $1`, id)
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUser(ctx, `WHERE lower(username) = lower($1)`, username)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, `WHERE lower(email) = lower($1)`, email)
}

func (s *PostgresUserStore) getUser(ctx context.Context, where string, arg any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, username, email, bio, image, hashed_password, created_at, updated_at
		FROM users
	` + where

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Bio,
		&user.Image,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user", slog.String("error", err.Error()))
		return nil, err
	}

	return &user, nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET username = $1, email = $2, bio = $3, image = $4, hashed_password = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.Bio,
		user.Image,
		user.HashedPassword,
		user.UpdatedAt,
		user.ID,
	)

	if err != nil {
		if mapped := mapUserConstraintError(err); mapped != nil {
			return mapped
		}
		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrUserNotFound
	}

	return nil
}

// SetFollow implements store.UserStore.SetFollow
func (s *PostgresUserStore) SetFollow(ctx context.Context, followerID, followedID uuid.UUID, follow bool) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var err error
	if follow {
		// Insert-ignore-conflict keeps the operation idempotent under
		// concurrent repeats; the primary key on the pair does the work.
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO follows (follower_id, followed_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
		`, followerID, followedID, time.Now().UTC())
	} else {
		_, err = s.db.ExecContext(ctx, `
			DELETE FROM follows
			WHERE follower_id = $1 AND followed_id = $2
		`, followerID, followedID)
	}

	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrUserNotFound
		}
		log.Error("failed to set follow state",
			slog.String("error", err.Error()),
			slog.String("follower_id", followerID.String()),
			slog.String("followed_id", followedID.String()))
		return err
	}

	return nil
}

// IsFollowing implements store.UserStore.IsFollowing
func (s *PostgresUserStore) IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	var following bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM follows
			WHERE follower_id = $1 AND followed_id = $2
		)
	`, followerID, followedID).Scan(&following)
	if err != nil {
		return false, err
	}
	return following, nil
}

// mapUserConstraintError translates unique violations on the users table to
// the store's field-specific duplicate errors. Returns nil for other errors.
func mapUserConstraintError(err error) error {
	switch {
	case isUniqueViolation(err, usersUsernameKey):
		return store.ErrUsernameExists
	case isUniqueViolation(err, usersEmailKey):
		return store.ErrEmailExists
	default:
		return nil
	}
}
