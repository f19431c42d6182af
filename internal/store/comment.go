package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/calvora/conduit/internal/domain"
)

// CommentStore defines the interface for comment persistence.
type CommentStore interface {
	// Create saves a new comment and assigns its monotonic ID.
	// Returns ErrArticleNotFound if the referenced article does not exist.
	Create(ctx context.Context, comment *domain.Comment) error

	// GetByID retrieves a comment by its ID.
	// Returns ErrCommentNotFound if the comment does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)

	// ListForArticle returns the article's comments ordered by creation time
	// ascending (chronological reading order).
	ListForArticle(ctx context.Context, articleID uuid.UUID) ([]*domain.Comment, error)

	// Delete removes a comment by its ID.
	// Returns ErrCommentNotFound if the comment does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a CommentStore bound to the provided transaction.
	WithTx(tx *sql.Tx) CommentStore
}
