package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/calvora/conduit/internal/domain"
)

// ArticleFilter narrows List results. All set fields are AND-combined.
// Tag, Author and FavoritedBy mirror the public listing filters; FollowedBy
// restricts to articles authored by users the given user follows (the feed).
type ArticleFilter struct {
	Tag         string
	Author      string
	FavoritedBy string
	FollowedBy  *uuid.UUID
	Limit       int
	Offset      int
}

// ArticleStore defines the interface for article, favorite and tag
// persistence. Slug uniqueness is global and constraint-enforced; favorite
// rows are unique per (article, user) pair.
type ArticleStore interface {
	// Create saves a new article.
	// Returns ErrSlugExists if the slug is already taken.
	Create(ctx context.Context, article *domain.Article) error

	// GetBySlug retrieves an article by its slug.
	// Returns ErrArticleNotFound if no article has the slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Article, error)

	// List returns articles matching the filter, most recent first with a
	// stable ID tie-break for articles created at the same instant.
	List(ctx context.Context, filter ArticleFilter) ([]*domain.Article, error)

	// Update persists the complete article object. Slug and author are
	// treated as immutable by callers; implementations persist the row as
	// given. Returns ErrArticleNotFound if the article does not exist.
	Update(ctx context.Context, article *domain.Article) error

	// Delete removes an article and cascades to its comments and favorites.
	// Returns ErrArticleNotFound if the article does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// SetFavorite marks (or unmarks) the article as favorited by the user.
	// Idempotent in both directions. Returns ErrArticleNotFound if the
	// article does not exist.
	SetFavorite(ctx context.Context, articleID, userID uuid.UUID, favorite bool) error

	// IsFavorited reports whether the user has favorited the article.
	IsFavorited(ctx context.Context, articleID, userID uuid.UUID) (bool, error)

	// FavoritesCount returns the number of users that favorited the article.
	FavoritesCount(ctx context.Context, articleID uuid.UUID) (int64, error)

	// ListTags returns the distinct tags across all articles.
	ListTags(ctx context.Context) ([]string, error)

	// WithTx returns an ArticleStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ArticleStore
}
