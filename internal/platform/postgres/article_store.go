package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calvora/conduit/internal/domain"
	"github.com/calvora/conduit/internal/platform/logger"
	"github.com/calvora/conduit/internal/store"
)

const articlesSlugKey = "articles_slug_key"

// defaultListLimit applies when the filter does not set one.
const defaultListLimit = 20

// PostgresArticleStore implements the store.ArticleStore interface
// using a PostgreSQL database as the storage backend.
//
// Tags live in a separate article_tags table rather than an array column;
// tag filtering and distinct-tag listing stay plain SQL that way.
type PostgresArticleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresArticleStore creates a new PostgreSQL implementation of the
// ArticleStore interface.
func NewPostgresArticleStore(db store.DBTX, logger *slog.Logger) *PostgresArticleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresArticleStore{
		db:     db,
		logger: logger.With(slog.String("component", "article_store")),
	}
}

// Ensure PostgresArticleStore implements store.ArticleStore interface
var _ store.ArticleStore = (*PostgresArticleStore)(nil)

// WithTx implements store.ArticleStore.WithTx
func (s *PostgresArticleStore) WithTx(tx *sql.Tx) store.ArticleStore {
	return &PostgresArticleStore{db: tx, logger: s.logger}
}

// Create implements store.ArticleStore.Create
func (s *PostgresArticleStore) Create(ctx context.Context, article *domain.Article) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := article.Validate(); err != nil {
		log.Warn("article validation failed during create",
			slog.String("error", err.Error()),
			slog.String("article_id", article.ID.String()))
		return err
	}

	query := `
		INSERT INTO articles (id, author_id, slug, title, description, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		article.ID,
		article.AuthorID,
		article.Slug,
		article.Title,
		article.Description,
		article.Body,
		article.CreatedAt,
		article.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, articlesSlugKey) {
			log.Debug("slug conflict during article creation",
				slog.String("slug", article.Slug))
			return store.ErrSlugExists
		}
		if isForeignKeyViolation(err) {
			return store.ErrUserNotFound
		}
		log.Error("failed to create article",
			slog.String("error", err.Error()),
			slog.String("article_id", article.ID.String()))
		return err
	}

	if err := s.replaceTags(ctx, article.ID, article.TagList); err != nil {
		log.Error("failed to store article tags",
			slog.String("error", err.Error()),
			slog.String("article_id", article.ID.String()))
		return err
	}

	log.Info("article created successfully",
		slog.String("article_id", article.ID.String()),
		slog.String("slug", article.Slug))
	return nil
}

// GetBySlug implements store.ArticleStore.GetBySlug
func (s *PostgresArticleStore) GetBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	articles, err := s.selectArticles(ctx, `WHERE a.slug = $1`, []any{slug})
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, store.ErrArticleNotFound
	}
	return articles[0], nil
}

// List implements store.ArticleStore.List
func (s *PostgresArticleStore) List(ctx context.Context, filter store.ArticleFilter) ([]*domain.Article, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var followedBy any
	if filter.FollowedBy != nil {
		followedBy = *filter.FollowedBy
	}

	where := `
		WHERE (
			$1 = '' OR EXISTS (
				SELECT 1 FROM article_tags t
				WHERE t.article_id = a.id AND t.tag = $1
			)
		) AND (
			$2 = '' OR EXISTS (
				SELECT 1 FROM users author
				WHERE author.id = a.author_id AND lower(author.username) = lower($2)
			)
		) AND (
			$3 = '' OR EXISTS (
				SELECT 1
				FROM article_favorites f
				JOIN users fan ON fan.id = f.user_id
				WHERE f.article_id = a.id AND lower(fan.username) = lower($3)
			)
		) AND (
			$4::uuid IS NULL OR EXISTS (
				SELECT 1 FROM follows fl
				WHERE fl.follower_id = $4 AND fl.followed_id = a.author_id
			)
		)
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $5 OFFSET $6
	`
	args := []any{filter.Tag, filter.Author, filter.FavoritedBy, followedBy, limit, offset}

	return s.selectArticles(ctx, where, args)
}

// selectArticles runs the shared article projection with the given WHERE
// clause. Tags are fetched as individual rows per article; aggregating them
// into a delimited string would corrupt tags containing the delimiter.
func (s *PostgresArticleStore) selectArticles(ctx context.Context, where string, args []any) ([]*domain.Article, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT
			a.id, a.author_id, a.slug, a.title, a.description, a.body,
			a.created_at, a.updated_at
		FROM articles a
	` + where

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query articles", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var articles []*domain.Article
	for rows.Next() {
		var article domain.Article
		if err := rows.Scan(
			&article.ID,
			&article.AuthorID,
			&article.Slug,
			&article.Title,
			&article.Description,
			&article.Body,
			&article.CreatedAt,
			&article.UpdatedAt,
		); err != nil {
			log.Error("failed to scan article row", slog.String("error", err.Error()))
			return nil, err
		}
		articles = append(articles, &article)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, article := range articles {
		if err := s.loadTags(ctx, article); err != nil {
			log.Error("failed to load article tags",
				slog.String("error", err.Error()),
				slog.String("article_id", article.ID.String()))
			return nil, err
		}
	}

	return articles, nil
}

// loadTags fills in the article's tag list in submission order.
func (s *PostgresArticleStore) loadTags(ctx context.Context, article *domain.Article) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag FROM article_tags
		WHERE article_id = $1
		ORDER BY position, tag
	`, article.ID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return err
		}
		article.TagList = append(article.TagList, tag)
	}

	return rows.Err()
}

// Update implements store.ArticleStore.Update
func (s *PostgresArticleStore) Update(ctx context.Context, article *domain.Article) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := article.Validate(); err != nil {
		return err
	}

	article.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE articles
		SET title = $1, description = $2, body = $3, updated_at = $4
		WHERE id = $5
	`,
		article.Title,
		article.Description,
		article.Body,
		article.UpdatedAt,
		article.ID,
	)
	if err != nil {
		log.Error("failed to update article",
			slog.String("error", err.Error()),
			slog.String("article_id", article.ID.String()))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrArticleNotFound
	}

	return nil
}

// Delete implements store.ArticleStore.Delete
// Comments, favorites and tags go with the article via ON DELETE CASCADE.
func (s *PostgresArticleStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete article",
			slog.String("error", err.Error()),
			slog.String("article_id", id.String()))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrArticleNotFound
	}

	log.Info("article deleted", slog.String("article_id", id.String()))
	return nil
}

// SetFavorite implements store.ArticleStore.SetFavorite
func (s *PostgresArticleStore) SetFavorite(ctx context.Context, articleID, userID uuid.UUID, favorite bool) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var err error
	if favorite {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO article_favorites (article_id, user_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
		`, articleID, userID, time.Now().UTC())
	} else {
		_, err = s.db.ExecContext(ctx, `
			DELETE FROM article_favorites
			WHERE article_id = $1 AND user_id = $2
		`, articleID, userID)
	}

	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrArticleNotFound
		}
		log.Error("failed to set favorite state",
			slog.String("error", err.Error()),
			slog.String("article_id", articleID.String()),
			slog.String("user_id", userID.String()))
		return err
	}

	return nil
}

// IsFavorited implements store.ArticleStore.IsFavorited
func (s *PostgresArticleStore) IsFavorited(ctx context.Context, articleID, userID uuid.UUID) (bool, error) {
	var favorited bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM article_favorites
			WHERE article_id = $1 AND user_id = $2
		)
	`, articleID, userID).Scan(&favorited)
	if err != nil {
		return false, err
	}
	return favorited, nil
}

// FavoritesCount implements store.ArticleStore.FavoritesCount
func (s *PostgresArticleStore) FavoritesCount(ctx context.Context, articleID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM article_favorites WHERE article_id = $1
	`, articleID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListTags implements store.ArticleStore.ListTags
func (s *PostgresArticleStore) ListTags(ctx context.Context) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT tag FROM article_tags ORDER BY tag`)
	if err != nil {
		log.Error("failed to list tags", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// replaceTags rewrites the tag rows for an article.
func (s *PostgresArticleStore) replaceTags(ctx context.Context, articleID uuid.UUID, tags []string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return err
	}

	position := 0
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO article_tags (article_id, tag, position)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
		`, articleID, tag, position)
		if err != nil {
			return err
		}
		position++
	}

	return nil
}
