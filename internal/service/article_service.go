package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/calvora/conduit/internal/domain"
	"github.com/calvora/conduit/internal/store"
)

// maxSlugAttempts bounds the retry loop when a generated slug collides with
// an existing article.
const maxSlugAttempts = 5

// SuffixFunc produces a short random suffix used to disambiguate colliding
// slugs. Injectable so tests can make collision handling deterministic.
type SuffixFunc func() string

func defaultSuffix() string {
	return uuid.New().String()[:8]
}

// TagCache caches the distinct tag list. Implementations may miss at any
// time; the service always falls back to the store.
type TagCache interface {
	// Get returns the cached tag list. ok is false on a miss.
	Get(ctx context.Context) (tags []string, ok bool, err error)

	// Set replaces the cached tag list.
	Set(ctx context.Context, tags []string) error

	// Invalidate drops the cached tag list.
	Invalidate(ctx context.Context) error
}

// ArticleView is an article decorated with viewer-relative state. Favorited
// is always false for anonymous viewers.
type ArticleView struct {
	*domain.Article
	Favorited      bool
	FavoritesCount int64
	Author         domain.Profile
}

// ArticleInput carries the author-supplied fields of a new article.
type ArticleInput struct {
	Title       string
	Description string
	Body        string
	TagList     []string
}

// ArticleUpdate is a partial update of an article. Nil fields are left
// unchanged. The slug never changes, whatever happens to the title.
type ArticleUpdate struct {
	Title       *string
	Description *string
	Body        *string
}

// ListQuery narrows article listings. Zero values mean "no filter"; Limit
// defaults to 20 when unset.
type ListQuery struct {
	Tag         string
	Author      string
	FavoritedBy string
	Limit       int
	Offset      int
}

// ArticleService provides publishing, listing and favoriting operations.
type ArticleService interface {
	// Publish creates a new article under a slug derived from the title.
	Publish(ctx context.Context, authorID uuid.UUID, input ArticleInput) (*ArticleView, error)

	// Get returns a single article by slug, decorated for the viewer.
	Get(ctx context.Context, viewerID *uuid.UUID, slug string) (*ArticleView, error)

	// List returns the global article listing, most recent first.
	List(ctx context.Context, viewerID *uuid.UUID, query ListQuery) ([]*ArticleView, error)

	// Feed returns recent articles authored by users the viewer follows.
	Feed(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]*ArticleView, error)

	// Update applies a partial update. Only the article's author may update
	// it; anyone else gets ErrForbidden.
	Update(ctx context.Context, userID uuid.UUID, slug string, update ArticleUpdate) (*ArticleView, error)

	// Delete removes an article together with its comments and favorites.
	// Only the author may delete; anyone else gets ErrForbidden.
	Delete(ctx context.Context, userID uuid.UUID, slug string) error

	// Favorite marks or unmarks the article as favorited by the user and
	// returns the refreshed view. Idempotent in both directions.
	Favorite(ctx context.Context, userID uuid.UUID, slug string, favorite bool) (*ArticleView, error)

	// ListTags returns the distinct tags across all articles.
	ListTags(ctx context.Context) ([]string, error)
}

// ArticleServiceImpl implements the ArticleService interface.
type ArticleServiceImpl struct {
	articleStore store.ArticleStore
	userStore    store.UserStore
	db           *sql.DB
	tagCache     TagCache
	suffixFunc   SuffixFunc
	logger       *slog.Logger
}

var _ ArticleService = (*ArticleServiceImpl)(nil)

// NewArticleService creates a new ArticleService. db may be nil when the
// stores are not database-backed; tagCache may be nil to disable caching.
func NewArticleService(
	articleStore store.ArticleStore,
	userStore store.UserStore,
	db *sql.DB,
	tagCache TagCache,
	logger *slog.Logger,
) (*ArticleServiceImpl, error) {
	if articleStore == nil {
		return nil, fmt.Errorf("articleStore cannot be nil")
	}
	if userStore == nil {
		return nil, fmt.Errorf("userStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ArticleServiceImpl{
		articleStore: articleStore,
		userStore:    userStore,
		db:           db,
		tagCache:     tagCache,
		suffixFunc:   defaultSuffix,
		logger:       logger.With("component", "article_service"),
	}, nil
}

// SetSuffixFunc overrides the slug suffix generator. Intended for tests.
func (s *ArticleServiceImpl) SetSuffixFunc(fn SuffixFunc) {
	if fn != nil {
		s.suffixFunc = fn
	}
}

// Publish creates a new article under a slug derived from the title.
func (s *ArticleServiceImpl) Publish(ctx context.Context, authorID uuid.UUID, input ArticleInput) (*ArticleView, error) {
	if input.Title == "" {
		return nil, NewValidationError("title", "can't be blank")
	}

	author, err := s.userStore.GetByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve author: %w", err)
	}

	base := domain.Slugify(input.Title)

	var article *domain.Article
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug := base
		if attempt > 0 || base == "" {
			// Titles made entirely of punctuation slugify to nothing, so
			// those get a suffix-only slug on the first attempt.
			slug = base + "-" + s.suffixFunc()
			if base == "" {
				slug = s.suffixFunc()
			}
		}

		article, err = domain.NewArticle(authorID, slug, input.Title, input.Description, input.Body, input.TagList)
		if err != nil {
			return nil, mapArticleDomainValidation(err)
		}

		err = runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			as := s.articleStore
			if tx != nil {
				as = as.WithTx(tx)
			}
			return as.Create(ctx, article)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrSlugExists) {
			s.logger.Error("failed to create article", "error", err, "slug", slug)
			return nil, fmt.Errorf("failed to publish article: %w", err)
		}
	}
	if err != nil {
		s.logger.Error("slug generation exhausted", "title", input.Title, "base", base)
		return nil, ErrSlugGenerationExhausted
	}

	s.invalidateTagCache(ctx)

	s.logger.Info("article published", "slug", article.Slug, "author_id", authorID)
	return &ArticleView{
		Article:        article,
		Favorited:      false,
		FavoritesCount: 0,
		Author:         author.Profile(false),
	}, nil
}

// Get returns a single article by slug, decorated for the viewer.
func (s *ArticleServiceImpl) Get(ctx context.Context, viewerID *uuid.UUID, slug string) (*ArticleView, error) {
	article, err := s.articleStore.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, viewerID, article)
}

// List returns the global article listing.
func (s *ArticleServiceImpl) List(ctx context.Context, viewerID *uuid.UUID, query ListQuery) ([]*ArticleView, error) {
	filter := store.ArticleFilter{
		Tag:         query.Tag,
		Author:      query.Author,
		FavoritedBy: query.FavoritedBy,
		Limit:       query.Limit,
		Offset:      query.Offset,
	}

	articles, err := s.articleStore.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list articles", "error", err)
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return s.decorateAll(ctx, viewerID, articles)
}

// Feed returns recent articles authored by users the viewer follows.
func (s *ArticleServiceImpl) Feed(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]*ArticleView, error) {
	filter := store.ArticleFilter{
		FollowedBy: &viewerID,
		Limit:      limit,
		Offset:     offset,
	}

	articles, err := s.articleStore.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to build feed", "error", err, "viewer_id", viewerID)
		return nil, fmt.Errorf("failed to build feed: %w", err)
	}

	return s.decorateAll(ctx, &viewerID, articles)
}

// Update applies a partial update to an article.
func (s *ArticleServiceImpl) Update(ctx context.Context, userID uuid.UUID, slug string, update ArticleUpdate) (*ArticleView, error) {
	var updated *domain.Article
	err := runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		as := s.articleStore
		if tx != nil {
			as = as.WithTx(tx)
		}

		article, err := as.GetBySlug(ctx, slug)
		if err != nil {
			return err
		}
		if article.AuthorID != userID {
			return ErrForbidden
		}

		if update.Title != nil {
			article.Title = *update.Title
		}
		if update.Description != nil {
			article.Description = *update.Description
		}
		if update.Body != nil {
			article.Body = *update.Body
		}

		if err := article.Validate(); err != nil {
			return mapArticleDomainValidation(err)
		}

		if err := as.Update(ctx, article); err != nil {
			return err
		}

		updated = article
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrArticleNotFound) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrValidation) {
			return nil, err
		}
		s.logger.Error("failed to update article", "error", err, "slug", slug)
		return nil, fmt.Errorf("failed to update article: %w", err)
	}

	return s.decorate(ctx, &userID, updated)
}

// Delete removes an article.
func (s *ArticleServiceImpl) Delete(ctx context.Context, userID uuid.UUID, slug string) error {
	article, err := s.articleStore.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if article.AuthorID != userID {
		return ErrForbidden
	}

	if err := s.articleStore.Delete(ctx, article.ID); err != nil {
		s.logger.Error("failed to delete article", "error", err, "slug", slug)
		return fmt.Errorf("failed to delete article: %w", err)
	}

	s.invalidateTagCache(ctx)

	s.logger.Info("article deleted", "slug", slug, "author_id", userID)
	return nil
}

// Favorite marks or unmarks the article as favorited by the user.
func (s *ArticleServiceImpl) Favorite(ctx context.Context, userID uuid.UUID, slug string, favorite bool) (*ArticleView, error) {
	article, err := s.articleStore.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := s.articleStore.SetFavorite(ctx, article.ID, userID, favorite); err != nil {
		s.logger.Error("failed to set favorite state", "error", err, "slug", slug, "user_id", userID)
		return nil, fmt.Errorf("failed to update favorite state: %w", err)
	}

	return s.decorate(ctx, &userID, article)
}

// ListTags returns the distinct tags across all articles, consulting the
// cache when one is configured.
func (s *ArticleServiceImpl) ListTags(ctx context.Context) ([]string, error) {
	if s.tagCache != nil {
		tags, ok, err := s.tagCache.Get(ctx)
		if err != nil {
			// A broken cache must not take tag listing down with it.
			s.logger.Warn("tag cache read failed", "error", err)
		} else if ok {
			return tags, nil
		}
	}

	tags, err := s.articleStore.ListTags(ctx)
	if err != nil {
		s.logger.Error("failed to list tags", "error", err)
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	if s.tagCache != nil {
		if err := s.tagCache.Set(ctx, tags); err != nil {
			s.logger.Warn("tag cache write failed", "error", err)
		}
	}

	return tags, nil
}

func (s *ArticleServiceImpl) invalidateTagCache(ctx context.Context) {
	if s.tagCache == nil {
		return
	}
	if err := s.tagCache.Invalidate(ctx); err != nil {
		s.logger.Warn("tag cache invalidation failed", "error", err)
	}
}

// decorate attaches viewer-relative state and the author profile to an
// article.
func (s *ArticleServiceImpl) decorate(ctx context.Context, viewerID *uuid.UUID, article *domain.Article) (*ArticleView, error) {
	views, err := s.decorateAll(ctx, viewerID, []*domain.Article{article})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *ArticleServiceImpl) decorateAll(ctx context.Context, viewerID *uuid.UUID, articles []*domain.Article) ([]*ArticleView, error) {
	views := make([]*ArticleView, 0, len(articles))

	// Author profiles repeat across a listing, so resolve each author once.
	authors := make(map[uuid.UUID]domain.Profile)

	for _, article := range articles {
		profile, seen := authors[article.AuthorID]
		if !seen {
			author, err := s.userStore.GetByID(ctx, article.AuthorID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve author: %w", err)
			}
			following := false
			if viewerID != nil {
				following, err = s.userStore.IsFollowing(ctx, *viewerID, author.ID)
				if err != nil {
					return nil, fmt.Errorf("failed to resolve author: %w", err)
				}
			}
			profile = author.Profile(following)
			authors[article.AuthorID] = profile
		}

		count, err := s.articleStore.FavoritesCount(ctx, article.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count favorites: %w", err)
		}

		favorited := false
		if viewerID != nil {
			favorited, err = s.articleStore.IsFavorited(ctx, article.ID, *viewerID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve favorite state: %w", err)
			}
		}

		views = append(views, &ArticleView{
			Article:        article,
			Favorited:      favorited,
			FavoritesCount: count,
			Author:         profile,
		})
	}

	return views, nil
}

func mapArticleDomainValidation(err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptyTitle):
		return NewValidationError("title", err.Error())
	default:
		return err
	}
}
