package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/calvora/conduit/internal/domain"
	"github.com/calvora/conduit/internal/store"
)

type favoriteEdge struct {
	article uuid.UUID
	user    uuid.UUID
}

// MockArticleStore implements store.ArticleStore for testing. It keeps
// articles and favorite edges in memory and resolves author and follow
// filters against the MockUserStore it was constructed with, mirroring the
// joins the Postgres implementation performs.
type MockArticleStore struct {
	// Function fields for customizable behavior
	CreateFn    func(ctx context.Context, article *domain.Article) error
	GetBySlugFn func(ctx context.Context, slug string) (*domain.Article, error)
	ListFn      func(ctx context.Context, filter store.ArticleFilter) ([]*domain.Article, error)
	UpdateFn    func(ctx context.Context, article *domain.Article) error
	DeleteFn    func(ctx context.Context, id uuid.UUID) error

	users *MockUserStore

	mu        sync.Mutex
	articles  map[uuid.UUID]*domain.Article
	favorites map[favoriteEdge]struct{}

	// Comments points at the comment mock sharing this store's articles so
	// article deletion can cascade. Optional.
	Comments *MockCommentStore
}

var _ store.ArticleStore = (*MockArticleStore)(nil)

// NewMockArticleStore creates a new mock store backed by the given user
// store for author and follow resolution.
func NewMockArticleStore(users *MockUserStore) *MockArticleStore {
	return &MockArticleStore{
		users:     users,
		articles:  make(map[uuid.UUID]*domain.Article),
		favorites: make(map[favoriteEdge]struct{}),
	}
}

// Create implements the ArticleStore interface.
func (m *MockArticleStore) Create(ctx context.Context, article *domain.Article) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, article)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.articles {
		if existing.Slug == article.Slug {
			return store.ErrSlugExists
		}
	}

	copied := copyArticle(article)
	m.articles[article.ID] = copied
	return nil
}

// GetBySlug implements the ArticleStore interface.
func (m *MockArticleStore) GetBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	if m.GetBySlugFn != nil {
		return m.GetBySlugFn(ctx, slug)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, article := range m.articles {
		if article.Slug == slug {
			return copyArticle(article), nil
		}
	}
	return nil, store.ErrArticleNotFound
}

// List implements the ArticleStore interface with the same ordering the
// Postgres implementation uses: newest first, article ID as a tie-break.
func (m *MockArticleStore) List(ctx context.Context, filter store.ArticleFilter) ([]*domain.Article, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.Article
	for _, article := range m.articles {
		if !m.matches(article, filter) {
			continue
		}
		matched = append(matched, copyArticle(article))
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	if offset >= len(matched) {
		return []*domain.Article{}, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *MockArticleStore) matches(article *domain.Article, filter store.ArticleFilter) bool {
	if filter.Tag != "" {
		found := false
		for _, tag := range article.TagList {
			if tag == filter.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if filter.Author != "" {
		author, ok := m.users.lookupByID(article.AuthorID)
		if !ok || !strings.EqualFold(author.Username, filter.Author) {
			return false
		}
	}

	if filter.FavoritedBy != "" {
		fan, ok := m.users.lookupByUsername(filter.FavoritedBy)
		if !ok {
			return false
		}
		if _, ok := m.favorites[favoriteEdge{article: article.ID, user: fan.ID}]; !ok {
			return false
		}
	}

	if filter.FollowedBy != nil {
		if !m.users.hasFollow(*filter.FollowedBy, article.AuthorID) {
			return false
		}
	}

	return true
}

// Update implements the ArticleStore interface.
func (m *MockArticleStore) Update(ctx context.Context, article *domain.Article) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, article)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.articles[article.ID]; !ok {
		return store.ErrArticleNotFound
	}
	m.articles[article.ID] = copyArticle(article)
	return nil
}

// Delete implements the ArticleStore interface, cascading to favorites and,
// when a comment store is attached, to the article's comments.
func (m *MockArticleStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	if _, ok := m.articles[id]; !ok {
		m.mu.Unlock()
		return store.ErrArticleNotFound
	}
	delete(m.articles, id)
	for edge := range m.favorites {
		if edge.article == id {
			delete(m.favorites, edge)
		}
	}
	m.mu.Unlock()

	if m.Comments != nil {
		m.Comments.deleteForArticle(id)
	}
	return nil
}

// SetFavorite implements the ArticleStore interface.
func (m *MockArticleStore) SetFavorite(ctx context.Context, articleID, userID uuid.UUID, favorite bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.articles[articleID]; !ok {
		return store.ErrArticleNotFound
	}

	edge := favoriteEdge{article: articleID, user: userID}
	if favorite {
		m.favorites[edge] = struct{}{}
	} else {
		delete(m.favorites, edge)
	}
	return nil
}

// IsFavorited implements the ArticleStore interface.
func (m *MockArticleStore) IsFavorited(ctx context.Context, articleID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.favorites[favoriteEdge{article: articleID, user: userID}]
	return ok, nil
}

// FavoritesCount implements the ArticleStore interface.
func (m *MockArticleStore) FavoritesCount(ctx context.Context, articleID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for edge := range m.favorites {
		if edge.article == articleID {
			count++
		}
	}
	return count, nil
}

// ListTags implements the ArticleStore interface, returning distinct tags
// in lexical order.
func (m *MockArticleStore) ListTags(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{})
	for _, article := range m.articles {
		for _, tag := range article.TagList {
			seen[tag] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

// WithTx implements the ArticleStore interface.
func (m *MockArticleStore) WithTx(tx *sql.Tx) store.ArticleStore {
	return m
}

func copyArticle(a *domain.Article) *domain.Article {
	copied := *a
	copied.TagList = append([]string(nil), a.TagList...)
	return &copied
}
