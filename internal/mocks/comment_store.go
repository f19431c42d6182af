package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/calvora/conduit/internal/domain"
	"github.com/calvora/conduit/internal/store"
)

// MockCommentStore implements store.CommentStore for testing. IDs are
// assigned from an in-memory counter, increasing with creation order like
// the bigserial column in Postgres.
type MockCommentStore struct {
	// Function fields for customizable behavior
	CreateFn func(ctx context.Context, comment *domain.Comment) error
	DeleteFn func(ctx context.Context, id int64) error

	articles *MockArticleStore

	mu       sync.Mutex
	comments map[int64]*domain.Comment
	nextID   int64
}

var _ store.CommentStore = (*MockCommentStore)(nil)

// NewMockCommentStore creates a new mock store. articles may be nil when
// the test never exercises the article existence check; when given, the
// article store's Delete cascades into this store.
func NewMockCommentStore(articles *MockArticleStore) *MockCommentStore {
	m := &MockCommentStore{
		articles: articles,
		comments: make(map[int64]*domain.Comment),
		nextID:   1,
	}
	if articles != nil {
		articles.Comments = m
	}
	return m
}

// Create implements the CommentStore interface.
func (m *MockCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, comment)
	}

	if m.articles != nil {
		m.articles.mu.Lock()
		_, ok := m.articles.articles[comment.ArticleID]
		m.articles.mu.Unlock()
		if !ok {
			return store.ErrArticleNotFound
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	comment.ID = m.nextID
	m.nextID++

	copied := *comment
	m.comments[comment.ID] = &copied
	return nil
}

// GetByID implements the CommentStore interface.
func (m *MockCommentStore) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	comment, ok := m.comments[id]
	if !ok {
		return nil, store.ErrCommentNotFound
	}
	copied := *comment
	return &copied, nil
}

// ListForArticle implements the CommentStore interface, returning comments
// oldest first.
func (m *MockCommentStore) ListForArticle(ctx context.Context, articleID uuid.UUID) ([]*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.Comment
	for _, comment := range m.comments {
		if comment.ArticleID == articleID {
			copied := *comment
			matched = append(matched, &copied)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return matched, nil
}

// Delete implements the CommentStore interface.
func (m *MockCommentStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[id]; !ok {
		return store.ErrCommentNotFound
	}
	delete(m.comments, id)
	return nil
}

// WithTx implements the CommentStore interface.
func (m *MockCommentStore) WithTx(tx *sql.Tx) store.CommentStore {
	return m
}

func (m *MockCommentStore) deleteForArticle(articleID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, comment := range m.comments {
		if comment.ArticleID == articleID {
			delete(m.comments, id)
		}
	}
}
