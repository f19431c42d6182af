package mocks

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/calvora/conduit/internal/domain"
	"github.com/calvora/conduit/internal/store"
)

type followEdge struct {
	follower uuid.UUID
	followed uuid.UUID
}

// MockUserStore implements store.UserStore for testing. The default
// behavior keeps users in memory with case-insensitive username and email
// uniqueness and an in-memory follow edge set.
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn        func(ctx context.Context, user *domain.User) error
	GetByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	GetByEmailFn    func(ctx context.Context, email string) (*domain.User, error)
	UpdateFn        func(ctx context.Context, user *domain.User) error
	SetFollowFn     func(ctx context.Context, followerID, followedID uuid.UUID, follow bool) error
	IsFollowingFn   func(ctx context.Context, followerID, followedID uuid.UUID) (bool, error)

	mu      sync.Mutex
	users   map[uuid.UUID]*domain.User
	follows map[followEdge]struct{}
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a new mock store with initialized defaults.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users:   make(map[uuid.UUID]*domain.User),
		follows: make(map[followEdge]struct{}),
	}
}

// Seed inserts users directly, bypassing uniqueness checks. Test setup only.
func (m *MockUserStore) Seed(users ...*domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range users {
		copied := *u
		m.users[u.ID] = &copied
	}
}

// Create implements the UserStore interface.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return store.ErrUsernameExists
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return store.ErrEmailExists
		}
	}

	copied := *user
	m.users[user.ID] = &copied
	return nil
}

// GetByID implements the UserStore interface.
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// GetByUsername implements the UserStore interface.
func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if strings.EqualFold(user.Username, username) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements the UserStore interface.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Update implements the UserStore interface.
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}

	for id, existing := range m.users {
		if id == user.ID {
			continue
		}
		if strings.EqualFold(existing.Username, user.Username) {
			return store.ErrUsernameExists
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return store.ErrEmailExists
		}
	}

	copied := *user
	m.users[user.ID] = &copied
	return nil
}

// SetFollow implements the UserStore interface. Idempotent in both
// directions, like the Postgres implementation.
func (m *MockUserStore) SetFollow(ctx context.Context, followerID, followedID uuid.UUID, follow bool) error {
	if m.SetFollowFn != nil {
		return m.SetFollowFn(ctx, followerID, followedID, follow)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[followedID]; !ok {
		return store.ErrUserNotFound
	}
	if _, ok := m.users[followerID]; !ok {
		return store.ErrUserNotFound
	}

	edge := followEdge{follower: followerID, followed: followedID}
	if follow {
		m.follows[edge] = struct{}{}
	} else {
		delete(m.follows, edge)
	}
	return nil
}

// IsFollowing implements the UserStore interface.
func (m *MockUserStore) IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	if m.IsFollowingFn != nil {
		return m.IsFollowingFn(ctx, followerID, followedID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.follows[followEdge{follower: followerID, followed: followedID}]
	return ok, nil
}

// WithTx implements the UserStore interface. The mock has no transaction
// state, so it returns itself.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// lookupByID is a locked accessor for other mocks resolving joins against
// this store's users.
func (m *MockUserStore) lookupByID(id uuid.UUID) (*domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, false
	}
	copied := *user
	return &copied, true
}

// lookupByUsername is a locked accessor for other mocks, matched
// case-insensitively like GetByUsername.
func (m *MockUserStore) lookupByUsername(username string) (*domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if strings.EqualFold(user.Username, username) {
			copied := *user
			return &copied, true
		}
	}
	return nil, false
}

// hasFollow is a locked accessor for other mocks checking follow edges.
func (m *MockUserStore) hasFollow(followerID, followedID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.follows[followEdge{follower: followerID, followed: followedID}]
	return ok
}
