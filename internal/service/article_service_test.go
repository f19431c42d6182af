package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvora/conduit/internal/domain"
	"github.com/calvora/conduit/internal/mocks"
	"github.com/calvora/conduit/internal/service"
	"github.com/calvora/conduit/internal/store"
)

type articleFixture struct {
	users    *mocks.MockUserStore
	articles *mocks.MockArticleStore
	userSvc  service.UserService
	svc      *service.ArticleServiceImpl
}

func newArticleFixture(t *testing.T) *articleFixture {
	t.Helper()

	users := mocks.NewMockUserStore()
	articles := mocks.NewMockArticleStore(users)

	userSvc, err := service.NewUserService(
		users,
		nil,
		&mocks.MockPasswordHasher{},
		&mocks.MockPasswordVerifier{},
		&mocks.MockJWTService{Token: "test-token"},
		nil,
	)
	require.NoError(t, err)

	svc, err := service.NewArticleService(articles, users, nil, nil, nil)
	require.NoError(t, err)

	return &articleFixture{
		users:    users,
		articles: articles,
		userSvc:  userSvc,
		svc:      svc,
	}
}

func (f *articleFixture) newUser(t *testing.T, username string) *domain.User {
	t.Helper()

	user, _, err := f.userSvc.Register(context.Background(), username, username+"@example.com", "password123")
	require.NoError(t, err)
	return user
}

func (f *articleFixture) publish(t *testing.T, author *domain.User, title string, tags ...string) *service.ArticleView {
	t.Helper()

	view, err := f.svc.Publish(context.Background(), author.ID, service.ArticleInput{
		Title:       title,
		Description: "about " + title,
		Body:        "body of " + title,
		TagList:     tags,
	})
	require.NoError(t, err)
	return view
}

func TestPublish(t *testing.T) {
	t.Parallel()

	f := newArticleFixture(t)
	author := f.newUser(t, "jake")

	view, err := f.svc.Publish(context.Background(), author.ID, service.ArticleInput{
		Title:       "How to Train Your Dragon",
		Description: "Ever wonder how?",
		Body:        "You have to believe",
		TagList:     []string{"dragons", "training"},
	})
	require.NoError(t, err)

	assert.Equal(t, "how-to-train-your-dragon", view.Slug)
	assert.Equal(t, "How to Train Your Dragon", view.Title)
	assert.Equal(t, []string{"dragons", "training"}, view.TagList)
	assert.False(t, view.Favorited)
	assert.Zero(t, view.FavoritesCount)
	assert.Equal(t, "jake", view.Author.Username)
	assert.False(t, view.Author.Following)
}

func TestPublishBlankTitle(t *testing.T) {
	t.Parallel()

	f := newArticleFixture(t)
	author := f.newUser(t, "jake")

	_, err := f.svc.Publish(context.Background(), author.ID, service.ArticleInput{Title: ""})

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)
}

func TestPublishSlugCollision(t *testing.T) {
	t.Parallel()

	f := newArticleFixture(t)
	f.svc.SetSuffixFunc(func() string { return "abcd1234" })
	author := f.newUser(t, "jake")

	first := f.publish(t, author, "Same Title")
	assert.Equal(t, "same-title", first.Slug)

	second := f.publish(t, author, "Same Title")
	assert.Equal(t, "same-title-abcd1234", second.Slug)
}

func TestPublishPunctuationOnlyTitle(t *testing.T) {
	t.Parallel()

	f := newArticleFixture(t)
	f.svc.SetSuffixFunc(func() string { return "abcd1234" })
	author := f.newUser(t, "jake")

	view := f.publish(t, author, "!!!")
	assert.Equal(t, "abcd1234", view.Slug)
}

func TestPublishSlugExhausted(t *testing.T) {
	t.Parallel()

	f := newArticleFixture(t)
	// A constant suffix makes every retry collide once the suffixed slug
	// is taken.
	f.svc.SetSuffixFunc(func() string { return "stuck" })
	author := f.newUser(t, "jake")

	f.publish(t, author, "Same Title")
	f.publish(t, author, "Same Title") // takes same-title-stuck

	_, err := f.svc.Publish(context.Background(), author.ID, service.ArticleInput{Title: "Same Title"})
	assert.ErrorIs(t, err, service.ErrSlugGenerationExhausted)
}

func TestGetArticle(t *testing.T) {
	t.Parallel()

	f := newArticleFixture(t)
	author := f.newUser(t, "jake")
	reader := f.newUser(t, "anna")
	published := f.publish(t, author, "Hello World")

	view, err := f.svc.Get(context.Background(), nil, published.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", view.Title)
	assert.False(t, view.Favorited)

	_, err = f.svc.Favorite(context.Background(), reader.ID, published.Slug, true)
	require.NoError(t, err)

	view, err = f.svc.Get(context.Background(), &reader.ID, published.Slug)
	require.NoError(t, err)
	assert.True(t, view.Favorited)
	assert.EqualValues(t, 1, view.FavoritesCount)

	// An anonymous read of the same article sees the count but not the flag.
	view, err = f.svc.Get(context.Background(), nil, published.Slug)
	require.NoError(t, err)
	assert.False(t, view.Favorited)
	assert.EqualValues(t, 1, view.FavoritesCount)

	_, err = f.svc.Get(context.Background(), nil, "missing-slug")
	assert.ErrorIs(t, err, store.ErrArticleNotFound)
}

func TestListArticles(t *testing.T) {
	t.Parallel()

	f := newArticleFixture(t)
	jake := f.newUser(t, "jake")
	anna := f.newUser(t, "anna")

	f.publish(t, jake, "First Post", "go")
	f.publish(t, anna, "Second Post", "go", "web")
	f.publish(t, anna, "Third Post", "web")

	// Unfiltered: newest first.
	views, err := f.svc.List(context.Background(), nil, service.ListQuery{})
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "Third Post", views[0].Title)
	assert.Equal(t, "Second Post", views[1].Title)
	assert.Equal(t, "First Post", views[2].Title)

	// Tag filter.
	views, err = f.svc.List(context.Background(), nil, service.ListQuery{Tag: "go"})
	require.NoError(t, err)
	require.Len(t, views, 2)

	// Author filter is case-insensitive.
	views, err = f.svc.List(context.Background(), nil, service.ListQuery{Author: "ANNA"})
	require.NoError(t, err)
	require.Len(t, views, 2)

	// Pagination.
	views, err = f.svc.List(context.Background(), nil, service.ListQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Second Post", views[0].Title)
}

func TestListByFavorited(t *testing.T) {
	t.Parallel()

	f := newArticleFixture(t)
	jake := f.newUser(t, "jake")
	anna := f.newUser(t, "anna")

	first := f.publish(t, jake, "First Post")
	f.publish(t, jake, "Second Post")

	_, err := f.svc.Favorite(context.Background(), anna.ID, first.Slug, true)
	require.NoError(t, err)

	views, err := f.svc.List(context.Background(), nil, service.ListQuery{FavoritedBy: "anna"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "First Post", views[0].Title)

	// Unknown fan matches nothing.
	views, err = f.svc.List(context.Background(), nil, service.ListQuery{FavoritedBy: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestListDefaultLimit(t *testing.T) {
	t.Parallel()

	f := newArticleFixture(t)
	jake := f.newUser(t, "jake")

	for i := 0; i < 25; i++ {
		f.publish(t, jake, fmt.Sprintf("Post %d", i))
	}

	views, err := f.svc.List(context.Background(), nil, service.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, views, 20)
}

func TestFeed(t *testing.T) {
	t.Parallel()

	f := newArticleFixture(t)
	jake := f.newUser(t, "jake")
	anna := f.newUser(t, "anna")
	reader := f.newUser(t, "reader")

	f.publish(t, jake, "From Jake")
	f.publish(t, anna, "From Anna")

	// Empty feed before following anyone.
	views, err := f.svc.Feed(context.Background(), reader.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = f.userSvc.Follow(context.Background(), reader.ID, "anna")
	require.NoError(t, err)

	views, err = f.svc.Feed(context.Background(), reader.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "From Anna", views[0].Title)
	assert.True(t, views[0].Author.Following)
}

func TestUpdateArticle(t *testing.T) {
	t.Parallel()

	f := newArticleFixture(t)
	author := f.newUser(t, "jake")
	published := f.publish(t, author, "Original Title")

	newTitle := "Completely Different Title"
	newBody := "rewritten"
	view, err := f.svc.Update(context.Background(), author.ID, published.Slug, service.ArticleUpdate{
		Title: &newTitle,
		Body:  &newBody,
	})
	require.NoError(t, err)

	assert.Equal(t, "Completely Different Title", view.Title)
	assert.Equal(t, "rewritten", view.Body)
	assert.Equal(t, published.Slug, view.Slug, "slug survives title changes")
	assert.Equal(t, "about Original Title", view.Description, "unset fields stay unchanged")

	// The article is still reachable under its original slug.
	_, err = f.svc.Get(context.Background(), nil, published.Slug)
	assert.NoError(t, err)
}

func TestUpdateArticleAuthorOnly(t *testing.T) {
	t.Parallel()

	f := newArticleFixture(t)
	author := f.newUser(t, "jake")
	intruder := f.newUser(t, "anna")
	published := f.publish(t, author, "My Post")

	title := "Hijacked"
	_, err := f.svc.Update(context.Background(), intruder.ID, published.Slug, service.ArticleUpdate{Title: &title})
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestDeleteArticle(t *testing.T) {
	t.Parallel()

	f := newArticleFixture(t)
	author := f.newUser(t, "jake")
	intruder := f.newUser(t, "anna")
	published := f.publish(t, author, "Doomed Post")

	err := f.svc.Delete(context.Background(), intruder.ID, published.Slug)
	assert.ErrorIs(t, err, service.ErrForbidden)

	err = f.svc.Delete(context.Background(), author.ID, published.Slug)
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), nil, published.Slug)
	assert.ErrorIs(t, err, store.ErrArticleNotFound)

	err = f.svc.Delete(context.Background(), author.ID, published.Slug)
	assert.ErrorIs(t, err, store.ErrArticleNotFound)
}

func TestFavoriteIdempotent(t *testing.T) {
	t.Parallel()

	f := newArticleFixture(t)
	author := f.newUser(t, "jake")
	fan := f.newUser(t, "anna")
	published := f.publish(t, author, "Popular Post")

	view, err := f.svc.Favorite(context.Background(), fan.ID, published.Slug, true)
	require.NoError(t, err)
	assert.True(t, view.Favorited)
	assert.EqualValues(t, 1, view.FavoritesCount)

	// Favoriting twice does not double-count.
	view, err = f.svc.Favorite(context.Background(), fan.ID, published.Slug, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, view.FavoritesCount)

	view, err = f.svc.Favorite(context.Background(), fan.ID, published.Slug, false)
	require.NoError(t, err)
	assert.False(t, view.Favorited)
	assert.Zero(t, view.FavoritesCount)

	view, err = f.svc.Favorite(context.Background(), fan.ID, published.Slug, false)
	require.NoError(t, err)
	assert.Zero(t, view.FavoritesCount)
}

func TestListTags(t *testing.T) {
	t.Parallel()

	f := newArticleFixture(t)
	jake := f.newUser(t, "jake")

	f.publish(t, jake, "First", "go", "web")
	f.publish(t, jake, "Second", "go", "databases")

	tags, err := f.svc.ListTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"databases", "go", "web"}, tags)
}

// recordingTagCache counts hits against an in-memory cache entry.
type recordingTagCache struct {
	tags        []string
	ok          bool
	gets        int
	sets        int
	invalidates int
}

func (c *recordingTagCache) Get(ctx context.Context) ([]string, bool, error) {
	c.gets++
	return c.tags, c.ok, nil
}

func (c *recordingTagCache) Set(ctx context.Context, tags []string) error {
	c.sets++
	c.tags = tags
	c.ok = true
	return nil
}

func (c *recordingTagCache) Invalidate(ctx context.Context) error {
	c.invalidates++
	c.tags = nil
	c.ok = false
	return nil
}

func TestListTagsUsesCache(t *testing.T) {
	t.Parallel()

	users := mocks.NewMockUserStore()
	articles := mocks.NewMockArticleStore(users)
	cache := &recordingTagCache{}

	svc, err := service.NewArticleService(articles, users, nil, cache, nil)
	require.NoError(t, err)

	// Miss populates the cache.
	_, err = svc.ListTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.gets)
	assert.Equal(t, 1, cache.sets)

	// Hit skips the store and keeps the cached value.
	tags, err := svc.ListTags(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tags)
	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.sets)
}
