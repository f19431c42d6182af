package mocks

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvora/conduit/internal/domain"
	"github.com/calvora/conduit/internal/store"
)

// List resolves author and follow filters against the user store, so
// concurrent user writes must not race with article listings. Run with the
// race detector to verify.
func TestListConcurrentWithUserWrites(t *testing.T) {
	t.Parallel()

	users := NewMockUserStore()
	articles := NewMockArticleStore(users)
	ctx := context.Background()

	author, err := domain.NewUser("jake", "jake@example.com", "hashed")
	require.NoError(t, err)
	reader, err := domain.NewUser("anna", "anna@example.com", "hashed")
	require.NoError(t, err)
	users.Seed(author, reader)

	article, err := domain.NewArticle(author.ID, "shared-post", "Shared Post", "d", "b", []string{"go"})
	require.NoError(t, err)
	require.NoError(t, articles.Create(ctx, article))

	const iterations = 200

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			if _, err := articles.List(ctx, store.ArticleFilter{Author: "jake"}); err != nil {
				t.Errorf("list by author: %v", err)
				return
			}
			if _, err := articles.List(ctx, store.ArticleFilter{FollowedBy: &reader.ID}); err != nil {
				t.Errorf("list by followed: %v", err)
				return
			}
			if _, err := articles.List(ctx, store.ArticleFilter{FavoritedBy: "anna"}); err != nil {
				t.Errorf("list by favorited: %v", err)
				return
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			follow := i%2 == 0
			if err := users.SetFollow(ctx, reader.ID, author.ID, follow); err != nil {
				t.Errorf("set follow: %v", err)
				return
			}
			updated := *author
			if err := users.Update(ctx, &updated); err != nil {
				t.Errorf("update user: %v", err)
				return
			}
		}
	}()

	wg.Wait()
}
