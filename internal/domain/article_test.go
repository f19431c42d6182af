package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArticle(t *testing.T) {
	t.Parallel()

	authorID := uuid.New()
	article, err := NewArticle(authorID, "my-first-post", "My First Post", "intro", "body text", []string{"go", "testing"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, article.ID)
	assert.Equal(t, authorID, article.AuthorID)
	assert.Equal(t, "my-first-post", article.Slug)
	assert.Equal(t, []string{"go", "testing"}, article.TagList)
	assert.Equal(t, article.CreatedAt, article.UpdatedAt)
}

func TestNewArticleValidation(t *testing.T) {
	t.Parallel()

	authorID := uuid.New()

	_, err := NewArticle(uuid.Nil, "slug", "Title", "", "", nil)
	assert.ErrorIs(t, err, ErrEmptyAuthorID)

	_, err = NewArticle(authorID, "", "Title", "", "", nil)
	assert.ErrorIs(t, err, ErrEmptySlug)

	_, err = NewArticle(authorID, "slug", "", "", "", nil)
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestNewComment(t *testing.T) {
	t.Parallel()

	articleID := uuid.New()
	authorID := uuid.New()

	comment, err := NewComment(articleID, authorID, "nice post")
	require.NoError(t, err)

	assert.Zero(t, comment.ID, "IDs are assigned by the store")
	assert.Equal(t, articleID, comment.ArticleID)
	assert.Equal(t, authorID, comment.AuthorID)

	_, err = NewComment(uuid.Nil, authorID, "hi")
	assert.ErrorIs(t, err, ErrEmptyCommentArticle)

	_, err = NewComment(articleID, uuid.Nil, "hi")
	assert.ErrorIs(t, err, ErrEmptyCommentAuthorID)

	_, err = NewComment(articleID, authorID, "")
	assert.ErrorIs(t, err, ErrEmptyCommentBody)
}
