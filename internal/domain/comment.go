package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyCommentBody     = errors.New("comment body cannot be empty")
	ErrEmptyCommentArticle  = errors.New("comment article ID cannot be empty")
	ErrEmptyCommentAuthorID = errors.New("comment author ID cannot be empty")
)

// Comment belongs to exactly one article and one author. IDs are assigned by
// the store and increase monotonically with creation order.
type Comment struct {
	ID        int64     `json:"id"`
	ArticleID uuid.UUID `json:"article_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewComment creates a Comment attached to an article. The ID stays zero
// until the store assigns one.
func NewComment(articleID, authorID uuid.UUID, body string) (*Comment, error) {
	now := time.Now().UTC()
	comment := &Comment{
		ArticleID: articleID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks if the Comment has valid data.
func (c *Comment) Validate() error {
	if c.ArticleID == uuid.Nil {
		return ErrEmptyCommentArticle
	}
	if c.AuthorID == uuid.Nil {
		return ErrEmptyCommentAuthorID
	}
	if c.Body == "" {
		return ErrEmptyCommentBody
	}
	return nil
}
