package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyArticleID = errors.New("article ID cannot be empty")
	ErrEmptyAuthorID  = errors.New("article author ID cannot be empty")
	ErrEmptySlug      = errors.New("article slug cannot be empty")
	ErrEmptyTitle     = errors.New("article title cannot be empty")
)

// Article is an aggregate root: comments and favorites hang off it and are
// removed with it. The author never changes after creation, and neither does
// the slug; title edits keep published URLs stable.
type Article struct {
	ID          uuid.UUID `json:"id"`
	AuthorID    uuid.UUID `json:"author_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Body        string    `json:"body"`
	TagList     []string  `json:"tag_list"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewArticle creates an Article with a fresh ID and creation timestamps.
// The slug is supplied by the caller, which owns uniqueness handling.
func NewArticle(authorID uuid.UUID, slug, title, description, body string, tagList []string) (*Article, error) {
	now := time.Now().UTC()
	article := &Article{
		ID:          uuid.New(),
		AuthorID:    authorID,
		Slug:        slug,
		Title:       title,
		Description: description,
		Body:        body,
		TagList:     tagList,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := article.Validate(); err != nil {
		return nil, err
	}

	return article, nil
}

// Validate checks if the Article has valid data.
func (a *Article) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyArticleID
	}
	if a.AuthorID == uuid.Nil {
		return ErrEmptyAuthorID
	}
	if a.Slug == "" {
		return ErrEmptySlug
	}
	if a.Title == "" {
		return ErrEmptyTitle
	}
	return nil
}
