package api

import (
	"time"

	"github.com/calvora/conduit/internal/domain"
	"github.com/calvora/conduit/internal/service"
)

// Request payloads. Every mutating endpoint wraps its payload in a
// single-key envelope named after the entity.

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	User struct {
		Username string `json:"username" validate:"required"`
		Email    string `json:"email"    validate:"required,email"`
		Password string `json:"password" validate:"required,min=8,max=72"`
	} `json:"user" validate:"required"`
}

// LoginRequest defines the payload for the user login endpoint. Clients
// identify themselves by email or by username; email wins when both are
// present.
type LoginRequest struct {
	User struct {
		Email    string `json:"email,omitempty"`
		Username string `json:"username,omitempty"`
		Password string `json:"password" validate:"required,min=1"`
	} `json:"user" validate:"required"`
}

// Identifier returns the login identifier the client supplied.
func (r *LoginRequest) Identifier() string {
	if r.User.Email != "" {
		return r.User.Email
	}
	return r.User.Username
}

// UpdateUserRequest defines the payload for the current-user update
// endpoint. Absent fields are left unchanged.
type UpdateUserRequest struct {
	User struct {
		Username *string `json:"username,omitempty"`
		Email    *string `json:"email,omitempty"`
		Password *string `json:"password,omitempty"`
		Bio      *string `json:"bio,omitempty"`
		Image    *string `json:"image,omitempty"`
	} `json:"user" validate:"required"`
}

// CreateArticleRequest defines the payload for the article creation
// endpoint.
type CreateArticleRequest struct {
	Article struct {
		Title       string   `json:"title"       validate:"required"`
		Description string   `json:"description"`
		Body        string   `json:"body"`
		TagList     []string `json:"tagList,omitempty"`
	} `json:"article" validate:"required"`
}

// UpdateArticleRequest defines the payload for the article update endpoint.
// Absent fields are left unchanged; the slug never changes.
type UpdateArticleRequest struct {
	Article struct {
		Title       *string `json:"title,omitempty"`
		Description *string `json:"description,omitempty"`
		Body        *string `json:"body,omitempty"`
	} `json:"article" validate:"required"`
}

// AddCommentRequest defines the payload for the comment creation endpoint.
type AddCommentRequest struct {
	Comment struct {
		Body string `json:"body" validate:"required"`
	} `json:"comment" validate:"required"`
}

// Response payloads.

// UserPayload is the authenticated-user projection, always carrying a fresh
// token.
type UserPayload struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
}

// UserResponse is the envelope for authenticated-user endpoints.
type UserResponse struct {
	User UserPayload `json:"user"`
}

// NewUserResponse builds the user envelope from a domain user and token.
func NewUserResponse(user *domain.User, token string) UserResponse {
	return UserResponse{User: UserPayload{
		Email:    user.Email,
		Token:    token,
		Username: user.Username,
		Bio:      user.Bio,
		Image:    user.Image,
	}}
}

// ProfilePayload is the public, viewer-relative projection of a user.
type ProfilePayload struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Image     string `json:"image"`
	Following bool   `json:"following"`
}

// ProfileResponse is the envelope for profile endpoints.
type ProfileResponse struct {
	Profile ProfilePayload `json:"profile"`
}

// NewProfileResponse builds the profile envelope from a domain profile.
func NewProfileResponse(profile domain.Profile) ProfileResponse {
	return ProfileResponse{Profile: ProfilePayload{
		Username:  profile.Username,
		Bio:       profile.Bio,
		Image:     profile.Image,
		Following: profile.Following,
	}}
}

// ArticlePayload is the full article projection, decorated for the viewer.
type ArticlePayload struct {
	Slug           string         `json:"slug"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Body           string         `json:"body"`
	TagList        []string       `json:"tagList"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	Favorited      bool           `json:"favorited"`
	FavoritesCount int64          `json:"favoritesCount"`
	Author         ProfilePayload `json:"author"`
}

// ArticleResponse is the envelope for single-article endpoints.
type ArticleResponse struct {
	Article ArticlePayload `json:"article"`
}

// ArticlesResponse is the envelope for article listing endpoints.
type ArticlesResponse struct {
	Articles      []ArticlePayload `json:"articles"`
	ArticlesCount int              `json:"articlesCount"`
}

// NewArticlePayload builds the article projection from a service view.
func NewArticlePayload(view *service.ArticleView) ArticlePayload {
	tagList := view.TagList
	if tagList == nil {
		tagList = []string{}
	}
	return ArticlePayload{
		Slug:           view.Slug,
		Title:          view.Title,
		Description:    view.Description,
		Body:           view.Body,
		TagList:        tagList,
		CreatedAt:      view.CreatedAt,
		UpdatedAt:      view.UpdatedAt,
		Favorited:      view.Favorited,
		FavoritesCount: view.FavoritesCount,
		Author: ProfilePayload{
			Username:  view.Author.Username,
			Bio:       view.Author.Bio,
			Image:     view.Author.Image,
			Following: view.Author.Following,
		},
	}
}

// NewArticleResponse builds the single-article envelope.
func NewArticleResponse(view *service.ArticleView) ArticleResponse {
	return ArticleResponse{Article: NewArticlePayload(view)}
}

// NewArticlesResponse builds the listing envelope.
func NewArticlesResponse(views []*service.ArticleView) ArticlesResponse {
	articles := make([]ArticlePayload, 0, len(views))
	for _, view := range views {
		articles = append(articles, NewArticlePayload(view))
	}
	return ArticlesResponse{Articles: articles, ArticlesCount: len(articles)}
}

// CommentPayload is the full comment projection with its author's profile.
type CommentPayload struct {
	ID        int64          `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Body      string         `json:"body"`
	Author    ProfilePayload `json:"author"`
}

// CommentResponse is the envelope for single-comment endpoints.
type CommentResponse struct {
	Comment CommentPayload `json:"comment"`
}

// CommentsResponse is the envelope for comment listing endpoints.
type CommentsResponse struct {
	Comments []CommentPayload `json:"comments"`
}

// NewCommentPayload builds the comment projection from a service view.
func NewCommentPayload(view *service.CommentView) CommentPayload {
	return CommentPayload{
		ID:        view.ID,
		CreatedAt: view.CreatedAt,
		UpdatedAt: view.UpdatedAt,
		Body:      view.Body,
		Author: ProfilePayload{
			Username:  view.Author.Username,
			Bio:       view.Author.Bio,
			Image:     view.Author.Image,
			Following: view.Author.Following,
		},
	}
}

// NewCommentResponse builds the single-comment envelope.
func NewCommentResponse(view *service.CommentView) CommentResponse {
	return CommentResponse{Comment: NewCommentPayload(view)}
}

// NewCommentsResponse builds the comment listing envelope.
func NewCommentsResponse(views []*service.CommentView) CommentsResponse {
	comments := make([]CommentPayload, 0, len(views))
	for _, view := range views {
		comments = append(comments, NewCommentPayload(view))
	}
	return CommentsResponse{Comments: comments}
}

// TagsResponse is the envelope for the tag listing endpoint.
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// NewTagsResponse builds the tag envelope, normalizing nil to an empty list.
func NewTagsResponse(tags []string) TagsResponse {
	if tags == nil {
		tags = []string{}
	}
	return TagsResponse{Tags: tags}
}
