package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/calvora/conduit/internal/domain"
	"github.com/calvora/conduit/internal/store"
)

// CommentView is a comment decorated with its author's profile, computed
// relative to the viewer.
type CommentView struct {
	*domain.Comment
	Author domain.Profile
}

// CommentService provides commenting operations on articles.
type CommentService interface {
	// Add attaches a new comment to the article behind the slug.
	// Returns store.ErrArticleNotFound if the slug is unknown.
	Add(ctx context.Context, authorID uuid.UUID, slug, body string) (*CommentView, error)

	// List returns the article's comments in chronological order, each with
	// its author's profile.
	List(ctx context.Context, viewerID *uuid.UUID, slug string) ([]*CommentView, error)

	// Delete removes a comment. Only the comment's author may delete it;
	// anyone else gets ErrForbidden. The comment must belong to the article
	// behind the slug.
	Delete(ctx context.Context, userID uuid.UUID, slug string, commentID int64) error
}

// CommentServiceImpl implements the CommentService interface.
type CommentServiceImpl struct {
	commentStore store.CommentStore
	articleStore store.ArticleStore
	userStore    store.UserStore
	logger       *slog.Logger
}

var _ CommentService = (*CommentServiceImpl)(nil)

// NewCommentService creates a new CommentService.
func NewCommentService(
	commentStore store.CommentStore,
	articleStore store.ArticleStore,
	userStore store.UserStore,
	logger *slog.Logger,
) (*CommentServiceImpl, error) {
	if commentStore == nil {
		return nil, fmt.Errorf("commentStore cannot be nil")
	}
	if articleStore == nil {
		return nil, fmt.Errorf("articleStore cannot be nil")
	}
	if userStore == nil {
		return nil, fmt.Errorf("userStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CommentServiceImpl{
		commentStore: commentStore,
		articleStore: articleStore,
		userStore:    userStore,
		logger:       logger.With("component", "comment_service"),
	}, nil
}

// Add attaches a new comment to the article behind the slug.
func (s *CommentServiceImpl) Add(ctx context.Context, authorID uuid.UUID, slug, body string) (*CommentView, error) {
	if body == "" {
		return nil, NewValidationError("body", "can't be blank")
	}

	article, err := s.articleStore.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	author, err := s.userStore.GetByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve comment author: %w", err)
	}

	comment, err := domain.NewComment(article.ID, authorID, body)
	if err != nil {
		return nil, err
	}

	if err := s.commentStore.Create(ctx, comment); err != nil {
		if errors.Is(err, store.ErrArticleNotFound) {
			// The article vanished between lookup and insert.
			return nil, err
		}
		s.logger.Error("failed to create comment", "error", err, "slug", slug)
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	s.logger.Info("comment added", "comment_id", comment.ID, "slug", slug, "author_id", authorID)
	return &CommentView{
		Comment: comment,
		Author:  author.Profile(false),
	}, nil
}

// List returns the article's comments in chronological order.
func (s *CommentServiceImpl) List(ctx context.Context, viewerID *uuid.UUID, slug string) ([]*CommentView, error) {
	article, err := s.articleStore.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentStore.ListForArticle(ctx, article.ID)
	if err != nil {
		s.logger.Error("failed to list comments", "error", err, "slug", slug)
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	views := make([]*CommentView, 0, len(comments))
	authors := make(map[uuid.UUID]domain.Profile)

	for _, comment := range comments {
		profile, seen := authors[comment.AuthorID]
		if !seen {
			author, err := s.userStore.GetByID(ctx, comment.AuthorID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve comment author: %w", err)
			}
			following := false
			if viewerID != nil {
				following, err = s.userStore.IsFollowing(ctx, *viewerID, author.ID)
				if err != nil {
					return nil, fmt.Errorf("failed to resolve comment author: %w", err)
				}
			}
			profile = author.Profile(following)
			authors[comment.AuthorID] = profile
		}

		views = append(views, &CommentView{
			Comment: comment,
			Author:  profile,
		})
	}

	return views, nil
}

// Delete removes a comment after checking ownership.
func (s *CommentServiceImpl) Delete(ctx context.Context, userID uuid.UUID, slug string, commentID int64) error {
	article, err := s.articleStore.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}

	comment, err := s.commentStore.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	// A comment ID under the wrong article's slug is treated as not found
	// so callers cannot probe other articles' comment IDs.
	if comment.ArticleID != article.ID {
		return store.ErrCommentNotFound
	}

	if comment.AuthorID != userID {
		return ErrForbidden
	}

	if err := s.commentStore.Delete(ctx, commentID); err != nil {
		s.logger.Error("failed to delete comment", "error", err, "comment_id", commentID)
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	s.logger.Info("comment deleted", "comment_id", commentID, "slug", slug)
	return nil
}
