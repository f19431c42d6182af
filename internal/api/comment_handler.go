package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/calvora/conduit/internal/api/shared"
	"github.com/calvora/conduit/internal/service"
)

// CommentHandler handles comment API requests.
type CommentHandler struct {
	commentService service.CommentService
}

// NewCommentHandler creates a new CommentHandler with the given dependencies.
func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// Add handles POST /api/articles/{slug}/comments.
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req AddCommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	slug := chi.URLParam(r, "slug")
	view, err := h.commentService.Add(r.Context(), userID, slug, req.Comment.Body)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewCommentResponse(view))
}

// List handles GET /api/articles/{slug}/comments.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	views, err := h.commentService.List(r.Context(), optionalUserID(r), slug)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCommentsResponse(views))
}

// Delete handles DELETE /api/articles/{slug}/comments/{id}.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	slug := chi.URLParam(r, "slug")
	commentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || commentID <= 0 {
		shared.RespondWithFieldError(w, r, http.StatusUnprocessableEntity, "id", "must be a positive integer")
		return
	}

	if err := h.commentService.Delete(r.Context(), userID, slug, commentID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}
