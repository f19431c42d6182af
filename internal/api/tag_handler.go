package api

import (
	"net/http"

	"github.com/calvora/conduit/internal/api/shared"
	"github.com/calvora/conduit/internal/service"
)

// TagHandler handles the tag listing API request.
type TagHandler struct {
	articleService service.ArticleService
}

// NewTagHandler creates a new TagHandler with the given dependencies.
func NewTagHandler(articleService service.ArticleService) *TagHandler {
	return &TagHandler{
		articleService: articleService,
	}
}

// List handles GET /api/tags.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.articleService.ListTags(r.Context())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTagsResponse(tags))
}
