package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/calvora/conduit/internal/api/shared"
	"github.com/calvora/conduit/internal/service"
)

// ArticleHandler handles article, feed and favorite API requests.
type ArticleHandler struct {
	articleService service.ArticleService
}

// NewArticleHandler creates a new ArticleHandler with the given dependencies.
func NewArticleHandler(articleService service.ArticleService) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
	}
}

// Create handles POST /api/articles.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateArticleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	view, err := h.articleService.Publish(r.Context(), userID, service.ArticleInput{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
		TagList:     req.Article.TagList,
	})
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewArticleResponse(view))
}

// Get handles GET /api/articles/{slug}.
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	view, err := h.articleService.Get(r.Context(), optionalUserID(r), slug)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewArticleResponse(view))
}

// List handles GET /api/articles.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	views, err := h.articleService.List(r.Context(), optionalUserID(r), service.ListQuery{
		Tag:         query.Get("tag"),
		Author:      query.Get("author"),
		FavoritedBy: query.Get("favorited"),
		Limit:       parseQueryInt(query.Get("limit"), 0),
		Offset:      parseQueryInt(query.Get("offset"), 0),
	})
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewArticlesResponse(views))
}

// Feed handles GET /api/articles/feed.
func (h *ArticleHandler) Feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	views, err := h.articleService.Feed(r.Context(), userID,
		parseQueryInt(query.Get("limit"), 0),
		parseQueryInt(query.Get("offset"), 0))
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewArticlesResponse(views))
}

// Update handles PUT /api/articles/{slug}.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req UpdateArticleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	slug := chi.URLParam(r, "slug")
	view, err := h.articleService.Update(r.Context(), userID, slug, service.ArticleUpdate{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
	})
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewArticleResponse(view))
}

// Delete handles DELETE /api/articles/{slug}.
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	slug := chi.URLParam(r, "slug")
	if err := h.articleService.Delete(r.Context(), userID, slug); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// Favorite handles POST /api/articles/{slug}/favorite.
func (h *ArticleHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	h.setFavorite(w, r, true)
}

// Unfavorite handles DELETE /api/articles/{slug}/favorite.
func (h *ArticleHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	h.setFavorite(w, r, false)
}

func (h *ArticleHandler) setFavorite(w http.ResponseWriter, r *http.Request, favorite bool) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	slug := chi.URLParam(r, "slug")
	view, err := h.articleService.Favorite(r.Context(), userID, slug, favorite)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewArticleResponse(view))
}

// parseQueryInt parses a non-negative integer query parameter, falling back
// to the default on absent or malformed values.
func parseQueryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
