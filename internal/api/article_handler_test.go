package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvora/conduit/internal/api/shared"
	"github.com/calvora/conduit/internal/domain"
	"github.com/calvora/conduit/internal/mocks"
	"github.com/calvora/conduit/internal/service"
)

// articleTestEnv wires handlers against in-memory stores with a chi router
// so path parameters resolve the same way they do in production.
type articleTestEnv struct {
	router  chi.Router
	userSvc service.UserService
}

func newArticleTestEnv(t *testing.T) *articleTestEnv {
	t.Helper()

	users := mocks.NewMockUserStore()
	articles := mocks.NewMockArticleStore(users)
	comments := mocks.NewMockCommentStore(articles)

	userSvc, err := service.NewUserService(
		users,
		nil,
		&mocks.MockPasswordHasher{},
		&mocks.MockPasswordVerifier{},
		&mocks.MockJWTService{Token: "test-token"},
		nil,
	)
	require.NoError(t, err)

	articleSvc, err := service.NewArticleService(articles, users, nil, nil, nil)
	require.NoError(t, err)

	commentSvc, err := service.NewCommentService(comments, articles, users, nil)
	require.NoError(t, err)

	articleHandler := NewArticleHandler(articleSvc)
	commentHandler := NewCommentHandler(commentSvc)
	tagHandler := NewTagHandler(articleSvc)

	r := chi.NewRouter()
	r.Route("/api/articles", func(r chi.Router) {
		r.Get("/", articleHandler.List)
		r.Post("/", articleHandler.Create)
		r.Get("/feed", articleHandler.Feed)
		r.Route("/{slug}", func(r chi.Router) {
			r.Get("/", articleHandler.Get)
			r.Put("/", articleHandler.Update)
			r.Delete("/", articleHandler.Delete)
			r.Post("/favorite", articleHandler.Favorite)
			r.Delete("/favorite", articleHandler.Unfavorite)
			r.Get("/comments", commentHandler.List)
			r.Post("/comments", commentHandler.Add)
			r.Delete("/comments/{id}", commentHandler.Delete)
		})
	})
	r.Get("/api/tags", tagHandler.List)

	return &articleTestEnv{router: r, userSvc: userSvc}
}

func (e *articleTestEnv) newUser(t *testing.T, username string) *domain.User {
	t.Helper()

	user, _, err := e.userSvc.Register(httptest.NewRequest(http.MethodGet, "/", nil).Context(), username, username+"@example.com", "password123")
	require.NoError(t, err)
	return user
}

// do performs a request as the given user (nil for anonymous) and returns
// the recorder.
func (e *articleTestEnv) do(t *testing.T, method, target string, userID *uuid.UUID, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, body)
	if userID != nil {
		req = req.WithContext(shared.WithUserID(req.Context(), *userID))
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *articleTestEnv) createArticle(t *testing.T, userID uuid.UUID, title string, tags ...string) ArticleResponse {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/articles", &userID, map[string]interface{}{
		"article": map[string]interface{}{
			"title":       title,
			"description": "about " + title,
			"body":        "body of " + title,
			"tagList":     tags,
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp ArticleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestArticleHandlerCreateAndGet(t *testing.T) {
	t.Parallel()

	env := newArticleTestEnv(t)
	author := env.newUser(t, "jake")

	created := env.createArticle(t, author.ID, "How to Train Your Dragon", "dragons")
	assert.Equal(t, "how-to-train-your-dragon", created.Article.Slug)
	assert.Equal(t, "jake", created.Article.Author.Username)
	assert.Equal(t, []string{"dragons"}, created.Article.TagList)

	rec := env.do(t, http.MethodGet, "/api/articles/how-to-train-your-dragon", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got ArticleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "How to Train Your Dragon", got.Article.Title)
	assert.False(t, got.Article.Favorited)

	rec = env.do(t, http.MethodGet, "/api/articles/missing-slug", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestArticleHandlerCreateRequiresAuth(t *testing.T) {
	t.Parallel()

	env := newArticleTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/articles", nil, map[string]interface{}{
		"article": map[string]interface{}{"title": "Anonymous Post"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestArticleHandlerList(t *testing.T) {
	t.Parallel()

	env := newArticleTestEnv(t)
	author := env.newUser(t, "jake")

	env.createArticle(t, author.ID, "First Post", "go")
	env.createArticle(t, author.ID, "Second Post", "web")

	rec := env.do(t, http.MethodGet, "/api/articles", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ArticlesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.ArticlesCount)
	assert.Equal(t, "Second Post", resp.Articles[0].Title)

	rec = env.do(t, http.MethodGet, "/api/articles?tag=go", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ArticlesCount)

	rec = env.do(t, http.MethodGet, "/api/articles?limit=1&offset=1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.ArticlesCount)
	assert.Equal(t, "First Post", resp.Articles[0].Title)
}

func TestArticleHandlerFeed(t *testing.T) {
	t.Parallel()

	env := newArticleTestEnv(t)
	author := env.newUser(t, "jake")
	reader := env.newUser(t, "anna")

	env.createArticle(t, author.ID, "From Jake")

	rec := env.do(t, http.MethodGet, "/api/articles/feed", &reader.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ArticlesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.ArticlesCount)

	_, err := env.userSvc.Follow(httptest.NewRequest(http.MethodGet, "/", nil).Context(), reader.ID, "jake")
	require.NoError(t, err)

	rec = env.do(t, http.MethodGet, "/api/articles/feed", &reader.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.ArticlesCount)
	assert.True(t, resp.Articles[0].Author.Following)
}

func TestArticleHandlerUpdateAndDelete(t *testing.T) {
	t.Parallel()

	env := newArticleTestEnv(t)
	author := env.newUser(t, "jake")
	intruder := env.newUser(t, "anna")

	created := env.createArticle(t, author.ID, "Original Title")
	slug := created.Article.Slug

	rec := env.do(t, http.MethodPut, "/api/articles/"+slug, &intruder.ID, map[string]interface{}{
		"article": map[string]interface{}{"title": "Hijacked"},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/articles/"+slug, &author.ID, map[string]interface{}{
		"article": map[string]interface{}{"title": "Renamed Title"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ArticleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Renamed Title", resp.Article.Title)
	assert.Equal(t, slug, resp.Article.Slug)

	rec = env.do(t, http.MethodDelete, "/api/articles/"+slug, &intruder.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/articles/"+slug, &author.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/articles/"+slug, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestArticleHandlerFavorite(t *testing.T) {
	t.Parallel()

	env := newArticleTestEnv(t)
	author := env.newUser(t, "jake")
	fan := env.newUser(t, "anna")

	created := env.createArticle(t, author.ID, "Popular Post")
	slug := created.Article.Slug

	rec := env.do(t, http.MethodPost, "/api/articles/"+slug+"/favorite", &fan.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ArticleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Article.Favorited)
	assert.EqualValues(t, 1, resp.Article.FavoritesCount)

	rec = env.do(t, http.MethodDelete, "/api/articles/"+slug+"/favorite", &fan.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Article.Favorited)
	assert.Zero(t, resp.Article.FavoritesCount)
}

func TestCommentHandlerLifecycle(t *testing.T) {
	t.Parallel()

	env := newArticleTestEnv(t)
	author := env.newUser(t, "jake")
	commenter := env.newUser(t, "anna")

	created := env.createArticle(t, author.ID, "Discussed Post")
	slug := created.Article.Slug

	rec := env.do(t, http.MethodPost, "/api/articles/"+slug+"/comments", &commenter.ID, map[string]interface{}{
		"comment": map[string]interface{}{"body": "great read"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var comment CommentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comment))
	assert.Equal(t, "great read", comment.Comment.Body)
	assert.Equal(t, "anna", comment.Comment.Author.Username)

	rec = env.do(t, http.MethodGet, "/api/articles/"+slug+"/comments", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var comments CommentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments.Comments, 1)

	// Deleting someone else's comment is forbidden.
	rec = env.do(t, http.MethodDelete, "/api/articles/"+slug+"/comments/1", &author.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/articles/"+slug+"/comments/1", &commenter.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/articles/"+slug+"/comments/not-a-number", &commenter.ID, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestTagHandlerList(t *testing.T) {
	t.Parallel()

	env := newArticleTestEnv(t)
	author := env.newUser(t, "jake")

	rec := env.do(t, http.MethodGet, "/api/tags", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tags":[]}`, rec.Body.String())

	env.createArticle(t, author.ID, "First", "go", "web")

	rec = env.do(t, http.MethodGet, "/api/tags", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TagsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"go", "web"}, resp.Tags)
}
