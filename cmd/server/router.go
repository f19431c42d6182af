package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/calvora/conduit/internal/api"
	apiMiddleware "github.com/calvora/conduit/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceID)

	userHandler := api.NewUserHandler(app.userService, app.jwtService)
	profileHandler := api.NewProfileHandler(app.userService)
	articleHandler := api.NewArticleHandler(app.articleService)
	commentHandler := api.NewCommentHandler(app.commentService)
	tagHandler := api.NewTagHandler(app.articleService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Public authentication endpoints
		r.Post("/users", userHandler.Register)
		r.Post("/users/login", userHandler.Login)

		// Current user endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/user", userHandler.GetCurrent)
			r.Put("/user", userHandler.Update)
		})

		// Profiles: reads work anonymously, follow state requires auth
		r.Route("/profiles/{username}", func(r chi.Router) {
			r.With(authMiddleware.AuthenticateOptional).Get("/", profileHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Post("/follow", profileHandler.Follow)
				r.Delete("/follow", profileHandler.Unfollow)
			})
		})

		// Articles
		r.Route("/articles", func(r chi.Router) {
			r.With(authMiddleware.AuthenticateOptional).Get("/", articleHandler.List)
			r.With(authMiddleware.Authenticate).Post("/", articleHandler.Create)
			r.With(authMiddleware.Authenticate).Get("/feed", articleHandler.Feed)

			r.Route("/{slug}", func(r chi.Router) {
				r.With(authMiddleware.AuthenticateOptional).Get("/", articleHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(authMiddleware.Authenticate)
					r.Put("/", articleHandler.Update)
					r.Delete("/", articleHandler.Delete)
					r.Post("/favorite", articleHandler.Favorite)
					r.Delete("/favorite", articleHandler.Unfavorite)
					r.Post("/comments", commentHandler.Add)
					r.Delete("/comments/{id}", commentHandler.Delete)
				})

				r.With(authMiddleware.AuthenticateOptional).Get("/comments", commentHandler.List)
			})
		})

		// Tags
		r.Get("/tags", tagHandler.List)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
