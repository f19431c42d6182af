package api

import (
	"errors"
	"net/http"

	"github.com/calvora/conduit/internal/api/shared"
	"github.com/calvora/conduit/internal/service"
	"github.com/calvora/conduit/internal/service/auth"
	"github.com/calvora/conduit/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrArticleNotFound),
		errors.Is(err, store.ErrCommentNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrValidation):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}

// HandleServiceError writes the response for an error coming out of the
// service layer. Validation errors keep their field attribution; everything
// else is collapsed into a safe generic message.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		shared.RespondWithFieldError(w, r, status, verr.Field, verr.Message)
		return
	}

	if status == http.StatusInternalServerError {
		shared.RespondWithErrorAndLog(w, r, status, "internal server error", err)
		return
	}

	shared.RespondWithError(w, r, status, safeErrorMessage(err))
}

// safeErrorMessage returns a sanitized, user-facing message for a mapped
// error.
func safeErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return "invalid username, email or password"

	case errors.Is(err, auth.ErrExpiredToken):
		return "token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "invalid token"

	case errors.Is(err, service.ErrForbidden):
		return "you do not have permission to modify this resource"

	case errors.Is(err, store.ErrUserNotFound):
		return "user not found"

	case errors.Is(err, store.ErrArticleNotFound):
		return "article not found"

	case errors.Is(err, store.ErrCommentNotFound):
		return "comment not found"

	default:
		return "an unexpected error occurred"
	}
}
