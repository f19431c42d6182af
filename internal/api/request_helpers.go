package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/calvora/conduit/internal/api/shared"
)

// getUserIDFromContext extracts the authenticated user's UUID from the
// request context, where the authentication middleware placed it.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	return shared.UserID(r.Context())
}

// optionalUserID returns a pointer to the viewer's ID, or nil for anonymous
// requests on optionally-authenticated routes.
func optionalUserID(r *http.Request) *uuid.UUID {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		return nil
	}
	return &userID
}

// requireUserID extracts the authenticated user's ID, writing a 401 response
// when it is absent. Returns false when the response was already written.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

// decodeAndValidate decodes the request body and validates it, writing a
// 422 response on failure. Returns false when the response was already
// written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "invalid request body")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "request validation failed")
		return false
	}
	return true
}
