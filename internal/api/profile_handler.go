package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calvora/conduit/internal/api/shared"
	"github.com/calvora/conduit/internal/domain"
	"github.com/calvora/conduit/internal/service"
)

// ProfileHandler handles profile and follow API requests.
type ProfileHandler struct {
	userService service.UserService
}

// NewProfileHandler creates a new ProfileHandler with the given dependencies.
func NewProfileHandler(userService service.UserService) *ProfileHandler {
	return &ProfileHandler{
		userService: userService,
	}
}

// Get handles GET /api/profiles/{username}.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		shared.RespondWithFieldError(w, r, http.StatusUnprocessableEntity, "username", "is required")
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), optionalUserID(r), username)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewProfileResponse(profile))
}

// Follow handles POST /api/profiles/{username}/follow.
func (h *ProfileHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.setFollow(w, r, true)
}

// Unfollow handles DELETE /api/profiles/{username}/follow.
func (h *ProfileHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.setFollow(w, r, false)
}

func (h *ProfileHandler) setFollow(w http.ResponseWriter, r *http.Request, follow bool) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	username := chi.URLParam(r, "username")
	if username == "" {
		shared.RespondWithFieldError(w, r, http.StatusUnprocessableEntity, "username", "is required")
		return
	}

	var (
		profile domain.Profile
		err     error
	)
	if follow {
		profile, err = h.userService.Follow(r.Context(), userID, username)
	} else {
		profile, err = h.userService.Unfollow(r.Context(), userID, username)
	}
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewProfileResponse(profile))
}
