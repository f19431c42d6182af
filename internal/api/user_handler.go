package api

import (
	"net/http"

	"github.com/calvora/conduit/internal/api/shared"
	"github.com/calvora/conduit/internal/service"
	"github.com/calvora/conduit/internal/service/auth"
)

// UserHandler handles registration, login and current-user API requests.
type UserHandler struct {
	userService service.UserService
	jwtService  auth.JWTService
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(userService service.UserService, jwtService auth.JWTService) *UserHandler {
	return &UserHandler{
		userService: userService,
		jwtService:  jwtService,
	}
}

// Register handles POST /api/users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, token, err := h.userService.Register(r.Context(), req.User.Username, req.User.Email, req.User.Password)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewUserResponse(user, token))
}

// Login handles POST /api/users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	identifier := req.Identifier()
	if identifier == "" {
		shared.RespondWithFieldError(w, r, http.StatusUnprocessableEntity, "email", "can't be blank")
		return
	}

	user, token, err := h.userService.Login(r.Context(), identifier, req.User.Password)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user, token))
}

// GetCurrent handles GET /api/user. The response carries a freshly minted
// token rather than echoing the one the client sent.
func (h *UserHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetCurrentUser(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user, token))
}

// Update handles PUT /api/user.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Update(r.Context(), userID, service.UserUpdate{
		Username: req.User.Username,
		Email:    req.User.Email,
		Password: req.User.Password,
		Bio:      req.User.Bio,
		Image:    req.User.Image,
	})
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user, token))
}
