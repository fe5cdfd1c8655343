package handlers

import (
	"net/http"

	"alarm-clock-backend/internal/middleware"
	"alarm-clock-backend/internal/models"
	"alarm-clock-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles account HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// PhoneRequest is the body of register and login
type PhoneRequest struct {
	Phone string `json:"phone"`
}

// PushTokenRequest is the body of a push token update
type PushTokenRequest struct {
	PushToken string `json:"push_token"`
}

// CurrentUserResponse describes who is signed in
type CurrentUserResponse struct {
	LoggedIn bool         `json:"logged_in"`
	User     *models.User `json:"user,omitempty"`
}

// Register handles POST /api/account/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req PhoneRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.userService.Register(r.Context(), req.Phone)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register user")
		respondServiceError(w, err, "Failed to register user")
		return
	}

	log.Info().
		Str("user_id", res.ID).
		Msg("User registered")

	respondJSON(w, res, http.StatusOK)
}

// Login handles POST /api/account/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req PhoneRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.userService.Login(r.Context(), req.Phone)
	if err != nil {
		if errorStatus(err) == http.StatusInternalServerError {
			log.Error().Err(err).Msg("Failed to log in user")
		}
		respondServiceError(w, err, "Failed to log in")
		return
	}

	log.Info().
		Str("user_id", res.ID).
		Msg("User logged in")

	respondJSON(w, res, http.StatusOK)
}

// Logout handles POST /api/account/logout. Tokens are stateless, the client discards its own.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, SuccessResponse{Success: true}, http.StatusOK)
}

// Current handles GET /api/account
func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := middleware.GetScope(ctx)

	user, err := h.userService.Current(ctx, scope)
	if err != nil {
		log.Error().Err(err).Str("scope", scope.String()).Msg("Failed to get current user")
		respondError(w, "Failed to get current user", http.StatusInternalServerError)
		return
	}

	respondJSON(w, CurrentUserResponse{LoggedIn: user != nil, User: user}, http.StatusOK)
}

// UpdatePushToken handles POST /api/account/push_token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := middleware.GetScope(ctx)

	var req PushTokenRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.UpdatePushToken(ctx, scope, req.PushToken); err != nil {
		log.Error().Err(err).Str("scope", scope.String()).Msg("Failed to update push token")
		respondServiceError(w, err, "Failed to update push token")
		return
	}

	respondJSON(w, SuccessResponse{Success: true}, http.StatusOK)
}
