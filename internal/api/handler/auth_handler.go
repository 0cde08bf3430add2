package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/app/service"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/common"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/refresh", h.refresh)
}

// RegisterUserRoutes mounts user management. Callers put it behind the
// authenticator.
func (h *AuthHandler) RegisterUserRoutes(r chi.Router) {
	r.Get("/", h.listUsers)
	r.Get("/{id}", h.getUser)
	r.Put("/{id}", h.updateUser)
	r.Delete("/{id}", h.deleteUser)
}

// authErrorMessage is the client-facing text for a known auth failure.
func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrDuplicateUsername):
		return "Username already exists"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, common.ErrMissingToken):
		return "Refresh token required"
	case errors.Is(err, common.ErrInvalidToken):
		return "Invalid refresh token"
	case errors.Is(err, common.ErrNotFound):
		return "User not found"
	}
	return err.Error()
}

// respondAuthError writes {"error": ...}; unexpected failures become 500 with
// the generic text in "error" and the cause in "message".
func respondAuthError(w http.ResponseWriter, r *http.Request, err error, internalMessage string) {
	status := common.HTTPStatusFromError(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg(internalMessage)
		common.RespondWithJSON(w, status, common.ErrorResponse{Error: internalMessage, Message: err.Error()})
		return
	}
	common.RespondWithError(w, status, authErrorMessage(err))
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		respondAuthError(w, r, err, "Failed to register user")
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			zerolog.Ctx(r.Context()).Warn().Str("username", req.Username).Msg("Failed authentication attempt")
		}
		respondAuthError(w, r, err, "Failed to log in")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req service.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !isEmptyBody(err) {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	resp, err := h.authService.Refresh(r.Context(), req)
	if err != nil {
		respondAuthError(w, r, err, "Failed to refresh token")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		respondAuthError(w, r, err, "Failed to fetch users")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *AuthHandler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondAuthError(w, r, err, "Failed to fetch user")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	user, err := h.authService.UpdateUser(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondAuthError(w, r, err, "Failed to update user")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondAuthError(w, r, err, "Failed to delete user")
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "User deleted successfully")
}
