package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Aniketv10/E-Commerce-Back-End/internal/api/middleware"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/app/service"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/common"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/domain/repository"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService     *service.UserService
	passwordService *service.PasswordService
	denylist        repository.SessionDenylist
}

func NewUserHandler(userService *service.UserService, passwordService *service.PasswordService, denylist repository.SessionDenylist) *UserHandler {
	return &UserHandler{userService: userService, passwordService: passwordService, denylist: denylist}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator(h.denylist))
	r.Get("/me", h.getProfile)
	r.Put("/me/update", h.updateProfile)
	r.Put("/password/update", h.updatePassword)
}

func (h *UserHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

type updatePasswordRequest struct {
	OldPassword string `json:"old_password"`
	Password    string `json:"password"`
}

func (h *UserHandler) updatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req updatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.passwordService.UpdatePassword(r.Context(), userID, req.OldPassword, req.Password)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
