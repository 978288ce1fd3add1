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

// AdminHandler exposes privileged user management. Every route requires an
// authenticated admin.
type AdminHandler struct {
	userService *service.UserService
	denylist    repository.SessionDenylist
}

func NewAdminHandler(userService *service.UserService, denylist repository.SessionDenylist) *AdminHandler {
	return &AdminHandler{userService: userService, denylist: denylist}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator(h.denylist))
	r.Use(middleware.AdminOnly)
	r.Get("/users", h.listUsers)
	r.Get("/users/{userID}", h.getUser)
	r.Put("/users/{userID}", h.updateUser)
	r.Delete("/users/{userID}", h.deleteUser)
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), chi.URLParam(r, "userID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.DeleteUser(r.Context(), chi.URLParam(r, "userID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "User deleted"})
}
