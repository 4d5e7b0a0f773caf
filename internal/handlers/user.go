package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/wallet-api/internal/dto"
	"github.com/GregMSThompson/wallet-api/internal/middleware"
	"github.com/GregMSThompson/wallet-api/internal/models"
	"github.com/GregMSThompson/wallet-api/internal/response"
)

type userService interface {
	SignUp(ctx context.Context, req dto.SignUpRequest) (*dto.SessionResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.SessionResponse, error)
	Logout(ctx context.Context, uid string) error
	GetProfile(ctx context.Context, uid string) (*models.User, error)
	UpdateProfile(ctx context.Context, uid string, patch *models.UserPatch) (*models.User, error)
}

type userHandlers struct {
	ResponseHandler response.ResponseHandler
	UserSvc         userService
}

func NewUserHandlers(deps *Deps) *userHandlers {
	return &userHandlers{
		ResponseHandler: deps.ResponseHandler,
		UserSvc:         deps.UserSvc,
	}
}

// AuthRoutes are mounted without the auth middleware; Logout reads the uid
// and must be wrapped by the caller.
func (h *userHandlers) AuthRoutes(authMW func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/signup", h.SignUp)
	r.Post("/login", h.Login)
	r.With(authMW).Post("/logout", h.Logout)
	return r
}

func (h *userHandlers) UserRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/me", h.GetProfile)
	r.Patch("/me", h.UpdateProfile)
	return r
}

func (h *userHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	session, err := h.UserSvc.SignUp(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, session)
}

func (h *userHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	session, err := h.UserSvc.Login(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, session)
}

func (h *userHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.UserSvc.Logout(r.Context(), middleware.UID(r.Context())); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusNoContent, nil)
}

func (h *userHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserSvc.GetProfile(r.Context(), middleware.UID(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, user)
}

func (h *userHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	user, err := h.UserSvc.UpdateProfile(r.Context(), middleware.UID(r.Context()), &patch)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, user)
}
