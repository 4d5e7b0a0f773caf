package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/wallet-api/internal/dto"
	"github.com/GregMSThompson/wallet-api/internal/middleware"
	"github.com/GregMSThompson/wallet-api/internal/models"
	"github.com/GregMSThompson/wallet-api/internal/response"
)

type cardService interface {
	List(ctx context.Context, f dto.CardFilters) ([]*models.Card, error)
	Get(ctx context.Context, uid, id string) (*models.Card, error)
	Add(ctx context.Context, uid string, req dto.CreateCardRequest) (string, error)
	Update(ctx context.Context, uid, id string, patch *models.CardPatch) (*models.Card, error)
	Delete(ctx context.Context, uid, id string) error
	SetPrincipal(ctx context.Context, uid, id string) error
}

type cardHandlers struct {
	ResponseHandler response.ResponseHandler
	CardSvc         cardService
}

func NewCardHandlers(deps *Deps) *cardHandlers {
	return &cardHandlers{
		ResponseHandler: deps.ResponseHandler,
		CardSvc:         deps.CardSvc,
	}
}

func (h *cardHandlers) CardRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Put("/{id}/principal", h.SetPrincipal)
	return r
}

func (h *cardHandlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := dto.CardFilters{UserID: middleware.UID(r.Context())}
	if t := strings.TrimSpace(q.Get("type")); t != "" {
		ct := models.CardType(t)
		f.Type = &ct
	}
	var err error
	if f.Blocked, err = queryBool(q, "blocked"); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if f.Principal, err = queryBool(q, "principal"); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	cards, err := h.CardSvc.List(r.Context(), f)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, cards)
}

func (h *cardHandlers) Get(w http.ResponseWriter, r *http.Request) {
	card, err := h.CardSvc.Get(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, card)
}

func (h *cardHandlers) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	id, err := h.CardSvc.Add(r.Context(), middleware.UID(r.Context()), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, dto.CreatedResponse{ID: id})
}

func (h *cardHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.CardPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	card, err := h.CardSvc.Update(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "id"), &patch)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, card)
}

func (h *cardHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.CardSvc.Delete(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusNoContent, nil)
}

func (h *cardHandlers) SetPrincipal(w http.ResponseWriter, r *http.Request) {
	if err := h.CardSvc.SetPrincipal(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusNoContent, nil)
}
