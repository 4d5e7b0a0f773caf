package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/wallet-api/internal/dto"
	"github.com/GregMSThompson/wallet-api/internal/models"
	"github.com/GregMSThompson/wallet-api/internal/response"
)

type catalogService interface {
	ListCategories(ctx context.Context) ([]*models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) (string, error)
	UpdateCategory(ctx context.Context, id string, p *models.CategoryPatch) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListMethods(ctx context.Context) ([]*models.PaymentMethod, error)
	GetMethod(ctx context.Context, id string) (*models.PaymentMethod, error)
	CreateMethod(ctx context.Context, m *models.PaymentMethod) (string, error)
	UpdateMethod(ctx context.Context, id string, p *models.MethodPatch) (*models.PaymentMethod, error)
	DeleteMethod(ctx context.Context, id string) error
}

type catalogHandlers struct {
	ResponseHandler response.ResponseHandler
	CatalogSvc      catalogService
}

func NewCatalogHandlers(deps *Deps) *catalogHandlers {
	return &catalogHandlers{
		ResponseHandler: deps.ResponseHandler,
		CatalogSvc:      deps.CatalogSvc,
	}
}

func (h *catalogHandlers) CategoryRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListCategories)
	r.Post("/", h.CreateCategory)
	r.Get("/{id}", h.GetCategory)
	r.Patch("/{id}", h.UpdateCategory)
	r.Delete("/{id}", h.DeleteCategory)
	return r
}

func (h *catalogHandlers) MethodRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListMethods)
	r.Post("/", h.CreateMethod)
	r.Get("/{id}", h.GetMethod)
	r.Patch("/{id}", h.UpdateMethod)
	r.Delete("/{id}", h.DeleteMethod)
	return r
}

func (h *catalogHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.CatalogSvc.ListCategories(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, cats)
}

func (h *catalogHandlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.CatalogSvc.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, c)
}

func (h *catalogHandlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if err := decodeJSON(w, r, &c); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	id, err := h.CatalogSvc.CreateCategory(r.Context(), &c)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, dto.CreatedResponse{ID: id})
}

func (h *catalogHandlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var p models.CategoryPatch
	if err := decodeJSON(w, r, &p); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	c, err := h.CatalogSvc.UpdateCategory(r.Context(), chi.URLParam(r, "id"), &p)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, c)
}

func (h *catalogHandlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.CatalogSvc.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusNoContent, nil)
}

func (h *catalogHandlers) ListMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.CatalogSvc.ListMethods(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, methods)
}

func (h *catalogHandlers) GetMethod(w http.ResponseWriter, r *http.Request) {
	m, err := h.CatalogSvc.GetMethod(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, m)
}

func (h *catalogHandlers) CreateMethod(w http.ResponseWriter, r *http.Request) {
	var m models.PaymentMethod
	if err := decodeJSON(w, r, &m); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	id, err := h.CatalogSvc.CreateMethod(r.Context(), &m)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, dto.CreatedResponse{ID: id})
}

func (h *catalogHandlers) UpdateMethod(w http.ResponseWriter, r *http.Request) {
	var p models.MethodPatch
	if err := decodeJSON(w, r, &p); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	m, err := h.CatalogSvc.UpdateMethod(r.Context(), chi.URLParam(r, "id"), &p)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, m)
}

func (h *catalogHandlers) DeleteMethod(w http.ResponseWriter, r *http.Request) {
	if err := h.CatalogSvc.DeleteMethod(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusNoContent, nil)
}
