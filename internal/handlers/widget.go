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

type widgetService interface {
	SpendingByCategory(ctx context.Context, uid string) ([]dto.CategoryTotal, error)
	BiggestEntries(ctx context.Context, uid string) ([]dto.CategoryTotal, error)
	FinancialResume(ctx context.Context, uid string, req dto.ResumeRequest) (*dto.FinancialResume, error)
	MonthlyAnalysis(ctx context.Context, uid string) (*dto.MonthlyAnalysis, error)
}

type widgetHandlers struct {
	ResponseHandler response.ResponseHandler
	WidgetSvc       widgetService
}

func NewWidgetHandlers(deps *Deps) *widgetHandlers {
	return &widgetHandlers{
		ResponseHandler: deps.ResponseHandler,
		WidgetSvc:       deps.WidgetSvc,
	}
}

func (h *widgetHandlers) WidgetRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/spending", h.Spending)
	r.Get("/biggest-entries", h.BiggestEntries)
	r.Get("/resume", h.Resume)
	r.Get("/monthly", h.Monthly)
	return r
}

func (h *widgetHandlers) Spending(w http.ResponseWriter, r *http.Request) {
	items, err := h.WidgetSvc.SpendingByCategory(r.Context(), middleware.UID(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, items)
}

func (h *widgetHandlers) BiggestEntries(w http.ResponseWriter, r *http.Request) {
	items, err := h.WidgetSvc.BiggestEntries(r.Context(), middleware.UID(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, items)
}

func (h *widgetHandlers) Resume(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := dto.ResumeRequest{
		Type:  models.TransactionType(q.Get("type")),
		Start: q.Get("start"),
		End:   q.Get("end"),
	}
	resume, err := h.WidgetSvc.FinancialResume(r.Context(), middleware.UID(r.Context()), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resume)
}

func (h *widgetHandlers) Monthly(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.WidgetSvc.MonthlyAnalysis(r.Context(), middleware.UID(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, analysis)
}
