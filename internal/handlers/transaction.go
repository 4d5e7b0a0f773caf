package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/wallet-api/internal/dto"
	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/internal/middleware"
	"github.com/GregMSThompson/wallet-api/internal/models"
	"github.com/GregMSThompson/wallet-api/internal/response"
	"github.com/GregMSThompson/wallet-api/pkg/logger"
)

type transactionService interface {
	Add(ctx context.Context, uid string, req dto.CreateTransactionRequest) (string, error)
	Get(ctx context.Context, uid, id string) (*dto.TransactionView, error)
	Update(ctx context.Context, uid, id string, patch *models.TransactionPatch) error
	Delete(ctx context.Context, uid, id string) error
	List(ctx context.Context, f dto.TransactionFilters) (*dto.PaginatedTransactions, error)
	Watch(ctx context.Context, f dto.TransactionFilters, emit func(*dto.PaginatedTransactions) error) error
	CalculateBalance(ctx context.Context, uid string) (*dto.BalanceResponse, error)
}

type transactionHandlers struct {
	ResponseHandler response.ResponseHandler
	TransactionSvc  transactionService
	Location        *time.Location
}

func NewTransactionHandlers(deps *Deps) *transactionHandlers {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &transactionHandlers{
		ResponseHandler: deps.ResponseHandler,
		TransactionSvc:  deps.TransactionSvc,
		Location:        loc,
	}
}

func (h *transactionHandlers) TransactionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Get("/balance", h.Balance) // before /{id}
	r.Get("/stream", h.Stream)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

// filters builds the list filters for the caller from the query string.
func (h *transactionHandlers) filters(r *http.Request) (dto.TransactionFilters, error) {
	q := r.URL.Query()
	f := dto.TransactionFilters{
		UserID:     middleware.UID(r.Context()),
		CategoryID: strings.TrimSpace(q.Get("categoryId")),
		MethodID:   strings.TrimSpace(q.Get("methodId")),
		LastDocID:  strings.TrimSpace(q.Get("cursor")),
	}

	var err error
	if f.StartDate, err = queryDate(q, "startDate", h.Location); err != nil {
		return f, err
	}
	if f.EndDate, err = queryDate(q, "endDate", h.Location); err != nil {
		return f, err
	}
	if f.MinValue, err = queryInt64(q, "minValue"); err != nil {
		return f, err
	}
	if f.MaxValue, err = queryInt64(q, "maxValue"); err != nil {
		return f, err
	}
	if raw := q.Get("pageSize"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 0 {
			return f, errs.NewFieldError("pageSize", "pageSize must be a positive integer")
		}
		f.PageSize = n
	}
	return f, nil
}

func (h *transactionHandlers) List(w http.ResponseWriter, r *http.Request) {
	f, err := h.filters(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	page, err := h.TransactionSvc.List(r.Context(), f)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, page)
}

// Stream pushes the live first page as server-sent events until the client
// disconnects.
func (h *transactionHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	f, err := h.filters(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	started := false
	emit := func(page *dto.PaginatedTransactions) error {
		if !started {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		data, err := json.Marshal(page)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: page\ndata: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	err = h.TransactionSvc.Watch(r.Context(), f, emit)
	if err == nil {
		return
	}
	if !started {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	log.Error("transaction stream ended", "error", err)
	fmt.Fprintf(w, "event: error\ndata: %q\n\n", "stream interrupted")
	_ = rc.Flush()
}

func (h *transactionHandlers) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	id, err := h.TransactionSvc.Add(r.Context(), middleware.UID(r.Context()), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, dto.CreatedResponse{ID: id})
}

func (h *transactionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.TransactionSvc.Get(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, tx)
}

func (h *transactionHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.TransactionPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.TransactionSvc.Update(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "id"), &patch); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusNoContent, nil)
}

func (h *transactionHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.TransactionSvc.Delete(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusNoContent, nil)
}

func (h *transactionHandlers) Balance(w http.ResponseWriter, r *http.Request) {
	b, err := h.TransactionSvc.CalculateBalance(r.Context(), middleware.UID(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, b)
}
