package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/wallet-api/internal/dto"
	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/internal/middleware"
	"github.com/GregMSThompson/wallet-api/internal/response"
)

const maxUploadBytes = 10<<20 + 1<<16

type uploadService interface {
	Upload(ctx context.Context, uid string, up dto.Upload) (*dto.UploadResponse, error)
}

type uploadHandlers struct {
	ResponseHandler response.ResponseHandler
	UploadSvc       uploadService
}

func NewUploadHandlers(deps *Deps) *uploadHandlers {
	return &uploadHandlers{
		ResponseHandler: deps.ResponseHandler,
		UploadSvc:       deps.UploadSvc,
	}
}

func (h *uploadHandlers) UploadRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/{kind}", h.Upload)
	return r
}

// Upload expects a multipart form with the file in the "file" field.
func (h *uploadHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.ResponseHandler.HandleError(w, r, errs.NewFieldError("file", "file is empty or too large"))
			return
		}
		h.ResponseHandler.HandleError(w, r, errs.NewFieldError("file", "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	res, err := h.UploadSvc.Upload(r.Context(), middleware.UID(r.Context()), dto.Upload{
		Kind:        dto.UploadKind(chi.URLParam(r, "kind")),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, res)
}
