package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/balaraja1/katie-kormanik/internal/apperr"
	"github.com/balaraja1/katie-kormanik/internal/publisher"
)

// Handler holds API route handlers.
type Handler struct {
	svc *publisher.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *publisher.Service) *Handler {
	return &Handler{svc: svc}
}

// Publish handles POST /api/publish. Every pipeline failure is caught here
// and surfaced as a single JSON error body; nothing is retried.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("publish panic", slog.Any("panic", rec))
			writeJSON(w, http.StatusInternalServerError, errResponse{
				Error: "internal error",
				Stack: string(debug.Stack()),
			})
		}
	}()

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	res, err := h.svc.Publish(r.Context(), publisher.Request{
		DocURL: req.DocURL,
		Title:  req.Title,
		Date:   req.Date,
		Slug:   req.Slug,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperr.ErrBadInput) {
			status = http.StatusBadRequest
		}
		if status == http.StatusInternalServerError {
			slog.Error("publish failed", slog.String("error", err.Error()))
		}
		writeJSON(w, status, errorBody(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, PublishResponse{OK: true, Slug: res.Slug, URL: res.URL})
}
