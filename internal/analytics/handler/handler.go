// Package handler exposes the analytics report endpoint.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"riskguard/internal/analytics"
	"riskguard/pkg/platform/httputil"
)

// Service defines the analytics operations consumed by the handler.
type Service interface {
	Report(ctx context.Context) (*analytics.Report, error)
}

// Handler handles analytics endpoints.
type Handler struct {
	service Service
}

func New(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the analytics routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/analytics/report", h.handleReport)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}
