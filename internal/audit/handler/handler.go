// Package handler exposes the audit trail over HTTP.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"riskguard/internal/audit"
	dErrors "riskguard/pkg/domain-errors"
	"riskguard/pkg/platform/httputil"
)

// Store defines the audit read operations consumed by the handler.
type Store interface {
	List(ctx context.Context, limit int) ([]audit.Event, error)
	ListByEntityType(ctx context.Context, entityType string, limit int) ([]audit.Event, error)
}

const defaultLimit = 100

// Handler handles audit log endpoints.
type Handler struct {
	store Store
}

func New(store Store) *Handler {
	return &Handler{store: store}
}

// Register mounts the audit routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit-logs", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	var (
		events []audit.Event
		err    error
	)
	if entityType := r.URL.Query().Get("entity_type"); entityType != "" {
		events, err = h.store.ListByEntityType(r.Context(), entityType, limit)
	} else {
		events, err = h.store.List(r.Context(), limit)
	}
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}
