// Package handler exposes policy lookup endpoints.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"riskguard/internal/policy"
	id "riskguard/pkg/domain"
	"riskguard/pkg/platform/httputil"
)

// Service defines the policy operations consumed by the handler.
type Service interface {
	Get(ctx context.Context, policyID id.PolicyID) (*policy.Policy, error)
	List(ctx context.Context) ([]policy.Policy, error)
	ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]policy.Policy, error)
}

// Handler handles policy endpoints.
type Handler struct {
	service Service
}

func New(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the policy routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/policies", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Get("/customer/{customerID}", h.handleListByCustomer)
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	policyID, err := id.ParsePolicyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.Get(r.Context(), policyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := id.ParseCustomerID(chi.URLParam(r, "customerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.service.ListByCustomer(r.Context(), customerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
