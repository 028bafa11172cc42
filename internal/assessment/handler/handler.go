// Package handler exposes risk assessment endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"riskguard/internal/assessment"
	"riskguard/internal/underwriting"
	id "riskguard/pkg/domain"
	dErrors "riskguard/pkg/domain-errors"
	"riskguard/pkg/platform/httputil"
	"riskguard/pkg/requestcontext"
)

// Service defines the assessment operations consumed by the handler.
type Service interface {
	SubmitAssessment(ctx context.Context, customerID id.CustomerID) (*assessment.RiskAssessment, error)
	Get(ctx context.Context, assessmentID id.AssessmentID) (*assessment.RiskAssessment, error)
	List(ctx context.Context) ([]assessment.RiskAssessment, error)
	ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]assessment.RiskAssessment, error)
	ListByResult(ctx context.Context, result assessment.Result) ([]assessment.RiskAssessment, error)
}

// Submitter hands an assessment to underwriting.
type Submitter interface {
	SendToUnderwriting(ctx context.Context, assessmentID id.AssessmentID) (*underwriting.Decision, error)
}

// SubmitRequest asks for a customer to be scored.
type SubmitRequest struct {
	CustomerID string `json:"customer_id"`

	customerID id.CustomerID
}

func (r *SubmitRequest) Validate() error {
	customerID, err := id.ParseCustomerID(r.CustomerID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "customer_id is invalid")
	}
	r.customerID = customerID
	return nil
}

// Handler handles assessment endpoints.
type Handler struct {
	service   Service
	submitter Submitter
	logger    *slog.Logger
}

func New(service Service, submitter Submitter, logger *slog.Logger) *Handler {
	return &Handler{service: service, submitter: submitter, logger: logger}
}

// Register mounts the assessment routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/risk-assessments", func(r chi.Router) {
		r.Post("/", h.handleSubmit)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Get("/customer/{customerID}", h.handleListByCustomer)
		r.Get("/result/{result}", h.handleListByResult)
		r.Post("/{id}/send-to-underwriting", h.handleSendToUnderwriting)
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	a, err := h.service.SubmitAssessment(ctx, req.customerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "assessment submission failed",
			"request_id", requestcontext.RequestID(ctx),
			"customer_id", req.CustomerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) handleSendToUnderwriting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assessmentID, err := id.ParseAssessmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := h.submitter.SendToUnderwriting(ctx, assessmentID)
	if err != nil {
		h.logger.ErrorContext(ctx, "send to underwriting failed",
			"request_id", requestcontext.RequestID(ctx),
			"assessment_id", assessmentID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"decision_id":   d.ID.String(),
		"assessment_id": d.AssessmentID.String(),
		"status":        string(d.Status()),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	assessmentID, err := id.ParseAssessmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	a, err := h.service.Get(r.Context(), assessmentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
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

func (h *Handler) handleListByResult(w http.ResponseWriter, r *http.Request) {
	result, err := assessment.ParseResult(chi.URLParam(r, "result"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.service.ListByResult(r.Context(), result)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
