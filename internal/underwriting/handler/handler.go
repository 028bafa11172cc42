// Package handler exposes the underwriting decision workflow over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"riskguard/internal/policy"
	"riskguard/internal/underwriting"
	id "riskguard/pkg/domain"
	"riskguard/pkg/platform/httputil"
	"riskguard/pkg/requestcontext"
)

// Workflow defines the decision operations consumed by the handler.
type Workflow interface {
	SendToUnderwriting(ctx context.Context, assessmentID id.AssessmentID) (*underwriting.Decision, error)
	Approve(ctx context.Context, decisionID id.DecisionID, p underwriting.ApproveParams) (*underwriting.Decision, *policy.Policy, error)
	Decline(ctx context.Context, decisionID id.DecisionID, reason, notes string) (*underwriting.Decision, error)
	Hold(ctx context.Context, decisionID id.DecisionID, notes string) (*underwriting.Decision, error)
	Reopen(ctx context.Context, decisionID id.DecisionID) (*underwriting.Decision, error)
	Delete(ctx context.Context, decisionID id.DecisionID) error
	Get(ctx context.Context, decisionID id.DecisionID) (*underwriting.Decision, error)
	GetByAssessment(ctx context.Context, assessmentID id.AssessmentID) (*underwriting.Decision, error)
	List(ctx context.Context) ([]*underwriting.Decision, error)
	ListByStatus(ctx context.Context, status underwriting.DecisionStatus) ([]*underwriting.Decision, error)
	ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]*underwriting.Decision, error)
}

// Handler handles underwriting decision endpoints.
type Handler struct {
	workflow Workflow
	logger   *slog.Logger
}

func New(workflow Workflow, logger *slog.Logger) *Handler {
	return &Handler{workflow: workflow, logger: logger}
}

// Register mounts the decision routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/underwriting-decisions", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Get("/status/{status}", h.handleListByStatus)
		r.Get("/customer/{customerID}", h.handleListByCustomer)
		r.Get("/assessment/{assessmentID}", h.handleGetByAssessment)
		r.Post("/{id}/approve", h.handleApprove)
		r.Post("/{id}/decline", h.handleDecline)
		r.Post("/{id}/hold", h.handleHold)
		r.Post("/{id}/reopen", h.handleReopen)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) decisionID(w http.ResponseWriter, r *http.Request) (id.DecisionID, bool) {
	decisionID, err := id.ParseDecisionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.DecisionID{}, false
	}
	return decisionID, true
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	decisionID, ok := h.decisionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ApproveRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	params := underwriting.ApproveParams{
		CoverageAmount: req.CoverageAmount,
		Premium:        req.Premium,
		Reason:         req.Reason,
		Notes:          req.Notes,
	}
	if req.StartDate != nil {
		params.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		params.EndDate = *req.EndDate
	}
	d, pol, err := h.workflow.Approve(ctx, decisionID, params)
	if err != nil {
		h.logError(ctx, "approve failed", decisionID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ApprovalResponse{Decision: fromDecision(d), Policy: pol})
}

func (h *Handler) handleDecline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	decisionID, ok := h.decisionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[DeclineRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	d, err := h.workflow.Decline(ctx, decisionID, req.Reason, req.Notes)
	if err != nil {
		h.logError(ctx, "decline failed", decisionID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDecision(d))
}

func (h *Handler) handleHold(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	decisionID, ok := h.decisionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[HoldRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	d, err := h.workflow.Hold(ctx, decisionID, req.Notes)
	if err != nil {
		h.logError(ctx, "hold failed", decisionID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDecision(d))
}

func (h *Handler) handleReopen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	decisionID, ok := h.decisionID(w, r)
	if !ok {
		return
	}

	d, err := h.workflow.Reopen(ctx, decisionID)
	if err != nil {
		h.logError(ctx, "reopen failed", decisionID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDecision(d))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	decisionID, ok := h.decisionID(w, r)
	if !ok {
		return
	}

	if err := h.workflow.Delete(ctx, decisionID); err != nil {
		h.logError(ctx, "delete failed", decisionID, err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	decisionID, ok := h.decisionID(w, r)
	if !ok {
		return
	}
	d, err := h.workflow.Get(r.Context(), decisionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDecision(d))
}

func (h *Handler) handleGetByAssessment(w http.ResponseWriter, r *http.Request) {
	assessmentID, err := id.ParseAssessmentID(chi.URLParam(r, "assessmentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	d, err := h.workflow.GetByAssessment(r.Context(), assessmentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDecision(d))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	decisions, err := h.workflow.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDecisions(decisions))
}

func (h *Handler) handleListByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := underwriting.ParseStatus(chi.URLParam(r, "status"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	decisions, err := h.workflow.ListByStatus(r.Context(), status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDecisions(decisions))
}

func (h *Handler) handleListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := id.ParseCustomerID(chi.URLParam(r, "customerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	decisions, err := h.workflow.ListByCustomer(r.Context(), customerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDecisions(decisions))
}

func (h *Handler) logError(ctx context.Context, msg string, decisionID id.DecisionID, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"decision_id", decisionID,
		"error", err,
	)
}
