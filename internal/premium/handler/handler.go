// Package handler exposes premium quoting and payment endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"riskguard/internal/premium"
	id "riskguard/pkg/domain"
	dErrors "riskguard/pkg/domain-errors"
	"riskguard/pkg/platform/httputil"
	"riskguard/pkg/requestcontext"
)

// Payments defines the payment operations consumed by the handler.
type Payments interface {
	Record(ctx context.Context, policyID id.PolicyID, amount float64, method, reference string) (*premium.Payment, error)
	ListByPolicy(ctx context.Context, policyID id.PolicyID) ([]premium.Payment, error)
}

// CalculateRequest asks for a premium quote.
type CalculateRequest struct {
	CoverageAmount float64 `json:"coverage_amount"`
	RiskScore      int     `json:"risk_score"`
}

func (r *CalculateRequest) Validate() error {
	return premium.ValidateInputs(r.CoverageAmount, r.RiskScore)
}

// RecordPaymentRequest records a premium payment against a policy.
type RecordPaymentRequest struct {
	PolicyID  string  `json:"policy_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Reference string  `json:"reference,omitempty"`

	policyID id.PolicyID
}

func (r *RecordPaymentRequest) Validate() error {
	policyID, err := id.ParsePolicyID(r.PolicyID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "policy_id is invalid")
	}
	r.policyID = policyID
	if r.Amount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	if r.Method == "" {
		return dErrors.New(dErrors.CodeValidation, "method is required")
	}
	return nil
}

// Handler handles premium endpoints.
type Handler struct {
	pricing  premium.Calculator
	payments Payments
	logger   *slog.Logger
}

func New(pricing premium.Calculator, payments Payments, logger *slog.Logger) *Handler {
	return &Handler{pricing: pricing, payments: payments, logger: logger}
}

// Register mounts the premium routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/premium/calculate", h.handleCalculate)
	r.Route("/premium-payments", func(r chi.Router) {
		r.Post("/", h.handleRecordPayment)
		r.Get("/policy/{policyID}", h.handleListByPolicy)
	})
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CalculateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	amount, err := h.pricing.Calculate(ctx, req.CoverageAmount, req.RiskScore)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"coverage_amount": req.CoverageAmount,
		"risk_score":      req.RiskScore,
		"premium":         amount,
	})
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RecordPaymentRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	payment, err := h.payments.Record(ctx, req.policyID, req.Amount, req.Method, req.Reference)
	if err != nil {
		h.logger.ErrorContext(ctx, "payment recording failed",
			"request_id", requestcontext.RequestID(ctx),
			"policy_id", req.PolicyID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, payment)
}

func (h *Handler) handleListByPolicy(w http.ResponseWriter, r *http.Request) {
	policyID, err := id.ParsePolicyID(chi.URLParam(r, "policyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	payments, err := h.payments.ListByPolicy(r.Context(), policyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, payments)
}
