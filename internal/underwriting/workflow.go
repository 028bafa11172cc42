// Package underwriting runs the decision workflow: assessments are handed to
// underwriting exactly once, pending decisions are resolved by guarded
// transitions, and approval issues a policy or leaves no trace.
package underwriting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"riskguard/internal/assessment"
	"riskguard/internal/audit"
	"riskguard/internal/policy"
	"riskguard/internal/premium"
	"riskguard/internal/underwriting/metrics"
	id "riskguard/pkg/domain"
	dErrors "riskguard/pkg/domain-errors"
	"riskguard/pkg/platform/sentinel"
	"riskguard/pkg/requestcontext"
)

// AssessmentStore is the assessment port consumed by the workflow.
type AssessmentStore interface {
	FindByID(ctx context.Context, assessmentID id.AssessmentID) (*assessment.RiskAssessment, error)
	Execute(ctx context.Context, assessmentID id.AssessmentID, validate func(*assessment.RiskAssessment) error, mutate func(*assessment.RiskAssessment)) (*assessment.RiskAssessment, error)
}

// Store is the decision persistence port.
type Store interface {
	CreateIfAbsent(ctx context.Context, d *Decision) error
	FindByID(ctx context.Context, decisionID id.DecisionID) (*Decision, error)
	FindByAssessment(ctx context.Context, assessmentID id.AssessmentID) (*Decision, error)
	List(ctx context.Context) ([]*Decision, error)
	ListByStatus(ctx context.Context, status DecisionStatus) ([]*Decision, error)
	ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]*Decision, error)
	Execute(ctx context.Context, decisionID id.DecisionID, validate func(*Decision) error, mutate func(*Decision) error) (*Decision, error)
	Delete(ctx context.Context, decisionID id.DecisionID) error
}

// PolicyStore is the policy port used by approval and its compensation path.
type PolicyStore interface {
	Create(ctx context.Context, p *policy.Policy) error
	Delete(ctx context.Context, policyID id.PolicyID) error
}

// Risk score assumed when an approval's assessment can no longer be loaded
// and no explicit premium was supplied.
const fallbackRiskScore = 50

// Workflow orchestrates decision transitions.
type Workflow struct {
	assessments AssessmentStore
	decisions   Store
	policies    PolicyStore
	pricing     premium.Calculator

	logger  *slog.Logger
	auditor audit.Emitter
	metrics *metrics.Metrics
	tracer  trace.Tracer

	allowReopen    bool
	storeTimeout   time.Duration
	pricingTimeout time.Duration
}

type Option func(*Workflow)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) { w.logger = logger }
}

func WithAuditEmitter(emitter audit.Emitter) Option {
	return func(w *Workflow) { w.auditor = emitter }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Workflow) { w.metrics = m }
}

// WithReopenFromHold enables the ON_HOLD -> PENDING transition.
func WithReopenFromHold(allow bool) Option {
	return func(w *Workflow) { w.allowReopen = allow }
}

// WithTimeouts bounds store operations and pricing calls.
func WithTimeouts(store, pricing time.Duration) Option {
	return func(w *Workflow) {
		if store > 0 {
			w.storeTimeout = store
		}
		if pricing > 0 {
			w.pricingTimeout = pricing
		}
	}
}

func New(assessments AssessmentStore, decisions Store, policies PolicyStore, pricing premium.Calculator, opts ...Option) *Workflow {
	w := &Workflow{
		assessments:    assessments,
		decisions:      decisions,
		policies:       policies,
		pricing:        pricing,
		logger:         slog.Default(),
		tracer:         otel.Tracer("riskguard/underwriting"),
		storeTimeout:   5 * time.Second,
		pricingTimeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SendToUnderwriting moves an ACTIVE assessment to SENT_TO_UNDERWRITING and
// creates its PENDING decision. The transition happens at most once per
// assessment: under concurrent submissions exactly one caller wins and the
// rest observe an invariant violation with no effect.
func (w *Workflow) SendToUnderwriting(ctx context.Context, assessmentID id.AssessmentID) (*Decision, error) {
	ctx, span := w.tracer.Start(ctx, "underwriting.send",
		trace.WithAttributes(attribute.String("assessment_id", assessmentID.String())))
	defer span.End()

	now := requestcontext.Now(ctx)

	sctx, cancel := context.WithTimeout(ctx, w.storeTimeout)
	defer cancel()

	a, err := w.assessments.Execute(sctx, assessmentID,
		func(a *assessment.RiskAssessment) error { return a.CanSubmit() },
		func(a *assessment.RiskAssessment) { a.ApplySubmission(now) },
	)
	if err != nil {
		w.metrics.IncrementTransition("send", "rejected")
		return nil, translateStoreErr(err, "assessment not found")
	}

	d := NewDecision(id.NewDecisionID(), a.CustomerID, assessmentID, now)
	if err := w.decisions.CreateIfAbsent(sctx, d); err != nil {
		// Roll the assessment back so the failed submission leaves no trace.
		w.revertSubmission(ctx, assessmentID)
		w.metrics.IncrementTransition("send", "error")
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "assessment already has a decision")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create decision")
	}

	w.metrics.IncrementTransition("send", "success")
	w.logAudit(ctx, audit.ActionAssessmentSubmitted, audit.EntityAssessment, assessmentID.String(),
		fmt.Sprintf("decision_id=%s", d.ID))
	w.logger.InfoContext(ctx, "assessment sent to underwriting",
		"assessment_id", assessmentID,
		"decision_id", d.ID,
		"customer_id", a.CustomerID,
	)
	return d, nil
}

func (w *Workflow) revertSubmission(ctx context.Context, assessmentID id.AssessmentID) {
	sctx, cancel := context.WithTimeout(ctx, w.storeTimeout)
	defer cancel()

	_, err := w.assessments.Execute(sctx, assessmentID,
		func(a *assessment.RiskAssessment) error {
			if a.Status != assessment.StatusSentToUnderwriting {
				return dErrors.Newf(dErrors.CodeInvariantViolation, "assessment is %s", a.Status)
			}
			return nil
		},
		func(a *assessment.RiskAssessment) {
			a.Status = assessment.StatusActive
			a.UpdatedAt = requestcontext.Now(ctx)
		},
	)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to revert assessment submission",
			"assessment_id", assessmentID,
			"error", err,
		)
	}
}

// ApproveParams carries the approval inputs. Premium is optional: when nil
// the pricing strategy quotes one from the coverage amount and the
// assessment's risk score. StartDate defaults to the request time and
// EndDate to one year of cover when left zero.
type ApproveParams struct {
	CoverageAmount float64
	Premium        *float64
	StartDate      time.Time
	EndDate        time.Time
	Reason         string
	Notes          string
}

// Approve resolves a PENDING decision as approved and issues the policy.
// The two effects are atomic: if the decision transition fails after the
// policy was created, the policy is deleted again, so an observer never sees
// a policy without its approved decision.
func (w *Workflow) Approve(ctx context.Context, decisionID id.DecisionID, p ApproveParams) (*Decision, *policy.Policy, error) {
	ctx, span := w.tracer.Start(ctx, "underwriting.approve",
		trace.WithAttributes(attribute.String("decision_id", decisionID.String())))
	defer span.End()

	if p.CoverageAmount <= 0 {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "coverage amount must be positive")
	}

	d, err := w.getDecision(ctx, decisionID)
	if err != nil {
		return nil, nil, err
	}
	if err := d.CanResolve(); err != nil {
		w.metrics.IncrementTransition("approve", "rejected")
		return nil, nil, err
	}

	premiumAmount, err := w.resolvePremium(ctx, d, p)
	if err != nil {
		w.metrics.IncrementTransition("approve", "error")
		return nil, nil, err
	}

	now := requestcontext.Now(ctx)
	start, end := p.StartDate, p.EndDate
	if start.IsZero() {
		start = now
	}
	if end.IsZero() {
		end = start.AddDate(1, 0, 0)
	}
	if !end.After(start) {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "policy end date must be after start date")
	}
	pol := &policy.Policy{
		ID:             id.NewPolicyID(),
		CustomerID:     d.CustomerID,
		DecisionID:     d.ID,
		CoverageAmount: p.CoverageAmount,
		PremiumAmount:  premiumAmount,
		StartDate:      start,
		EndDate:        end,
		Status:         policy.StatusActive,
		IssueDate:      now,
	}
	pol.PolicyNumber = policy.NumberFor(pol.ID, now)

	sctx, cancel := context.WithTimeout(ctx, w.storeTimeout)
	defer cancel()

	if err := w.policies.Create(sctx, pol); err != nil {
		w.metrics.IncrementTransition("approve", "error")
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue policy")
	}

	actor := requestcontext.Actor(ctx)
	d, err = w.decisions.Execute(sctx, decisionID,
		func(d *Decision) error { return d.CanResolve() },
		func(d *Decision) error {
			d.ApplyApproval(pol.ID, p.Reason, p.Notes, actor, now)
			return nil
		},
	)
	if err != nil {
		// The decision lost a concurrent race or the store failed; remove the
		// policy so the failed approval leaves no trace.
		w.compensatePolicy(ctx, pol.ID)
		w.metrics.IncrementTransition("approve", "rejected")
		return nil, nil, translateStoreErr(err, "decision not found")
	}

	w.metrics.IncrementTransition("approve", "success")
	w.metrics.ObservePremium(premiumAmount)
	w.logAudit(ctx, audit.ActionDecisionApproved, audit.EntityDecision, d.ID.String(),
		fmt.Sprintf("policy_id=%s;premium=%.2f", pol.ID, premiumAmount))
	w.logAudit(ctx, audit.ActionPolicyIssued, audit.EntityPolicy, pol.ID.String(),
		fmt.Sprintf("policy_number=%s;coverage=%.2f;premium=%.2f", pol.PolicyNumber, pol.CoverageAmount, pol.PremiumAmount))
	w.logger.InfoContext(ctx, "decision approved",
		"decision_id", d.ID,
		"policy_id", pol.ID,
		"policy_number", pol.PolicyNumber,
		"premium", premiumAmount,
	)
	return d, pol, nil
}

// resolvePremium returns the explicit premium when one was supplied,
// otherwise quotes one from the pricing strategy using the assessment's risk
// score. A decision whose assessment has been removed is priced at a neutral
// score rather than blocking the approval.
func (w *Workflow) resolvePremium(ctx context.Context, d *Decision, p ApproveParams) (float64, error) {
	if p.Premium != nil {
		if *p.Premium <= 0 {
			return 0, dErrors.New(dErrors.CodeValidation, "premium must be positive")
		}
		return premium.RoundCurrency(*p.Premium), nil
	}

	riskScore := fallbackRiskScore
	if a, err := w.assessments.FindByID(ctx, d.AssessmentID); err == nil {
		riskScore = a.RiskScore
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load assessment")
	}

	pctx, cancel := context.WithTimeout(ctx, w.pricingTimeout)
	defer cancel()

	amount, err := w.pricing.Calculate(pctx, p.CoverageAmount, riskScore)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, dErrors.Wrap(err, dErrors.CodeTimeout, "pricing timed out")
		}
		if dErrors.IsCoded(err) {
			return 0, err
		}
		return 0, dErrors.Wrap(err, dErrors.CodePricing, "pricing failed")
	}
	if amount <= 0 {
		return 0, dErrors.Newf(dErrors.CodePricing, "pricing returned non-positive premium %.2f", amount)
	}
	return amount, nil
}

func (w *Workflow) compensatePolicy(ctx context.Context, policyID id.PolicyID) {
	w.metrics.IncrementCompensation()

	sctx, cancel := context.WithTimeout(ctx, w.storeTimeout)
	defer cancel()

	if err := w.policies.Delete(sctx, policyID); err != nil {
		w.logger.ErrorContext(ctx, "failed to remove policy after aborted approval",
			"policy_id", policyID,
			"error", err,
		)
	}
}

// Decline resolves a PENDING decision as declined. A reason is mandatory.
func (w *Workflow) Decline(ctx context.Context, decisionID id.DecisionID, reason, notes string) (*Decision, error) {
	ctx, span := w.tracer.Start(ctx, "underwriting.decline",
		trace.WithAttributes(attribute.String("decision_id", decisionID.String())))
	defer span.End()

	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "decline reason is required")
	}

	now := requestcontext.Now(ctx)
	actor := requestcontext.Actor(ctx)
	d, err := w.execute(ctx, decisionID, "decline",
		func(d *Decision) error { return d.CanResolve() },
		func(d *Decision) error {
			d.ApplyDecline(reason, notes, actor, now)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	w.logAudit(ctx, audit.ActionDecisionDeclined, audit.EntityDecision, d.ID.String(),
		fmt.Sprintf("reason=%s", reason))
	w.logger.InfoContext(ctx, "decision declined", "decision_id", d.ID, "reason", reason)
	return d, nil
}

// Hold parks a PENDING decision.
func (w *Workflow) Hold(ctx context.Context, decisionID id.DecisionID, notes string) (*Decision, error) {
	ctx, span := w.tracer.Start(ctx, "underwriting.hold",
		trace.WithAttributes(attribute.String("decision_id", decisionID.String())))
	defer span.End()

	now := requestcontext.Now(ctx)
	actor := requestcontext.Actor(ctx)
	d, err := w.execute(ctx, decisionID, "hold",
		func(d *Decision) error { return d.CanResolve() },
		func(d *Decision) error {
			d.ApplyHold(notes, actor, now)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	w.logAudit(ctx, audit.ActionDecisionHeld, audit.EntityDecision, d.ID.String(), notes)
	w.logger.InfoContext(ctx, "decision put on hold", "decision_id", d.ID)
	return d, nil
}

// Reopen returns an ON_HOLD decision to PENDING. The transition is disabled
// unless the workflow was configured to allow it.
func (w *Workflow) Reopen(ctx context.Context, decisionID id.DecisionID) (*Decision, error) {
	ctx, span := w.tracer.Start(ctx, "underwriting.reopen",
		trace.WithAttributes(attribute.String("decision_id", decisionID.String())))
	defer span.End()

	if !w.allowReopen {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reopening held decisions is disabled")
	}

	d, err := w.execute(ctx, decisionID, "reopen",
		func(d *Decision) error { return d.CanReopen() },
		func(d *Decision) error {
			d.ApplyReopen()
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	w.logAudit(ctx, audit.ActionDecisionReopened, audit.EntityDecision, d.ID.String(), "")
	w.logger.InfoContext(ctx, "decision reopened", "decision_id", d.ID)
	return d, nil
}

func (w *Workflow) execute(ctx context.Context, decisionID id.DecisionID, action string, validate, mutate func(*Decision) error) (*Decision, error) {
	sctx, cancel := context.WithTimeout(ctx, w.storeTimeout)
	defer cancel()

	d, err := w.decisions.Execute(sctx, decisionID, validate, mutate)
	if err != nil {
		w.metrics.IncrementTransition(action, "rejected")
		return nil, translateStoreErr(err, "decision not found")
	}
	w.metrics.IncrementTransition(action, "success")
	return d, nil
}

// Delete removes a decision regardless of its state. An issued policy is not
// touched; revoking coverage is a separate concern.
func (w *Workflow) Delete(ctx context.Context, decisionID id.DecisionID) error {
	sctx, cancel := context.WithTimeout(ctx, w.storeTimeout)
	defer cancel()

	if err := w.decisions.Delete(sctx, decisionID); err != nil {
		return translateStoreErr(err, "decision not found")
	}
	w.logAudit(ctx, audit.ActionDecisionDeleted, audit.EntityDecision, decisionID.String(), "")
	w.logger.InfoContext(ctx, "decision deleted", "decision_id", decisionID)
	return nil
}

// Get returns a decision by ID.
func (w *Workflow) Get(ctx context.Context, decisionID id.DecisionID) (*Decision, error) {
	return w.getDecision(ctx, decisionID)
}

// GetByAssessment returns the decision created for an assessment.
func (w *Workflow) GetByAssessment(ctx context.Context, assessmentID id.AssessmentID) (*Decision, error) {
	d, err := w.decisions.FindByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, translateStoreErr(err, "decision not found")
	}
	return d, nil
}

func (w *Workflow) List(ctx context.Context) ([]*Decision, error) {
	out, err := w.decisions.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list decisions")
	}
	return out, nil
}

func (w *Workflow) ListByStatus(ctx context.Context, status DecisionStatus) ([]*Decision, error) {
	out, err := w.decisions.ListByStatus(ctx, status)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list decisions")
	}
	return out, nil
}

func (w *Workflow) ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]*Decision, error) {
	out, err := w.decisions.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list decisions")
	}
	return out, nil
}

func (w *Workflow) getDecision(ctx context.Context, decisionID id.DecisionID) (*Decision, error) {
	d, err := w.decisions.FindByID(ctx, decisionID)
	if err != nil {
		return nil, translateStoreErr(err, "decision not found")
	}
	return d, nil
}

func translateStoreErr(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrAlreadyUsed), errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "conflicting update")
	case dErrors.IsCoded(err):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "store operation failed")
	}
}

func (w *Workflow) logAudit(ctx context.Context, action audit.Action, entityType, entityID, details string) {
	if w.auditor == nil {
		return
	}
	event := audit.Event{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      requestcontext.Actor(ctx),
		Timestamp:  requestcontext.Now(ctx),
		Details:    details,
	}
	if err := w.auditor.Emit(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"entity_id", event.EntityID,
			"error", err,
		)
	}
}
