package underwriting

import (
	"time"

	id "riskguard/pkg/domain"
	dErrors "riskguard/pkg/domain-errors"
)

// DecisionStatus is the observable state of an underwriting decision.
type DecisionStatus string

const (
	StatusPending  DecisionStatus = "PENDING"
	StatusApproved DecisionStatus = "APPROVED"
	StatusDeclined DecisionStatus = "DECLINED"
	StatusOnHold   DecisionStatus = "ON_HOLD"
)

// ParseStatus constructs a DecisionStatus from external input.
func ParseStatus(s string) (DecisionStatus, error) {
	switch DecisionStatus(s) {
	case StatusPending, StatusApproved, StatusDeclined, StatusOnHold:
		return DecisionStatus(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "status must be PENDING, APPROVED, DECLINED or ON_HOLD")
}

// Outcome is the closed set of non-pending decision states. Each variant
// carries only the fields that are legal for its state, so an approved
// decision cannot exist without its policy reference and a declined one
// cannot carry an approval date. The sealed method keeps the set closed to
// this package.
type Outcome interface {
	status() DecisionStatus
}

// Approved carries the approval outcome. Reason is optional for approvals.
type Approved struct {
	Reason       string      `json:"reason,omitempty"`
	ApprovalDate time.Time   `json:"approval_date"`
	PolicyID     id.PolicyID `json:"policy_id"`
}

func (Approved) status() DecisionStatus { return StatusApproved }

// Declined carries the decline outcome. Reason is mandatory.
type Declined struct {
	Reason       string    `json:"reason"`
	DecisionDate time.Time `json:"decision_date"`
}

func (Declined) status() DecisionStatus { return StatusDeclined }

// OnHold parks a decision without resolving it.
type OnHold struct {
	HeldAt time.Time `json:"held_at"`
}

func (OnHold) status() DecisionStatus { return StatusOnHold }

// Decision tracks the underwriting outcome for a risk assessment.
//
// Invariants:
//   - Created PENDING (nil Outcome), exactly once per assessment
//   - At most one transition to a non-nil Outcome (except the optional
//     ON_HOLD -> PENDING reopen when the workflow allows it)
//   - APPROVED implies an existing Policy; no other state references one
type Decision struct {
	ID                     id.DecisionID   `json:"id"`
	CustomerID             id.CustomerID   `json:"customer_id"`
	AssessmentID           id.AssessmentID `json:"assessment_id"`
	SentToUnderwritingDate time.Time       `json:"sent_to_underwriting_date"`
	DecidedBy              string          `json:"decided_by,omitempty"`
	UnderwriterNotes       string          `json:"underwriter_notes,omitempty"`

	// Outcome is nil while the decision is PENDING.
	Outcome Outcome `json:"-"`
}

// Status derives the observable state from the outcome variant.
func (d *Decision) Status() DecisionStatus {
	if d.Outcome == nil {
		return StatusPending
	}
	return d.Outcome.status()
}

// CanResolve checks the PENDING precondition shared by approve, decline and
// hold. Use with the Apply methods in store Execute callbacks: the store
// holds the entity lock across both so concurrent transitions get exactly
// one winner.
func (d *Decision) CanResolve() error {
	if d.Outcome != nil {
		return dErrors.Newf(dErrors.CodeConflict, "decision is already %s", d.Outcome.status())
	}
	return nil
}

// ApplyApproval resolves the decision as approved with its policy reference.
func (d *Decision) ApplyApproval(policyID id.PolicyID, reason, notes, decidedBy string, now time.Time) {
	d.Outcome = Approved{Reason: reason, ApprovalDate: now, PolicyID: policyID}
	d.UnderwriterNotes = notes
	d.DecidedBy = decidedBy
}

// ApplyDecline resolves the decision as declined.
func (d *Decision) ApplyDecline(reason, notes, decidedBy string, now time.Time) {
	d.Outcome = Declined{Reason: reason, DecisionDate: now}
	d.UnderwriterNotes = notes
	d.DecidedBy = decidedBy
}

// ApplyHold parks the decision.
func (d *Decision) ApplyHold(notes, decidedBy string, now time.Time) {
	d.Outcome = OnHold{HeldAt: now}
	d.UnderwriterNotes = notes
	d.DecidedBy = decidedBy
}

// CanReopen checks the ON_HOLD precondition for reopening.
func (d *Decision) CanReopen() error {
	if _, held := d.Outcome.(OnHold); !held {
		return dErrors.Newf(dErrors.CodeConflict, "only ON_HOLD decisions can be reopened, decision is %s", d.Status())
	}
	return nil
}

// ApplyReopen returns a held decision to PENDING.
func (d *Decision) ApplyReopen() {
	d.Outcome = nil
}

// NewDecision constructs a PENDING decision for a submitted assessment.
func NewDecision(decisionID id.DecisionID, customerID id.CustomerID, assessmentID id.AssessmentID, now time.Time) *Decision {
	return &Decision{
		ID:                     decisionID,
		CustomerID:             customerID,
		AssessmentID:           assessmentID,
		SentToUnderwritingDate: now,
	}
}
