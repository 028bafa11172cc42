package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
//
// Exactly one event is appended per successful workflow transition; failed
// transitions leave no audit trace.
type Event struct {
	Action     Action    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Actor      string    `json:"actor"`
	Timestamp  time.Time `json:"timestamp"`
	Details    string    `json:"details,omitempty"`
}

// Action identifies the transition that produced an event.
type Action string

const (
	ActionAssessmentCreated   Action = "assessment_created"
	ActionAssessmentSubmitted Action = "assessment_submitted"
	ActionDecisionApproved    Action = "decision_approved"
	ActionDecisionDeclined    Action = "decision_declined"
	ActionDecisionHeld        Action = "decision_held"
	ActionDecisionReopened    Action = "decision_reopened"
	ActionDecisionDeleted     Action = "decision_deleted"
	ActionPolicyIssued        Action = "policy_issued"
	ActionPaymentRecorded     Action = "payment_recorded"
	ActionCustomerDeleted     Action = "customer_deleted"
)

// Entity types referenced by events.
const (
	EntityAssessment = "RiskAssessment"
	EntityDecision   = "UnderwritingDecision"
	EntityPolicy     = "Policy"
	EntityPayment    = "PremiumPayment"
	EntityCustomer   = "Customer"
)
