package handler

import (
	"time"

	"riskguard/internal/policy"
	"riskguard/internal/underwriting"
)

// DecisionResponse flattens the outcome variant into the wire shape: only
// the fields legal for the decision's status are present.
type DecisionResponse struct {
	ID                     string     `json:"id"`
	CustomerID             string     `json:"customer_id"`
	AssessmentID           string     `json:"assessment_id"`
	Status                 string     `json:"status"`
	SentToUnderwritingDate time.Time  `json:"sent_to_underwriting_date"`
	DecidedBy              string     `json:"decided_by,omitempty"`
	UnderwriterNotes       string     `json:"underwriter_notes,omitempty"`
	Reason                 string     `json:"reason,omitempty"`
	ApprovalDate           *time.Time `json:"approval_date,omitempty"`
	DecisionDate           *time.Time `json:"decision_date,omitempty"`
	HeldAt                 *time.Time `json:"held_at,omitempty"`
	PolicyID               string     `json:"policy_id,omitempty"`
}

func fromDecision(d *underwriting.Decision) DecisionResponse {
	resp := DecisionResponse{
		ID:                     d.ID.String(),
		CustomerID:             d.CustomerID.String(),
		AssessmentID:           d.AssessmentID.String(),
		Status:                 string(d.Status()),
		SentToUnderwritingDate: d.SentToUnderwritingDate,
		DecidedBy:              d.DecidedBy,
		UnderwriterNotes:       d.UnderwriterNotes,
	}
	switch o := d.Outcome.(type) {
	case underwriting.Approved:
		resp.Reason = o.Reason
		approved := o.ApprovalDate
		resp.ApprovalDate = &approved
		resp.PolicyID = o.PolicyID.String()
	case underwriting.Declined:
		resp.Reason = o.Reason
		decided := o.DecisionDate
		resp.DecisionDate = &decided
	case underwriting.OnHold:
		held := o.HeldAt
		resp.HeldAt = &held
	}
	return resp
}

func fromDecisions(decisions []*underwriting.Decision) []DecisionResponse {
	out := make([]DecisionResponse, 0, len(decisions))
	for _, d := range decisions {
		out = append(out, fromDecision(d))
	}
	return out
}

// ApprovalResponse pairs the resolved decision with its issued policy.
type ApprovalResponse struct {
	Decision DecisionResponse `json:"decision"`
	Policy   *policy.Policy   `json:"policy"`
}
