package policy

import (
	"fmt"
	"time"

	id "riskguard/pkg/domain"
)

// Status of an issued policy. Only ACTIVE policies are created by the
// underwriting workflow; the remaining states exist for lifecycle plumbing.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
)

// Policy is the issued coverage contract. It exists if and only if its
// originating underwriting decision is APPROVED.
type Policy struct {
	ID             id.PolicyID   `json:"id"`
	CustomerID     id.CustomerID `json:"customer_id"`
	DecisionID     id.DecisionID `json:"decision_id"`
	PolicyNumber   string        `json:"policy_number"`
	CoverageAmount float64       `json:"coverage_amount"`
	PremiumAmount  float64       `json:"premium_amount"`
	StartDate      time.Time     `json:"start_date"`
	EndDate        time.Time     `json:"end_date"`
	Status         Status        `json:"status"`
	IssueDate      time.Time     `json:"issue_date"`
}

// NumberFor derives a human-readable policy number from the policy ID.
func NumberFor(policyID id.PolicyID, issued time.Time) string {
	s := policyID.String()
	return fmt.Sprintf("POL-%d-%s", issued.Year(), s[:8])
}
