package handler

import (
	"time"

	dErrors "riskguard/pkg/domain-errors"
)

// ApproveRequest carries the approval inputs. Premium is optional; when
// absent one is quoted from the coverage amount and the assessment score.
// Cover dates are optional and default to a one-year term from now.
type ApproveRequest struct {
	CoverageAmount float64    `json:"coverage_amount"`
	Premium        *float64   `json:"premium,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

func (r *ApproveRequest) Validate() error {
	if r.CoverageAmount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "coverage_amount must be positive")
	}
	if r.Premium != nil && *r.Premium <= 0 {
		return dErrors.New(dErrors.CodeValidation, "premium must be positive when supplied")
	}
	if r.StartDate != nil && r.EndDate != nil && !r.EndDate.After(*r.StartDate) {
		return dErrors.New(dErrors.CodeValidation, "end_date must be after start_date")
	}
	return nil
}

// DeclineRequest carries the decline inputs. A reason is mandatory.
type DeclineRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes,omitempty"`
}

func (r *DeclineRequest) Validate() error {
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}

// HoldRequest carries the optional hold notes.
type HoldRequest struct {
	Notes string `json:"notes,omitempty"`
}

func (r *HoldRequest) Validate() error { return nil }
