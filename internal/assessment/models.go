package assessment

import (
	"time"

	id "riskguard/pkg/domain"
	dErrors "riskguard/pkg/domain-errors"
)

// RiskLevel is the categorical bucket derived from the risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Result is the scoring recommendation.
type Result string

const (
	ResultApproved       Result = "APPROVED"
	ResultReviewRequired Result = "REVIEW_REQUIRED"
	ResultDeclined       Result = "DECLINED"
)

// Status tracks whether an assessment has been handed to underwriting.
type Status string

const (
	StatusActive             Status = "ACTIVE"
	StatusSentToUnderwriting Status = "SENT_TO_UNDERWRITING"
)

// RiskAssessment is created once by the scorer and never re-scored. The only
// permitted mutation is the ACTIVE -> SENT_TO_UNDERWRITING status flip, which
// happens at most once.
type RiskAssessment struct {
	ID                     id.AssessmentID `json:"id"`
	CustomerID             id.CustomerID   `json:"customer_id"`
	RiskScore              int             `json:"risk_score"`
	RiskLevel              RiskLevel       `json:"risk_level"`
	Result                 Result          `json:"result"`
	Explanation            string          `json:"explanation"`
	Factors                []string        `json:"factors"`
	FlaggedForManualReview bool            `json:"flagged_for_manual_review"`
	Status                 Status          `json:"status"`
	AssessedAt             time.Time       `json:"assessed_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// CanSubmit checks the ACTIVE precondition for handing off to underwriting.
// Use with ApplySubmission in store Execute callbacks.
func (a *RiskAssessment) CanSubmit() error {
	if a.Status != StatusActive {
		return dErrors.New(dErrors.CodeConflict, "assessment already sent to underwriting")
	}
	return nil
}

// ApplySubmission flips the assessment to SENT_TO_UNDERWRITING.
// Call CanSubmit first to validate the transition.
func (a *RiskAssessment) ApplySubmission(now time.Time) {
	a.Status = StatusSentToUnderwriting
	a.UpdatedAt = now
}

// LevelForScore derives the risk level from a score. Pure function of the
// score with inclusive upper bounds.
func LevelForScore(score int) RiskLevel {
	switch {
	case score <= 25:
		return RiskLow
	case score <= 50:
		return RiskMedium
	case score <= 75:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// ResultForLevel derives the recommendation from a risk level.
func ResultForLevel(level RiskLevel) Result {
	switch level {
	case RiskLow, RiskMedium:
		return ResultApproved
	case RiskHigh:
		return ResultReviewRequired
	default:
		return ResultDeclined
	}
}

// ParseResult constructs a Result from external input.
func ParseResult(s string) (Result, error) {
	switch Result(s) {
	case ResultApproved, ResultReviewRequired, ResultDeclined:
		return Result(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "result must be APPROVED, REVIEW_REQUIRED or DECLINED")
}
