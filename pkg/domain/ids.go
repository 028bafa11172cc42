// Package domain defines typed identifiers shared across modules.
//
// Each entity gets its own UUID-backed type so the compiler rejects
// cross-entity assignments (passing a CustomerID where a DecisionID is
// expected). Construct IDs via the Parse functions at trust boundaries;
// direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "riskguard/pkg/domain-errors"
)

type (
	// CustomerID identifies an insurance applicant.
	CustomerID uuid.UUID
	// AssessmentID identifies a risk assessment.
	AssessmentID uuid.UUID
	// DecisionID identifies an underwriting decision.
	DecisionID uuid.UUID
	// PolicyID identifies an issued policy.
	PolicyID uuid.UUID
	// PaymentID identifies a premium payment.
	PaymentID uuid.UUID
)

func (id CustomerID) String() string   { return uuid.UUID(id).String() }
func (id AssessmentID) String() string { return uuid.UUID(id).String() }
func (id DecisionID) String() string   { return uuid.UUID(id).String() }
func (id PolicyID) String() string     { return uuid.UUID(id).String() }
func (id PaymentID) String() string    { return uuid.UUID(id).String() }

// NewCustomerID generates a fresh random customer ID.
func NewCustomerID() CustomerID { return CustomerID(uuid.New()) }

// NewAssessmentID generates a fresh random assessment ID.
func NewAssessmentID() AssessmentID { return AssessmentID(uuid.New()) }

// NewDecisionID generates a fresh random decision ID.
func NewDecisionID() DecisionID { return DecisionID(uuid.New()) }

// NewPolicyID generates a fresh random policy ID.
func NewPolicyID() PolicyID { return PolicyID(uuid.New()) }

// NewPaymentID generates a fresh random payment ID.
func NewPaymentID() PaymentID { return PaymentID(uuid.New()) }

// parseUUID enforces the shared ID invariant: valid, non-empty, non-nil.
func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what+" id format")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" id cannot be nil")
	}
	return u, nil
}

// ParseCustomerID constructs a CustomerID from external input.
func ParseCustomerID(s string) (CustomerID, error) {
	u, err := parseUUID(s, "customer")
	return CustomerID(u), err
}

// ParseAssessmentID constructs an AssessmentID from external input.
func ParseAssessmentID(s string) (AssessmentID, error) {
	u, err := parseUUID(s, "assessment")
	return AssessmentID(u), err
}

// ParseDecisionID constructs a DecisionID from external input.
func ParseDecisionID(s string) (DecisionID, error) {
	u, err := parseUUID(s, "decision")
	return DecisionID(u), err
}

// ParsePolicyID constructs a PolicyID from external input.
func ParsePolicyID(s string) (PolicyID, error) {
	u, err := parseUUID(s, "policy")
	return PolicyID(u), err
}

// ParsePaymentID constructs a PaymentID from external input.
func ParsePaymentID(s string) (PaymentID, error) {
	u, err := parseUUID(s, "payment")
	return PaymentID(u), err
}

// Text marshalling so IDs render as canonical UUID strings in JSON and
// query logs. Defined types do not inherit uuid.UUID's methods.

func (id CustomerID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id AssessmentID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id DecisionID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id PolicyID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id PaymentID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }

func (id *CustomerID) UnmarshalText(b []byte) error {
	parsed, err := ParseCustomerID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *AssessmentID) UnmarshalText(b []byte) error {
	parsed, err := ParseAssessmentID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *DecisionID) UnmarshalText(b []byte) error {
	parsed, err := ParseDecisionID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *PolicyID) UnmarshalText(b []byte) error {
	parsed, err := ParsePolicyID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *PaymentID) UnmarshalText(b []byte) error {
	parsed, err := ParsePaymentID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
