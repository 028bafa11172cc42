package customer

import (
	"strings"
	"time"

	id "riskguard/pkg/domain"
	dErrors "riskguard/pkg/domain-errors"
)

// InsuranceType is the product line a customer applied for.
type InsuranceType string

const (
	InsuranceHealth InsuranceType = "HEALTH"
	InsuranceLife   InsuranceType = "LIFE"
	InsuranceMotor  InsuranceType = "MOTOR"
)

var validInsuranceTypes = map[InsuranceType]bool{
	InsuranceHealth: true,
	InsuranceLife:   true,
	InsuranceMotor:  true,
}

// ParseInsuranceType constructs an InsuranceType from external input.
func ParseInsuranceType(s string) (InsuranceType, error) {
	t := InsuranceType(strings.ToUpper(strings.TrimSpace(s)))
	if !validInsuranceTypes[t] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "insurance type must be HEALTH, LIFE or MOTOR")
	}
	return t, nil
}

// Customer is a read-only input to risk scoring. The scoring rules only look
// at date of birth, insurance type, document verification and contact
// completeness; the remaining fields exist for the CRUD surface.
type Customer struct {
	ID               id.CustomerID `json:"id"`
	Name             string        `json:"name"`
	DateOfBirth      *time.Time    `json:"date_of_birth,omitempty"`
	InsuranceType    InsuranceType `json:"insurance_type"`
	DocumentVerified bool          `json:"document_verified"`
	Email            string        `json:"email,omitempty"`
	Phone            string        `json:"phone,omitempty"`
	Address          string        `json:"address,omitempty"`
	City             string        `json:"city,omitempty"`
	State            string        `json:"state,omitempty"`
	ZipCode          string        `json:"zip_code,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// NewCustomer constructs a Customer, enforcing construction invariants.
func NewCustomer(customerID id.CustomerID, name string, insuranceType InsuranceType, now time.Time) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "customer name cannot be empty")
	}
	if !validInsuranceTypes[insuranceType] {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unsupported insurance type")
	}
	return &Customer{
		ID:            customerID,
		Name:          name,
		InsuranceType: insuranceType,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
