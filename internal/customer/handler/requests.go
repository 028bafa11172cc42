package handler

import (
	"time"

	"riskguard/internal/customer"
	dErrors "riskguard/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// CustomerRequest is the create/update payload. Date of birth is optional;
// an absent or malformed value leaves the customer scorable with the age
// rule skipped.
type CustomerRequest struct {
	Name             string `json:"name"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	InsuranceType    string `json:"insurance_type"`
	DocumentVerified bool   `json:"document_verified"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Address          string `json:"address,omitempty"`
	City             string `json:"city,omitempty"`
	State            string `json:"state,omitempty"`
	ZipCode          string `json:"zip_code,omitempty"`

	params customer.CreateParams
}

func (r *CustomerRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	insuranceType, err := customer.ParseInsuranceType(r.InsuranceType)
	if err != nil {
		return err
	}

	r.params = customer.CreateParams{
		Name:             r.Name,
		InsuranceType:    insuranceType,
		DocumentVerified: r.DocumentVerified,
		Email:            r.Email,
		Phone:            r.Phone,
		Address:          r.Address,
		City:             r.City,
		State:            r.State,
		ZipCode:          r.ZipCode,
	}
	if r.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, r.DateOfBirth)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "date_of_birth must be YYYY-MM-DD")
		}
		r.params.DateOfBirth = &dob
	}
	return nil
}
