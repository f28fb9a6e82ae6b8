package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SIALicense is a security-industry licence as held on the public register.
type SIALicense struct {
	Number                   string          `json:"number" yaml:"number" validate:"required"`
	Category                 LicenseCategory `json:"category" yaml:"category"`
	HolderName               string          `json:"holder_name" yaml:"holder_name"`
	IssueDate                time.Time       `json:"issue_date" yaml:"issue_date"`
	ExpiryDate               time.Time       `json:"expiry_date" yaml:"expiry_date"`
	Status                   LicenseStatus   `json:"status" yaml:"status" validate:"omitempty,oneof=active expired suspended revoked pending"`
	Endorsements             []string        `json:"endorsements,omitempty" yaml:"endorsements,omitempty"`
	AdditionalQualifications []string        `json:"additional_qualifications,omitempty" yaml:"additional_qualifications,omitempty"`
}

// Certification is a qualification held in addition to the SIA licence (first aid, driving, etc.).
type Certification struct {
	Name       string    `json:"name" yaml:"name" validate:"required"`
	Issuer     string    `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Number     string    `json:"number,omitempty" yaml:"number,omitempty"`
	ValidFrom  time.Time `json:"valid_from,omitempty" yaml:"valid_from,omitempty"`
	ValidUntil time.Time `json:"valid_until,omitempty" yaml:"valid_until,omitempty"`
}

// CurrentAt reports whether the certification is valid at t. A zero ValidUntil never expires.
func (c Certification) CurrentAt(t time.Time) bool {
	if !c.ValidFrom.IsZero() && t.Before(c.ValidFrom) {
		return false
	}
	return c.ValidUntil.IsZero() || t.Before(c.ValidUntil)
}

// BackgroundCheck is one vetting record. Type "dbs" carries a DBSLevel.
type BackgroundCheck struct {
	Type       string    `json:"type" yaml:"type" validate:"required"`
	Level      DBSLevel  `json:"level,omitempty" yaml:"level,omitempty"`
	IssuedAt   time.Time `json:"issued_at,omitempty" yaml:"issued_at,omitempty"`
	ValidUntil time.Time `json:"valid_until,omitempty" yaml:"valid_until,omitempty"`
	Status     string    `json:"status" yaml:"status"`
}

// Clear reports whether the check has a clear result and is current at t.
func (b BackgroundCheck) Clear(t time.Time) bool {
	if b.Status != "" && b.Status != "clear" {
		return false
	}
	return b.ValidUntil.IsZero() || t.Before(b.ValidUntil)
}

// Policy is one insurance line.
type Policy struct {
	Provider       string          `json:"provider" yaml:"provider"`
	CoverageAmount decimal.Decimal `json:"coverage_amount" yaml:"coverage_amount"`
	ExpiryDate     time.Time       `json:"expiry_date" yaml:"expiry_date"`
	PolicyNumber   string          `json:"policy_number,omitempty" yaml:"policy_number,omitempty"`
}

// InsuranceStatus holds an officer's insurance lines. Nil means not held.
type InsuranceStatus struct {
	ProfessionalIndemnity *Policy `json:"professional_indemnity,omitempty" yaml:"professional_indemnity,omitempty"`
	PublicLiability       *Policy `json:"public_liability,omitempty" yaml:"public_liability,omitempty"`
	EmployersLiability    *Policy `json:"employers_liability,omitempty" yaml:"employers_liability,omitempty"`
}

// OfficerProfile is everything the credential engine knows about one officer.
type OfficerProfile struct {
	Name             string            `json:"name" yaml:"name" validate:"required"`
	License          SIALicense        `json:"license" yaml:"license"`
	Certifications   []Certification   `json:"certifications,omitempty" yaml:"certifications,omitempty" validate:"dive"`
	Experience       ExperienceTier    `json:"experience" yaml:"experience" validate:"omitempty,oneof=entry intermediate senior expert elite"`
	Specializations  []string          `json:"specializations,omitempty" yaml:"specializations,omitempty"`
	BackgroundChecks []BackgroundCheck `json:"background_checks,omitempty" yaml:"background_checks,omitempty" validate:"dive"`
	Insurance        InsuranceStatus   `json:"insurance" yaml:"insurance"`
	Availability     string            `json:"availability,omitempty" yaml:"availability,omitempty"`
}
