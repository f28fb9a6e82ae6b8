package premises

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ppiankov/protectwatch/internal/catalog"
	"github.com/ppiankov/protectwatch/internal/model"
)

// Tier is a venue's Martyn's Law duty tier.
type Tier string

const (
	TierNotApplicable Tier = "not_applicable"
	TierStandard      Tier = "standard"
	TierEnhanced      Tier = "enhanced"
)

// RequirementStatus is how far a venue has met one duty.
type RequirementStatus string

const (
	StatusMet           RequirementStatus = "met"
	StatusPartiallyMet  RequirementStatus = "partially_met"
	StatusNotMet        RequirementStatus = "not_met"
	StatusNotApplicable RequirementStatus = "not_applicable"
)

// ParseStatus maps user input to a RequirementStatus.
func ParseStatus(s string) (RequirementStatus, bool) {
	switch st := RequirementStatus(s); st {
	case StatusMet, StatusPartiallyMet, StatusNotMet, StatusNotApplicable:
		return st, true
	}
	return "", false
}

// Requirement is one statutory duty for a venue.
type Requirement struct {
	ID          string            `json:"id"`
	Category    string            `json:"category"`
	Text        string            `json:"requirement"`
	Tier        Tier              `json:"tier"`
	Status      RequirementStatus `json:"status"`
	Responsible string            `json:"responsible"`
	Priority    model.Priority    `json:"priority"`
}

// ActionStatus tracks progress on a remediation action.
type ActionStatus string

const (
	ActionPending    ActionStatus = "pending"
	ActionInProgress ActionStatus = "in_progress"
	ActionCompleted  ActionStatus = "completed"
)

// Action is a costed, deadlined remediation step for one unmet requirement.
type Action struct {
	ID            string          `json:"id"`
	RequirementID string          `json:"requirement_id"`
	Action        string          `json:"action"`
	Priority      model.Priority  `json:"priority"`
	Deadline      time.Time       `json:"deadline"`
	Responsible   string          `json:"responsible"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
	Status        ActionStatus    `json:"status"`
	Dependencies  []string        `json:"dependencies,omitempty"`
}

// RiskLevel is the overall terrorism risk band.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Escalated reports whether the band is high or critical.
func (r RiskLevel) Escalated() bool {
	return r == RiskHigh || r == RiskCritical
}

// ThreatFlags are the specific-threat predicates raised for a venue.
type ThreatFlags struct {
	HighProfile        bool `json:"high_profile"`
	PoliticalTargeting bool `json:"political_targeting"`
	MassCasualty       bool `json:"mass_casualty"`
	MajorCity          bool `json:"major_city"`
}

// ThreatAssessment is the threat picture for a venue.
type ThreatAssessment struct {
	Level           string      `json:"level"`
	SpecificThreats []string    `json:"specific_threats"`
	Flags           ThreatFlags `json:"flags"`
}

// Vulnerabilities are the venue's gaps, by category.
type Vulnerabilities struct {
	Physical    []string `json:"physical"`
	Technical   []string `json:"technical"`
	Procedural  []string `json:"procedural"`
	Personnel   []string `json:"personnel"`
	Information []string `json:"information"`
}

// All returns every gap in category order.
func (v Vulnerabilities) All() []string {
	var out []string
	for _, list := range [][]string{v.Physical, v.Technical, v.Procedural, v.Personnel, v.Information} {
		out = append(out, list...)
	}
	return out
}

// RiskMatrix is the likelihood x impact position for a venue.
type RiskMatrix struct {
	Likelihood      string    `json:"likelihood"`
	LikelihoodValue int       `json:"likelihood_value"`
	Impact          string    `json:"impact"`
	ImpactValue     int       `json:"impact_value"`
	Score           int       `json:"score"`
	Band            RiskLevel `json:"band"`
}

// TerrorismRiskAssessment is a full assessment for one venue.
type TerrorismRiskAssessment struct {
	ID              string               `json:"id"`
	Venue           model.VenueProfile   `json:"venue"`
	Threat          ThreatAssessment     `json:"threat"`
	Vulnerabilities Vulnerabilities      `json:"vulnerabilities"`
	Matrix          RiskMatrix           `json:"risk_matrix"`
	Mitigations     []catalog.Mitigation `json:"mitigations"`
	OverallRisk     RiskLevel            `json:"overall_risk"`
	AssessedAt      time.Time            `json:"assessed_at"`
	NextReview      time.Time            `json:"next_review"`
}

// ComplianceAssessment ties a venue's tier, duties, risk and action plan together.
type ComplianceAssessment struct {
	ID             string                   `json:"id"`
	Venue          model.VenueProfile       `json:"venue"`
	Tier           Tier                     `json:"tier"`
	Requirements   []Requirement            `json:"requirements"`
	RiskAssessment *TerrorismRiskAssessment `json:"risk_assessment,omitempty"`
	ActionPlan     []Action                 `json:"action_plan"`
	AssessedAt     time.Time                `json:"assessed_at"`
}

// DeadlineStatus is one action's deadline position.
type DeadlineStatus struct {
	ActionID      string    `json:"action_id"`
	Action        string    `json:"action"`
	Deadline      time.Time `json:"deadline"`
	DaysRemaining int       `json:"days_remaining"`
	Overdue       bool      `json:"overdue"`
}

// ComplianceStatus is the outcome of CheckCompliance.
type ComplianceStatus struct {
	IsCompliant          bool             `json:"is_compliant"`
	CompliancePercentage float64          `json:"compliance_percentage"`
	Tracked              int              `json:"tracked"`
	Met                  int              `json:"met"`
	CriticalGaps         []string         `json:"critical_gaps"`
	NextActions          []Action         `json:"next_actions"`
	Deadlines            []DeadlineStatus `json:"deadlines"`
}

// Report is the narrative compliance report for a venue.
type Report struct {
	ExecutiveSummary string           `json:"executive_summary"`
	Status           string           `json:"status"`
	RiskSummary      string           `json:"risk_summary"`
	KeyFindings      []string         `json:"key_findings"`
	Recommendations  []string         `json:"recommendations"`
	TotalCost        decimal.Decimal  `json:"total_cost"`
	Timeline         string           `json:"timeline"`
	Compliance       ComplianceStatus `json:"compliance"`
}
