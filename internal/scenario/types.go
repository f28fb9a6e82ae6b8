package scenario

import (
	"time"

	"github.com/ppiankov/protectwatch/internal/model"
	"github.com/ppiankov/protectwatch/internal/riskmatrix"
)

// Case kinds. An empty kind is inferred from which input is set.
const (
	KindRisk    = "risk"
	KindLicense = "license"
	KindOfficer = "officer"
	KindVenue   = "venue"
)

// Case is one test case within a scenario.
//
// Expect is matched case-insensitively against:
//   - risk: the band name (green, yellow, orange, red)
//   - license: valid, invalid or unverifiable
//   - officer: compliant or non_compliant
//   - venue: the overall terrorism risk (low, medium, high, critical)
type Case struct {
	Name    string                `yaml:"name,omitempty"`
	Kind    string                `yaml:"kind,omitempty"`
	Risk    *riskmatrix.Input     `yaml:"risk,omitempty"`
	License string                `yaml:"license,omitempty"`
	Officer *model.OfficerProfile `yaml:"officer,omitempty"`
	Tier    string                `yaml:"tier,omitempty"`
	Venue   *model.VenueProfile   `yaml:"venue,omitempty"`
	Threat  string                `yaml:"threat,omitempty"`
	Expect  string                `yaml:"expect"`
}

// Scenario is a named collection of assessment test cases.
type Scenario struct {
	Name string `yaml:"name"`
	// AsOf pins the evaluation clock so expiry checks are reproducible.
	AsOf time.Time `yaml:"as_of,omitempty"`
	// Registry seeds the simulated licence register.
	Registry []model.SIALicense `yaml:"registry,omitempty"`
	Cases    []Case             `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one test case.
type CaseResult struct {
	Index    int    `json:"index"`
	Passed   bool   `json:"passed"`
	Kind     string `json:"kind"`
	Subject  string `json:"subject"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Reason   string `json:"reason"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
