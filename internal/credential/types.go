package credential

import (
	"time"

	"github.com/ppiankov/protectwatch/internal/model"
)

// Depth is how far a licence verification got.
type Depth string

const (
	DepthBasic    Depth = "basic"    // format only
	DepthEnhanced Depth = "enhanced" // register record checked
	DepthFull     Depth = "full"     // register record matched to the officer
)

// VerificationResult is the outcome of a licence check.
// Errors block validity; warnings are advisory.
type VerificationResult struct {
	Number       string            `json:"number"`
	Valid        bool              `json:"valid"`
	Unverifiable bool              `json:"unverifiable,omitempty"`
	License      *model.SIALicense `json:"license,omitempty"`
	Errors       []string          `json:"errors"`
	Warnings     []string          `json:"warnings"`
	Depth        Depth             `json:"depth"`
	VerifiedAt   time.Time         `json:"verified_at"`
	NextCheckDue time.Time         `json:"next_check_due"`
}

// RequirementCheck compares an officer with a tier's requirement profile.
type RequirementCheck struct {
	Tier            model.ProtectionTier `json:"tier"`
	Meets           bool                 `json:"meets"`
	Missing         []string             `json:"missing"`
	Recommendations []string             `json:"recommendations"`
}

// ScoreItem is one category's contribution to the fitness score.
type ScoreItem struct {
	Category string `json:"category"`
	Points   int    `json:"points"`
	Max      int    `json:"max"`
	Detail   string `json:"detail"`
}

// Score is an officer's weighted fitness score.
type Score struct {
	Score      int         `json:"score"`
	MaxScore   int         `json:"max_score"`
	Percentage int         `json:"percentage"`
	Breakdown  []ScoreItem `json:"breakdown"`
}

// InsuranceCheck reports insurance cover against a tier's minimums.
type InsuranceCheck struct {
	Tier            model.ProtectionTier `json:"tier"`
	Adequate        bool                 `json:"adequate"`
	Issues          []string             `json:"issues"`
	Recommendations []string             `json:"recommendations"`
}

// OfficerReport bundles every offline check for one officer.
type OfficerReport struct {
	Name         string           `json:"name"`
	Compliant    bool             `json:"compliant"`
	Requirements RequirementCheck `json:"requirements"`
	Score        Score            `json:"score"`
	Insurance    InsuranceCheck   `json:"insurance"`
}

// TeamReport aggregates officer reports for one tier.
type TeamReport struct {
	Tier           model.ProtectionTier `json:"tier"`
	TotalOfficers  int                  `json:"total_officers"`
	CompliantCount int                  `json:"compliant_count"`
	AverageScore   float64              `json:"average_score"`
	Missing        []string             `json:"missing"`
	Officers       []OfficerReport      `json:"officers"`
	GeneratedAt    time.Time            `json:"generated_at"`
}
