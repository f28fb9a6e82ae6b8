package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ppiankov/protectwatch/internal/alert"
	"github.com/ppiankov/protectwatch/internal/model"
)

// Catalog is the full set of rule tables consumed by the scoring engines.
// It is read-only once loaded; reloads swap in a new value.
type Catalog struct {
	Version     string              `yaml:"version"`
	Risk        RiskCatalog         `yaml:"risk"`
	Credentials CredentialCatalog   `yaml:"credentials"`
	Premises    PremisesCatalog     `yaml:"premises"`
	Alerts      []alert.AlertConfig `yaml:"alerts,omitempty"`
}

// --- Risk matrix ---

// Dimension is the matrix axis a factor or question feeds.
type Dimension string

const (
	DimensionProbability Dimension = "probability"
	DimensionImpact      Dimension = "impact"
)

// RiskCatalog configures the probability x impact matrix.
type RiskCatalog struct {
	DefaultLevel    int          `yaml:"default_level" validate:"min=1,max=5"`
	WeightPerLevel  int          `yaml:"weight_per_level" validate:"min=1"`
	ConfidenceFloor int          `yaml:"confidence_floor" validate:"min=0,max=100"`
	Bands           []RiskBand   `yaml:"bands" validate:"min=1,dive"`
	Factors         []RiskFactor `yaml:"factors" validate:"dive"`
	Questions       []Question   `yaml:"questions" validate:"dive"`
}

// RiskBand is one contiguous score range of the matrix.
type RiskBand struct {
	Name            string               `yaml:"name" json:"name" validate:"required"`
	Label           string               `yaml:"label" json:"label"`
	Color           string               `yaml:"color" json:"color"`
	Min             int                  `yaml:"min" json:"min" validate:"min=1,max=25"`
	Max             int                  `yaml:"max" json:"max" validate:"min=1,max=25"`
	RecommendedTier model.ProtectionTier `yaml:"recommended_tier" json:"recommended_tier"`
	Guidance        string               `yaml:"guidance,omitempty" json:"guidance,omitempty"`
}

// RiskFactor is a catalog entry. Active is the default activation.
type RiskFactor struct {
	ID          string    `yaml:"id" json:"id" validate:"required"`
	Category    string    `yaml:"category" json:"category" validate:"required"`
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Weight      int       `yaml:"weight" json:"weight" validate:"min=1,max=5"`
	Dimension   Dimension `yaml:"dimension" json:"dimension" validate:"oneof=probability impact"`
	Active      bool      `yaml:"active" json:"active"`
}

// Question maps questionnaire answers onto a matrix dimension.
type Question struct {
	ID        string    `yaml:"id" json:"id" validate:"required"`
	Prompt    string    `yaml:"prompt" json:"prompt"`
	Dimension Dimension `yaml:"dimension" json:"dimension" validate:"oneof=probability impact"`
	Answers   []Answer  `yaml:"answers" json:"answers" validate:"min=1,dive"`
}

// Answer is one permitted response. Activates lists factor IDs switched on by it.
type Answer struct {
	Value     string   `yaml:"value" json:"value" validate:"required"`
	Level     int      `yaml:"level" json:"level" validate:"min=1,max=5"`
	Activates []string `yaml:"activates,omitempty" json:"activates,omitempty"`
}

// BandFor returns the band containing score.
func (r RiskCatalog) BandFor(score int) (RiskBand, bool) {
	for _, b := range r.Bands {
		if score >= b.Min && score <= b.Max {
			return b, true
		}
	}
	return RiskBand{}, false
}

// Factor looks up a factor by ID.
func (r RiskCatalog) Factor(id string) (RiskFactor, bool) {
	for _, f := range r.Factors {
		if f.ID == id {
			return f, true
		}
	}
	return RiskFactor{}, false
}

// Answer finds the answer to a question, matching value case-insensitively.
func (q Question) Answer(value string) (Answer, bool) {
	v := strings.TrimSpace(value)
	for _, a := range q.Answers {
		if strings.EqualFold(a.Value, v) {
			return a, true
		}
	}
	return Answer{}, false
}

// --- Credentials ---

// CredentialCatalog holds licence, vetting, scoring and insurance rules.
type CredentialCatalog struct {
	Categories          []LicenseCategorySpec `yaml:"license_categories" validate:"min=1,dive"`
	ExpiryWarningDays   int                   `yaml:"expiry_warning_days" validate:"min=0"`
	RecheckIntervalDays int                   `yaml:"recheck_interval_days" validate:"min=1"`
	RegistryLatencyMS   int                   `yaml:"registry_latency_ms" validate:"min=0"`
	Experience          []ExperienceSpec      `yaml:"experience" validate:"min=1,dive"`
	DBS                 []DBSSpec             `yaml:"dbs_levels" validate:"min=1,dive"`
	OtherCheckPoints    int                   `yaml:"other_check_points" validate:"min=0"`
	Requirements        []ServiceRequirement  `yaml:"service_requirements" validate:"dive"`
	Insurance           []InsuranceMinimum    `yaml:"insurance_minimums" validate:"dive"`
	HighValueEvent      decimal.Decimal       `yaml:"high_value_event"`
	Scoring             ScoringSpec           `yaml:"scoring"`
}

// LicenseCategorySpec binds a licence category to its number prefix and SIA level.
type LicenseCategorySpec struct {
	Category model.LicenseCategory `yaml:"category" validate:"required"`
	Code     string                `yaml:"code" validate:"len=2,alpha"`
	Level    int                   `yaml:"level" validate:"min=1"`
	Title    string                `yaml:"title"`
}

// ExperienceSpec maps an experience tier to equivalent years and score points.
type ExperienceSpec struct {
	Tier   model.ExperienceTier `yaml:"tier" validate:"required"`
	Years  int                  `yaml:"years" validate:"min=0"`
	Points int                  `yaml:"points" validate:"min=0"`
}

// DBSSpec gives a DBS level its display label and score points.
type DBSSpec struct {
	Level  model.DBSLevel `yaml:"level" validate:"required"`
	Label  string         `yaml:"label"`
	Points int            `yaml:"points" validate:"min=0"`
}

// ServiceRequirement is the qualification table for one protection tier.
type ServiceRequirement struct {
	Tier                      model.ProtectionTier `yaml:"tier" validate:"required"`
	MinSIALevel               int                  `yaml:"min_sia_level" validate:"min=1"`
	RequiredCertifications    []string             `yaml:"required_certifications"`
	RecommendedCertifications []string             `yaml:"recommended_certifications"`
	MinYearsExperience        int                  `yaml:"min_years_experience" validate:"min=0"`
	RequiredDBSLevel          model.DBSLevel       `yaml:"required_dbs_level"`
	Extra                     *ExtraRequirement    `yaml:"extra,omitempty"`
}

// ExtraRequirement is satisfied when any specialization contains one of Keywords.
type ExtraRequirement struct {
	Description string   `yaml:"description" validate:"required"`
	Keywords    []string `yaml:"keywords" validate:"min=1"`
}

// InsuranceMinimum is the minimum cover per line for one tier.
type InsuranceMinimum struct {
	Tier                  model.ProtectionTier `yaml:"tier" validate:"required"`
	ProfessionalIndemnity decimal.Decimal      `yaml:"professional_indemnity"`
	PublicLiability       decimal.Decimal      `yaml:"public_liability"`
	EmployersLiability    decimal.Decimal      `yaml:"employers_liability"`
	EmployersRequired     bool                 `yaml:"employers_required"`
}

// ScoringSpec holds the fitness-score caps and per-item points.
type ScoringSpec struct {
	LicenseMax            int         `yaml:"license_max" validate:"min=0"`
	BackgroundMax         int         `yaml:"background_max" validate:"min=0"`
	ExperienceMax         int         `yaml:"experience_max" validate:"min=0"`
	CertificationMax      int         `yaml:"certification_max" validate:"min=0"`
	InsuranceMax          int         `yaml:"insurance_max" validate:"min=0"`
	LicenseLevelPoints    map[int]int `yaml:"license_level_points"`
	PendingLicensePoints  int         `yaml:"pending_license_points" validate:"min=0"`
	CertificationPoints   int         `yaml:"certification_points" validate:"min=0"`
	IndemnityPoints       int         `yaml:"indemnity_points" validate:"min=0"`
	PublicLiabilityPoints int         `yaml:"public_liability_points" validate:"min=0"`
	EmployersPoints       int         `yaml:"employers_points" validate:"min=0"`
}

// MaxScore is the sum of category caps.
func (s ScoringSpec) MaxScore() int {
	return s.LicenseMax + s.BackgroundMax + s.ExperienceMax + s.CertificationMax + s.InsuranceMax
}

// Category looks up a licence category.
func (c CredentialCatalog) Category(cat model.LicenseCategory) (LicenseCategorySpec, bool) {
	for _, spec := range c.Categories {
		if spec.Category == cat {
			return spec, true
		}
	}
	return LicenseCategorySpec{}, false
}

// CategoryByCode looks up a licence category by its two-letter prefix.
func (c CredentialCatalog) CategoryByCode(code string) (LicenseCategorySpec, bool) {
	for _, spec := range c.Categories {
		if strings.EqualFold(spec.Code, code) {
			return spec, true
		}
	}
	return LicenseCategorySpec{}, false
}

// RequirementFor returns the requirement profile for a tier.
func (c CredentialCatalog) RequirementFor(tier model.ProtectionTier) (ServiceRequirement, bool) {
	for _, r := range c.Requirements {
		if r.Tier == tier {
			return r, true
		}
	}
	return ServiceRequirement{}, false
}

// InsuranceFor returns the insurance minimums for a tier.
func (c CredentialCatalog) InsuranceFor(tier model.ProtectionTier) (InsuranceMinimum, bool) {
	for _, m := range c.Insurance {
		if m.Tier == tier {
			return m, true
		}
	}
	return InsuranceMinimum{}, false
}

// ExperienceFor returns the experience spec for a tier.
func (c CredentialCatalog) ExperienceFor(tier model.ExperienceTier) (ExperienceSpec, bool) {
	for _, e := range c.Experience {
		if e.Tier == tier {
			return e, true
		}
	}
	return ExperienceSpec{}, false
}

// DBSFor returns the spec for a DBS level.
func (c CredentialCatalog) DBSFor(level model.DBSLevel) (DBSSpec, bool) {
	for _, d := range c.DBS {
		if d.Level == level {
			return d, true
		}
	}
	return DBSSpec{}, false
}

// --- Premises (Martyn's Law) ---

// PremisesCatalog configures tiering, checklists, threat scoring and action costing.
type PremisesCatalog struct {
	StandardThreshold      int               `yaml:"standard_threshold" validate:"min=1"`
	EnhancedThreshold      int               `yaml:"enhanced_threshold" validate:"min=1"`
	StandardChecklist      []RequirementSpec `yaml:"standard_checklist" validate:"dive"`
	EnhancedChecklist      []RequirementSpec `yaml:"enhanced_checklist" validate:"dive"`
	ThreatLevels           []ThreatLevelSpec `yaml:"threat_levels" validate:"min=1,dive"`
	ThreatFlags            []ThreatFlagSpec  `yaml:"threat_flags" validate:"dive"`
	LargeVenueThreshold    int               `yaml:"large_venue_threshold" validate:"min=1"`
	MajorCities            []string          `yaml:"major_cities"`
	PoliticalEventKeywords []string          `yaml:"political_event_keywords"`
	AccessPointThreshold   int               `yaml:"access_point_threshold" validate:"min=0"`
	MinEmergencyExits      int               `yaml:"min_emergency_exits" validate:"min=0"`
	MinSecurityFeatures    int               `yaml:"min_security_features" validate:"min=0"`
	FeatureRules           []FeatureRule     `yaml:"feature_rules" validate:"dive"`
	CapacityImpact         []CapacityBracket `yaml:"capacity_impact" validate:"min=1,dive"`
	LikelihoodScale        []ScaleLevel      `yaml:"likelihood_scale" validate:"len=5,dive"`
	ImpactScale            []ScaleLevel      `yaml:"impact_scale" validate:"len=5,dive"`
	OverallBands           []OverallBand     `yaml:"overall_bands" validate:"min=1,dive"`
	Mitigations            []Mitigation      `yaml:"mitigations" validate:"dive"`
	EnhancedMitigations    []Mitigation      `yaml:"enhanced_mitigations" validate:"dive"`
	Deadlines              DeadlineSpec      `yaml:"deadlines"`
	CostTable              []CostEntry       `yaml:"cost_table" validate:"dive"`
	DefaultCost            decimal.Decimal   `yaml:"default_cost"`
	NextActionsLimit       int               `yaml:"next_actions_limit" validate:"min=1"`
	ActionsPerMonth        int               `yaml:"actions_per_month" validate:"min=1"`
}

// RequirementSpec is one statutory checklist item.
type RequirementSpec struct {
	Category    string         `yaml:"category" validate:"oneof=risk_assessment security_plan training procedures communication review"`
	Text        string         `yaml:"text" validate:"required"`
	Priority    model.Priority `yaml:"priority" validate:"oneof=critical high medium low"`
	Responsible string         `yaml:"responsible"`
}

// ThreatLevelSpec maps a local threat level to its base likelihood points.
type ThreatLevelSpec struct {
	Level   string   `yaml:"level" validate:"required"`
	Aliases []string `yaml:"aliases,omitempty"`
	Points  int      `yaml:"points" validate:"min=0"`
}

// ThreatFlagSpec is the text and score contribution of a specific-threat flag.
type ThreatFlagSpec struct {
	Code        string `yaml:"code" validate:"oneof=high_profile political_targeting mass_casualty major_city"`
	Description string `yaml:"description" validate:"required"`
	Likelihood  int    `yaml:"likelihood" validate:"min=0"`
	Impact      int    `yaml:"impact" validate:"min=0"`
}

// FeatureRule raises a vulnerability when no declared feature contains any keyword.
type FeatureRule struct {
	Feature  string   `yaml:"feature" validate:"required"`
	Keywords []string `yaml:"keywords" validate:"min=1"`
	Category string   `yaml:"category" validate:"oneof=physical technical procedural personnel information"`
	Gap      string   `yaml:"gap" validate:"required"`
}

// CapacityBracket awards impact points from MinCapacity upward.
type CapacityBracket struct {
	MinCapacity int `yaml:"min_capacity" validate:"min=0"`
	Points      int `yaml:"points" validate:"min=0"`
}

// ScaleLevel is one step of a five-level likelihood or impact scale.
type ScaleLevel struct {
	Level    int    `yaml:"level" validate:"min=1,max=5"`
	Label    string `yaml:"label" validate:"required"`
	MinScore int    `yaml:"min_score" validate:"min=0"`
}

// OverallBand is a terrorism risk band with its cut point and review interval.
type OverallBand struct {
	Band         string `yaml:"band" validate:"oneof=low medium high critical"`
	MinScore     int    `yaml:"min_score" validate:"min=0"`
	ReviewMonths int    `yaml:"review_months" validate:"min=1"`
}

// Mitigation is a proposed protective measure.
type Mitigation struct {
	Name          string `yaml:"name" json:"name" validate:"required"`
	Description   string `yaml:"description" json:"description"`
	Category      string `yaml:"category" json:"category"`
	Effectiveness string `yaml:"effectiveness" json:"effectiveness" validate:"oneof=low medium high"`
	Cost          string `yaml:"cost" json:"cost" validate:"oneof=low medium high"`
}

// DeadlineSpec holds action deadline offsets in days.
type DeadlineSpec struct {
	CriticalDays  int `yaml:"critical_days" validate:"min=1"`
	EscalatedDays int `yaml:"escalated_days" validate:"min=1"`
	DefaultDays   int `yaml:"default_days" validate:"min=1"`
}

// CostEntry estimates an action's cost when its text contains any keyword.
type CostEntry struct {
	Keywords []string        `yaml:"keywords" validate:"min=1"`
	Cost     decimal.Decimal `yaml:"cost"`
}

// ThreatLevel resolves a level name or alias, case-insensitively.
func (p PremisesCatalog) ThreatLevel(name string) (ThreatLevelSpec, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, t := range p.ThreatLevels {
		if strings.EqualFold(t.Level, n) {
			return t, true
		}
		for _, a := range t.Aliases {
			if strings.EqualFold(a, n) {
				return t, true
			}
		}
	}
	return ThreatLevelSpec{}, false
}

// Flag returns the spec for a threat flag code.
func (p PremisesCatalog) Flag(code string) (ThreatFlagSpec, bool) {
	for _, f := range p.ThreatFlags {
		if f.Code == code {
			return f, true
		}
	}
	return ThreatFlagSpec{}, false
}

// EstimateCost returns the first cost-table match for text, or DefaultCost.
func (p PremisesCatalog) EstimateCost(text string) decimal.Decimal {
	lower := strings.ToLower(text)
	for _, entry := range p.CostTable {
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return entry.Cost
			}
		}
	}
	return p.DefaultCost
}
