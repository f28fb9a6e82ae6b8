// Package premises plans Martyn's Law compliance for a venue: duty tier,
// requirement checklists, terrorism risk assessment and a costed action plan.
package premises

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/protectwatch/internal/catalog"
	"github.com/ppiankov/protectwatch/internal/model"
)

// Planner evaluates venues against one catalog. It holds no per-venue state.
type Planner struct {
	cat   *catalog.PremisesCatalog
	now   func() time.Time
	newID func() string
}

// Option configures a Planner.
type Option func(*Planner)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// WithIDs overrides the assessment ID generator.
func WithIDs(newID func() string) Option {
	return func(p *Planner) { p.newID = newID }
}

// New creates a Planner over cat.
func New(cat *catalog.Catalog, opts ...Option) *Planner {
	p := &Planner{
		cat:   &cat.Premises,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DetermineComplianceTier classifies capacity. Bands are inclusive at their lower edge.
func (p *Planner) DetermineComplianceTier(capacity int) Tier {
	switch {
	case capacity >= p.cat.EnhancedThreshold:
		return TierEnhanced
	case capacity >= p.cat.StandardThreshold:
		return TierStandard
	default:
		return TierNotApplicable
	}
}

// GenerateRequirements expands the checklist for capacity's tier.
// Enhanced premises get the standard list plus the enhanced list; IDs are tier-scoped.
func (p *Planner) GenerateRequirements(capacity int) []Requirement {
	tier := p.DetermineComplianceTier(capacity)
	if tier == TierNotApplicable {
		return []Requirement{}
	}

	reqs := expand("STD", TierStandard, p.cat.StandardChecklist)
	if tier == TierEnhanced {
		reqs = append(reqs, expand("ENH", TierEnhanced, p.cat.EnhancedChecklist)...)
	}
	return reqs
}

func expand(prefix string, tier Tier, specs []catalog.RequirementSpec) []Requirement {
	out := make([]Requirement, 0, len(specs))
	for i, s := range specs {
		out = append(out, Requirement{
			ID:          fmt.Sprintf("%s-%03d", prefix, i+1),
			Category:    s.Category,
			Text:        s.Text,
			Tier:        tier,
			Status:      StatusNotMet,
			Responsible: s.Responsible,
			Priority:    s.Priority,
		})
	}
	return out
}

// AssessVenue builds a full compliance assessment. statuses maps requirement IDs
// to their current status; unlisted requirements are not met.
func (p *Planner) AssessVenue(venue model.VenueProfile, threatLevel string, statuses map[string]RequirementStatus) (ComplianceAssessment, error) {
	venue.Normalize()

	risk, err := p.ConductTerrorismRiskAssessment(venue, threatLevel)
	if err != nil {
		return ComplianceAssessment{}, err
	}

	reqs := p.GenerateRequirements(venue.Capacity)
	for i := range reqs {
		if st, ok := statuses[reqs[i].ID]; ok {
			reqs[i].Status = st
		}
	}

	return ComplianceAssessment{
		ID:             p.newID(),
		Venue:          venue,
		Tier:           p.DetermineComplianceTier(venue.Capacity),
		Requirements:   reqs,
		RiskAssessment: &risk,
		ActionPlan:     p.GenerateActionPlan(reqs, risk.OverallRisk),
		AssessedAt:     p.now(),
	}, nil
}
