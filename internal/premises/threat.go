package premises

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/protectwatch/internal/catalog"
	"github.com/ppiankov/protectwatch/internal/model"
)

// ConductTerrorismRiskAssessment scores a venue under the given local threat level.
// threatLevel accepts level names and their aliases (e.g. "severe" for critical).
func (p *Planner) ConductTerrorismRiskAssessment(venue model.VenueProfile, threatLevel string) (TerrorismRiskAssessment, error) {
	level, ok := p.cat.ThreatLevel(threatLevel)
	if !ok {
		return TerrorismRiskAssessment{}, fmt.Errorf("unknown threat level %q", threatLevel)
	}
	venue.Normalize()

	flags := p.threatFlags(venue)
	threat := ThreatAssessment{
		Level:           level.Level,
		SpecificThreats: []string{},
		Flags:           flags,
	}

	likelihoodScore := level.Points
	impactScore := p.capacityPoints(venue.Capacity)
	for _, code := range flags.codes() {
		spec, ok := p.cat.Flag(code)
		if !ok {
			continue
		}
		threat.SpecificThreats = append(threat.SpecificThreats, spec.Description)
		likelihoodScore += spec.Likelihood
		impactScore += spec.Impact
	}

	lk := onScale(p.cat.LikelihoodScale, likelihoodScore)
	im := onScale(p.cat.ImpactScale, impactScore)
	score := lk.Level * im.Level
	band, months := p.overallBand(score)

	mitigations := append([]catalog.Mitigation{}, p.cat.Mitigations...)
	if band.Escalated() {
		mitigations = append(mitigations, p.cat.EnhancedMitigations...)
	}

	now := p.now()
	return TerrorismRiskAssessment{
		ID:              p.newID(),
		Venue:           venue,
		Threat:          threat,
		Vulnerabilities: p.vulnerabilities(venue),
		Matrix: RiskMatrix{
			Likelihood:      lk.Label,
			LikelihoodValue: lk.Level,
			Impact:          im.Label,
			ImpactValue:     im.Level,
			Score:           score,
			Band:            band,
		},
		Mitigations: mitigations,
		OverallRisk: band,
		AssessedAt:  now,
		NextReview:  now.AddDate(0, months, 0),
	}, nil
}

// codes lists set flags in a fixed order.
func (f ThreatFlags) codes() []string {
	var out []string
	if f.HighProfile {
		out = append(out, "high_profile")
	}
	if f.PoliticalTargeting {
		out = append(out, "political_targeting")
	}
	if f.MassCasualty {
		out = append(out, "mass_casualty")
	}
	if f.MajorCity {
		out = append(out, "major_city")
	}
	return out
}

func (p *Planner) threatFlags(v model.VenueProfile) ThreatFlags {
	return ThreatFlags{
		HighProfile:        v.PublicProfile == model.ProfileHigh,
		PoliticalTargeting: anyContains(v.EventTypes, p.cat.PoliticalEventKeywords),
		MassCasualty:       v.Capacity > p.cat.LargeVenueThreshold,
		MajorCity:          anyContains([]string{v.Location}, p.cat.MajorCities),
	}
}

func (p *Planner) vulnerabilities(v model.VenueProfile) Vulnerabilities {
	out := Vulnerabilities{
		Physical:    []string{},
		Technical:   []string{},
		Procedural:  []string{},
		Personnel:   []string{},
		Information: []string{},
	}

	if v.AccessPoints > p.cat.AccessPointThreshold {
		out.Physical = append(out.Physical, fmt.Sprintf("%d access points exceed the recommended maximum of %d",
			v.AccessPoints, p.cat.AccessPointThreshold))
	}
	if v.EmergencyExits < p.cat.MinEmergencyExits {
		out.Physical = append(out.Physical, fmt.Sprintf("Only %d emergency exits (minimum %d)",
			v.EmergencyExits, p.cat.MinEmergencyExits))
	}
	if len(v.SecurityFeatures) < p.cat.MinSecurityFeatures {
		out.Procedural = append(out.Procedural, fmt.Sprintf("Only %d security features declared (minimum %d)",
			len(v.SecurityFeatures), p.cat.MinSecurityFeatures))
	}

	for _, rule := range p.cat.FeatureRules {
		if anyContains(v.SecurityFeatures, rule.Keywords) {
			continue
		}
		switch rule.Category {
		case "physical":
			out.Physical = append(out.Physical, rule.Gap)
		case "technical":
			out.Technical = append(out.Technical, rule.Gap)
		case "procedural":
			out.Procedural = append(out.Procedural, rule.Gap)
		case "personnel":
			out.Personnel = append(out.Personnel, rule.Gap)
		case "information":
			out.Information = append(out.Information, rule.Gap)
		}
	}
	return out
}

// capacityPoints returns the points of the highest bracket capacity reaches.
func (p *Planner) capacityPoints(capacity int) int {
	points, best := 0, -1
	for _, b := range p.cat.CapacityImpact {
		if capacity >= b.MinCapacity && b.MinCapacity > best {
			points, best = b.Points, b.MinCapacity
		}
	}
	return points
}

// onScale returns the highest level whose breakpoint score reaches.
// Scores below the first breakpoint map to the first level.
func onScale(scale []catalog.ScaleLevel, score int) catalog.ScaleLevel {
	out := scale[0]
	for _, s := range scale {
		if score >= s.MinScore {
			out = s
		}
	}
	return out
}

func (p *Planner) overallBand(score int) (RiskLevel, int) {
	bands := append([]catalog.OverallBand{}, p.cat.OverallBands...)
	sort.Slice(bands, func(i, j int) bool { return bands[i].MinScore > bands[j].MinScore })
	for _, b := range bands {
		if score >= b.MinScore {
			return RiskLevel(b.Band), b.ReviewMonths
		}
	}
	return RiskLow, 12
}

func anyContains(values, keywords []string) bool {
	for _, v := range values {
		lower := strings.ToLower(v)
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}
