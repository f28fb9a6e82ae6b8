package premises

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// GenerateReport assembles the narrative report for an assessment.
func (p *Planner) GenerateReport(a ComplianceAssessment) Report {
	st := p.CheckCompliance(a)

	total := decimal.Zero
	for _, act := range a.ActionPlan {
		total = total.Add(act.EstimatedCost)
	}

	r := Report{
		ExecutiveSummary: p.summary(a, st),
		Status:           statusLine(a.Tier, st),
		RiskSummary:      riskSummary(a.RiskAssessment),
		KeyFindings:      []string{},
		Recommendations:  []string{},
		TotalCost:        total,
		Timeline:         p.timeline(len(a.ActionPlan)),
		Compliance:       st,
	}

	r.KeyFindings = append(r.KeyFindings, st.CriticalGaps...)
	if ra := a.RiskAssessment; ra != nil {
		r.KeyFindings = append(r.KeyFindings, ra.Threat.SpecificThreats...)
		r.KeyFindings = append(r.KeyFindings, ra.Vulnerabilities.All()...)
	}

	for _, act := range st.NextActions {
		r.Recommendations = append(r.Recommendations,
			fmt.Sprintf("%s (%s, by %s)", act.Action, act.Priority, act.Deadline.Format("2006-01-02")))
	}
	if ra := a.RiskAssessment; ra != nil {
		for _, m := range ra.Mitigations {
			r.Recommendations = append(r.Recommendations, fmt.Sprintf("%s: %s", m.Name, m.Description))
		}
	}
	return r
}

func (p *Planner) summary(a ComplianceAssessment, st ComplianceStatus) string {
	name := a.Venue.Name
	if name == "" {
		name = "The " + nonEmpty(a.Venue.VenueType, "venue")
	}
	if a.Tier == TierNotApplicable {
		return fmt.Sprintf("%s (capacity %d) is below the %d-person threshold; no Martyn's Law duties apply.",
			name, a.Venue.Capacity, p.cat.StandardThreshold)
	}

	s := fmt.Sprintf("%s (capacity %d) falls under the %s tier of Martyn's Law. %d of %d tracked requirements met (%.0f%%).",
		name, a.Venue.Capacity, a.Tier, st.Met, st.Tracked, st.CompliancePercentage)
	if a.RiskAssessment != nil {
		s += fmt.Sprintf(" Overall terrorism risk is %s.", a.RiskAssessment.OverallRisk)
	}
	return s
}

func statusLine(tier Tier, st ComplianceStatus) string {
	switch {
	case tier == TierNotApplicable:
		return "NOT APPLICABLE"
	case st.IsCompliant:
		return "COMPLIANT"
	default:
		return fmt.Sprintf("NON-COMPLIANT: %d critical gaps, %d actions outstanding", len(st.CriticalGaps), len(st.NextActions))
	}
}

func riskSummary(ra *TerrorismRiskAssessment) string {
	if ra == nil {
		return "No terrorism risk assessment on file"
	}
	m := ra.Matrix
	return fmt.Sprintf("%s risk (score %d/25): likelihood %s, impact %s under a %s threat level. Next review %s.",
		capitalize(string(ra.OverallRisk)), m.Score,
		strings.ReplaceAll(m.Likelihood, "_", " "), strings.ReplaceAll(m.Impact, "_", " "),
		ra.Threat.Level, ra.NextReview.Format("2006-01-02"))
}

// timeline is ceil(actions / actions_per_month) months.
func (p *Planner) timeline(actions int) string {
	if actions == 0 {
		return "No action required"
	}
	per := max(p.cat.ActionsPerMonth, 1)
	months := (actions + per - 1) / per
	if months == 1 {
		return "1 month"
	}
	return fmt.Sprintf("%d months", months)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
