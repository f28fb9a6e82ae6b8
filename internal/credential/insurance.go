package credential

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ppiankov/protectwatch/internal/model"
)

type insuranceLine struct {
	name     string
	policy   *model.Policy
	minimum  decimal.Decimal
	required bool
}

// VerifyInsuranceAdequacy checks each insurance line for currency and minimum cover.
// High event value and the highest tier add recommendations but never affect Adequate.
func (e *Engine) VerifyInsuranceAdequacy(ins model.InsuranceStatus, tier model.ProtectionTier, eventValue *decimal.Decimal) InsuranceCheck {
	check := InsuranceCheck{
		Tier:            tier,
		Issues:          []string{},
		Recommendations: []string{},
	}

	mins, ok := e.cat.InsuranceFor(tier)
	if !ok {
		check.Issues = append(check.Issues, fmt.Sprintf("No insurance minimums defined for tier %s", tier))
		return check
	}
	now := e.now()
	window := time.Duration(e.cat.ExpiryWarningDays) * 24 * time.Hour

	lines := []insuranceLine{
		{"Professional indemnity", ins.ProfessionalIndemnity, mins.ProfessionalIndemnity, true},
		{"Public liability", ins.PublicLiability, mins.PublicLiability, true},
		{"Employer's liability", ins.EmployersLiability, mins.EmployersLiability, mins.EmployersRequired},
	}

	for _, l := range lines {
		problems, advice := l.check(now, window)
		if l.required {
			check.Issues = append(check.Issues, problems...)
		} else {
			check.Recommendations = append(check.Recommendations, problems...)
		}
		check.Recommendations = append(check.Recommendations, advice...)
	}

	if eventValue != nil && !e.cat.HighValueEvent.IsZero() && eventValue.GreaterThanOrEqual(e.cat.HighValueEvent) {
		check.Recommendations = append(check.Recommendations,
			fmt.Sprintf("Consider event-specific cover for an event valued at %s", model.FormatGBP(*eventValue)),
			"Consider worldwide coverage")
	}
	if tier == model.HighestTier {
		check.Recommendations = append(check.Recommendations,
			"Consider kidnap and ransom coverage",
			"Consider worldwide coverage")
	}

	check.Recommendations = dedupe(check.Recommendations)
	check.Adequate = len(check.Issues) == 0
	return check
}

// check returns blocking problems and non-blocking advice for one line.
func (l insuranceLine) check(now time.Time, window time.Duration) (problems, advice []string) {
	if l.policy == nil {
		if l.required {
			return []string{l.name + " insurance required"}, nil
		}
		return nil, nil
	}

	p := l.policy
	if !p.ExpiryDate.IsZero() {
		if !now.Before(p.ExpiryDate) {
			problems = append(problems, fmt.Sprintf("%s insurance expired on %s", l.name, p.ExpiryDate.Format("2006-01-02")))
		} else if p.ExpiryDate.Sub(now) <= window {
			advice = append(advice, fmt.Sprintf("Renew %s insurance before %s", lowerFirst(l.name), p.ExpiryDate.Format("2006-01-02")))
		}
	}
	if p.CoverageAmount.LessThan(l.minimum) {
		problems = append(problems, fmt.Sprintf("%s cover %s below %s minimum",
			l.name, model.FormatGBP(p.CoverageAmount), model.FormatGBP(l.minimum)))
	}
	return problems, advice
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
