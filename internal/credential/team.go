package credential

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/protectwatch/internal/model"
)

// maxParallel bounds concurrent officer evaluations in a team report.
const maxParallel = 8

// EvaluateOfficer runs the offline checks for one officer.
// Compliant means requirements met and insurance adequate.
func (e *Engine) EvaluateOfficer(officer model.OfficerProfile, tier model.ProtectionTier) OfficerReport {
	return e.EvaluateOfficerForEvent(officer, tier, nil)
}

// EvaluateOfficerForEvent is EvaluateOfficer with insurance advice sized to an event value.
func (e *Engine) EvaluateOfficerForEvent(officer model.OfficerProfile, tier model.ProtectionTier, eventValue *decimal.Decimal) OfficerReport {
	req := e.VerifyOfficerRequirements(officer, tier)
	ins := e.VerifyInsuranceAdequacy(officer.Insurance, tier, eventValue)
	return OfficerReport{
		Name:         officer.Name,
		Compliant:    req.Meets && ins.Adequate,
		Requirements: req,
		Score:        e.CalculateVerificationScore(officer),
		Insurance:    ins,
	}
}

// GenerateComplianceReport evaluates officers in parallel and aggregates the team.
// Aggregates are order-independent; Officers keeps input order.
func (e *Engine) GenerateComplianceReport(ctx context.Context, officers []model.OfficerProfile, tier model.ProtectionTier) (TeamReport, error) {
	reports := make([]OfficerReport, len(officers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i := range officers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = e.EvaluateOfficer(officers[i], tier)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return TeamReport{}, err
	}

	team := TeamReport{
		Tier:          tier,
		TotalOfficers: len(reports),
		Missing:       []string{},
		Officers:      reports,
		GeneratedAt:   e.now(),
	}

	missing := make(map[string]bool)
	sum := 0
	for _, r := range reports {
		if r.Compliant {
			team.CompliantCount++
		}
		sum += r.Score.Score
		for _, m := range r.Requirements.Missing {
			missing[m] = true
		}
	}
	if len(reports) > 0 {
		team.AverageScore = float64(sum) / float64(len(reports))
	}
	for m := range missing {
		team.Missing = append(team.Missing, m)
	}
	sort.Strings(team.Missing)
	return team, nil
}
