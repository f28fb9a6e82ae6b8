package credential

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ppiankov/protectwatch/internal/model"
)

// Score categories, in breakdown order.
const (
	CategoryLicense        = "license"
	CategoryBackground     = "background"
	CategoryExperience     = "experience"
	CategoryCertifications = "certifications"
	CategoryInsurance      = "insurance"
)

// CalculateVerificationScore sums five capped categories. No category can
// exceed its cap, so the total never exceeds MaxScore.
func (e *Engine) CalculateVerificationScore(officer model.OfficerProfile) Score {
	s := e.cat.Scoring
	now := e.now()

	items := []ScoreItem{
		e.licensePoints(officer.License, now),
		e.backgroundPoints(officer.BackgroundChecks, now),
		e.experiencePoints(officer.Experience),
		e.certificationPoints(officer.Certifications, now),
		e.insurancePoints(officer.Insurance, now),
	}

	total := 0
	for _, it := range items {
		total += it.Points
	}

	out := Score{
		Score:     total,
		MaxScore:  s.MaxScore(),
		Breakdown: items,
	}
	if out.MaxScore > 0 {
		out.Percentage = int(math.Round(float64(total) * 100 / float64(out.MaxScore)))
	}
	return out
}

func capped(category string, points, limit int, detail string) ScoreItem {
	return ScoreItem{Category: category, Points: min(max(points, 0), limit), Max: limit, Detail: detail}
}

func (e *Engine) licensePoints(lic model.SIALicense, now time.Time) ScoreItem {
	s := e.cat.Scoring
	switch {
	case lic.Number == "":
		return capped(CategoryLicense, 0, s.LicenseMax, "no licence")
	case lic.Status == model.LicensePending:
		return capped(CategoryLicense, s.PendingLicensePoints, s.LicenseMax, "licence pending")
	case !licenseCurrent(lic, now):
		return capped(CategoryLicense, 0, s.LicenseMax, "licence not current")
	}
	level := e.siaLevel(lic)
	return capped(CategoryLicense, s.LicenseLevelPoints[level], s.LicenseMax, fmt.Sprintf("SIA Level %d, active", level))
}

// backgroundPoints counts the best clear DBS once plus each other clear check.
func (e *Engine) backgroundPoints(checks []model.BackgroundCheck, now time.Time) ScoreItem {
	s := e.cat.Scoring
	best := 0
	bestLabel := ""
	others := 0
	for _, c := range checks {
		if !c.Clear(now) {
			continue
		}
		if strings.EqualFold(c.Type, "dbs") {
			if spec, ok := e.cat.DBSFor(c.Level); ok && spec.Points > best {
				best, bestLabel = spec.Points, spec.Label
			}
			continue
		}
		others++
	}

	points := best + others*e.cat.OtherCheckPoints
	detail := "no current checks"
	switch {
	case bestLabel != "" && others > 0:
		detail = fmt.Sprintf("%s DBS, %d other checks", bestLabel, others)
	case bestLabel != "":
		detail = bestLabel + " DBS"
	case others > 0:
		detail = fmt.Sprintf("%d other checks, no DBS", others)
	}
	return capped(CategoryBackground, points, s.BackgroundMax, detail)
}

func (e *Engine) experiencePoints(tier model.ExperienceTier) ScoreItem {
	s := e.cat.Scoring
	spec, ok := e.cat.ExperienceFor(tier)
	if !ok {
		return capped(CategoryExperience, 0, s.ExperienceMax, "experience not stated")
	}
	return capped(CategoryExperience, spec.Points, s.ExperienceMax, string(tier))
}

func (e *Engine) certificationPoints(certs []model.Certification, now time.Time) ScoreItem {
	s := e.cat.Scoring
	current := 0
	for _, c := range certs {
		if c.CurrentAt(now) {
			current++
		}
	}
	return capped(CategoryCertifications, current*s.CertificationPoints, s.CertificationMax,
		fmt.Sprintf("%d current", current))
}

func (e *Engine) insurancePoints(ins model.InsuranceStatus, now time.Time) ScoreItem {
	s := e.cat.Scoring
	points := 0
	var held []string
	if policyCurrent(ins.ProfessionalIndemnity, now) {
		points += s.IndemnityPoints
		held = append(held, "PI")
	}
	if policyCurrent(ins.PublicLiability, now) {
		points += s.PublicLiabilityPoints
		held = append(held, "PL")
	}
	if policyCurrent(ins.EmployersLiability, now) {
		points += s.EmployersPoints
		held = append(held, "EL")
	}
	detail := "none current"
	if len(held) > 0 {
		detail = strings.Join(held, "+")
	}
	return capped(CategoryInsurance, points, s.InsuranceMax, detail)
}

func policyCurrent(p *model.Policy, now time.Time) bool {
	return p != nil && (p.ExpiryDate.IsZero() || now.Before(p.ExpiryDate))
}
