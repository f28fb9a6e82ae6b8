package credential

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/protectwatch/internal/catalog"
	"github.com/ppiankov/protectwatch/internal/model"
)

// VerifyOfficerRequirements compares an officer with the tier's requirement profile.
// Missing required items clear Meets; absent recommended items only add recommendations.
func (e *Engine) VerifyOfficerRequirements(officer model.OfficerProfile, tier model.ProtectionTier) RequirementCheck {
	check := RequirementCheck{
		Tier:            tier,
		Missing:         []string{},
		Recommendations: []string{},
	}

	req, ok := e.cat.RequirementFor(tier)
	if !ok {
		check.Missing = append(check.Missing, fmt.Sprintf("No requirement profile for tier %s", tier))
		return check
	}
	now := e.now()

	if e.siaLevel(officer.License) < req.MinSIALevel {
		check.Missing = append(check.Missing, fmt.Sprintf("SIA Level %d license required", req.MinSIALevel))
	}
	if !licenseCurrent(officer.License, now) {
		check.Missing = append(check.Missing, "Current SIA license required")
	}

	for _, name := range req.RequiredCertifications {
		if !hasCertification(officer.Certifications, name, now) {
			check.Missing = append(check.Missing, fmt.Sprintf("%s certification required", name))
		}
	}

	if years := e.experienceYears(officer.Experience); years < req.MinYearsExperience {
		check.Missing = append(check.Missing, fmt.Sprintf("Minimum %d years' experience required", req.MinYearsExperience))
	}

	if req.RequiredDBSLevel != "" && !hasDBS(officer.BackgroundChecks, req.RequiredDBSLevel, now) {
		check.Missing = append(check.Missing, fmt.Sprintf("%s DBS check required", e.dbsLabel(req.RequiredDBSLevel)))
	}

	if req.Extra != nil && !hasSpecialization(officer.Specializations, req.Extra) {
		check.Missing = append(check.Missing, req.Extra.Description)
	}

	for _, name := range req.RecommendedCertifications {
		if !hasCertification(officer.Certifications, name, now) {
			check.Recommendations = append(check.Recommendations, fmt.Sprintf("Consider obtaining %s certification", name))
		}
	}

	check.Meets = len(check.Missing) == 0
	return check
}

// siaLevel resolves the licence level from its category, or its number prefix.
func (e *Engine) siaLevel(lic model.SIALicense) int {
	if spec, ok := e.cat.Category(lic.Category); ok {
		return spec.Level
	}
	n := NormalizeLicenseNumber(lic.Number)
	if len(n) >= 2 {
		if spec, ok := e.cat.CategoryByCode(n[:2]); ok {
			return spec.Level
		}
	}
	return 0
}

func (e *Engine) experienceYears(tier model.ExperienceTier) int {
	spec, ok := e.cat.ExperienceFor(tier)
	if !ok {
		return 0
	}
	return spec.Years
}

func (e *Engine) dbsLabel(level model.DBSLevel) string {
	if spec, ok := e.cat.DBSFor(level); ok && spec.Label != "" {
		return spec.Label
	}
	return string(level)
}

// licenseCurrent: active (or unstated) status and not past expiry.
func licenseCurrent(lic model.SIALicense, now time.Time) bool {
	if lic.Number == "" {
		return false
	}
	if lic.Status != "" && lic.Status != model.LicenseActive {
		return false
	}
	return lic.ExpiryDate.IsZero() || now.Before(lic.ExpiryDate)
}

func hasCertification(certs []model.Certification, name string, now time.Time) bool {
	want := strings.ToLower(name)
	for _, c := range certs {
		if strings.Contains(strings.ToLower(c.Name), want) && c.CurrentAt(now) {
			return true
		}
	}
	return false
}

func hasDBS(checks []model.BackgroundCheck, required model.DBSLevel, now time.Time) bool {
	for _, c := range checks {
		if !strings.EqualFold(c.Type, "dbs") || !c.Clear(now) {
			continue
		}
		if rank, known := model.DBSRank[c.Level]; known && rank >= model.DBSRank[required] {
			return true
		}
	}
	return false
}

func hasSpecialization(specs []string, extra *catalog.ExtraRequirement) bool {
	for _, s := range specs {
		lower := strings.ToLower(s)
		for _, kw := range extra.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}
