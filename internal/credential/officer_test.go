package credential

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ppiankov/protectwatch/internal/model"
)

func policy(amount int64, years int) *model.Policy {
	return &model.Policy{
		Provider:       "Hiscox",
		CoverageAmount: decimal.NewFromInt(amount),
		ExpiryDate:     testNow.AddDate(years, 0, 0),
	}
}

// closeProtectionOfficer meets every close_protection requirement.
func closeProtectionOfficer() model.OfficerProfile {
	return model.OfficerProfile{
		Name: "Jordan Reeve",
		License: model.SIALicense{
			Number:     "CP12345678",
			Category:   model.LicenseCloseProtection,
			ExpiryDate: testNow.AddDate(2, 0, 0),
			Status:     model.LicenseActive,
		},
		Certifications: []model.Certification{
			{Name: "First Aid at Work", ValidUntil: testNow.AddDate(1, 0, 0)},
			{Name: "Advanced Driving (RoSPA)"},
			{Name: "Counter Surveillance"},
			{Name: "Tactical Medicine"},
			{Name: "Conflict Management"},
			{Name: "Firearms Awareness"},
		},
		Experience:      model.ExperienceElite,
		Specializations: []string{"Former Royal Military Police"},
		BackgroundChecks: []model.BackgroundCheck{
			{Type: "dbs", Level: model.DBSEnhancedBarred, Status: "clear"},
			{Type: "references", Status: "clear"},
			{Type: "credit", Status: "clear"},
		},
		Insurance: model.InsuranceStatus{
			ProfessionalIndemnity: policy(5_000_000, 1),
			PublicLiability:       policy(10_000_000, 1),
			EmployersLiability:    policy(10_000_000, 1),
		},
	}
}

func TestLevelTwoOfficerFailsCloseProtection(t *testing.T) {
	e := newTestEngine(t)
	officer := model.OfficerProfile{
		Name: "Casey Dunn",
		License: model.SIALicense{
			Number:     "DS12345678",
			Category:   model.LicenseDoorSupervision,
			ExpiryDate: testNow.AddDate(1, 0, 0),
			Status:     model.LicenseActive,
		},
		Experience: model.ExperienceSenior,
	}

	check := e.VerifyOfficerRequirements(officer, model.TierCloseProtection)
	if check.Meets {
		t.Fatal("expected meets=false")
	}
	for _, want := range []string{
		"SIA Level 3 license required",
		"Enhanced DBS check required",
		"First Aid certification required",
		"Advanced Driving certification required",
		"Military or police background required",
	} {
		if !contains(check.Missing, want) {
			t.Errorf("missing %v lacks %q", check.Missing, want)
		}
	}
	if contains(check.Missing, "Current SIA license required") {
		t.Error("active licence reported as not current")
	}
}

func TestQualifiedOfficerMeetsEveryTier(t *testing.T) {
	e := newTestEngine(t)
	officer := closeProtectionOfficer()
	for tier := range model.TierRank {
		check := e.VerifyOfficerRequirements(officer, tier)
		if !check.Meets {
			t.Errorf("%s: missing %v", tier, check.Missing)
		}
		if len(check.Recommendations) != 0 {
			t.Errorf("%s: recommendations %v", tier, check.Recommendations)
		}
	}
}

func TestRecommendationsDoNotBlock(t *testing.T) {
	e := newTestEngine(t)
	officer := closeProtectionOfficer()
	officer.Certifications = officer.Certifications[:2]

	check := e.VerifyOfficerRequirements(officer, model.TierCloseProtection)
	if !check.Meets {
		t.Fatalf("missing %v", check.Missing)
	}
	if !contains(check.Recommendations, "Consider obtaining Counter Surveillance certification") {
		t.Errorf("recommendations = %v", check.Recommendations)
	}
}

func TestExpiredCertificationAndLicenceAreMissing(t *testing.T) {
	e := newTestEngine(t)
	officer := closeProtectionOfficer()
	officer.Certifications[0].ValidUntil = testNow.AddDate(0, 0, -1)
	officer.License.ExpiryDate = testNow.AddDate(0, 0, -1)
	officer.BackgroundChecks[0].Level = model.DBSStandard

	check := e.VerifyOfficerRequirements(officer, model.TierCloseProtection)
	for _, want := range []string{
		"Current SIA license required",
		"First Aid certification required",
		"Enhanced DBS check required",
	} {
		if !contains(check.Missing, want) {
			t.Errorf("missing %v lacks %q", check.Missing, want)
		}
	}
}

func TestVerificationScoreFullMarks(t *testing.T) {
	e := newTestEngine(t)
	s := e.CalculateVerificationScore(closeProtectionOfficer())
	if s.MaxScore != 100 {
		t.Fatalf("max = %d", s.MaxScore)
	}
	// licence 30, background capped 25, experience 20, certs 6x3 capped 15, insurance 10
	if s.Score != 100 || s.Percentage != 100 {
		t.Errorf("score = %d (%d%%), breakdown %+v", s.Score, s.Percentage, s.Breakdown)
	}
}

func TestVerificationScoreRespectsCaps(t *testing.T) {
	e := newTestEngine(t)
	officers := []model.OfficerProfile{
		closeProtectionOfficer(),
		{Name: "Empty"},
		{
			Name:    "Pending",
			License: model.SIALicense{Number: "SG12345678", Status: model.LicensePending},
			BackgroundChecks: []model.BackgroundCheck{
				{Type: "dbs", Level: model.DBSBasic, Status: "clear"},
				{Type: "dbs", Level: model.DBSEnhanced, Status: "clear"},
				{Type: "dbs", Level: model.DBSEnhancedBarred, Status: "pending"},
			},
			Experience: model.ExperienceIntermediate,
		},
	}

	for _, o := range officers {
		s := e.CalculateVerificationScore(o)
		if s.Score > s.MaxScore {
			t.Errorf("%s: score %d above max %d", o.Name, s.Score, s.MaxScore)
		}
		sum := 0
		for _, it := range s.Breakdown {
			if it.Points > it.Max || it.Points < 0 {
				t.Errorf("%s: %s = %d outside [0,%d]", o.Name, it.Category, it.Points, it.Max)
			}
			sum += it.Points
		}
		if sum != s.Score {
			t.Errorf("%s: breakdown sums to %d, score %d", o.Name, sum, s.Score)
		}
	}

	pending := e.CalculateVerificationScore(officers[2])
	// pending licence 5, best clear DBS enhanced 20, intermediate 8
	if pending.Score != 33 {
		t.Errorf("pending officer score = %d, breakdown %+v", pending.Score, pending.Breakdown)
	}
	if e.CalculateVerificationScore(officers[1]).Score != 0 {
		t.Error("empty officer should score 0")
	}
}

func TestInsuranceAdequacy(t *testing.T) {
	e := newTestEngine(t)

	ok := e.VerifyInsuranceAdequacy(closeProtectionOfficer().Insurance, model.TierCloseProtection, nil)
	if !ok.Adequate {
		t.Errorf("issues = %v", ok.Issues)
	}
	if !contains(ok.Recommendations, "Consider kidnap and ransom coverage") {
		t.Errorf("recommendations = %v", ok.Recommendations)
	}

	under := model.InsuranceStatus{
		ProfessionalIndemnity: policy(1_000_000, 1),
		PublicLiability:       &model.Policy{CoverageAmount: decimal.NewFromInt(10_000_000), ExpiryDate: testNow.AddDate(0, 0, -3)},
	}
	bad := e.VerifyInsuranceAdequacy(under, model.TierCloseProtection, nil)
	if bad.Adequate {
		t.Fatal("expected inadequate")
	}
	for _, want := range []string{
		"Professional indemnity cover £1,000,000 below £5,000,000 minimum",
		"Public liability insurance expired on 2026-02-26",
		"Employer's liability insurance required",
	} {
		if !contains(bad.Issues, want) {
			t.Errorf("issues %v lack %q", bad.Issues, want)
		}
	}
}

func TestInsuranceRecommendationsNeverBlock(t *testing.T) {
	e := newTestEngine(t)
	ins := model.InsuranceStatus{
		ProfessionalIndemnity: policy(1_000_000, 1),
		PublicLiability:       policy(2_000_000, 1),
	}
	value := decimal.NewFromInt(2_500_000)
	check := e.VerifyInsuranceAdequacy(ins, model.TierEssential, &value)
	if !check.Adequate {
		t.Fatalf("issues = %v", check.Issues)
	}
	if !contains(check.Recommendations, "Consider event-specific cover for an event valued at £2,500,000") {
		t.Errorf("recommendations = %v", check.Recommendations)
	}
	if !contains(check.Recommendations, "Consider worldwide coverage") {
		t.Errorf("recommendations = %v", check.Recommendations)
	}
}

func TestGenerateComplianceReport(t *testing.T) {
	e := newTestEngine(t)
	good := closeProtectionOfficer()
	weak := model.OfficerProfile{
		Name:    "Casey Dunn",
		License: model.SIALicense{Number: "DS12345678", Category: model.LicenseDoorSupervision, Status: model.LicenseActive},
	}
	weak2 := weak
	weak2.Name = "Robin Hale"

	forward, err := e.GenerateComplianceReport(context.Background(), []model.OfficerProfile{good, weak, weak2}, model.TierCloseProtection)
	if err != nil {
		t.Fatal(err)
	}
	reverse, err := e.GenerateComplianceReport(context.Background(), []model.OfficerProfile{weak2, weak, good}, model.TierCloseProtection)
	if err != nil {
		t.Fatal(err)
	}

	if forward.TotalOfficers != 3 || forward.CompliantCount != 1 {
		t.Errorf("total=%d compliant=%d", forward.TotalOfficers, forward.CompliantCount)
	}
	if forward.CompliantCount != reverse.CompliantCount || forward.AverageScore != reverse.AverageScore {
		t.Error("aggregates depend on officer order")
	}
	if len(forward.Missing) != len(reverse.Missing) {
		t.Fatalf("missing lists differ: %v vs %v", forward.Missing, reverse.Missing)
	}
	for i := range forward.Missing {
		if forward.Missing[i] != reverse.Missing[i] {
			t.Errorf("missing[%d]: %q vs %q", i, forward.Missing[i], reverse.Missing[i])
		}
	}

	seen := map[string]int{}
	for _, m := range forward.Missing {
		seen[m]++
		if seen[m] > 1 {
			t.Errorf("duplicate missing entry %q", m)
		}
	}
	if !contains(forward.Missing, "SIA Level 3 license required") {
		t.Errorf("missing = %v", forward.Missing)
	}
	if forward.Officers[0].Name != "Jordan Reeve" {
		t.Errorf("officer order not preserved: %s", forward.Officers[0].Name)
	}
}

func TestGenerateComplianceReportEmptyTeam(t *testing.T) {
	e := newTestEngine(t)
	r, err := e.GenerateComplianceReport(context.Background(), nil, model.TierEssential)
	if err != nil {
		t.Fatal(err)
	}
	if r.TotalOfficers != 0 || r.AverageScore != 0 || len(r.Missing) != 0 {
		t.Errorf("report = %+v", r)
	}
}

func TestGenerateComplianceReportCancelled(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.GenerateComplianceReport(ctx, []model.OfficerProfile{closeProtectionOfficer()}, model.TierEssential); err == nil {
		t.Error("expected context error")
	}
}
