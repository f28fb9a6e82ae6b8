package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/protectwatch/internal/catalog"
	"github.com/ppiankov/protectwatch/internal/credential"
	"github.com/ppiankov/protectwatch/internal/model"
	"github.com/ppiankov/protectwatch/internal/premises"
	"github.com/ppiankov/protectwatch/internal/riskmatrix"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func TestFormatRisk(t *testing.T) {
	e := riskmatrix.New(catalog.Default(), riskmatrix.WithClock(clock))
	a := e.FromFactors(map[string]bool{"active_threats": true, "ghost": true})
	out := FormatRisk(a)

	for _, want := range []string{"Risk: ", "Recommended tier", "Active threat", "Warnings:", "ghost"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatVerificationStates(t *testing.T) {
	tests := []struct {
		res  credential.VerificationResult
		want string
	}{
		{credential.VerificationResult{Number: "CP12345678", Valid: true, Depth: credential.DepthEnhanced}, "VALID"},
		{credential.VerificationResult{Number: "CP1", Errors: []string{"Invalid SIA license number format"}}, "INVALID"},
		{credential.VerificationResult{Number: "CP12345678", Unverifiable: true}, "UNVERIFIABLE"},
	}
	for _, tt := range tests {
		out := FormatVerification(tt.res)
		if !strings.Contains(out, tt.want) {
			t.Errorf("output missing %q:\n%s", tt.want, out)
		}
	}
}

func TestFormatOfficerAndTeam(t *testing.T) {
	e := credential.New(catalog.Default(), credential.WithClock(clock))
	officer := model.OfficerProfile{
		Name:    "Casey Dunn",
		License: model.SIALicense{Number: "DS12345678", Status: model.LicenseActive},
	}
	r := e.EvaluateOfficer(officer, model.TierCloseProtection)
	out := FormatOfficer(r)
	if !strings.Contains(out, "NOT COMPLIANT") || !strings.Contains(out, "SIA Level 3 license required") {
		t.Errorf("officer output:\n%s", out)
	}

	team := credential.TeamReport{
		Tier:          model.TierCloseProtection,
		TotalOfficers: 1,
		Officers:      []credential.OfficerReport{r},
		Missing:       r.Requirements.Missing,
	}
	out = FormatTeam(team)
	if !strings.Contains(out, "Compliant: 0/1") || !strings.Contains(out, "Casey Dunn") {
		t.Errorf("team output:\n%s", out)
	}
}

func TestFormatVenue(t *testing.T) {
	p := premises.New(catalog.Default(), premises.WithClock(clock))
	a, err := p.AssessVenue(model.VenueProfile{
		Name:          "Corn Exchange",
		Capacity:      900,
		Location:      "Leeds",
		PublicProfile: model.ProfileMedium,
	}, "substantial", nil)
	if err != nil {
		t.Fatal(err)
	}
	out := FormatVenue(a, p.GenerateReport(a))
	for _, want := range []string{"Corn Exchange", "enhanced tier", "ACT-ENH-001", "£33,000"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	e := riskmatrix.New(catalog.Default(), riskmatrix.WithClock(clock))
	out, err := FormatJSON(e.FromMatrix(4, 5))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got["band"] != "RED" || got["score"] != float64(20) {
		t.Errorf("json = %v", got)
	}
}
