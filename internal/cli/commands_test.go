package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/protectwatch/internal/credential"
	"github.com/ppiankov/protectwatch/internal/riskmatrix"
)

// resetFlags restores flag variables and points --catalog at a missing file,
// so every test runs on the built-in catalog.
func resetFlags(t *testing.T) {
	t.Helper()
	catalogPath = filepath.Join(t.TempDir(), "catalog.yaml")

	riskFile, riskAnswers, riskFactors = "", nil, nil
	riskProbability, riskImpact, riskFormat = 0, 0, "json"

	registryURL, registryHeaders, registryTimeout = "", nil, 5*time.Second
	licenseCategory, licenseFormat = "", "json"

	officerFile, officerTier, officerVerify, officerEventValue, officerFormat = "", "", false, "", "json"
	teamFile, teamTier, teamFormat = "", "", "json"
	venueFile, venueThreat, venueStatuses, venueFormat = "", "substantial", nil, "text"

	t.Cleanup(func() { catalogPath = "" })
}

func testCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunRiskFromFlags(t *testing.T) {
	resetFlags(t)
	riskAnswers = map[string]string{"threat_history": "active", "consequence": "severe"}

	cmd, buf := testCmd()
	if err := runRisk(cmd, nil); err != nil {
		t.Fatal(err)
	}

	var a riskmatrix.Assessment
	if err := json.Unmarshal(buf.Bytes(), &a); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if a.Probability != 5 || a.Impact != 5 || a.Band != "RED" {
		t.Errorf("assessment = %dx%d %s", a.Probability, a.Impact, a.Band)
	}
}

func TestRiskInputMergesFileAndFlags(t *testing.T) {
	resetFlags(t)
	riskFile = writeFile(t, "risk.yaml", `
responses:
  public_exposure: moderate
factors:
  media_attention: true
cell:
  impact: 4
`)
	riskAnswers = map[string]string{"travel_pattern": "regular"}
	riskFactors = []string{"!media_attention", "family_exposure"}
	riskProbability = 3

	in, err := riskInput()
	if err != nil {
		t.Fatal(err)
	}
	if in.Responses["public_exposure"] != "moderate" || in.Responses["travel_pattern"] != "regular" {
		t.Errorf("responses = %v", in.Responses)
	}
	if in.Factors["media_attention"] || !in.Factors["family_exposure"] {
		t.Errorf("factors = %v", in.Factors)
	}
	if in.Cell == nil || in.Cell.Probability != 3 || in.Cell.Impact != 4 {
		t.Errorf("cell = %+v", in.Cell)
	}
}

func TestRunRiskRejectsUnknownFormat(t *testing.T) {
	resetFlags(t)
	riskFormat = "xml"
	cmd, _ := testCmd()
	if err := runRisk(cmd, nil); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRunLicenseFormat(t *testing.T) {
	resetFlags(t)
	cmd, buf := testCmd()

	if err := runLicenseFormat(cmd, []string{"cp 1234 5678"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "OK       CP12345678") {
		t.Errorf("output = %q", buf.String())
	}

	licenseCategory = "door_supervision"
	err := runLicenseFormat(cmd, []string{"CP12345678"})
	if !errors.Is(err, errChecksFailed) {
		t.Errorf("expected errChecksFailed for category mismatch, got %v", err)
	}
}

func TestRunLicenseVerifyHTTPRegister(t *testing.T) {
	resetFlags(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/licences/CP12345678" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"number":"CP12345678","category":"close_protection","holder_name":"Jordan Reeve",` +
			`"expiry_date":"2099-01-01T00:00:00Z","status":"active"}`))
	}))
	defer srv.Close()

	registryURL = srv.URL
	registryHeaders = map[string]string{"X-Api-Key": "k"}

	cmd, buf := testCmd()
	if err := runLicenseVerify(cmd, []string{"CP12345678"}); err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, buf.String())
	}
	var results []credential.VerificationResult
	if err := json.Unmarshal(buf.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || !results[0].Valid || results[0].Depth != credential.DepthEnhanced {
		t.Errorf("results = %+v", results)
	}

	buf.Reset()
	err := runLicenseVerify(cmd, []string{"CP87654321"})
	if !errors.Is(err, errChecksFailed) {
		t.Errorf("expected errChecksFailed for unknown licence, got %v", err)
	}
}

const essentialOfficer = `
name: Alex Byrne
license: {number: SG12345678, category: security_guarding, expiry_date: 2099-06-01, status: active}
certifications: [{name: First Aid at Work}]
experience: entry
background_checks: [{type: dbs, level: basic, status: clear}]
insurance:
  professional_indemnity: {provider: Hiscox, coverage_amount: 1000000, expiry_date: 2099-01-01}
  public_liability: {provider: Hiscox, coverage_amount: 2000000, expiry_date: 2099-01-01}
`

func TestRunOfficer(t *testing.T) {
	resetFlags(t)
	officerFile = writeFile(t, "officer.yaml", essentialOfficer)
	officerTier = "essential"
	officerEventValue = "£1,500,000"

	cmd, buf := testCmd()
	if err := runOfficer(cmd, nil); err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, buf.String())
	}
	var res officerResult
	if err := json.Unmarshal(buf.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Report.Compliant {
		t.Errorf("report = %+v", res.Report)
	}
	found := false
	for _, r := range res.Report.Insurance.Recommendations {
		if r == "Consider event-specific cover for an event valued at £1,500,000" {
			found = true
		}
	}
	if !found {
		t.Errorf("recommendations = %v", res.Report.Insurance.Recommendations)
	}

	officerTier = "close_protection"
	buf.Reset()
	if err := runOfficer(cmd, nil); !errors.Is(err, errChecksFailed) {
		t.Errorf("expected errChecksFailed for close protection, got %v", err)
	}
}

func TestRunOfficerRejectsInvalidProfile(t *testing.T) {
	resetFlags(t)
	officerFile = writeFile(t, "officer.yaml", "license: {number: SG12345678}\n")
	officerTier = "essential"

	cmd, _ := testCmd()
	err := runOfficer(cmd, nil)
	if err == nil || !strings.Contains(err.Error(), "invalid input") {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestRunTeam(t *testing.T) {
	resetFlags(t)
	officer := strings.ReplaceAll(strings.TrimSpace(essentialOfficer), "\n", "\n    ")
	teamFile = writeFile(t, "team.yaml", "name: Alpha\nofficers:\n  - "+officer+"\n")
	teamTier = "essential"

	cmd, buf := testCmd()
	if err := runTeam(cmd, nil); err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, buf.String())
	}
	var team credential.TeamReport
	if err := json.Unmarshal(buf.Bytes(), &team); err != nil {
		t.Fatal(err)
	}
	if team.TotalOfficers != 1 || team.CompliantCount != 1 {
		t.Errorf("team = %+v", team)
	}
}

func TestRunVenue(t *testing.T) {
	resetFlags(t)
	venueFile = writeFile(t, "venue.yaml", `
name: Corn Exchange
venue_type: hall
capacity: 900
location: Leeds
security_features: [CCTV]
access_points: 3
emergency_exits: 4
public_profile: Medium
`)
	venueStatuses = map[string]string{"STD-001": "met"}

	cmd, buf := testCmd()
	if err := runVenue(cmd, nil); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Venue: Corn Exchange (enhanced tier)", "Action plan:", "Total cost:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	venueStatuses = map[string]string{"STD-001": "done"}
	if err := runVenue(cmd, nil); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestRunCatalogValidate(t *testing.T) {
	resetFlags(t)
	cmd, buf := testCmd()
	if err := runCatalogValidate(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Catalog OK.") {
		t.Errorf("output = %q", buf.String())
	}

	bad := writeFile(t, "bad.yaml", "premises:\n  standard_threshold: 900\n  enhanced_threshold: 800\n")
	if err := runCatalogValidate(cmd, []string{bad}); err == nil {
		t.Error("expected error for inverted thresholds")
	}
}

func TestRunScenarios(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yaml"} {
		content := "name: " + name + "\ncases:\n  - license: CP12345678\n    expect: valid\n"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	results, err := runScenarios(t.Context(), filepath.Join(dir, "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for _, r := range results {
		if r.Failed != 0 {
			t.Errorf("%s: %+v", r.Name, r.Cases)
		}
	}

	if _, err := runScenarios(t.Context(), filepath.Join(dir, "*.json")); err == nil {
		t.Error("expected error when nothing matches")
	}
}
