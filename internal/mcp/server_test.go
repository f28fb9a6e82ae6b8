package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/protectwatch/internal/alert"
	"github.com/ppiankov/protectwatch/internal/catalog"
	"github.com/ppiankov/protectwatch/internal/credential"
	"github.com/ppiankov/protectwatch/internal/model"
	"github.com/ppiankov/protectwatch/internal/premises"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type failingRegistry struct{}

func (failingRegistry) Lookup(context.Context, string) (model.SIALicense, error) {
	return model.SIALicense{}, errors.New("connection refused")
}

func newTestServerWith(t *testing.T, cat *catalog.Catalog, registry credential.Registry) *Server {
	t.Helper()
	if registry == nil {
		registry = credential.NewSimulatedRegistry(cat.Credentials).
			WithLatency(0).
			WithClock(func() time.Time { return testNow })
	}
	s, err := NewWithCatalog(Config{Registry: registry}, cat)
	if err != nil {
		t.Fatalf("failed to create MCP server: %v", err)
	}
	s.now = func() time.Time { return testNow }
	return s
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServerWith(t, catalog.Default(), nil)
}

// alertSink returns a catalog that posts every event type to a test webhook.
func alertSink(t *testing.T) (*catalog.Catalog, <-chan alert.AlertEvent) {
	t.Helper()
	events := make(chan alert.AlertEvent, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev alert.AlertEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err == nil {
			events <- ev
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	cat := catalog.Default()
	cat.Alerts = []alert.AlertConfig{{
		URL:    srv.URL,
		Format: "generic",
		Events: []string{
			alert.EventRiskRed, alert.EventLicenseInvalid, alert.EventLicenseUnverifiable,
			alert.EventOfficerNonCompliant, alert.EventTeamNonCompliant,
			alert.EventVenueHigh, alert.EventVenueCritical,
		},
	}}
	return cat, events
}

func waitEvent(t *testing.T, events <-chan alert.AlertEvent) alert.AlertEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for alert")
		return alert.AlertEvent{}
	}
}

func TestNewLoadsMissingCatalogAsDefaults(t *testing.T) {
	s, err := New(Config{CatalogPath: filepath.Join(t.TempDir(), "catalog.yaml")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(s.holder.Hash(), "sha256:") {
		t.Errorf("hash = %q", s.holder.Hash())
	}
}

func TestCatalogTool(t *testing.T) {
	s := newTestServer(t)
	_, out, err := s.handleCatalog(context.Background(), &mcpsdk.CallToolRequest{}, CatalogInput{})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Questions) != 6 || len(out.Bands) != 4 {
		t.Errorf("questions = %d, bands = %d", len(out.Questions), len(out.Bands))
	}
}

func TestRiskRedDispatchesAlert(t *testing.T) {
	cat, events := alertSink(t)
	s := newTestServerWith(t, cat, nil)

	result, out, err := s.handleRisk(context.Background(), &mcpsdk.CallToolRequest{}, RiskInput{
		Subject: "booking-42",
		Responses: map[string]string{
			"threat_history":  "active",
			"public_exposure": "high",
			"asset_value":     "high",
			"consequence":     "severe",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatal("expected success, got error result")
	}
	if out.Band != "RED" {
		t.Fatalf("band = %s, want RED", out.Band)
	}

	ev := waitEvent(t, events)
	if ev.Type != alert.EventRiskRed || ev.Subject != "booking-42" {
		t.Errorf("event = %+v", ev)
	}
	if ev.CatalogHash == "" || ev.ID == "" {
		t.Errorf("event missing hash or id: %+v", ev)
	}
}

func TestRiskExplicitCell(t *testing.T) {
	s := newTestServer(t)
	_, out, err := s.handleRisk(context.Background(), &mcpsdk.CallToolRequest{}, RiskInput{Probability: 2, Impact: 2})
	if err != nil {
		t.Fatal(err)
	}
	if out.Score != 4 || out.Band != "GREEN" {
		t.Errorf("score = %d band = %s, want 4 GREEN", out.Score, out.Band)
	}
}

func TestVerifyLicenseTool(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		number    string
		wantValid bool
		wantErr   string
	}{
		{"CP12345678", true, ""},
		{"cp 1234 5678", true, ""},
		{"XX12345678", false, "Invalid SIA license number format"},
		{"CP00000000", false, "License not found on SIA register"},
	}
	for _, tt := range tests {
		_, out, err := s.handleVerifyLicense(context.Background(), &mcpsdk.CallToolRequest{}, LicenseInput{Number: tt.number})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.number, err)
		}
		if out.Valid != tt.wantValid {
			t.Errorf("%s: valid = %v, errors = %v", tt.number, out.Valid, out.Errors)
		}
		if tt.wantErr != "" && (len(out.Errors) == 0 || out.Errors[0] != tt.wantErr) {
			t.Errorf("%s: errors = %v, want %q", tt.number, out.Errors, tt.wantErr)
		}
	}
}

func TestVerifyLicenseUnverifiable(t *testing.T) {
	cat, events := alertSink(t)
	s := newTestServerWith(t, cat, failingRegistry{})

	_, out, err := s.handleVerifyLicense(context.Background(), &mcpsdk.CallToolRequest{}, LicenseInput{Number: "CP12345678"})
	if err != nil {
		t.Fatalf("register failure should not be a tool error: %v", err)
	}
	if !out.Unverifiable || out.Valid {
		t.Errorf("result = %+v", out)
	}
	if ev := waitEvent(t, events); ev.Type != alert.EventLicenseUnverifiable {
		t.Errorf("event type = %s", ev.Type)
	}
}

func doorSupervisor() model.OfficerProfile {
	return model.OfficerProfile{
		Name: "Sam Okafor",
		License: model.SIALicense{
			Number:     "DS12345678",
			Category:   model.LicenseDoorSupervision,
			ExpiryDate: testNow.AddDate(1, 0, 0),
			Status:     model.LicenseActive,
		},
		Certifications: []model.Certification{{Name: "First Aid"}},
		Experience:     model.ExperienceIntermediate,
		BackgroundChecks: []model.BackgroundCheck{
			{Type: "dbs", Level: model.DBSEnhanced, Status: "clear"},
		},
	}
}

func TestOfficerNonCompliantDispatchesAlert(t *testing.T) {
	cat, events := alertSink(t)
	s := newTestServerWith(t, cat, nil)

	_, out, err := s.handleOfficer(context.Background(), &mcpsdk.CallToolRequest{}, OfficerInput{
		Officer: doorSupervisor(),
		Tier:    "close-protection",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Report.Compliant {
		t.Fatal("door supervisor should not be compliant for close protection")
	}
	if out.License != nil {
		t.Error("licence should only be checked when verify is set")
	}
	ev := waitEvent(t, events)
	if ev.Type != alert.EventOfficerNonCompliant || ev.Subject != "Sam Okafor" {
		t.Errorf("event = %+v", ev)
	}
}

func TestOfficerVerifyAttachesLicence(t *testing.T) {
	s := newTestServer(t)
	_, out, err := s.handleOfficer(context.Background(), &mcpsdk.CallToolRequest{}, OfficerInput{
		Officer: doorSupervisor(),
		Tier:    "essential",
		Verify:  true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.License == nil {
		t.Fatal("expected licence verification result")
	}
	if out.License.Depth != credential.DepthFull && len(out.License.Errors) == 0 {
		t.Errorf("depth = %s, errors = %v", out.License.Depth, out.License.Errors)
	}
}

func TestOfficerRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	if _, _, err := s.handleOfficer(context.Background(), &mcpsdk.CallToolRequest{}, OfficerInput{
		Officer: doorSupervisor(),
		Tier:    "bodyguard",
	}); err == nil {
		t.Error("expected error for unknown tier")
	}

	nameless := doorSupervisor()
	nameless.Name = ""
	if _, _, err := s.handleOfficer(context.Background(), &mcpsdk.CallToolRequest{}, OfficerInput{
		Officer: nameless,
		Tier:    "essential",
	}); err == nil {
		t.Error("expected validation error for missing name")
	}
}

func TestTeamTool(t *testing.T) {
	s := newTestServer(t)
	_, out, err := s.handleTeam(context.Background(), &mcpsdk.CallToolRequest{}, TeamInput{
		Name:     "Alpha",
		Tier:     "close_protection",
		Officers: []model.OfficerProfile{doorSupervisor(), doorSupervisor()},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.TotalOfficers != 2 || out.CompliantCount != 0 {
		t.Errorf("total = %d, compliant = %d", out.TotalOfficers, out.CompliantCount)
	}
	if len(out.Missing) == 0 {
		t.Error("expected aggregated missing requirements")
	}
}

func TestVenueCriticalDispatchesAlert(t *testing.T) {
	cat, events := alertSink(t)
	s := newTestServerWith(t, cat, nil)

	_, out, err := s.handleVenue(context.Background(), &mcpsdk.CallToolRequest{}, VenueInput{
		Venue: model.VenueProfile{
			Name:             "Riverside Arena",
			VenueType:        "arena",
			Capacity:         2500,
			Location:         "London, SE1",
			EventTypes:       []string{"Political rally"},
			SecurityFeatures: []string{"CCTV", "bag search"},
			AccessPoints:     6,
			EmergencyExits:   8,
			PublicProfile:    "High",
		},
		ThreatLevel: "high",
		Statuses:    map[string]string{"ENH-001": "met"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Assessment.Tier != premises.TierEnhanced {
		t.Errorf("tier = %s", out.Assessment.Tier)
	}
	if out.Assessment.RiskAssessment.OverallRisk != premises.RiskCritical {
		t.Errorf("overall risk = %s", out.Assessment.RiskAssessment.OverallRisk)
	}
	if out.Report.Compliance.Met != 1 {
		t.Errorf("met = %d, want 1", out.Report.Compliance.Met)
	}
	if ev := waitEvent(t, events); ev.Type != alert.EventVenueCritical {
		t.Errorf("event type = %s", ev.Type)
	}
}

func TestVenueRejectsUnknownInput(t *testing.T) {
	s := newTestServer(t)
	venue := model.VenueProfile{Name: "Hall", Capacity: 300, Location: "Leeds"}

	if _, _, err := s.handleVenue(context.Background(), &mcpsdk.CallToolRequest{}, VenueInput{
		Venue:       venue,
		ThreatLevel: "high",
		Statuses:    map[string]string{"STD-001": "done"},
	}); err == nil {
		t.Error("expected error for unknown status")
	}
	if _, _, err := s.handleVenue(context.Background(), &mcpsdk.CallToolRequest{}, VenueInput{
		Venue:       venue,
		ThreatLevel: "apocalyptic",
	}); err == nil {
		t.Error("expected error for unknown threat level")
	}
}

func TestDispatcherFollowsCatalog(t *testing.T) {
	s := newTestServer(t)
	if d, _ := s.currentDispatcher(); d != nil {
		t.Error("default catalog has no alerts, expected nil dispatcher")
	}
}
