package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"

	"github.com/ppiankov/protectwatch/internal/alert"
	"github.com/ppiankov/protectwatch/internal/catalog"
	"github.com/ppiankov/protectwatch/internal/credential"
	"github.com/ppiankov/protectwatch/internal/metrics"
	"github.com/ppiankov/protectwatch/internal/model"
	"github.com/ppiankov/protectwatch/internal/premises"
	"github.com/ppiankov/protectwatch/internal/riskmatrix"
)

// --- Input/Output types ---

// CatalogInput takes no parameters.
type CatalogInput struct{}

// CatalogOutput summarises the active catalog.
type CatalogOutput struct {
	Version   string               `json:"version"`
	Hash      string               `json:"hash"`
	Bands     []catalog.RiskBand   `json:"bands"`
	Factors   []catalog.RiskFactor `json:"factors"`
	Questions []catalog.Question   `json:"questions"`
}

// RiskInput defines parameters for the protectwatch_risk tool.
type RiskInput struct {
	Subject     string            `json:"subject,omitempty" jsonschema:"principal or booking reference, echoed in alerts"`
	Responses   map[string]string `json:"responses,omitempty" jsonschema:"questionnaire answers keyed by question ID"`
	Factors     map[string]bool   `json:"factors,omitempty" jsonschema:"risk factor activation keyed by factor ID"`
	Probability int               `json:"probability,omitempty" jsonschema:"explicit probability 1-5, overrides the derived value"`
	Impact      int               `json:"impact,omitempty" jsonschema:"explicit impact 1-5, overrides the derived value"`
}

// LicenseInput defines parameters for the protectwatch_verify_license tool.
type LicenseInput struct {
	Number string `json:"number" jsonschema:"SIA licence number, e.g. CP12345678"`
}

// OfficerInput defines parameters for the protectwatch_officer tool.
type OfficerInput struct {
	Officer    model.OfficerProfile `json:"officer"`
	Tier       string               `json:"tier"`
	EventValue *decimal.Decimal     `json:"event_value,omitempty"`
	// Verify also checks the licence against the register.
	Verify bool `json:"verify,omitempty"`
}

// OfficerOutput contains the offline report and, when requested, the register check.
type OfficerOutput struct {
	Report  credential.OfficerReport       `json:"report"`
	License *credential.VerificationResult `json:"license,omitempty"`
}

// TeamInput defines parameters for the protectwatch_team tool.
type TeamInput struct {
	Name     string                 `json:"name,omitempty"`
	Tier     string                 `json:"tier"`
	Officers []model.OfficerProfile `json:"officers"`
}

// VenueInput defines parameters for the protectwatch_venue tool.
type VenueInput struct {
	Venue       model.VenueProfile `json:"venue"`
	ThreatLevel string             `json:"threat_level"`
	// Statuses maps requirement IDs (STD-001, ENH-002, ...) to met, partially_met, not_met or not_applicable.
	Statuses map[string]string `json:"statuses,omitempty"`
}

// VenueOutput contains the assessment and its narrative report.
type VenueOutput struct {
	Assessment premises.ComplianceAssessment `json:"assessment"`
	Report     premises.Report               `json:"report"`
}

// --- Handlers ---

func (s *Server) handleCatalog(_ context.Context, _ *mcpsdk.CallToolRequest, _ CatalogInput) (*mcpsdk.CallToolResult, CatalogOutput, error) {
	cat := s.holder.Catalog()
	return nil, CatalogOutput{
		Version:   cat.Version,
		Hash:      s.holder.Hash(),
		Bands:     cat.Risk.Bands,
		Factors:   cat.Risk.Factors,
		Questions: cat.Risk.Questions,
	}, nil
}

func (s *Server) handleRisk(_ context.Context, _ *mcpsdk.CallToolRequest, input RiskInput) (*mcpsdk.CallToolResult, riskmatrix.Assessment, error) {
	start := time.Now()
	cat := s.holder.Catalog()

	in := riskmatrix.Input{Responses: input.Responses, Factors: input.Factors}
	if input.Probability != 0 || input.Impact != 0 {
		in.Cell = &riskmatrix.Cell{Probability: input.Probability, Impact: input.Impact}
	}

	a := riskmatrix.New(cat, riskmatrix.WithClock(s.now)).Assess(in)
	metrics.ObserveEvaluation("risk", a.Band, start)

	if bands := cat.Risk.Bands; len(bands) > 0 && a.Band == bands[len(bands)-1].Name {
		s.dispatchAlert(alert.AlertEvent{
			Type:     alert.EventRiskRed,
			Subject:  input.Subject,
			Outcome:  a.Band,
			Severity: "critical",
			Summary:  fmt.Sprintf("Risk score %d/25, %s recommended", a.Score, a.RecommendedTier),
			Details:  factorNames(a.Factors),
		})
	}
	return nil, a, nil
}

func (s *Server) handleVerifyLicense(ctx context.Context, _ *mcpsdk.CallToolRequest, input LicenseInput) (*mcpsdk.CallToolResult, credential.VerificationResult, error) {
	start := time.Now()
	// A register failure is reported through res.Unverifiable.
	res, _ := s.credentialEngine(s.holder.Catalog()).VerifyLicense(ctx, input.Number)

	outcome := licenseOutcome(res)
	metrics.ObserveEvaluation("license", outcome, start)
	s.alertLicense(res, outcome)
	return nil, res, nil
}

func (s *Server) handleOfficer(ctx context.Context, _ *mcpsdk.CallToolRequest, input OfficerInput) (*mcpsdk.CallToolResult, OfficerOutput, error) {
	start := time.Now()
	tier, err := model.ParseTier(input.Tier)
	if err != nil {
		return nil, OfficerOutput{}, err
	}
	if err := model.Validate(input.Officer); err != nil {
		return nil, OfficerOutput{}, err
	}

	engine := s.credentialEngine(s.holder.Catalog())
	out := OfficerOutput{Report: engine.EvaluateOfficerForEvent(input.Officer, tier, input.EventValue)}

	if input.Verify {
		res, _ := engine.VerifyOfficerLicense(ctx, input.Officer)
		out.License = &res
		s.alertLicense(res, licenseOutcome(res))
		if !res.Valid {
			out.Report.Compliant = false
		}
	}

	outcome := complianceOutcome(out.Report.Compliant)
	metrics.ObserveEvaluation("officer", outcome, start)
	if !out.Report.Compliant {
		details := append(append([]string{}, out.Report.Requirements.Missing...), out.Report.Insurance.Issues...)
		s.dispatchAlert(alert.AlertEvent{
			Type:     alert.EventOfficerNonCompliant,
			Subject:  input.Officer.Name,
			Outcome:  outcome,
			Severity: "warning",
			Summary:  fmt.Sprintf("Officer does not meet %s requirements", tier),
			Details:  details,
		})
	}
	return nil, out, nil
}

func (s *Server) handleTeam(ctx context.Context, _ *mcpsdk.CallToolRequest, input TeamInput) (*mcpsdk.CallToolResult, credential.TeamReport, error) {
	start := time.Now()
	tier, err := model.ParseTier(input.Tier)
	if err != nil {
		return nil, credential.TeamReport{}, err
	}
	for i, o := range input.Officers {
		if err := model.Validate(o); err != nil {
			return nil, credential.TeamReport{}, fmt.Errorf("officer %d: %w", i+1, err)
		}
	}

	report, err := s.credentialEngine(s.holder.Catalog()).GenerateComplianceReport(ctx, input.Officers, tier)
	if err != nil {
		return nil, credential.TeamReport{}, err
	}

	compliant := report.CompliantCount == report.TotalOfficers
	outcome := complianceOutcome(compliant)
	metrics.ObserveEvaluation("team", outcome, start)
	if !compliant {
		s.dispatchAlert(alert.AlertEvent{
			Type:     alert.EventTeamNonCompliant,
			Subject:  input.Name,
			Outcome:  outcome,
			Severity: "error",
			Summary: fmt.Sprintf("%d of %d officers compliant for %s",
				report.CompliantCount, report.TotalOfficers, tier),
			Details: report.Missing,
		})
	}
	return nil, report, nil
}

func (s *Server) handleVenue(_ context.Context, _ *mcpsdk.CallToolRequest, input VenueInput) (*mcpsdk.CallToolResult, VenueOutput, error) {
	start := time.Now()
	input.Venue.Normalize()
	if err := model.Validate(input.Venue); err != nil {
		return nil, VenueOutput{}, err
	}
	statuses := make(map[string]premises.RequirementStatus, len(input.Statuses))
	for id, v := range input.Statuses {
		st, ok := premises.ParseStatus(v)
		if !ok {
			return nil, VenueOutput{}, fmt.Errorf("requirement %s: unknown status %q", id, v)
		}
		statuses[id] = st
	}

	planner := premises.New(s.holder.Catalog(), premises.WithClock(s.now))
	a, err := planner.AssessVenue(input.Venue, input.ThreatLevel, statuses)
	if err != nil {
		return nil, VenueOutput{}, err
	}
	report := planner.GenerateReport(a)

	level := a.RiskAssessment.OverallRisk
	metrics.ObserveEvaluation("venue", string(level), start)
	if level.Escalated() {
		event := alert.AlertEvent{
			Type:     alert.EventVenueHigh,
			Subject:  input.Venue.Name,
			Outcome:  string(level),
			Severity: "error",
			Summary:  report.RiskSummary,
			Details:  report.Compliance.CriticalGaps,
		}
		if level == premises.RiskCritical {
			event.Type = alert.EventVenueCritical
			event.Severity = "critical"
		}
		s.dispatchAlert(event)
	}
	return nil, VenueOutput{Assessment: a, Report: report}, nil
}

// --- helpers ---

func (s *Server) alertLicense(res credential.VerificationResult, outcome string) {
	switch outcome {
	case "invalid":
		s.dispatchAlert(alert.AlertEvent{
			Type:     alert.EventLicenseInvalid,
			Subject:  res.Number,
			Outcome:  outcome,
			Severity: "error",
			Summary:  "SIA licence failed verification",
			Details:  res.Errors,
		})
	case "unverifiable":
		s.dispatchAlert(alert.AlertEvent{
			Type:     alert.EventLicenseUnverifiable,
			Subject:  res.Number,
			Outcome:  outcome,
			Severity: "warning",
			Summary:  "SIA register unavailable",
			Details:  res.Warnings,
		})
	}
}

func licenseOutcome(res credential.VerificationResult) string {
	switch {
	case res.Unverifiable:
		return "unverifiable"
	case res.Valid:
		return "valid"
	default:
		return "invalid"
	}
}

func complianceOutcome(ok bool) string {
	if ok {
		return "compliant"
	}
	return "non_compliant"
}

func factorNames(factors []catalog.RiskFactor) []string {
	names := make([]string, 0, len(factors))
	for _, f := range factors {
		names = append(names, f.Name)
	}
	return names
}
