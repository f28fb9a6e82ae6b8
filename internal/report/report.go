// Package report renders engine results for terminals and JSON consumers.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/protectwatch/internal/credential"
	"github.com/ppiankov/protectwatch/internal/model"
	"github.com/ppiankov/protectwatch/internal/premises"
	"github.com/ppiankov/protectwatch/internal/riskmatrix"
)

// FormatJSON renders any result as indented JSON.
func FormatJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}

func header(b *strings.Builder, title string) {
	fmt.Fprintln(b, title)
	fmt.Fprintln(b, strings.Repeat("═", len([]rune(title))))
}

func rule(b *strings.Builder, width int) {
	fmt.Fprintln(b, strings.Repeat("─", width))
}

func list(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", label)
	for _, it := range items {
		fmt.Fprintf(b, "  - %s\n", it)
	}
}

// FormatRisk renders a risk matrix assessment.
func FormatRisk(a riskmatrix.Assessment) string {
	var b strings.Builder
	title := fmt.Sprintf("Risk: %s (%s) score %d/25", a.Band, a.BandLabel, a.Score)
	header(&b, title)

	fmt.Fprintf(&b, "  %-20s %d\n", "Probability", a.Probability)
	fmt.Fprintf(&b, "  %-20s %d\n", "Impact", a.Impact)
	fmt.Fprintf(&b, "  %-20s %s\n", "Recommended tier", a.RecommendedTier)
	fmt.Fprintf(&b, "  %-20s %d%%\n", "Confidence", a.Confidence)
	fmt.Fprintf(&b, "  %-20s %s\n", "Source", a.Source)
	if a.Guidance != "" {
		fmt.Fprintf(&b, "  %-20s %s\n", "Guidance", a.Guidance)
	}

	if len(a.Factors) > 0 {
		fmt.Fprintln(&b, "Contributing factors:")
		for _, f := range a.Factors {
			fmt.Fprintf(&b, "  - %-24s %-12s weight %d (%s)\n", f.Name, f.Dimension, f.Weight, f.Category)
		}
	}
	list(&b, "Warnings", a.Warnings)
	return b.String()
}

// FormatVerification renders a licence verification.
func FormatVerification(r credential.VerificationResult) string {
	var b strings.Builder
	status := "VALID"
	switch {
	case r.Unverifiable:
		status = "UNVERIFIABLE"
	case !r.Valid:
		status = "INVALID"
	}
	header(&b, fmt.Sprintf("Licence %s: %s (%s)", r.Number, status, r.Depth))

	if lic := r.License; lic != nil {
		fmt.Fprintf(&b, "  %-20s %s\n", "Category", lic.Category)
		if lic.HolderName != "" {
			fmt.Fprintf(&b, "  %-20s %s\n", "Holder", lic.HolderName)
		}
		fmt.Fprintf(&b, "  %-20s %s\n", "Status", lic.Status)
		if !lic.ExpiryDate.IsZero() {
			fmt.Fprintf(&b, "  %-20s %s\n", "Expires", lic.ExpiryDate.Format("2006-01-02"))
		}
	}
	fmt.Fprintf(&b, "  %-20s %s\n", "Next check due", r.NextCheckDue.Format("2006-01-02"))
	list(&b, "Errors", r.Errors)
	list(&b, "Warnings", r.Warnings)
	return b.String()
}

// FormatOfficer renders one officer's checks.
func FormatOfficer(r credential.OfficerReport) string {
	var b strings.Builder
	status := "COMPLIANT"
	if !r.Compliant {
		status = "NOT COMPLIANT"
	}
	title := fmt.Sprintf("Officer: %s (%s) %s", r.Name, r.Requirements.Tier, status)
	header(&b, title)

	fmt.Fprintf(&b, "Score: %d/%d (%d%%)\n", r.Score.Score, r.Score.MaxScore, r.Score.Percentage)
	for _, it := range r.Score.Breakdown {
		fmt.Fprintf(&b, "  %-16s %2d/%-3d %s\n", it.Category, it.Points, it.Max, it.Detail)
	}

	list(&b, "Missing", r.Requirements.Missing)
	list(&b, "Insurance issues", r.Insurance.Issues)
	list(&b, "Recommendations", append(append([]string{}, r.Requirements.Recommendations...), r.Insurance.Recommendations...))
	return b.String()
}

// FormatTeam renders a team compliance report.
func FormatTeam(t credential.TeamReport) string {
	var b strings.Builder
	title := fmt.Sprintf("Team compliance: %s", t.Tier)
	header(&b, title)

	for _, o := range t.Officers {
		status := "PASS"
		if !o.Compliant {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "  %-30s %3d%%  %s\n", o.Name, o.Score.Percentage, status)
	}
	rule(&b, len([]rune(title)))
	fmt.Fprintf(&b, "Compliant: %d/%d, average score %.1f\n", t.CompliantCount, t.TotalOfficers, t.AverageScore)
	list(&b, "Missing across team", t.Missing)
	return b.String()
}

// FormatVenue renders a venue compliance report.
func FormatVenue(a premises.ComplianceAssessment, r premises.Report) string {
	var b strings.Builder
	name := a.Venue.Name
	if name == "" {
		name = a.Venue.VenueType
	}
	title := fmt.Sprintf("Venue: %s (%s tier) %s", name, a.Tier, r.Status)
	header(&b, title)

	fmt.Fprintln(&b, r.ExecutiveSummary)
	fmt.Fprintln(&b, r.RiskSummary)

	list(&b, "Key findings", r.KeyFindings)

	if len(a.ActionPlan) > 0 {
		fmt.Fprintln(&b, "Action plan:")
		for _, act := range a.ActionPlan {
			fmt.Fprintf(&b, "  %-12s %-8s %s  %-10s %s\n",
				act.ID, act.Priority, act.Deadline.Format("2006-01-02"), model.FormatGBP(act.EstimatedCost), act.Action)
		}
	}
	rule(&b, len([]rune(title)))
	fmt.Fprintf(&b, "Compliance: %.0f%% (%d/%d)  Total cost: %s  Timeline: %s\n",
		r.Compliance.CompliancePercentage, r.Compliance.Met, r.Compliance.Tracked,
		model.FormatGBP(r.TotalCost), r.Timeline)
	return b.String()
}
