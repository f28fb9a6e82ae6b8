package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/protectwatch/internal/model"
	"github.com/ppiankov/protectwatch/internal/premises"
	"github.com/ppiankov/protectwatch/internal/report"
)

var (
	venueFile     string
	venueThreat   string
	venueStatuses map[string]string
	venueFormat   string
)

func init() {
	rootCmd.AddCommand(venueCmd)
	venueCmd.Flags().StringVar(&venueFile, "file", "", "Venue profile YAML/JSON (required); - for stdin")
	venueCmd.Flags().StringVar(&venueThreat, "threat", "substantial", "National threat level (low|moderate|substantial|severe|critical)")
	venueCmd.Flags().StringToStringVar(&venueStatuses, "status", nil, "Requirement status as ID=met|partially_met|not_met|not_applicable (repeatable)")
	venueCmd.Flags().StringVarP(&venueFormat, "format", "f", "text", "Output format (text|json)")
	venueCmd.MarkFlagRequired("file")
}

var venueCmd = &cobra.Command{
	Use:   "venue",
	Short: "Martyn's Law tier, terrorism risk and action plan for a venue",
	Long: "Determines the duty tier from capacity, generates requirements,\n" +
		"assesses terrorism risk against the threat level and builds a costed\n" +
		"action plan. Requirements not listed with --status are not met.",
	RunE: runVenue,
}

type venueResult struct {
	Assessment premises.ComplianceAssessment `json:"assessment"`
	Report     premises.Report               `json:"report"`
}

func runVenue(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	var venue model.VenueProfile
	if err := readInput(venueFile, &venue); err != nil {
		return err
	}
	venue.Normalize()
	if err := model.Validate(venue); err != nil {
		return err
	}

	statuses := make(map[string]premises.RequirementStatus, len(venueStatuses))
	for id, v := range venueStatuses {
		st, ok := premises.ParseStatus(v)
		if !ok {
			return fmt.Errorf("requirement %s: unknown status %q", id, v)
		}
		statuses[id] = st
	}

	planner := premises.New(cat)
	a, err := planner.AssessVenue(venue, venueThreat, statuses)
	if err != nil {
		return err
	}
	res := venueResult{Assessment: a, Report: planner.GenerateReport(a)}

	return render(cmd.OutOrStdout(), venueFormat, res, func() string { return report.FormatVenue(res.Assessment, res.Report) })
}
