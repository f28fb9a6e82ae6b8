package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/protectwatch/internal/model"
	"github.com/ppiankov/protectwatch/internal/report"
)

var (
	teamFile   string
	teamTier   string
	teamFormat string
)

func init() {
	rootCmd.AddCommand(teamCmd)
	teamCmd.Flags().StringVar(&teamFile, "file", "", "Team YAML/JSON with an officers list (required); - for stdin")
	teamCmd.Flags().StringVar(&teamTier, "tier", "", "Protection tier for the booking (required)")
	teamCmd.Flags().StringVarP(&teamFormat, "format", "f", "text", "Output format (text|json)")
	teamCmd.MarkFlagRequired("file")
	teamCmd.MarkFlagRequired("tier")
}

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Aggregate compliance for a booking team",
	Long: "Evaluates every officer offline against the tier and aggregates\n" +
		"compliance, average score and missing requirements.\n" +
		"Exit code 1 unless every officer is compliant.",
	RunE: runTeam,
}

// teamInput is the on-disk shape of a team.
type teamInput struct {
	Name     string                 `yaml:"name"`
	Officers []model.OfficerProfile `yaml:"officers"`
}

func runTeam(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	tier, err := model.ParseTier(teamTier)
	if err != nil {
		return err
	}

	var in teamInput
	if err := readInput(teamFile, &in); err != nil {
		return err
	}
	for i, o := range in.Officers {
		if err := model.Validate(o); err != nil {
			return fmt.Errorf("officer %d: %w", i+1, err)
		}
	}

	team, err := newCredentialEngine(cat).GenerateComplianceReport(context.Background(), in.Officers, tier)
	if err != nil {
		return err
	}

	if err := render(cmd.OutOrStdout(), teamFormat, team, func() string { return report.FormatTeam(team) }); err != nil {
		return err
	}
	if team.CompliantCount != team.TotalOfficers {
		return errChecksFailed
	}
	return nil
}
