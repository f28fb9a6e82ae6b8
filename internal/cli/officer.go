package cli

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ppiankov/protectwatch/internal/credential"
	"github.com/ppiankov/protectwatch/internal/model"
	"github.com/ppiankov/protectwatch/internal/report"
)

var (
	officerFile       string
	officerTier       string
	officerVerify     bool
	officerEventValue string
	officerFormat     string
)

func init() {
	rootCmd.AddCommand(officerCmd)
	officerCmd.Flags().StringVar(&officerFile, "file", "", "Officer profile YAML/JSON (required); - for stdin")
	officerCmd.Flags().StringVar(&officerTier, "tier", "", "Protection tier (essential|executive|close_protection) (required)")
	officerCmd.Flags().BoolVar(&officerVerify, "verify", false, "Also verify the licence against the register")
	officerCmd.Flags().StringVar(&officerEventValue, "event-value", "", "Event value in GBP, for insurance advice")
	officerCmd.Flags().StringVarP(&officerFormat, "format", "f", "text", "Output format (text|json)")
	addRegistryFlags(officerCmd)
	officerCmd.MarkFlagRequired("file")
	officerCmd.MarkFlagRequired("tier")
}

var officerCmd = &cobra.Command{
	Use:   "officer",
	Short: "Check one officer against a protection tier",
	Long: "Reports missing requirements, the weighted fitness score and insurance\n" +
		"adequacy. Exit code 1 if the officer is not compliant.",
	RunE: runOfficer,
}

type officerResult struct {
	Report  credential.OfficerReport       `json:"report"`
	License *credential.VerificationResult `json:"license,omitempty"`
}

func runOfficer(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	tier, err := model.ParseTier(officerTier)
	if err != nil {
		return err
	}
	eventValue, err := parseEventValue(officerEventValue)
	if err != nil {
		return err
	}

	var officer model.OfficerProfile
	if err := readInput(officerFile, &officer); err != nil {
		return err
	}
	if err := model.Validate(officer); err != nil {
		return err
	}

	engine := newCredentialEngine(cat)
	res := officerResult{Report: engine.EvaluateOfficerForEvent(officer, tier, eventValue)}
	if officerVerify {
		v, _ := engine.VerifyOfficerLicense(context.Background(), officer)
		res.License = &v
		if !v.Valid {
			res.Report.Compliant = false
		}
	}

	err = render(cmd.OutOrStdout(), officerFormat, res, func() string {
		text := report.FormatOfficer(res.Report)
		if res.License != nil {
			text += "\n" + report.FormatVerification(*res.License)
		}
		return text
	})
	if err != nil {
		return err
	}
	if !res.Report.Compliant {
		return errChecksFailed
	}
	return nil
}

// parseEventValue accepts plain or formatted pounds ("£1,500,000").
func parseEventValue(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseGBP(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --event-value: %w", err)
	}
	return &d, nil
}
