package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/protectwatch/internal/report"
	"github.com/ppiankov/protectwatch/internal/riskmatrix"
)

var (
	riskFile        string
	riskAnswers     map[string]string
	riskFactors     []string
	riskProbability int
	riskImpact      int
	riskFormat      string
)

func init() {
	rootCmd.AddCommand(riskCmd)
	riskCmd.Flags().StringVar(&riskFile, "file", "", "YAML/JSON assessment input (responses, factors, cell); - for stdin")
	riskCmd.Flags().StringToStringVarP(&riskAnswers, "answer", "a", nil, "Questionnaire answer as question=value (repeatable)")
	riskCmd.Flags().StringSliceVar(&riskFactors, "factor", nil, "Activate a risk factor; prefix with ! to deactivate (repeatable)")
	riskCmd.Flags().IntVar(&riskProbability, "probability", 0, "Explicit probability 1-5")
	riskCmd.Flags().IntVar(&riskImpact, "impact", 0, "Explicit impact 1-5")
	riskCmd.Flags().StringVarP(&riskFormat, "format", "f", "text", "Output format (text|json)")
}

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Score a principal on the probability x impact matrix",
	Long: "Derives probability and impact from questionnaire answers and risk\n" +
		"factors, or takes them explicitly, and assigns a band and recommended tier.\n\n" +
		"Flags are merged over --file: answers and factors add to the file's,\n" +
		"--probability and --impact override its cell.",
	RunE: runRisk,
}

func runRisk(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	in, err := riskInput()
	if err != nil {
		return err
	}

	a := riskmatrix.New(cat).Assess(in)
	return render(cmd.OutOrStdout(), riskFormat, a, func() string { return report.FormatRisk(a) })
}

// riskInput merges --file with the individual flags.
func riskInput() (riskmatrix.Input, error) {
	var in riskmatrix.Input
	if riskFile != "" {
		if err := readInput(riskFile, &in); err != nil {
			return in, err
		}
	}

	if len(riskAnswers) > 0 && in.Responses == nil {
		in.Responses = make(map[string]string, len(riskAnswers))
	}
	for q, v := range riskAnswers {
		in.Responses[q] = v
	}

	for _, f := range riskFactors {
		f = strings.TrimSpace(f)
		if f == "" || f == "!" {
			return in, fmt.Errorf("empty --factor value")
		}
		if in.Factors == nil {
			in.Factors = map[string]bool{}
		}
		if id, off := strings.CutPrefix(f, "!"); off {
			in.Factors[id] = false
		} else {
			in.Factors[f] = true
		}
	}

	if riskProbability != 0 || riskImpact != 0 {
		if in.Cell == nil {
			in.Cell = &riskmatrix.Cell{}
		}
		if riskProbability != 0 {
			in.Cell.Probability = riskProbability
		}
		if riskImpact != 0 {
			in.Cell.Impact = riskImpact
		}
	}
	return in, nil
}
