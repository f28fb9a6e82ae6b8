package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/protectwatch/internal/scenario"
)

var (
	checkScenario string
	checkFormat   string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkScenario, "scenario", "", "Glob pattern for scenario YAML files (required)")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
	checkCmd.MarkFlagRequired("scenario")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run assessment assertions from scenario files",
	Long: "Loads scenario YAML files matching a glob pattern, evaluates each\n" +
		"case through the risk, credential or premises engine, and reports pass/fail.\n\n" +
		"Exit code 0 if all cases pass, 1 if any fail.\n" +
		"Use in CI to gate catalog changes.",
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	results, err := runScenarios(context.Background(), checkScenario)
	if err != nil {
		return err
	}

	switch checkFormat {
	case "json":
		out, err := scenario.FormatJSON(results)
		if err != nil {
			return err
		}
		fmt.Println(out)
	default:
		fmt.Print(scenario.FormatText(results))
	}

	// Exit 1 if any scenario has failures
	for _, r := range results {
		if r.Failed > 0 {
			os.Exit(1)
		}
	}

	return nil
}

func runScenarios(ctx context.Context, pattern string) ([]*scenario.RunResult, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no scenario files match pattern: %s", pattern)
	}

	var results []*scenario.RunResult
	for _, path := range matches {
		r, err := scenario.LoadAndRun(ctx, path, catalogPath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		results = append(results, r)
	}
	return results, nil
}
