package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/protectwatch/internal/catalog"
	"github.com/ppiankov/protectwatch/internal/logging"
	"github.com/ppiankov/protectwatch/internal/report"
)

var (
	catalogPath string
	verbose     bool

	logger = zap.NewNop()
)

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Path to catalog YAML (default ~/.protectwatch/catalog.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")
}

var rootCmd = &cobra.Command{
	Use:   "protectwatch",
	Short: "Risk and compliance scoring for close-protection bookings",
	Long: "Scores principal risk on a 5x5 matrix, checks SIA licences, officer\n" +
		"credentials and insurance against protection tiers, and plans Martyn's Law\n" +
		"compliance for venues. All thresholds come from a YAML catalog.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(verbose)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadCatalog loads the catalog named by --catalog.
func loadCatalog() (*catalog.Catalog, error) {
	cat, hash, err := catalog.LoadWithHash(catalogPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("catalog loaded", zap.String("path", catalogPath), zap.String("hash", hash))
	return cat, nil
}

// readInput decodes a YAML (or JSON) file into v. "-" reads stdin.
func readInput(path string, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// render writes v as indented JSON, or the text rendering.
func render(w io.Writer, format string, v any, text func() string) error {
	switch format {
	case "json":
		out, err := report.FormatJSON(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
	case "text", "":
		fmt.Fprint(w, text())
	default:
		return fmt.Errorf("unknown format %q: use text or json", format)
	}
	return nil
}
