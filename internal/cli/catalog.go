package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/protectwatch/internal/catalog"
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect scoring catalogs",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [PATH]",
	Short: "Check a catalog file for consistency",
	Long: "Parses the catalog over the built-in defaults and checks band\n" +
		"coverage, tier tables and scales. Defaults to --catalog.",
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalogValidate,
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	path := catalogPath
	if len(args) == 1 {
		path = args[0]
	}

	cat, hash, err := catalog.LoadWithHash(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %-20s %s\n", "Version", cat.Version)
	fmt.Fprintf(out, "  %-20s %s\n", "Hash", hash)
	fmt.Fprintf(out, "  %-20s %d\n", "Risk bands", len(cat.Risk.Bands))
	fmt.Fprintf(out, "  %-20s %d\n", "Risk factors", len(cat.Risk.Factors))
	fmt.Fprintf(out, "  %-20s %d\n", "Questions", len(cat.Risk.Questions))
	fmt.Fprintf(out, "  %-20s %d\n", "Alert webhooks", len(cat.Alerts))
	fmt.Fprintln(out, "Catalog OK.")
	return nil
}
