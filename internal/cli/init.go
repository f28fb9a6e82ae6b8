package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/protectwatch/internal/catalog"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing catalog")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default catalog for editing",
	Long: `Writes the built-in catalog to ~/.protectwatch/catalog.yaml, or to
the path given with --catalog. Edit it to tune risk bands, tier requirements,
insurance minimums and Martyn's Law thresholds, or to add alert webhooks.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := catalogPath
	if path == "" {
		path = catalog.DefaultPath()
	}
	if path == "" {
		return fmt.Errorf("cannot determine home directory: use --catalog")
	}

	wrote, err := writeIfMissing(path, catalog.DefaultYAML())
	if err != nil {
		return err
	}

	fmt.Println("protectwatch init complete.")
	fmt.Println()
	if wrote {
		fmt.Println("Created:")
		fmt.Printf("  %s\n", path)
	} else {
		fmt.Println("Catalog already exists (use --force to overwrite).")
	}
	fmt.Println()

	fmt.Println("Verify:")
	fmt.Printf("  protectwatch catalog validate %s\n", path)
	fmt.Println()
	fmt.Println("Score a principal:")
	fmt.Println("  protectwatch risk --answer threat_history=minor --answer public_exposure=moderate")
	return nil
}

// writeIfMissing writes content to path if it doesn't exist or --force is set.
// Returns true if the file was written.
func writeIfMissing(path string, content []byte) (bool, error) {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
