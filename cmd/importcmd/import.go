// Package importcmd handles bank statement CSV import commands
package importcmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fabian-plaehn/financeanalyzer/cmd/root"
	"github.com/fabian-plaehn/financeanalyzer/internal/config"
	"github.com/fabian-plaehn/financeanalyzer/internal/csvimport"
	"github.com/fabian-plaehn/financeanalyzer/internal/models"
)

var (
	source      string
	profileFile string
	preview     bool
	previewRows int
)

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a bank statement CSV file",
	Long: `Import a bank statement CSV file into the database.

Without --profile the delimiter, encoding and column layout are detected
automatically. With --profile the given YAML import profile is applied and
any malformed row aborts the import.`,
	Args: cobra.ExactArgs(1),
	RunE: importFunc,
}

func init() {
	Cmd.Flags().StringVarP(&source, "source", "s", "", "Source label for the imported rows (default: file name)")
	Cmd.Flags().StringVarP(&profileFile, "profile", "p", "", "YAML import profile with column bindings")
	Cmd.Flags().BoolVar(&preview, "preview", false, "Show the first rows instead of importing")
	Cmd.Flags().IntVar(&previewRows, "preview-rows", 5, "Number of data rows to show with --preview")
}

func importFunc(cmd *cobra.Command, args []string) error {
	path := args[0]

	appCfg, err := config.InitializeConfig()
	if err != nil {
		return err
	}

	cfg, err := loadProfile(appCfg.ImportDefaults(), profileFile)
	if err != nil {
		return err
	}

	if preview {
		return previewFunc(cmd, path, cfg)
	}

	app, err := root.App()
	if err != nil {
		return err
	}

	result, err := app.GetImporter().ImportFile(cmd.Context(), path, source, cfg)
	if err != nil {
		return err
	}

	cmd.Printf("Imported %d transactions from %s (batch %s)\n", result.Imported, path, result.BatchID)
	if result.Skipped > 0 {
		cmd.Printf("Skipped %d duplicates\n", result.Skipped)
	}
	if result.Dropped > 0 {
		cmd.Printf("Dropped %d unparseable rows\n", result.Dropped)
	}
	cmd.Printf("Categorized: %d, conflicting: %d, uncategorized: %d\n",
		result.Summary.Categorized, result.Summary.Conflicting, result.Summary.Uncategorized)
	return nil
}

func previewFunc(cmd *cobra.Command, path string, cfg *models.ImportConfig) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	headers, rows, err := csvimport.Preview(file, cfg, previewRows)
	if err != nil {
		return err
	}

	cmd.Println(strings.Join(headers, " | "))
	for _, row := range rows {
		cmd.Println(strings.Join(row, " | "))
	}
	return nil
}

// loadProfile overlays a YAML import profile on the configured import
// defaults, or returns nil when no profile was requested so the importer
// falls back to auto detection.
func loadProfile(base *models.ImportConfig, path string) (*models.ImportConfig, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}

	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return &cfg, nil
}
