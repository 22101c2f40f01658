// Package root contains the root command for the application
package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fabian-plaehn/financeanalyzer/internal/config"
	"github.com/fabian-plaehn/financeanalyzer/internal/container"
)

var (
	app *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "financeanalyzer",
		Short: "A CLI tool to import bank statement CSV files and categorize transactions.",
		Long: `financeanalyzer imports bank statement CSV exports into a local database,
deduplicates them across overlapping statements and categorizes them with
user-defined rules.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("Welcome to financeanalyzer!")
			cmd.Println("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env before any subcommand builds the container
			config.LoadEnv()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app == nil {
				return nil
			}
			err := app.Close()
			app = nil
			return err
		},
	}
)

// App returns the dependency container, building it on first use so that
// commands like --help never touch the database.
func App() (*container.Container, error) {
	if app != nil {
		return app, nil
	}

	cfg, err := config.InitializeConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	app, err = container.NewContainer(cfg)
	if err != nil {
		return nil, err
	}
	return app, nil
}
