// Package reapply handles re-running rule classification over stored transactions
package reapply

import (
	"github.com/spf13/cobra"

	"github.com/fabian-plaehn/financeanalyzer/cmd/root"
)

// Cmd represents the reapply command
var Cmd = &cobra.Command{
	Use:   "reapply",
	Short: "Re-run rule classification over all transactions",
	Long: `Re-run rule classification over every transaction whose category was not
set manually. Earlier automatic assignments are discarded before the
current rule set is applied.`,
	RunE: reapplyFunc,
}

func reapplyFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}

	summary, err := app.GetCategorizer().Reapply(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Categorized: %d, conflicting: %d, uncategorized: %d\n",
		summary.Categorized, summary.Conflicting, summary.Uncategorized)
	return nil
}
