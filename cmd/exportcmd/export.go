// Package exportcmd handles CSV export commands
package exportcmd

import (
	"github.com/spf13/cobra"

	"github.com/fabian-plaehn/financeanalyzer/cmd/common"
	"github.com/fabian-plaehn/financeanalyzer/cmd/root"
)

var (
	filterFlags common.FilterFlags
	totals      bool
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export transactions to a CSV file",
	Long: `Export the filtered transactions to a CSV file for external tools.
With --totals a per-category sum report is written instead.`,
	Args: cobra.ExactArgs(1),
	RunE: exportFunc,
}

func init() {
	filterFlags.Register(Cmd)
	Cmd.Flags().BoolVar(&totals, "totals", false, "Export per-category totals instead of transactions")
}

func exportFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}

	filter, err := filterFlags.Build(cmd.Context(), app.GetStore())
	if err != nil {
		return err
	}

	var count int
	if totals {
		count, err = app.GetExporter().WriteCategoryTotals(cmd.Context(), filter, args[0])
	} else {
		count, err = app.GetExporter().WriteEntries(cmd.Context(), filter, args[0])
	}
	if err != nil {
		return err
	}

	cmd.Printf("Wrote %d rows to %s\n", count, args[0])
	return nil
}
