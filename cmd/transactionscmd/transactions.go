// Package transactionscmd handles transaction listing and manual categorization
package transactionscmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fabian-plaehn/financeanalyzer/cmd/common"
	"github.com/fabian-plaehn/financeanalyzer/cmd/root"
	"github.com/fabian-plaehn/financeanalyzer/internal/store"
)

var listFlags common.FilterFlags

// Cmd represents the transactions command
var Cmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"tx"},
	Short:   "List transactions and manage manual categories",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions, newest first",
	RunE:  listFunc,
}

var setCategoryCmd = &cobra.Command{
	Use:   "set-category <id> <category>",
	Short: "Assign a category manually",
	Long: `Assign a category to a transaction manually. Manual assignments are
never touched when rules are re-applied.`,
	Args: cobra.ExactArgs(2),
	RunE: setCategoryFunc,
}

var clearCategoryCmd = &cobra.Command{
	Use:   "clear-category <id>",
	Short: "Clear a transaction's category",
	Long: `Clear a transaction's category and manual flag so the next rule run
classifies it again.`,
	Args: cobra.ExactArgs(1),
	RunE: clearCategoryFunc,
}

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "List conflicted transactions with their disagreeing rules",
	Long: `List transactions flagged as conflicts together with every matching
(pattern, category) pair, so the disagreement can be resolved by fixing
a rule or assigning a category manually.`,
	RunE: conflictsFunc,
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List distinct transaction sources",
	RunE:  sourcesFunc,
}

func init() {
	listFlags.Register(listCmd)

	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(setCategoryCmd)
	Cmd.AddCommand(clearCategoryCmd)
	Cmd.AddCommand(conflictsCmd)
	Cmd.AddCommand(sourcesCmd)
}

func listFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}

	filter, err := listFlags.Build(cmd.Context(), app.GetStore())
	if err != nil {
		return err
	}

	transactions, err := app.GetStore().ListTransactions(cmd.Context(), filter)
	if err != nil {
		return err
	}

	categories, err := app.GetStore().ListCategories(cmd.Context())
	if err != nil {
		return err
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	for i := range transactions {
		t := &transactions[i]
		category := ""
		switch {
		case t.HasConflict:
			category = "(conflict)"
		case t.CategoryID != nil:
			category = names[*t.CategoryID]
			if t.IsManual {
				category += " (manual)"
			}
		}
		cmd.Printf("%d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date.Format("2006-01-02"), t.Amount.StringFixed(2),
			t.Description, t.Source, category)
	}

	count, err := app.GetStore().CountTransactions(cmd.Context(), filter)
	if err != nil {
		return err
	}
	cmd.Printf("%d transactions\n", count)
	return nil
}

func setCategoryFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	category, err := app.GetStore().GetCategoryByName(cmd.Context(), args[1])
	if err != nil {
		return fmt.Errorf("category %q: %w", args[1], err)
	}

	if err := app.GetStore().SetManualCategory(cmd.Context(), id, category.ID); err != nil {
		return err
	}

	cmd.Printf("Set category of transaction %d to %s\n", id, category.Name)
	return nil
}

func clearCategoryFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := app.GetStore().ClearCategory(cmd.Context(), id); err != nil {
		return err
	}

	cmd.Printf("Cleared category of transaction %d\n", id)
	return nil
}

func conflictsFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}

	transactions, err := app.GetStore().ListTransactions(cmd.Context(), store.Filter{ConflictsOnly: true})
	if err != nil {
		return err
	}
	if len(transactions) == 0 {
		cmd.Println("No conflicts")
		return nil
	}

	categories, err := app.GetStore().ListCategories(cmd.Context())
	if err != nil {
		return err
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	for i := range transactions {
		t := &transactions[i]
		decision, err := app.GetCategorizer().Classify(cmd.Context(), t)
		if err != nil {
			return err
		}

		cmd.Printf("%d\t%s\t%s\t%s\n",
			t.ID, t.Date.Format("2006-01-02"), t.Amount.StringFixed(2), t.Description)

		seen := make(map[string]bool, len(decision.Matches))
		for _, match := range decision.Matches {
			key := fmt.Sprintf("%s\x00%d", match.Pattern, match.CategoryID)
			if seen[key] {
				continue
			}
			seen[key] = true
			cmd.Printf("\t%q -> %s\n", match.Pattern, names[match.CategoryID])
		}
	}
	cmd.Printf("%d conflicts\n", len(transactions))
	return nil
}

func sourcesFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}

	sources, err := app.GetStore().Sources(cmd.Context())
	if err != nil {
		return err
	}

	for _, source := range sources {
		count, err := app.GetStore().CountTransactions(cmd.Context(), store.Filter{Source: source})
		if err != nil {
			return err
		}
		cmd.Printf("%s\t%d\n", source, count)
	}
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
