// Package rulescmd handles classification rule management commands
package rulescmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fabian-plaehn/financeanalyzer/cmd/root"
	"github.com/fabian-plaehn/financeanalyzer/internal/container"
	"github.com/fabian-plaehn/financeanalyzer/internal/models"
	"github.com/fabian-plaehn/financeanalyzer/internal/rulefile"
)

var (
	ruleType    string
	matchField  string
	skipReapply bool
	dryRun      bool
)

// Cmd represents the rules command
var Cmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage classification rules",
	Long: `Manage the rules that assign categories to transactions. Any change to
the rule set re-runs classification over all non-manual transactions
unless --no-reapply is given.`,
}

var addCmd = &cobra.Command{
	Use:   "add <category> <pattern>",
	Short: "Add a classification rule",
	Args:  cobra.ExactArgs(2),
	RunE:  addFunc,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all classification rules",
	RunE:  listFunc,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a classification rule",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteFunc,
}

var enableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable a classification rule",
	Args:  cobra.ExactArgs(1),
	RunE:  toggleFunc(true),
}

var disableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable a classification rule",
	Args:  cobra.ExactArgs(1),
	RunE:  toggleFunc(false),
}

var loadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Load categories and rules from a YAML seed file",
	Long: `Load categories and rules from a YAML seed file. Without an argument the
configured rules.seed_file is loaded. With --dry-run the file is only
validated and nothing is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: loadFunc,
}

func init() {
	addCmd.Flags().StringVarP(&ruleType, "type", "t", string(models.RuleTypeContains), "Rule type: contains or regex")
	addCmd.Flags().StringVarP(&matchField, "field", "f", string(models.MatchFieldDescription), "Field to match: description, sender_receiver or any")

	Cmd.PersistentFlags().BoolVar(&skipReapply, "no-reapply", false, "Do not re-run classification after the change")
	loadCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the seed file without writing anything")

	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(enableCmd)
	Cmd.AddCommand(disableCmd)
	Cmd.AddCommand(loadCmd)
}

func addFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}

	category, err := app.GetStore().GetCategoryByName(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("category %q: %w", args[0], err)
	}

	rule := &models.Rule{
		TargetCategoryID: category.ID,
		Type:             models.RuleType(ruleType),
		Pattern:          args[1],
		MatchField:       models.MatchField(matchField),
		Enabled:          true,
	}

	id, err := app.GetStore().CreateRule(cmd.Context(), rule)
	if err != nil {
		return err
	}

	cmd.Printf("Created rule %d\n", id)
	return reapply(cmd, app)
}

func listFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}

	rules, err := app.GetStore().ListRules(cmd.Context(), false)
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

	for _, r := range rules {
		state := "enabled"
		if !r.Enabled {
			state = "disabled"
		}
		cmd.Printf("%d\t%s\t%s\t%q\t%s\t%s\n",
			r.ID, names[r.TargetCategoryID], r.Type, r.Pattern, r.MatchField, state)
	}
	return nil
}

func deleteFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := app.GetStore().DeleteRule(cmd.Context(), id); err != nil {
		return err
	}

	cmd.Printf("Deleted rule %d\n", id)
	return reapply(cmd, app)
}

func toggleFunc(enabled bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := root.App()
		if err != nil {
			return err
		}

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		rule, err := app.GetStore().GetRule(cmd.Context(), id)
		if err != nil {
			return err
		}
		if rule.Enabled == enabled {
			cmd.Printf("Rule %d unchanged\n", id)
			return nil
		}

		rule.Enabled = enabled
		if err := app.GetStore().UpdateRule(cmd.Context(), rule); err != nil {
			return err
		}

		if enabled {
			cmd.Printf("Enabled rule %d\n", id)
		} else {
			cmd.Printf("Disabled rule %d\n", id)
		}
		return reapply(cmd, app)
	}
}

func loadFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}

	path := app.GetConfig().Rules.SeedFile
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no seed file given and rules.seed_file is not configured")
	}

	if dryRun {
		file, err := rulefile.Validate(path)
		if err != nil {
			return err
		}
		cmd.Printf("%s is valid: %d categories, %d rules\n",
			path, len(file.Categories), len(file.Rules))
		return nil
	}

	result, err := app.GetRuleLoader().Load(cmd.Context(), path)
	if err != nil {
		return err
	}

	cmd.Printf("Created %d categories and %d rules (%d already present)\n",
		result.CategoriesCreated, result.RulesCreated, result.RulesSkipped)
	return reapply(cmd, app)
}

func reapply(cmd *cobra.Command, app *container.Container) error {
	if skipReapply {
		return nil
	}

	summary, err := app.GetCategorizer().Reapply(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("Categorized: %d, conflicting: %d, uncategorized: %d\n",
		summary.Categorized, summary.Conflicting, summary.Uncategorized)
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
