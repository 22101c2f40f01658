// Package categoriescmd handles category management commands
package categoriescmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fabian-plaehn/financeanalyzer/cmd/root"
)

// Cmd represents the categories command
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage categories",
	Long: `Manage the categories transactions are classified into. Deleting a
category also deletes its rules and uncategorizes its transactions.`,
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE:  addFunc,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all categories",
	RunE:  listFunc,
}

var renameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a category",
	Args:  cobra.ExactArgs(2),
	RunE:  renameFunc,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a category, its rules and its assignments",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteFunc,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(renameCmd)
	Cmd.AddCommand(deleteCmd)
}

func addFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}

	id, err := app.GetStore().CreateCategory(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Created category %d (%s)\n", id, args[0])
	return nil
}

func listFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}

	categories, err := app.GetStore().ListCategories(cmd.Context())
	if err != nil {
		return err
	}

	for _, c := range categories {
		cmd.Printf("%d\t%s\n", c.ID, c.Name)
	}
	return nil
}

func renameFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := app.GetStore().RenameCategory(cmd.Context(), id, args[1]); err != nil {
		return err
	}

	cmd.Printf("Renamed category %d to %s\n", id, args[1])
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

	if err := app.GetStore().DeleteCategory(cmd.Context(), id); err != nil {
		return err
	}

	cmd.Printf("Deleted category %d\n", id)
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
