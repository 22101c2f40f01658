// Package common provides shared helpers for commands
package common

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fabian-plaehn/financeanalyzer/internal/dateutils"
	"github.com/fabian-plaehn/financeanalyzer/internal/store"
)

// FilterFlags collects the transaction filter flags shared by the list and
// export commands.
type FilterFlags struct {
	From          string
	To            string
	Category      string
	Source        string
	Uncategorized bool
	Conflicts     bool
	ManualOnly    bool
	AutoOnly      bool
}

// Register adds the filter flags to a command.
func (f *FilterFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.From, "from", "", "Only transactions on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.To, "to", "", "Only transactions on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&f.Category, "category", "c", "", "Only transactions in this category")
	cmd.Flags().StringVarP(&f.Source, "source", "s", "", "Only transactions from this source")
	cmd.Flags().BoolVar(&f.Uncategorized, "uncategorized", false, "Only uncategorized transactions")
	cmd.Flags().BoolVar(&f.Conflicts, "conflicts", false, "Only transactions with conflicting rules")
	cmd.Flags().BoolVar(&f.ManualOnly, "manual", false, "Only manually categorized transactions")
	cmd.Flags().BoolVar(&f.AutoOnly, "auto", false, "Only automatically categorized transactions")
}

// Build resolves the flag values into a store filter. Category names are
// looked up in the store.
func (f *FilterFlags) Build(ctx context.Context, s *store.Store) (store.Filter, error) {
	var filter store.Filter

	var err error
	if filter.StartDate, err = parseDate(f.From, "--from"); err != nil {
		return store.Filter{}, err
	}
	if filter.EndDate, err = parseDate(f.To, "--to"); err != nil {
		return store.Filter{}, err
	}

	if f.Category != "" {
		category, err := s.GetCategoryByName(ctx, f.Category)
		if err != nil {
			return store.Filter{}, fmt.Errorf("category %q: %w", f.Category, err)
		}
		filter.CategoryID = &category.ID
	}

	filter.Source = f.Source
	filter.UncategorizedOnly = f.Uncategorized
	filter.ConflictsOnly = f.Conflicts

	if f.ManualOnly && f.AutoOnly {
		return store.Filter{}, fmt.Errorf("--manual and --auto are mutually exclusive")
	}
	if f.ManualOnly {
		manual := true
		filter.Manual = &manual
	}
	if f.AutoOnly {
		manual := false
		filter.Manual = &manual
	}

	return filter, nil
}

func parseDate(raw, flag string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := dateutils.Parse(raw, dateutils.LayoutISO)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid date %q", flag, raw)
	}
	return t, nil
}
