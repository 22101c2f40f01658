// Package export writes filtered transactions and per-category totals to
// CSV files for downstream tools. It only reads from the store.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/fabian-plaehn/financeanalyzer/internal/logging"
	"github.com/fabian-plaehn/financeanalyzer/internal/store"
)

// Exporter writes store contents to CSV files.
type Exporter struct {
	store     *store.Store
	logger    logging.Logger
	Delimiter rune
}

// New creates an exporter writing comma-delimited files by default.
func New(s *store.Store, logger logging.Logger) *Exporter {
	return &Exporter{store: s, logger: logger, Delimiter: ','}
}

// entryRow is the flat CSV shape of one exported transaction.
type entryRow struct {
	Date           string `csv:"Date"`
	Amount         string `csv:"Amount"`
	Description    string `csv:"Description"`
	SenderReceiver string `csv:"SenderReceiver"`
	Source         string `csv:"Source"`
	Category       string `csv:"Category"`
	Manual         bool   `csv:"Manual"`
	Conflict       bool   `csv:"Conflict"`
}

// totalRow is one line of the per-category sum report.
type totalRow struct {
	Category string `csv:"Category"`
	Total    string `csv:"Total"`
}

// WriteEntries exports the filtered transactions, newest first, and returns
// how many rows were written.
func (e *Exporter) WriteEntries(ctx context.Context, f store.Filter, path string) (int, error) {
	transactions, err := e.store.ListTransactions(ctx, f)
	if err != nil {
		return 0, err
	}

	names, err := e.categoryNames(ctx)
	if err != nil {
		return 0, err
	}

	rows := make([]entryRow, 0, len(transactions))
	for i := range transactions {
		t := &transactions[i]
		category := ""
		if t.CategoryID != nil {
			category = names[*t.CategoryID]
		}
		rows = append(rows, entryRow{
			Date:           t.Date.Format("2006-01-02"),
			Amount:         t.Amount.StringFixed(2),
			Description:    t.Description,
			SenderReceiver: t.SenderReceiver,
			Source:         t.Source,
			Category:       category,
			Manual:         t.IsManual,
			Conflict:       t.HasConflict,
		})
	}

	if err := e.writeCSV(path, rows); err != nil {
		return 0, err
	}

	e.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(rows)},
	).Info("Exported transactions")
	return len(rows), nil
}

// WriteCategoryTotals exports the per-category amount sums over the
// filtered set.
func (e *Exporter) WriteCategoryTotals(ctx context.Context, f store.Filter, path string) (int, error) {
	totals, err := e.store.CategoryTotals(ctx, f)
	if err != nil {
		return 0, err
	}

	rows := make([]totalRow, 0, len(totals))
	for _, total := range totals {
		rows = append(rows, totalRow{Category: total.Name, Total: total.Total.StringFixed(2)})
	}

	if err := e.writeCSV(path, rows); err != nil {
		return 0, err
	}

	e.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(rows)},
	).Info("Exported category totals")
	return len(rows), nil
}

func (e *Exporter) categoryNames(ctx context.Context) (map[int64]string, error) {
	categories, err := e.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

func (e *Exporter) writeCSV(path string, rows any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close export file")
		}
	}()

	writer := csv.NewWriter(file)
	writer.Comma = e.Delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
