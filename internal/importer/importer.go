// Package importer drives the import of one statement file: parse rows into
// canonical records, skip duplicates by dedup key, insert the rest and
// trigger re-classification. Each file import is all-or-nothing against the
// store.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/fabian-plaehn/financeanalyzer/internal/categorizer"
	"github.com/fabian-plaehn/financeanalyzer/internal/csvimport"
	"github.com/fabian-plaehn/financeanalyzer/internal/dedup"
	"github.com/fabian-plaehn/financeanalyzer/internal/logging"
	"github.com/fabian-plaehn/financeanalyzer/internal/models"
	"github.com/fabian-plaehn/financeanalyzer/internal/store"
)

// Importer imports statement files into the store.
type Importer struct {
	store       *store.Store
	categorizer *categorizer.Categorizer
	logger      logging.Logger
}

// New creates an importer.
func New(s *store.Store, c *categorizer.Categorizer, logger logging.Logger) *Importer {
	return &Importer{store: s, categorizer: c, logger: logger}
}

// Result reports the outcome of one file import. Duplicates are counted and
// silently skipped, never overwritten; dropped counts unparseable rows in
// best-effort mode.
type Result struct {
	BatchID  uuid.UUID
	Imported int
	Skipped  int
	Dropped  int
	Summary  categorizer.Summary
}

// ImportFile imports one CSV file. With a nil config the file's framing and
// columns are auto-detected and bad rows are dropped; with a config the
// mapping is strict and the first bad row aborts the import. The inserts
// and the follow-up reapply pass run in one store transaction, so a file
// is either fully imported and classified or not at all.
func (i *Importer) ImportFile(ctx context.Context, path, source string, cfg *models.ImportConfig) (Result, error) {
	result := Result{BatchID: uuid.New()}
	if source == "" {
		source = filepath.Base(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	var reader *csvimport.Reader
	if cfg == nil {
		reader, err = csvimport.NewAutoReader(file, source, path, i.logger)
	} else {
		reader, err = csvimport.NewMappedReader(file, *cfg, source, path, i.logger)
	}
	if err != nil {
		return Result{}, err
	}

	transactions, dropped, err := csvimport.ReadAll(reader)
	if err != nil {
		return Result{}, err
	}
	result.Dropped = dropped

	err = i.store.WithTx(ctx, func(tx *store.Store) error {
		for idx := range transactions {
			t := &transactions[idx]
			t.ImportHash = dedup.KeyFor(t)

			exists, err := tx.HasImportHash(ctx, t.ImportHash)
			if err != nil {
				return err
			}
			if exists {
				result.Skipped++
				continue
			}
			if _, err := tx.InsertTransaction(ctx, t); err != nil {
				return err
			}
			result.Imported++
		}

		result.Summary, err = i.categorizer.ReapplyWith(ctx, tx)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	i.logger.WithFields(
		logging.Field{Key: logging.FieldBatch, Value: result.BatchID.String()},
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldSource, Value: source},
		logging.Field{Key: "imported", Value: result.Imported},
		logging.Field{Key: "skipped", Value: result.Skipped},
		logging.Field{Key: "dropped", Value: result.Dropped},
	).Info("Imported statement file")

	return result, nil
}
