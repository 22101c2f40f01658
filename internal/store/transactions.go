package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fabian-plaehn/financeanalyzer/internal/models"
)

const transactionColumns = `id, entry_date, amount, description, sender_receiver, source,
	category_id, is_manual, has_conflict, import_hash, created_at`

// Filter narrows transaction queries. Zero values mean "no constraint".
type Filter struct {
	StartDate         time.Time
	EndDate           time.Time
	CategoryID        *int64
	Source            string
	Manual            *bool
	UncategorizedOnly bool // no category and no conflict
	ConflictsOnly     bool
}

func (f Filter) where() (string, []any) {
	var clauses []string
	var args []any

	if !f.StartDate.IsZero() {
		clauses = append(clauses, "entry_date >= ?")
		args = append(args, f.StartDate.Format(dateLayout))
	}
	if !f.EndDate.IsZero() {
		clauses = append(clauses, "entry_date <= ?")
		args = append(args, f.EndDate.Format(dateLayout))
	}
	if f.CategoryID != nil {
		clauses = append(clauses, "category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, f.Source)
	}
	if f.Manual != nil {
		clauses = append(clauses, "is_manual = ?")
		args = append(args, boolToInt(*f.Manual))
	}
	if f.UncategorizedOnly {
		clauses = append(clauses, "category_id IS NULL", "has_conflict = 0")
	}
	if f.ConflictsOnly {
		clauses = append(clauses, "has_conflict = 1")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// InsertTransaction stores a new transaction and returns its id. The
// import_hash uniqueness constraint rejects duplicates that slipped past the
// existence check.
func (s *Store) InsertTransaction(ctx context.Context, t *models.Transaction) (int64, error) {
	result, err := s.q.ExecContext(ctx, `
		INSERT INTO transactions
			(entry_date, amount, description, sender_receiver, source,
			 category_id, is_manual, has_conflict, import_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Date.Format(dateLayout), t.Amount.String(), t.Description,
		nullString(t.SenderReceiver), t.Source, nullInt64(t.CategoryID),
		boolToInt(t.IsManual), boolToInt(t.HasConflict), t.ImportHash)
	if err != nil {
		return 0, fmt.Errorf("inserting transaction: %w", err)
	}
	return result.LastInsertId()
}

// HasImportHash reports whether a transaction with the given dedup key is
// already stored. The import path checks this before every insert.
func (s *Store) HasImportHash(ctx context.Context, hash string) (bool, error) {
	var one int
	err := s.q.QueryRowContext(ctx,
		`SELECT 1 FROM transactions WHERE import_hash = ?`, hash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking import hash: %w", err)
	}
	return true, nil
}

// GetTransaction fetches one transaction by id.
func (s *Store) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting transaction %d: %w", id, err)
	}
	return t, nil
}

// ListTransactions returns transactions matching the filter, newest first.
func (s *Store) ListTransactions(ctx context.Context, f Filter) ([]models.Transaction, error) {
	where, args := f.where()
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions`+where+` ORDER BY entry_date DESC, id DESC`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

// UpdateTransaction rewrites a transaction's data fields and flags.
func (s *Store) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	result, err := s.q.ExecContext(ctx, `
		UPDATE transactions
		SET entry_date = ?, amount = ?, description = ?, sender_receiver = ?,
			source = ?, category_id = ?, is_manual = ?, has_conflict = ?, import_hash = ?
		WHERE id = ?`,
		t.Date.Format(dateLayout), t.Amount.String(), t.Description,
		nullString(t.SenderReceiver), t.Source, nullInt64(t.CategoryID),
		boolToInt(t.IsManual), boolToInt(t.HasConflict), t.ImportHash, t.ID)
	if err != nil {
		return fmt.Errorf("updating transaction %d: %w", t.ID, err)
	}
	return requireRow(result)
}

// UpdateClassification persists the outcome of automatic rule matching for
// one transaction without touching the manual flag.
func (s *Store) UpdateClassification(ctx context.Context, id int64, categoryID *int64, hasConflict bool) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE transactions SET category_id = ?, has_conflict = ? WHERE id = ?`,
		nullInt64(categoryID), boolToInt(hasConflict), id)
	if err != nil {
		return fmt.Errorf("updating classification of %d: %w", id, err)
	}
	return requireRow(result)
}

// ResetAutoClassifications clears category and conflict state on every
// transaction not pinned by a manual assignment.
func (s *Store) ResetAutoClassifications(ctx context.Context) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE transactions SET category_id = NULL, has_conflict = 0 WHERE is_manual = 0`)
	if err != nil {
		return fmt.Errorf("resetting classifications: %w", err)
	}
	return nil
}

// SetManualCategory records a human category assignment. The manual flag
// protects the transaction from automatic re-classification.
func (s *Store) SetManualCategory(ctx context.Context, id int64, categoryID int64) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE transactions SET category_id = ?, is_manual = 1, has_conflict = 0 WHERE id = ?`,
		categoryID, id)
	if err != nil {
		return fmt.Errorf("setting manual category on %d: %w", id, err)
	}
	return requireRow(result)
}

// ClearCategory removes any category and the manual flag, so the
// transaction re-enters automatic classification on the next reapply.
func (s *Store) ClearCategory(ctx context.Context, id int64) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE transactions SET category_id = NULL, is_manual = 0, has_conflict = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("clearing category on %d: %w", id, err)
	}
	return requireRow(result)
}

// DeleteTransaction removes a transaction by id.
func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction %d: %w", id, err)
	}
	return requireRow(result)
}

// Sources returns the distinct source tags present in the store.
func (s *Store) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT DISTINCT source FROM transactions ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

// CountTransactions returns the number of transactions matching the filter.
func (s *Store) CountTransactions(ctx context.Context, f Filter) (int, error) {
	where, args := f.where()
	var count int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}
	return count, nil
}

// CategoryTotal is one row of the per-category sum report. A nil CategoryID
// aggregates uncategorized transactions.
type CategoryTotal struct {
	CategoryID *int64
	Name       string
	Total      decimal.Decimal
}

// CategoryTotals sums transaction amounts per category over the filtered
// set, for the external exporter.
func (s *Store) CategoryTotals(ctx context.Context, f Filter) ([]CategoryTotal, error) {
	transactions, err := s.ListTransactions(ctx, f)
	if err != nil {
		return nil, err
	}

	totals := make(map[int64]*CategoryTotal)
	var uncategorized *CategoryTotal
	var order []*CategoryTotal

	for i := range transactions {
		t := &transactions[i]
		if t.CategoryID == nil {
			if uncategorized == nil {
				uncategorized = &CategoryTotal{Name: "Uncategorized"}
				order = append(order, uncategorized)
			}
			uncategorized.Total = uncategorized.Total.Add(t.Amount)
			continue
		}
		entry, ok := totals[*t.CategoryID]
		if !ok {
			category, err := s.GetCategory(ctx, *t.CategoryID)
			if err != nil {
				return nil, err
			}
			id := category.ID
			entry = &CategoryTotal{CategoryID: &id, Name: category.Name}
			totals[id] = entry
			order = append(order, entry)
		}
		entry.Total = entry.Total.Add(t.Amount)
	}

	result := make([]CategoryTotal, 0, len(order))
	for _, entry := range order {
		result = append(result, *entry)
	}
	return result, nil
}

const dateLayout = "2006-01-02"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		t              models.Transaction
		entryDate      string
		amount         string
		senderReceiver sql.NullString
		categoryID     sql.NullInt64
		isManual       int
		hasConflict    int
		createdAt      string
	)
	err := row.Scan(&t.ID, &entryDate, &amount, &t.Description, &senderReceiver,
		&t.Source, &categoryID, &isManual, &hasConflict, &t.ImportHash, &createdAt)
	if err != nil {
		return nil, err
	}

	if t.Date, err = time.Parse(dateLayout, entryDate); err != nil {
		return nil, fmt.Errorf("parsing stored date %q: %w", entryDate, err)
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parsing stored amount %q: %w", amount, err)
	}
	t.SenderReceiver = senderReceiver.String
	if categoryID.Valid {
		id := categoryID.Int64
		t.CategoryID = &id
	}
	t.IsManual = isManual != 0
	t.HasConflict = hasConflict != 0
	t.CreatedAt = parseTimestamp(createdAt)
	return &t, nil
}

func parseTimestamp(raw string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt64(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}
