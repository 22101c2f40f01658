package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fabian-plaehn/financeanalyzer/internal/models"
)

// CreateCategory adds a category and returns its id. Names are unique.
func (s *Store) CreateCategory(ctx context.Context, name string) (int64, error) {
	result, err := s.q.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("creating category %q: %w", name, err)
	}
	return result.LastInsertId()
}

// GetCategory fetches one category by id.
func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

// GetCategoryByName fetches one category by its unique name.
func (s *Store) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM categories WHERE name = ?`, name)
	return scanCategory(row)
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt = parseTimestamp(createdAt)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// RenameCategory changes a category's name.
func (s *Store) RenameCategory(ctx context.Context, id int64, name string) error {
	result, err := s.q.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("renaming category %d: %w", id, err)
	}
	return requireRow(result)
}

// DeleteCategory removes a category, uncategorizes every transaction that
// referenced it and deletes the rules targeting it, as one atomic unit.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.WithTx(ctx, func(tx *Store) error {
		if _, err := tx.q.ExecContext(ctx,
			`UPDATE transactions SET category_id = NULL WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("uncategorizing transactions of category %d: %w", id, err)
		}
		if _, err := tx.q.ExecContext(ctx,
			`DELETE FROM rules WHERE target_category_id = ?`, id); err != nil {
			return fmt.Errorf("deleting rules of category %d: %w", id, err)
		}
		result, err := tx.q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting category %d: %w", id, err)
		}
		return requireRow(result)
	})
}

func scanCategory(row *sql.Row) (*models.Category, error) {
	var c models.Category
	var createdAt string
	err := row.Scan(&c.ID, &c.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning category: %w", err)
	}
	c.CreatedAt = parseTimestamp(createdAt)
	return &c, nil
}
