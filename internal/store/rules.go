package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fabian-plaehn/financeanalyzer/internal/models"
)

const ruleColumns = `id, target_category_id, rule_type, pattern, match_field, enabled, created_at`

// CreateRule adds a categorization rule and returns its id.
func (s *Store) CreateRule(ctx context.Context, r *models.Rule) (int64, error) {
	if !models.ValidRuleType(r.Type) {
		return 0, fmt.Errorf("invalid rule type: %s", r.Type)
	}
	field := r.MatchField
	if field == "" {
		field = models.MatchFieldDescription
	}
	if !models.ValidMatchField(field) {
		return 0, fmt.Errorf("invalid match field: %s", field)
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO rules (target_category_id, rule_type, pattern, match_field, enabled)
		VALUES (?, ?, ?, ?, ?)`,
		r.TargetCategoryID, string(r.Type), r.Pattern, string(field), boolToInt(r.Enabled))
	if err != nil {
		return 0, fmt.Errorf("creating rule: %w", err)
	}
	return result.LastInsertId()
}

// GetRule fetches one rule by id.
func (s *Store) GetRule(ctx context.Context, id int64) (*models.Rule, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM rules WHERE id = ?`, id)
	r, err := scanRule(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting rule %d: %w", id, err)
	}
	return r, nil
}

// ListRules returns rules in creation order, optionally only enabled ones.
// The matching engine consumes the enabled set.
func (s *Store) ListRules(ctx context.Context, enabledOnly bool) ([]models.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules`
	if enabledOnly {
		query += ` WHERE enabled = 1`
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []models.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}

// UpdateRule rewrites a rule's pattern, type, target and enabled state.
func (s *Store) UpdateRule(ctx context.Context, r *models.Rule) error {
	if !models.ValidRuleType(r.Type) {
		return fmt.Errorf("invalid rule type: %s", r.Type)
	}
	if !models.ValidMatchField(r.MatchField) {
		return fmt.Errorf("invalid match field: %s", r.MatchField)
	}

	result, err := s.q.ExecContext(ctx, `
		UPDATE rules
		SET target_category_id = ?, rule_type = ?, pattern = ?, match_field = ?, enabled = ?
		WHERE id = ?`,
		r.TargetCategoryID, string(r.Type), r.Pattern, string(r.MatchField),
		boolToInt(r.Enabled), r.ID)
	if err != nil {
		return fmt.Errorf("updating rule %d: %w", r.ID, err)
	}
	return requireRow(result)
}

// DeleteRule removes a rule by id.
func (s *Store) DeleteRule(ctx context.Context, id int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting rule %d: %w", id, err)
	}
	return requireRow(result)
}

func scanRule(row rowScanner) (*models.Rule, error) {
	var (
		r         models.Rule
		ruleType  string
		field     string
		enabled   int
		createdAt string
	)
	err := row.Scan(&r.ID, &r.TargetCategoryID, &ruleType, &r.Pattern, &field, &enabled, &createdAt)
	if err != nil {
		return nil, err
	}
	r.Type = models.RuleType(ruleType)
	r.MatchField = models.MatchField(field)
	r.Enabled = enabled != 0
	r.CreatedAt = parseTimestamp(createdAt)
	return &r, nil
}
