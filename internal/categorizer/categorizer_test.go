package categorizer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabian-plaehn/financeanalyzer/internal/logging"
	"github.com/fabian-plaehn/financeanalyzer/internal/models"
	"github.com/fabian-plaehn/financeanalyzer/internal/store"
)

type fixture struct {
	store       *store.Store
	categorizer *Categorizer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return &fixture{store: s, categorizer: NewCategorizer(s, logging.NewNopLogger())}
}

func (f *fixture) addCategory(t *testing.T, name string) int64 {
	t.Helper()
	id, err := f.store.CreateCategory(context.Background(), name)
	require.NoError(t, err)
	return id
}

func (f *fixture) addRule(t *testing.T, categoryID int64, pattern string) int64 {
	t.Helper()
	id, err := f.store.CreateRule(context.Background(), &models.Rule{
		TargetCategoryID: categoryID,
		Type:             models.RuleTypeContains,
		Pattern:          pattern,
		MatchField:       models.MatchFieldDescription,
		Enabled:          true,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) addTransaction(t *testing.T, description string) int64 {
	t.Helper()
	id, err := f.store.InsertTransaction(context.Background(), &models.Transaction{
		Date:        time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("-10"),
		Description: description,
		Source:      "giro",
		ImportHash:  fmt.Sprintf("hash-%s", description),
	})
	require.NoError(t, err)
	return id
}

func TestReapply_AssignsAndConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	foodID := f.addCategory(t, "Food")
	partyID := f.addCategory(t, "Party")

	f.addRule(t, foodID, "rewe")
	f.addRule(t, foodID, "pizza")
	f.addRule(t, partyID, "pizza bar")

	reweID := f.addTransaction(t, "REWE SAGT DANKE")
	// Matches both the Food "pizza" rule and the Party "pizza bar" rule.
	conflictID := f.addTransaction(t, "Pizza Bar Napoli")
	plainID := f.addTransaction(t, "Miete Mai")

	summary, err := f.categorizer.Reapply(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Categorized: 1, Conflicting: 1, Uncategorized: 1}, summary)

	rewe, err := f.store.GetTransaction(ctx, reweID)
	require.NoError(t, err)
	require.NotNil(t, rewe.CategoryID)
	assert.Equal(t, foodID, *rewe.CategoryID)
	assert.False(t, rewe.HasConflict)

	conflict, err := f.store.GetTransaction(ctx, conflictID)
	require.NoError(t, err)
	assert.Nil(t, conflict.CategoryID)
	assert.True(t, conflict.HasConflict)

	plain, err := f.store.GetTransaction(ctx, plainID)
	require.NoError(t, err)
	assert.Nil(t, plain.CategoryID)
	assert.False(t, plain.HasConflict)
}

func TestReapply_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	foodID := f.addCategory(t, "Food")
	f.addRule(t, foodID, "rewe")
	f.addTransaction(t, "REWE SAGT DANKE")
	f.addTransaction(t, "Miete")

	first, err := f.categorizer.Reapply(ctx)
	require.NoError(t, err)
	second, err := f.categorizer.Reapply(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReapply_RuleDeletionRevertsAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	foodID := f.addCategory(t, "Food")
	ruleID := f.addRule(t, foodID, "rewe")
	txID := f.addTransaction(t, "REWE SAGT DANKE")

	_, err := f.categorizer.Reapply(ctx)
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteRule(ctx, ruleID))
	summary, err := f.categorizer.Reapply(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Categorized)

	tx, err := f.store.GetTransaction(ctx, txID)
	require.NoError(t, err)
	assert.Nil(t, tx.CategoryID)
}

func TestReapply_DisabledRuleIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	foodID := f.addCategory(t, "Food")
	ruleID := f.addRule(t, foodID, "rewe")
	f.addTransaction(t, "REWE SAGT DANKE")

	rule, err := f.store.GetRule(ctx, ruleID)
	require.NoError(t, err)
	rule.Enabled = false
	require.NoError(t, f.store.UpdateRule(ctx, rule))

	summary, err := f.categorizer.Reapply(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Uncategorized: 1}, summary)
}

func TestReapply_ManualAssignmentsUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	foodID := f.addCategory(t, "Food")
	rentID := f.addCategory(t, "Rent")
	f.addRule(t, foodID, "miete") // deliberately wrong rule

	txID := f.addTransaction(t, "Miete Mai")
	require.NoError(t, f.store.SetManualCategory(ctx, txID, rentID))

	summary, err := f.categorizer.Reapply(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)

	tx, err := f.store.GetTransaction(ctx, txID)
	require.NoError(t, err)
	require.NotNil(t, tx.CategoryID)
	assert.Equal(t, rentID, *tx.CategoryID)
	assert.True(t, tx.IsManual)
}

func TestReapply_ConflictResolvedByRuleRemoval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	foodID := f.addCategory(t, "Food")
	partyID := f.addCategory(t, "Party")
	f.addRule(t, foodID, "pizza")
	partyRule := f.addRule(t, partyID, "pizza")

	txID := f.addTransaction(t, "Pizza Napoli")

	_, err := f.categorizer.Reapply(ctx)
	require.NoError(t, err)
	tx, err := f.store.GetTransaction(ctx, txID)
	require.NoError(t, err)
	assert.True(t, tx.HasConflict)

	require.NoError(t, f.store.DeleteRule(ctx, partyRule))
	_, err = f.categorizer.Reapply(ctx)
	require.NoError(t, err)

	tx, err = f.store.GetTransaction(ctx, txID)
	require.NoError(t, err)
	assert.False(t, tx.HasConflict)
	require.NotNil(t, tx.CategoryID)
	assert.Equal(t, foodID, *tx.CategoryID)
}

func TestClassify_ConflictDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	foodID := f.addCategory(t, "Food")
	partyID := f.addCategory(t, "Party")
	f.addRule(t, foodID, "pizza")
	f.addRule(t, partyID, "pizza bar")
	txID := f.addTransaction(t, "Pizza Bar Napoli")

	_, err := f.categorizer.Reapply(ctx)
	require.NoError(t, err)

	stored, err := f.store.GetTransaction(ctx, txID)
	require.NoError(t, err)
	require.True(t, stored.HasConflict)

	decision, err := f.categorizer.Classify(ctx, stored)
	require.NoError(t, err)
	assert.True(t, decision.HasConflict)
	require.Len(t, decision.Matches, 2)

	pairs := make(map[string]int64, len(decision.Matches))
	for _, m := range decision.Matches {
		pairs[m.Pattern] = m.CategoryID
	}
	assert.Equal(t, foodID, pairs["pizza"])
	assert.Equal(t, partyID, pairs["pizza bar"])
}

func TestReapplyWith_InsideEnclosingTx(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	foodID := f.addCategory(t, "Food")
	f.addRule(t, foodID, "rewe")
	txID := f.addTransaction(t, "REWE SAGT DANKE")

	var summary Summary
	err := f.store.WithTx(ctx, func(tx *store.Store) error {
		var err error
		summary, err = f.categorizer.ReapplyWith(ctx, tx)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, Summary{Categorized: 1}, summary)

	stored, err := f.store.GetTransaction(ctx, txID)
	require.NoError(t, err)
	require.NotNil(t, stored.CategoryID)
	assert.Equal(t, foodID, *stored.CategoryID)
}

func TestReapplyWith_RollsBackWithEnclosingTx(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	foodID := f.addCategory(t, "Food")
	f.addRule(t, foodID, "rewe")
	txID := f.addTransaction(t, "REWE SAGT DANKE")

	boom := errors.New("boom")
	err := f.store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := f.categorizer.ReapplyWith(ctx, tx); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := f.store.GetTransaction(ctx, txID)
	require.NoError(t, err)
	assert.Nil(t, stored.CategoryID)
}

func TestClassify_DoesNotPersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	foodID := f.addCategory(t, "Food")
	f.addRule(t, foodID, "rewe")
	txID := f.addTransaction(t, "REWE SAGT DANKE")

	tx, err := f.store.GetTransaction(ctx, txID)
	require.NoError(t, err)

	decision, err := f.categorizer.Classify(ctx, tx)
	require.NoError(t, err)
	require.NotNil(t, decision.CategoryID)
	assert.Equal(t, foodID, *decision.CategoryID)

	stored, err := f.store.GetTransaction(ctx, txID)
	require.NoError(t, err)
	assert.Nil(t, stored.CategoryID)
}
