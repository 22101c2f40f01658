package rulefile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabian-plaehn/financeanalyzer/internal/logging"
	"github.com/fabian-plaehn/financeanalyzer/internal/models"
	"github.com/fabian-plaehn/financeanalyzer/internal/store"
)

const seedFile = `
categories:
  - name: Food
  - name: Rent
rules:
  - category: Food
    pattern: rewe
  - category: Food
    type: regex
    pattern: edeka|aldi
    match_field: any
  - category: Rent
    pattern: miete
    disabled: true
`

func newLoader(t *testing.T) (*Loader, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return NewLoader(s, logging.NewNopLogger()), s
}

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	loader, s := newLoader(t)
	ctx := context.Background()

	result, err := loader.Load(ctx, writeSeed(t, seedFile))
	require.NoError(t, err)
	assert.Equal(t, 2, result.CategoriesCreated)
	assert.Equal(t, 3, result.RulesCreated)
	assert.Equal(t, 0, result.RulesSkipped)

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)

	rules, err := s.ListRules(ctx, false)
	require.NoError(t, err)
	require.Len(t, rules, 3)

	// Defaults fill in type and match field.
	assert.Equal(t, models.RuleTypeContains, rules[0].Type)
	assert.Equal(t, models.MatchFieldDescription, rules[0].MatchField)
	assert.Equal(t, models.RuleTypeRegex, rules[1].Type)
	assert.Equal(t, models.MatchFieldAny, rules[1].MatchField)
	assert.False(t, rules[2].Enabled)
}

func TestLoad_Idempotent(t *testing.T) {
	loader, _ := newLoader(t)
	ctx := context.Background()

	path := writeSeed(t, seedFile)
	_, err := loader.Load(ctx, path)
	require.NoError(t, err)

	result, err := loader.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 0, result.CategoriesCreated)
	assert.Equal(t, 0, result.RulesCreated)
	assert.Equal(t, 3, result.RulesSkipped)
}

func TestLoad_ImplicitCategoryFromRule(t *testing.T) {
	loader, s := newLoader(t)
	ctx := context.Background()

	content := "rules:\n  - category: Travel\n    pattern: bahn\n"
	result, err := loader.Load(ctx, writeSeed(t, content))
	require.NoError(t, err)
	assert.Equal(t, 1, result.CategoriesCreated)
	assert.Equal(t, 1, result.RulesCreated)

	_, err = s.GetCategoryByName(ctx, "Travel")
	require.NoError(t, err)
}

func TestLoad_ExistingCategoriesReused(t *testing.T) {
	loader, s := newLoader(t)
	ctx := context.Background()

	foodID, err := s.CreateCategory(ctx, "Food")
	require.NoError(t, err)

	result, err := loader.Load(ctx, writeSeed(t, seedFile))
	require.NoError(t, err)
	assert.Equal(t, 1, result.CategoriesCreated) // only Rent

	rules, err := s.ListRules(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, foodID, rules[0].TargetCategoryID)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "rule without category",
			content: "rules:\n  - pattern: x\n",
			wantErr: "has no category",
		},
		{
			name:    "rule without pattern",
			content: "rules:\n  - category: Food\n",
			wantErr: "has no pattern",
		},
		{
			name:    "unknown rule type",
			content: "rules:\n  - category: Food\n    pattern: x\n    type: glob\n",
			wantErr: "unknown type",
		},
		{
			name:    "unknown match field",
			content: "rules:\n  - category: Food\n    pattern: x\n    match_field: subject\n",
			wantErr: "unknown match field",
		},
		{
			name:    "category without name",
			content: "categories:\n  - name: \"\"\n",
			wantErr: "has no name",
		},
		{
			name:    "invalid yaml",
			content: "rules: [",
			wantErr: "parsing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, s := newLoader(t)
			_, err := loader.Load(context.Background(), writeSeed(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			// A rejected file must not leave partial state behind.
			rules, listErr := s.ListRules(context.Background(), false)
			require.NoError(t, listErr)
			assert.Empty(t, rules)
		})
	}
}

func TestValidate(t *testing.T) {
	file, err := Validate(writeSeed(t, seedFile))
	require.NoError(t, err)
	assert.Len(t, file.Categories, 2)
	assert.Len(t, file.Rules, 3)

	_, err = Validate(writeSeed(t, "{}"))
	assert.ErrorIs(t, err, ErrNoRules)
}
