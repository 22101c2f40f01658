// Package rulefile loads categories and classification rules from a YAML
// seed file into the store. Loading is idempotent, so a seed file can be
// re-applied after edits without creating duplicates.
package rulefile

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fabian-plaehn/financeanalyzer/internal/logging"
	"github.com/fabian-plaehn/financeanalyzer/internal/models"
	"github.com/fabian-plaehn/financeanalyzer/internal/store"
)

// File is the top-level YAML document.
type File struct {
	Categories []CategorySeed `yaml:"categories"`
	Rules      []RuleSeed     `yaml:"rules"`
}

// CategorySeed declares a category by name.
type CategorySeed struct {
	Name string `yaml:"name"`
}

// RuleSeed declares one rule, referencing its category by name.
type RuleSeed struct {
	Category   string `yaml:"category"`
	Type       string `yaml:"type"`
	Pattern    string `yaml:"pattern"`
	MatchField string `yaml:"match_field"`
	Disabled   bool   `yaml:"disabled"`
}

// Result reports what a load actually changed.
type Result struct {
	CategoriesCreated int
	RulesCreated      int
	RulesSkipped      int
}

// Loader applies seed files to a store.
type Loader struct {
	store  *store.Store
	logger logging.Logger
}

// NewLoader creates a seed file loader.
func NewLoader(s *store.Store, logger logging.Logger) *Loader {
	return &Loader{store: s, logger: logger}
}

// Load parses the YAML file at path and applies it inside one transaction.
// Categories are created if missing; rules that already exist with the
// same category, type, pattern and match field are skipped.
func (l *Loader) Load(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := validate(&file); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	result := &Result{}
	err = l.store.WithTx(ctx, func(tx *store.Store) error {
		categoryIDs, err := l.applyCategories(ctx, tx, &file, result)
		if err != nil {
			return err
		}
		return l.applyRules(ctx, tx, &file, categoryIDs, result)
	})
	if err != nil {
		return nil, err
	}

	l.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: "categories_created", Value: result.CategoriesCreated},
		logging.Field{Key: "rules_created", Value: result.RulesCreated},
		logging.Field{Key: "rules_skipped", Value: result.RulesSkipped},
	).Info("Loaded rule seed file")
	return result, nil
}

func validate(file *File) error {
	declared := make(map[string]bool, len(file.Categories))
	for i, c := range file.Categories {
		if c.Name == "" {
			return fmt.Errorf("category %d has no name", i+1)
		}
		declared[c.Name] = true
	}
	for i, r := range file.Rules {
		if r.Category == "" {
			return fmt.Errorf("rule %d has no category", i+1)
		}
		if r.Pattern == "" {
			return fmt.Errorf("rule %d has no pattern", i+1)
		}
		ruleType := models.RuleType(r.Type)
		if r.Type != "" && !models.ValidRuleType(ruleType) {
			return fmt.Errorf("rule %d has unknown type %q", i+1, r.Type)
		}
		field := models.MatchField(r.MatchField)
		if r.MatchField != "" && !models.ValidMatchField(field) {
			return fmt.Errorf("rule %d has unknown match field %q", i+1, r.MatchField)
		}
	}
	return nil
}

func (l *Loader) applyCategories(ctx context.Context, tx *store.Store, file *File, result *Result) (map[string]int64, error) {
	ids := make(map[string]int64)

	existing, err := tx.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		ids[c.Name] = c.ID
	}

	names := make(map[string]bool, len(file.Categories))
	for _, c := range file.Categories {
		names[c.Name] = true
	}
	// Rules may reference categories the file never declares explicitly.
	for _, r := range file.Rules {
		names[r.Category] = true
	}

	for name := range names {
		if _, ok := ids[name]; ok {
			continue
		}
		id, err := tx.CreateCategory(ctx, name)
		if err != nil {
			return nil, err
		}
		ids[name] = id
		result.CategoriesCreated++
	}
	return ids, nil
}

func (l *Loader) applyRules(ctx context.Context, tx *store.Store, file *File, categoryIDs map[string]int64, result *Result) error {
	existing, err := tx.ListRules(ctx, false)
	if err != nil {
		return err
	}

	for _, seed := range file.Rules {
		rule := seedToRule(seed, categoryIDs[seed.Category])
		if hasEquivalent(existing, rule) {
			result.RulesSkipped++
			continue
		}
		id, err := tx.CreateRule(ctx, rule)
		if err != nil {
			return err
		}
		rule.ID = id
		existing = append(existing, *rule)
		result.RulesCreated++
	}
	return nil
}

func seedToRule(seed RuleSeed, categoryID int64) *models.Rule {
	rule := &models.Rule{
		TargetCategoryID: categoryID,
		Type:             models.RuleType(seed.Type),
		Pattern:          seed.Pattern,
		MatchField:       models.MatchField(seed.MatchField),
		Enabled:          !seed.Disabled,
	}
	if rule.Type == "" {
		rule.Type = models.RuleTypeContains
	}
	if rule.MatchField == "" {
		rule.MatchField = models.MatchFieldDescription
	}
	return rule
}

func hasEquivalent(existing []models.Rule, rule *models.Rule) bool {
	for i := range existing {
		r := &existing[i]
		if r.TargetCategoryID == rule.TargetCategoryID &&
			r.Type == rule.Type &&
			r.Pattern == rule.Pattern &&
			r.MatchField == rule.MatchField {
			return true
		}
	}
	return false
}

// ErrNoRules is returned by Validate when a file declares nothing at all.
var ErrNoRules = errors.New("seed file declares no categories and no rules")

// Validate parses the file at path without touching the store.
func Validate(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := validate(&file); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(file.Categories) == 0 && len(file.Rules) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoRules)
	}
	return &file, nil
}
