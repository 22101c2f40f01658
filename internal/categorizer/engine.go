// Package categorizer classifies transactions with user-defined keyword and
// regex rules. Matching is order-independent: the outcome never depends on
// rule insertion order. When matching rules disagree about the target
// category the transaction is flagged as a conflict for human resolution
// instead of silently picking a winner.
package categorizer

import (
	"regexp"
	"strings"
	"sync"

	"github.com/fabian-plaehn/financeanalyzer/internal/logging"
	"github.com/fabian-plaehn/financeanalyzer/internal/models"
)

// Engine evaluates rules against transactions. It never mutates rules.
// Compiled regex patterns are cached across evaluations.
type Engine struct {
	logger logging.Logger

	mu    sync.Mutex
	cache map[string]*regexp.Regexp // pattern -> compiled, nil for invalid
}

// NewEngine creates a rule matching engine.
func NewEngine(logger logging.Logger) *Engine {
	return &Engine{
		logger: logger,
		cache:  make(map[string]*regexp.Regexp),
	}
}

// FindMatchingRules returns every enabled rule whose pattern matches the
// transaction's configured field(s), in the order the rules were given.
func (e *Engine) FindMatchingRules(t *models.Transaction, rules []models.Rule) []models.Rule {
	var matches []models.Rule
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		if e.ruleMatches(&rule, t) {
			matches = append(matches, rule)
		}
	}
	return matches
}

func (e *Engine) ruleMatches(rule *models.Rule, t *models.Transaction) bool {
	if rule.MatchField == models.MatchFieldAny {
		return e.textMatches(rule, t.Description) || e.textMatches(rule, t.SenderReceiver)
	}
	return e.textMatches(rule, t.FieldText(rule.MatchField))
}

func (e *Engine) textMatches(rule *models.Rule, text string) bool {
	if text == "" {
		return false
	}
	switch rule.Type {
	case models.RuleTypeContains:
		return strings.Contains(strings.ToLower(text), strings.ToLower(rule.Pattern))
	case models.RuleTypeRegex:
		re := e.compile(rule.Pattern)
		return re != nil && re.MatchString(text)
	default:
		return false
	}
}

// compile returns the cached case-insensitive regexp for a pattern. An
// invalid pattern is cached as nil so it evaluates as a non-match without
// re-compiling on every transaction.
func (e *Engine) compile(pattern string) *regexp.Regexp {
	e.mu.Lock()
	defer e.mu.Unlock()

	re, ok := e.cache[pattern]
	if ok {
		return re
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		e.logger.WithError(err).WithField(logging.FieldPattern, pattern).
			Debug("Invalid regex pattern treated as non-match")
		re = nil
	}
	e.cache[pattern] = re
	return re
}

// RuleMatch is one (pattern, category) pair of a conflict, exposed so the
// caller can display what disagreed.
type RuleMatch struct {
	RuleID     int64
	Pattern    string
	CategoryID int64
}

// Decision is the classification outcome for one transaction.
type Decision struct {
	CategoryID  *int64      // nil when uncategorized or conflicted
	HasConflict bool        // category and conflict are mutually exclusive
	Matches     []RuleMatch // all matching rules, for display/resolution
}

// Decide reduces a match set to a classification decision: no match leaves
// the transaction uncategorized; matches agreeing on one category assign it;
// matches targeting at least two distinct categories yield a conflict with
// no category assigned.
func Decide(matches []models.Rule) Decision {
	d := Decision{Matches: make([]RuleMatch, 0, len(matches))}
	for _, rule := range matches {
		d.Matches = append(d.Matches, RuleMatch{
			RuleID:     rule.ID,
			Pattern:    rule.Pattern,
			CategoryID: rule.TargetCategoryID,
		})
	}

	if len(matches) == 0 {
		return d
	}

	category := matches[0].TargetCategoryID
	for _, rule := range matches[1:] {
		if rule.TargetCategoryID != category {
			d.HasConflict = true
			return d
		}
	}
	d.CategoryID = &category
	return d
}
