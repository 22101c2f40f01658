package categorizer

import (
	"context"

	"github.com/fabian-plaehn/financeanalyzer/internal/logging"
	"github.com/fabian-plaehn/financeanalyzer/internal/models"
	"github.com/fabian-plaehn/financeanalyzer/internal/store"
)

// Categorizer owns write access to transaction classification state. It is
// the only component that sets category and conflict flags; manual
// assignments are never touched.
type Categorizer struct {
	store  *store.Store
	engine *Engine
	logger logging.Logger
}

// NewCategorizer wires the orchestrator with its store and matching engine.
func NewCategorizer(s *store.Store, logger logging.Logger) *Categorizer {
	return &Categorizer{
		store:  s,
		engine: NewEngine(logger),
		logger: logger,
	}
}

// Engine exposes the underlying matching engine for callers that want to
// inspect individual match sets (e.g. conflict detail views).
func (c *Categorizer) Engine() *Engine {
	return c.engine
}

// Summary counts the outcomes of one reapply pass.
type Summary struct {
	Categorized   int
	Conflicting   int
	Uncategorized int
}

// Reapply resets and recomputes classification state for every non-manual
// transaction in one atomic store transaction. It is idempotent: a second
// run with unchanged rules and manual flags produces identical state. Call
// it after every rule mutation and after bulk imports.
func (c *Categorizer) Reapply(ctx context.Context) (Summary, error) {
	return c.ReapplyWith(ctx, c.store)
}

// ReapplyWith runs the reapply pass against s, which may already be
// transaction-scoped. Callers that need the pass folded into a larger
// atomic operation pass their WithTx store in.
func (c *Categorizer) ReapplyWith(ctx context.Context, s *store.Store) (Summary, error) {
	var summary Summary

	err := s.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.ResetAutoClassifications(ctx); err != nil {
			return err
		}

		rules, err := tx.ListRules(ctx, true)
		if err != nil {
			return err
		}

		manual := false
		transactions, err := tx.ListTransactions(ctx, store.Filter{Manual: &manual})
		if err != nil {
			return err
		}

		for i := range transactions {
			t := &transactions[i]
			decision := Decide(c.engine.FindMatchingRules(t, rules))

			switch {
			case decision.HasConflict:
				summary.Conflicting++
			case decision.CategoryID != nil:
				summary.Categorized++
			default:
				summary.Uncategorized++
				// Reset already produced this state; skip the write.
				continue
			}

			if err := tx.UpdateClassification(ctx, t.ID, decision.CategoryID, decision.HasConflict); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	c.logger.WithFields(
		logging.Field{Key: "categorized", Value: summary.Categorized},
		logging.Field{Key: "conflicting", Value: summary.Conflicting},
		logging.Field{Key: "uncategorized", Value: summary.Uncategorized},
	).Info("Reapplied categorization rules")

	return summary, nil
}

// Classify evaluates the enabled rule set against a single transaction
// without persisting anything, for previews and conflict inspection.
func (c *Categorizer) Classify(ctx context.Context, t *models.Transaction) (Decision, error) {
	rules, err := c.store.ListRules(ctx, true)
	if err != nil {
		return Decision{}, err
	}
	return Decide(c.engine.FindMatchingRules(t, rules)), nil
}
