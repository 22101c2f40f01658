// Package models provides the data structures shared across the application.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the canonical record every importer produces, independent of
// the source file's original column naming. Positive amounts are inflows,
// negative amounts are outflows. The date carries no time component.
type Transaction struct {
	ID             int64
	Date           time.Time
	Amount         decimal.Decimal
	Description    string
	SenderReceiver string // optional, e.g. "Name Zahlungsbeteiligter"
	Source         string // origin tag: file, bank or manual entry
	CategoryID     *int64 // nil = uncategorized
	IsManual       bool   // human set/confirmed the category; blocks re-classification
	HasConflict    bool   // rules targeting different categories matched
	ImportHash     string // content hash used for duplicate detection
	CreatedAt      time.Time
}

// FieldText returns the text of one of the matchable transaction fields.
// MatchFieldAny callers should test both description and sender/receiver.
func (t *Transaction) FieldText(field MatchField) string {
	switch field {
	case MatchFieldSenderReceiver:
		return t.SenderReceiver
	default:
		return t.Description
	}
}

// IsCategorized reports whether the transaction carries a category.
func (t *Transaction) IsCategorized() bool {
	return t.CategoryID != nil
}

// NormalizeDescription collapses whitespace runs and trims the result.
func NormalizeDescription(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateToDay strips the time component, keeping the calendar day in UTC.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
