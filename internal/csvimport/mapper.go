package csvimport

import (
	"strings"

	"github.com/fabian-plaehn/financeanalyzer/internal/models"
	"github.com/fabian-plaehn/financeanalyzer/internal/parsererror"
)

// Candidate header names per canonical field, matched by substring against
// case-folded, trimmed headers. German bank exports dominate the lists.
var (
	dateCandidates        = []string{"date", "datum", "buchungstag", "valuta"}
	amountCandidates      = []string{"amount", "betrag", "wert", "umsatz"}
	descriptionCandidates = []string{"description", "desc", "beschreibung", "verwendungszweck", "buchungstext"}
	extraCandidates       = []string{"name zahlungsbeteiligter", "beguenstigter", "bemerkung", "info"}
)

// columnMap holds resolved column indices for one file. Description columns
// keep source order so concatenation is stable.
type columnMap struct {
	date        int
	amount      int
	description []int // primary then supplementary columns
	sender      int   // first party-like column, -1 if absent
}

// mapColumns resolves detected headers onto the canonical schema. A file
// whose date or amount column cannot be found fails with a MappingError
// listing every header seen.
func mapColumns(headers []string, file string) (columnMap, error) {
	cm := columnMap{date: -1, amount: -1, sender: -1}

	for i, header := range headers {
		normalized := normalizeHeader(header)
		switch {
		case cm.date < 0 && matchesAny(normalized, dateCandidates):
			cm.date = i
		case cm.amount < 0 && matchesAny(normalized, amountCandidates):
			cm.amount = i
		case matchesAny(normalized, descriptionCandidates):
			cm.description = append(cm.description, i)
		case matchesAny(normalized, extraCandidates):
			cm.description = append(cm.description, i)
			if cm.sender < 0 {
				cm.sender = i
			}
		}
	}

	var missing []string
	if cm.date < 0 {
		missing = append(missing, "date")
	}
	if cm.amount < 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return columnMap{}, &parsererror.MappingError{File: file, Missing: missing, Headers: headers}
	}
	return cm, nil
}

// mapConfiguredColumns resolves the explicit column bindings of an
// ImportConfig against the file's headers. Binding is by exact name after
// trimming, the way saved configurations reference their source files.
func mapConfiguredColumns(headers []string, cfg models.ImportConfig, file string) (columnMap, error) {
	index := make(map[string]int, len(headers))
	for i, header := range headers {
		index[strings.TrimSpace(header)] = i
	}

	cm := columnMap{date: -1, amount: -1, sender: -1}
	var missing []string

	lookup := func(column string) int {
		if i, ok := index[strings.TrimSpace(column)]; ok {
			return i
		}
		missing = append(missing, column)
		return -1
	}

	cm.date = lookup(cfg.DateColumn)
	cm.amount = lookup(cfg.AmountColumn)
	if i := lookup(cfg.DescriptionColumn); i >= 0 {
		cm.description = append(cm.description, i)
	}
	if cfg.SenderReceiverColumn != "" {
		if i, ok := index[strings.TrimSpace(cfg.SenderReceiverColumn)]; ok {
			cm.sender = i
		} else {
			missing = append(missing, cfg.SenderReceiverColumn)
		}
	}

	if len(missing) > 0 {
		return columnMap{}, &parsererror.MappingError{File: file, Missing: missing, Headers: headers}
	}
	return cm, nil
}

// buildDescription concatenates the non-empty description-like values with a
// visible separator, preserving source column order.
func buildDescription(record []string, columns []int) string {
	var parts []string
	for _, i := range columns {
		if i >= len(record) {
			continue
		}
		if value := models.NormalizeDescription(record[i]); value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, " | ")
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func matchesAny(normalized string, candidates []string) bool {
	for _, candidate := range candidates {
		if strings.Contains(normalized, candidate) {
			return true
		}
	}
	return false
}
