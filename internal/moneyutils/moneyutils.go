// Package moneyutils parses raw amount strings from bank exports into
// decimal values, handling European and US number formats.
package moneyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fabian-plaehn/financeanalyzer/internal/parsererror"
)

// Format declares the separators a bank uses in its amount column.
type Format struct {
	DecimalSeparator   string
	ThousandsSeparator string
}

// GermanFormat is the common European banking format: "1.234,56".
var GermanFormat = Format{DecimalSeparator: ",", ThousandsSeparator: "."}

// USFormat is the US format: "1,234.56".
var USFormat = Format{DecimalSeparator: ".", ThousandsSeparator: ","}

// currencyRunes matches currency symbols, currency codes and whitespace that
// may surround a raw amount.
var currencyRunes = regexp.MustCompile(`[€$£¥\s]|EUR|USD|CHF|GBP`)

// Parse converts a raw amount string with a known Format into a decimal.
// There are no partial results: either a valid value or a ParseError naming
// the raw input.
func Parse(raw string, f Format) (decimal.Decimal, error) {
	cleaned := stripCurrency(raw)
	if cleaned == "" {
		return decimal.Zero, &parsererror.ParseError{
			Field: "amount", Value: raw, Err: fmt.Errorf("empty value"),
		}
	}

	if f.ThousandsSeparator != "" {
		cleaned = strings.ReplaceAll(cleaned, f.ThousandsSeparator, "")
	}
	if f.DecimalSeparator != "" && f.DecimalSeparator != "." {
		cleaned = strings.ReplaceAll(cleaned, f.DecimalSeparator, ".")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, &parsererror.ParseError{Field: "amount", Value: raw, Err: err}
	}
	return amount, nil
}

// ParseAuto converts a raw amount string without knowing the bank's format.
// When both "." and "," appear, whichever occurs last is the decimal
// separator and the other is thousands grouping. A lone comma is always
// treated as the decimal separator, matching European banking convention;
// this is a deliberate simplification for ambiguous inputs like "1,234".
func ParseAuto(raw string) (decimal.Decimal, error) {
	cleaned := stripCurrency(raw)
	if cleaned == "" {
		return decimal.Zero, &parsererror.ParseError{
			Field: "amount", Value: raw, Err: fmt.Errorf("empty value"),
		}
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			// European: 1.234,56
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			// US: 1,234.56
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasComma:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	// Apostrophes show up as Swiss thousands grouping: 1'234.56
	cleaned = strings.ReplaceAll(cleaned, "'", "")

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, &parsererror.ParseError{Field: "amount", Value: raw, Err: err}
	}
	return amount, nil
}

func stripCurrency(raw string) string {
	return strings.TrimSpace(currencyRunes.ReplaceAllString(raw, ""))
}
