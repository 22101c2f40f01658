// Package dateutils parses raw date strings from bank exports. Configured
// formats may be Go layouts or strptime directives; auto-detection prefers
// day-first interpretations, which dominate European bank statements.
package dateutils

import (
	"fmt"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/fabian-plaehn/financeanalyzer/internal/models"
	"github.com/fabian-plaehn/financeanalyzer/internal/parsererror"
)

// Layout constants used across the application.
const (
	LayoutISO      = "2006-01-02"
	LayoutEuropean = "02.01.2006"
)

// dayFirstLayouts is the ladder tried in auto-detect mode, day-first formats
// before anything ambiguous.
var dayFirstLayouts = []string{
	LayoutEuropean, // 14.12.2025
	"2.1.2006",     // 14.12.2025 without zero padding
	"02/01/2006",   // 14/12/2025
	"02-01-2006",   // 14-12-2025
	LayoutISO,      // 2025-12-14
	"2006-01-02 15:04:05",
	"01/02/2006", // US, last resort
}

// Layout converts a configured date format into a Go time layout. Formats
// containing '%' are interpreted as strptime directives ("%d.%m.%Y");
// anything else is assumed to already be a Go layout.
func Layout(format string) (string, error) {
	if !strings.Contains(format, "%") {
		return format, nil
	}
	layout, err := strftime.Layout(format)
	if err != nil {
		return "", fmt.Errorf("unsupported date format %q: %w", format, err)
	}
	return layout, nil
}

// Parse converts a raw date string using the configured format. The result
// is truncated to the calendar day in UTC.
func Parse(raw, format string) (time.Time, error) {
	layout, err := Layout(format)
	if err != nil {
		return time.Time{}, &parsererror.ParseError{Field: "date", Value: raw, Err: err}
	}

	t, err := time.Parse(layout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, &parsererror.ParseError{Field: "date", Value: raw, Err: err}
	}
	return models.TruncateToDay(t), nil
}

// ParseAuto converts a raw date string without a configured format, trying
// day-first layouts before US ordering for ambiguous inputs.
func ParseAuto(raw string) (time.Time, error) {
	cleaned := strings.TrimSpace(raw)
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return models.TruncateToDay(t), nil
		}
	}
	return time.Time{}, &parsererror.ParseError{
		Field: "date", Value: raw, Err: fmt.Errorf("no known date layout matched"),
	}
}
