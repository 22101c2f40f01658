// Package parsererror defines the typed errors produced by the import
// pipeline. ParseError is row-scoped, MappingError is file-scoped. A
// classification conflict is not an error and has no type here.
package parsererror

import (
	"fmt"
	"strings"
)

// ParseError reports that a single raw value could not be converted.
type ParseError struct {
	Field string // canonical field name, e.g. "amount"
	Value string // the offending raw value
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MappingError reports that required canonical columns could not be resolved
// from a file's headers. The file is never partially imported.
type MappingError struct {
	File    string
	Missing []string // canonical fields that could not be mapped
	Headers []string // headers actually found in the file
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("could not map columns %s in %s, headers found: [%s]",
		strings.Join(e.Missing, ", "), e.File, strings.Join(e.Headers, ", "))
}

// RowError wraps a row-level failure with its 1-indexed row number. It is
// returned in strict mapped mode, where a bad row aborts the whole file.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
