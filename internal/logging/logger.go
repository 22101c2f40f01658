// Package logging decouples the application from the underlying logging
// framework. Components receive a Logger through their constructors.
package logging

// Logger is the structured logging interface used throughout the application.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a logger with an error field attached.
	WithError(err error) Logger
	// WithField returns a logger with a single field attached.
	WithField(key string, value interface{}) Logger
	// WithFields returns a logger with multiple fields attached.
	WithFields(fields ...Field) Logger
}

// Field is a key-value pair attached to log messages.
type Field struct {
	Key   string
	Value interface{}
}

// Standardized field names so log output stays consistent and filterable.
const (
	FieldFile      = "file_path"
	FieldSource    = "source"
	FieldCategory  = "category"
	FieldRule      = "rule_id"
	FieldPattern   = "pattern"
	FieldBatch     = "batch_id"
	FieldCount     = "count"
	FieldRow       = "row"
	FieldDelimiter = "delimiter"
	FieldEncoding  = "encoding"
)
