package logging

// NopLogger discards all log output. Useful in tests.
type NopLogger struct{}

// NewNopLogger returns a Logger that does nothing.
func NewNopLogger() Logger { return NopLogger{} }

func (NopLogger) Debug(string, ...Field)                 {}
func (NopLogger) Info(string, ...Field)                  {}
func (NopLogger) Warn(string, ...Field)                  {}
func (NopLogger) Error(string, ...Field)                 {}
func (n NopLogger) WithError(error) Logger               { return n }
func (n NopLogger) WithField(string, interface{}) Logger { return n }
func (n NopLogger) WithFields(...Field) Logger           { return n }
