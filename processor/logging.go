package processor

import "log"

// Logger is the diagnostic output capability injected into the pipeline.
// Logging is advisory only and never alters control flow.
type Logger interface {
	Printf(format string, args ...any)
}

// NopLogger discards all output. Selected when logs are suppressed.
type NopLogger struct{}

// Printf implements Logger.
func (NopLogger) Printf(string, ...any) {}

type stdLogger struct{}

func (stdLogger) Printf(format string, args ...any) {
	log.Printf(format, args...)
}

// NewStdLogger returns a Logger backed by the standard library logger.
func NewStdLogger() Logger { return stdLogger{} }
