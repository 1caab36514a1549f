package logger

import corelogger "github.com/flightops/rotables/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// New returns a Logger for the given component. Output format follows
// RT_ENV and verbosity RT_LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}
