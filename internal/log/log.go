package log

import "sync/atomic"

var defaultLogger atomic.Pointer[Logger]

// SetDefaultLogger sets the logger used by the package level functions.  Passing nil silences them.
func SetDefaultLogger(logger *Logger) {
	defaultLogger.Store(logger)
}

// DefaultLogger returns the current default logger, which may be nil
func DefaultLogger() *Logger {
	return defaultLogger.Load()
}

// withDefault runs fn against the default logger.  Nothing is logged before SetDefaultLogger is called.
func withDefault(fn func(*Logger)) {
	if logger := defaultLogger.Load(); logger != nil {
		fn(logger)
	}
}

func Debug(msg string, args ...any) { withDefault(func(l *Logger) { l.Debug(msg, args...) }) }
func Info(msg string, args ...any)  { withDefault(func(l *Logger) { l.Info(msg, args...) }) }
func Warn(msg string, args ...any)  { withDefault(func(l *Logger) { l.Warn(msg, args...) }) }
func Error(msg string, args ...any) { withDefault(func(l *Logger) { l.Error(msg, args...) }) }

// Trace logs through the default logger's Trace
func Trace(msg string, args ...any) { withDefault(func(l *Logger) { l.Trace(msg, args...) }) }
