// Package log provides structured logging for statnotes analyses.
//
// The package defines a minimal, slog-compatible Logger interface so that
// library code stays backend-agnostic, plus two implementations: a JSON
// slog setup that extracts cockroachdb/errors stack traces, and a
// zerolog-backed console logger used by the post programs. Standard
// attribute keys keep fit/predict/resample logging consistent across
// packages.
package log

import (
	"context"
)

// Logger is a structured logging interface compatible with log/slog.
// Fields are alternating key/value pairs, as in slog.
type Logger interface {
	// Debug logs detailed diagnostic information.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	Info(msg string, fields ...any)

	// Warn logs potentially problematic conditions that do not stop the run.
	Warn(msg string, fields ...any)

	// Error logs error conditions. If a field value is an error carrying a
	// cockroachdb/errors stack trace, implementations may attach it.
	Error(msg string, fields ...any)

	// With returns a Logger with the given fields pre-populated on every
	// subsequent message.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level; values match slog.Level.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
