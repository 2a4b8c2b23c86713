// Package logging builds the slog loggers used for traversal traces.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// levelSilent sits above every standard level.
const levelSilent = slog.Level(100)

// NewLogger creates a text logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewDiscardLogger creates a logger that discards all output.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: levelSilent}))
}

// LevelFromVerbosity converts the CLI verbosity count to a slog.Level.
//   - silent=true: suppresses all logs
//   - verbosity<=1: warn
//   - verbosity>=2: debug (traversal traces)
func LevelFromVerbosity(verbosity int, silent bool) slog.Level {
	if silent {
		return levelSilent
	}
	if verbosity >= 2 {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// LevelFromString converts a level name to a slog.Level.
// Supports: quiet, debug, info, warn, error (case-insensitive).
// Returns slog.LevelWarn for unrecognized strings.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "quiet", "silent":
		return levelSilent
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
