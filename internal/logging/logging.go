// Package logging builds the structured loggers used by both binaries.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Component names attached to loggers with For.
const (
	ComponentApp   = "app"
	ComponentHTTP  = "http"
	ComponentShell = "shell"
	ComponentStore = "store"
	ComponentFeed  = "feed"
	ComponentTUI   = "tui"
)

// New returns a JSON logger writing to w at the level named by level
// (debug, info, warn, error). Unknown levels fall back to info.
func New(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel converts a LOG_LEVEL value into a slog.Level.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// For returns log tagged with the given component.
func For(log *slog.Logger, component string) *slog.Logger {
	return log.With("component", component)
}
