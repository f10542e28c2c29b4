// Package logging builds the structured loggers used by the knobslice binaries.
package logging

import (
	"io"
	"log/slog"
)

// Level maps a normalized LOG_LEVEL name onto a slog level. Unknown names map to info.
func Level(name string) slog.Level {
	switch name {
	case "error":
		return slog.LevelError
	case "warn":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// New creates a text logger writing to w at the named level.
func New(w io.Writer, level string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: Level(level)})
	return slog.New(handler)
}
