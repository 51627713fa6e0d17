package logger

import (
	"io"
	"log/slog"
)

// New returns the process logger: JSON lines in production, the pretty
// handler everywhere else.
func New(w io.Writer, production bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if production {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(NewPrettyHandler(w, opts))
}
