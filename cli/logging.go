package cli

import (
	"io"
	"log/slog"
)

// NewLogger returns a text logger writing records at or above level to w.
func NewLogger(level slog.Level, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
