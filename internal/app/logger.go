// Package app holds the process bootstrap shared by cmd/api: logger
// construction and store opening. No business logic belongs here.
package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/pkordes/slot-scheduler/internal/config"
)

// NewLogger builds the process logger.
// JSON output is meant for log aggregators. Text output is for humans, and
// "auto" picks it only when w is an interactive terminal.
func NewLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if useText(w, format) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func useText(w io.Writer, format string) bool {
	switch format {
	case config.LogFormatText:
		return true
	case config.LogFormatJSON:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
