package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/renalcare/internal/config"
)

// NewLogger creates a *slog.Logger writing to w and sets it as the default.
//
// Format "json" produces JSON lines; anything else produces text. Verbose
// forces debug level regardless of the configured level.
func NewLogger(cfg config.LogConfig, w io.Writer, verbose bool) *slog.Logger {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelWarn
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
