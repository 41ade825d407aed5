package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/mickey-water/billing/internal/config"
)

// newLogger builds the process logger from the advanced config section.
// Unknown levels fall back to info.
func newLogger(w io.Writer, cfg config.AdvancedConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
