package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// SlogLevel parses the configured level. An empty level is info.
func (l Log) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return 0, fmt.Errorf("config: log.level: %w", err)
	}
	return lvl, nil
}

// Logger returns a logger writing to w in the configured format.
func (l Log) Logger(w io.Writer) *slog.Logger {
	lvl, err := l.SlogLevel()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
