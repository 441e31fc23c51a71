// Package logger builds the application's structured slog loggers.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/civicprep/civicprep/internal/config"
)

// ParseLevel maps a configured level name to a slog level. Unknown names
// fall back to info and report false.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// New returns a logger writing to w. format is "json" or "text"; an empty
// cfg.Format uses fallbackFormat.
func New(w io.Writer, cfg config.LogConfig, fallbackFormat string) *slog.Logger {
	level, ok := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	format := cfg.Format
	if format == "" {
		format = fallbackFormat
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	l := slog.New(handler)
	if !ok {
		l.Warn("invalid log level configured, using default level",
			"configured_level", cfg.Level,
			"default_level", "info")
	}
	return l
}

// Setup builds a logger on stderr and makes it the slog default.
func Setup(cfg config.LogConfig, fallbackFormat string) *slog.Logger {
	l := New(os.Stderr, cfg, fallbackFormat)
	slog.SetDefault(l)
	return l
}

// SetupFile logs to a file in dir, used while the terminal UI owns the
// screen. The returned closer flushes and closes the file.
func SetupFile(dir string, cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "civicprep.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	l := New(f, cfg, "text")
	slog.SetDefault(l)
	return l, f, nil
}
