// Package logging configures the process-wide slog logger, optionally
// writing to a rotated log file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging configuration.
type Config struct {
	Level      string    // debug, info, warn, error
	FilePath   string    // empty logs to Stderr
	Stderr     io.Writer // defaults to os.Stderr
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultConfig returns the defaults used by the CLI.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// Setup builds a text logger from cfg and installs it as the slog default.
// The returned cleanup closes the log file, if any.
func Setup(cfg Config) (*slog.Logger, func() error, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	writer := cfg.Stderr
	if writer == nil {
		writer = os.Stderr
	}
	cleanup := func() error { return nil }

	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, nil, err
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		}
		writer = lj
		cleanup = lj.Close
	}

	logger := slog.New(slog.NewTextHandler(writer, opts))
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

// ParseLevel maps a level name to a slog.Level; unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
