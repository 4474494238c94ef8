// Package log provides JSON-lines structured logging for winnow.
// Logs always go to stderr: stdout carries the framed editor protocol and
// must never be polluted.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: os.Stderr)
	Output io.Writer

	// Level is the minimum log level (default: LevelInfo)
	Level slog.Level

	// Debug enables debug level logging (overrides Level)
	Debug bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: os.Stderr,
		Level:  slog.LevelInfo,
	}
}

// New creates a new JSON-lines structured logger. Timestamps are emitted
// under the "ts" key.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level := cfg.Level
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}

	return slog.New(slog.NewJSONHandler(output, opts))
}

// NewFromEnv creates a logger configured from environment variables.
// WINNOW_DEBUG=1 enables debug logging.
func NewFromEnv() *slog.Logger {
	cfg := DefaultConfig()
	if os.Getenv("WINNOW_DEBUG") == "1" {
		cfg.Debug = true
	}
	return New(cfg)
}
