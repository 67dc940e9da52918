// Package logging wraps slog with the one piece of shared shape the
// processor and generator both need: a logger that carries run_id on
// every record once a RunContext attaches it.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Level aliases for slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger wraps slog.Logger with Delta's configuration.
type Logger struct {
	*slog.Logger
}

// WithRunID returns a logger that attaches run_id to every record it emits.
// runcontext.New calls this once at startup; nothing downstream needs to
// thread run_id through by hand.
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{Logger: l.With(slog.String("run_id", runID))}
}

// Config selects the logger's level, destination, and whether it is active.
type Config struct {
	Level   slog.Level
	Output  io.Writer
	Enabled bool
}

// DefaultConfig logs at info level to stderr.
func DefaultConfig() Config {
	return Config{
		Level:   LevelInfo,
		Output:  os.Stderr,
		Enabled: true,
	}
}

// New builds a Logger from cfg. A disabled Config yields a Logger that
// discards every record rather than a nil value, so callers never need a
// nil check before logging.
func New(cfg Config) *Logger {
	if !cfg.Enabled {
		return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: cfg.Level})
	return &Logger{Logger: slog.New(handler)}
}
