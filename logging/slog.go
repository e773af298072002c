package logging

import (
	"io"
	"log/slog"
	"os"
)

// SlogLogger implements Logger on top of *slog.Logger.
type SlogLogger struct {
	*slog.Logger
}

// NewSlogLogger wraps an existing slog logger.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{Logger: l}
}

func (s *SlogLogger) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

func (s *SlogLogger) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

func (s *SlogLogger) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

func (s *SlogLogger) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// LoggerConfig configures NewLogger.
type LoggerConfig struct {
	Level LogLevel

	// Format is "json" (default) or "text".
	Format string

	// Output defaults to stderr.
	Output io.Writer

	AddSource bool

	// Component, when set, is attached to every entry.
	Component string
}

// NewLogger builds a slog backed Logger. A nil config logs JSON at info
// level to stderr.
func NewLogger(cfg *LoggerConfig) Logger {
	if cfg == nil {
		cfg = &LoggerConfig{}
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: slog.Level(cfg.Level), AddSource: cfg.AddSource}

	var handler slog.Handler = slog.NewJSONHandler(out, opts)
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	}

	l := slog.New(handler)
	if cfg.Component != "" {
		l = l.With(slog.String("component", cfg.Component))
	}

	return NewSlogLogger(l)
}
