package kvengine

import (
	"context"
	"errors"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with kvengine-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithKey adds a key field to the logger.
func (l *Logger) WithKey(key string) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// LogOp logs a storage operation routed through the executor.
// Admission rejections are warnings, other errors are errors.
func (l *Logger) LogOp(ctx context.Context, op string, key string, ok bool, err error) {
	kl := l.WithKey(key)
	switch {
	case err == nil:
		kl.DebugContext(ctx, op+" completed", "ok", ok)
	case errors.Is(err, ErrBusy):
		kl.WarnContext(ctx, op+" rejected", "error", err)
	default:
		kl.ErrorContext(ctx, op+" failed", "error", err)
	}
}

// LogStart logs engine construction.
func (l *Logger) LogStart(ctx context.Context, capacity, stripes, lowWatermark, highWatermark int) {
	l.InfoContext(ctx, "engine started",
		"capacity", capacity,
		"stripes", stripes,
		"low_watermark", lowWatermark,
		"high_watermark", highWatermark,
	)
}

// LogClose logs engine shutdown.
func (l *Logger) LogClose(ctx context.Context, executed uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "engine close failed",
			"executed", executed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "engine closed",
			"executed", executed,
		)
	}
}
