package ixcoll

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with ixcoll-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithIndex adds an index field to the logger.
func (l *Logger) WithIndex(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("index", name),
	}
}

// LogMutation logs a mutating call and the number of records it affected.
func (l *Logger) LogMutation(ctx context.Context, op string, affected, size int) {
	l.DebugContext(ctx, "mutation applied",
		"op", op,
		"affected", affected,
		"size", size,
	)
}

// LogRebuild logs a full rebuild of derived and dynamic indexes.
func (l *Logger) LogRebuild(ctx context.Context, indexes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "rebuild failed",
			"indexes", indexes,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "rebuild completed",
			"indexes", indexes,
		)
	}
}

// LogDiagnostic logs a schema violation. suppressed is the number of earlier
// diagnostics dropped by rate limiting.
func (l *Logger) LogDiagnostic(ctx context.Context, d Diagnostic, suppressed int) {
	attrs := []any{
		"index", d.Index,
		"kind", d.Kind.String(),
		"op", d.Op,
		"stage", d.Stage,
		"error", d.Err,
	}
	if suppressed > 0 {
		attrs = append(attrs, "suppressed", suppressed)
	}
	l.WarnContext(ctx, "schema validation failed", attrs...)
}
