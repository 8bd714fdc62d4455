package ixcoll

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Diagnostic describes a query argument or result that failed its declared
// schema. Diagnostics never stop a query.
type Diagnostic struct {
	Index string
	Kind  Kind
	Op    string
	// Stage is "input" for the query argument and "output" for the result.
	Stage string
	Value any
	Err   error
}

// DiagnosticHandler receives schema violations when validation is enabled.
type DiagnosticHandler func(ctx context.Context, d Diagnostic)

// logDiagnostics is the default handler. It writes through the collection
// logger and drops entries beyond the configured rate, reporting the number
// dropped with the next entry it writes.
type logDiagnostics struct {
	logger  *Logger
	limiter *rate.Limiter

	mu         sync.Mutex
	suppressed int
}

func newLogDiagnostics(logger *Logger, limit rate.Limit, burst int) *logDiagnostics {
	return &logDiagnostics{
		logger:  logger,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (l *logDiagnostics) handle(ctx context.Context, d Diagnostic) {
	l.mu.Lock()
	if !l.limiter.Allow() {
		l.suppressed++
		l.mu.Unlock()
		return
	}
	suppressed := l.suppressed
	l.suppressed = 0
	l.mu.Unlock()

	l.logger.LogDiagnostic(ctx, d, suppressed)
}
