package ixcoll

import (
	"log/slog"

	"golang.org/x/time/rate"
)

type options struct {
	logger             *Logger
	metricsCollector   MetricsCollector
	validation         bool
	diagnosticHandler  DiagnosticHandler
	diagnosticRate     rate.Limit
	diagnosticBurst    int
	rebuildConcurrency int
	pathCacheSize      int
}

// Option configures a Collection.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := ixcoll.NewJSONLogger(slog.LevelDebug)
//	c, _ := ixcoll.New(idOf, indexes, ixcoll.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithValidation enables checking query arguments and results against the
// Input and Output schemas of each index. Violations are reported to the
// diagnostic handler; queries still return their natural result.
func WithValidation(enabled bool) Option {
	return func(o *options) {
		o.validation = enabled
	}
}

// WithDiagnosticHandler replaces the default rate-limited log handler that
// receives schema violations. Pass nil to restore the default.
func WithDiagnosticHandler(h DiagnosticHandler) Option {
	return func(o *options) {
		o.diagnosticHandler = h
	}
}

// WithDiagnosticRate bounds how many diagnostics per second the default
// handler writes to the log. Dropped diagnostics are counted and reported
// with the next logged one. A limit <= 0 disables rate limiting.
func WithDiagnosticRate(limit float64, burst int) Option {
	return func(o *options) {
		if limit <= 0 {
			o.diagnosticRate = rate.Inf
		} else {
			o.diagnosticRate = rate.Limit(limit)
		}
		if burst < 1 {
			burst = 1
		}
		o.diagnosticBurst = burst
	}
}

// WithRebuildConcurrency bounds how many derived and dynamic indexes Rebuild
// recomputes in parallel. Values < 1 mean one at a time.
func WithRebuildConcurrency(n int) Option {
	return func(o *options) {
		o.rebuildConcurrency = n
	}
}

// WithPathCacheSize sets how many parsed path expressions Related keeps.
func WithPathCacheSize(n int) Option {
	return func(o *options) {
		o.pathCacheSize = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:             NoopLogger(),
		metricsCollector:   NoopMetricsCollector{},
		diagnosticRate:     rate.Limit(10),
		diagnosticBurst:    10,
		rebuildConcurrency: 1,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.rebuildConcurrency < 1 {
		o.rebuildConcurrency = 1
	}
	return o
}
