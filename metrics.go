package ixcoll

import (
	"sync/atomic"
	"time"
)

// MaintenanceMode describes how an index absorbed one store mutation.
type MaintenanceMode uint8

const (
	// MaintenanceIncremental means hooks or the index's own structure
	// absorbed the change without recomputation.
	MaintenanceIncremental MaintenanceMode = iota
	// MaintenanceRecompute means the index was recomputed from the store.
	MaintenanceRecompute
	// MaintenanceSkipped means a Matches predicate ruled the record out.
	MaintenanceSkipped
	// MaintenanceRescan means a single-value index scanned the store to
	// recover the winner of a vacated key.
	MaintenanceRescan
)

// String returns the label used in logs and metrics.
func (m MaintenanceMode) String() string {
	switch m {
	case MaintenanceIncremental:
		return "incremental"
	case MaintenanceRecompute:
		return "recompute"
	case MaintenanceSkipped:
		return "skipped"
	case MaintenanceRescan:
		return "rescan"
	default:
		return "unknown"
	}
}

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package prom
// provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordMutation is called after each public mutating call.
	// affected is the number of records added, updated, removed or moved.
	RecordMutation(op string, affected int, duration time.Duration)

	// RecordMaintenance is called whenever an index absorbs a mutation in a
	// way worth distinguishing (see MaintenanceMode).
	RecordMaintenance(index string, kind Kind, mode MaintenanceMode)

	// RecordQuery is called after each façade read.
	RecordQuery(index string, kind Kind, duration time.Duration, err error)

	// RecordDiagnostic is called for every schema violation, including the
	// ones suppressed from the log.
	RecordDiagnostic(index string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordMutation(string, int, time.Duration)       {}
func (NoopMetricsCollector) RecordMaintenance(string, Kind, MaintenanceMode) {}
func (NoopMetricsCollector) RecordQuery(string, Kind, time.Duration, error)  {}
func (NoopMetricsCollector) RecordDiagnostic(string)                         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and tests without external dependencies.
type BasicMetricsCollector struct {
	MutationCount      atomic.Int64
	MutationRecords    atomic.Int64
	MutationTotalNanos atomic.Int64
	IncrementalCount   atomic.Int64
	RecomputeCount     atomic.Int64
	SkippedCount       atomic.Int64
	RescanCount        atomic.Int64
	QueryCount         atomic.Int64
	QueryErrors        atomic.Int64
	QueryTotalNanos    atomic.Int64
	DiagnosticCount    atomic.Int64
}

// RecordMutation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMutation(_ string, affected int, duration time.Duration) {
	b.MutationCount.Add(1)
	b.MutationRecords.Add(int64(affected))
	b.MutationTotalNanos.Add(duration.Nanoseconds())
}

// RecordMaintenance implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMaintenance(_ string, _ Kind, mode MaintenanceMode) {
	switch mode {
	case MaintenanceIncremental:
		b.IncrementalCount.Add(1)
	case MaintenanceRecompute:
		b.RecomputeCount.Add(1)
	case MaintenanceSkipped:
		b.SkippedCount.Add(1)
	case MaintenanceRescan:
		b.RescanCount.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_ string, _ Kind, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordDiagnostic implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDiagnostic(string) {
	b.DiagnosticCount.Add(1)
}

// MetricsStats is a point-in-time copy of BasicMetricsCollector counters.
type MetricsStats struct {
	Mutations      int64
	MutatedRecords int64
	Incremental    int64
	Recomputes     int64
	Skipped        int64
	Rescans        int64
	Queries        int64
	QueryErrors    int64
	QueryAvgNanos  int64
	Diagnostics    int64
}

// GetStats returns a snapshot of the collected counters.
func (b *BasicMetricsCollector) GetStats() MetricsStats {
	s := MetricsStats{
		Mutations:      b.MutationCount.Load(),
		MutatedRecords: b.MutationRecords.Load(),
		Incremental:    b.IncrementalCount.Load(),
		Recomputes:     b.RecomputeCount.Load(),
		Skipped:        b.SkippedCount.Load(),
		Rescans:        b.RescanCount.Load(),
		Queries:        b.QueryCount.Load(),
		QueryErrors:    b.QueryErrors.Load(),
		Diagnostics:    b.DiagnosticCount.Load(),
	}
	if s.Queries > 0 {
		s.QueryAvgNanos = b.QueryTotalNanos.Load() / s.Queries
	}
	return s
}
