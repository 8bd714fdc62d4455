// Package prom exports collection metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	c, err := ixcoll.New(idOf, indexes, ixcoll.WithMetricsCollector(prom.New(reg)))
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/ixcoll"
)

// Namespace prefixes every metric name.
const Namespace = "ixcoll"

// Collector implements ixcoll.MetricsCollector on top of Prometheus vectors.
type Collector struct {
	mutations    *prometheus.CounterVec
	affected     *prometheus.CounterVec
	mutationTime *prometheus.HistogramVec
	maintenance  *prometheus.CounterVec
	queries      *prometheus.CounterVec
	queryTime    *prometheus.HistogramVec
	diagnostics  *prometheus.CounterVec
}

var _ ixcoll.MetricsCollector = (*Collector)(nil)

// Options configures a Collector.
type Options struct {
	// ConstLabels are attached to every metric, e.g. a collection name when
	// several collections share one registry.
	ConstLabels prometheus.Labels
	// Buckets for the latency histograms. Defaults to prometheus.DefBuckets.
	Buckets []float64
}

// New creates a collector and registers its metrics with reg.
// A nil reg selects prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, optFns ...func(o *Options)) *Collector {
	opts := Options{Buckets: prometheus.DefBuckets}
	for _, fn := range optFns {
		fn(&opts)
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Name:        "mutations_total",
			Help:        "Public mutating calls by operation.",
			ConstLabels: opts.ConstLabels,
		}, []string{"op"}),
		affected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Name:        "records_affected_total",
			Help:        "Records added, updated, removed or moved by operation.",
			ConstLabels: opts.ConstLabels,
		}, []string{"op"}),
		mutationTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   Namespace,
			Name:        "mutation_duration_seconds",
			Help:        "Latency of mutating calls including index maintenance.",
			Buckets:     opts.Buckets,
			ConstLabels: opts.ConstLabels,
		}, []string{"op"}),
		maintenance: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Name:        "index_maintenance_total",
			Help:        "Index maintenance events by index and mode.",
			ConstLabels: opts.ConstLabels,
		}, []string{"index", "kind", "mode"}),
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Name:        "queries_total",
			Help:        "Index reads by index and status.",
			ConstLabels: opts.ConstLabels,
		}, []string{"index", "kind", "status"}),
		queryTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   Namespace,
			Name:        "query_duration_seconds",
			Help:        "Latency of index reads.",
			Buckets:     opts.Buckets,
			ConstLabels: opts.ConstLabels,
		}, []string{"index", "kind"}),
		diagnostics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Name:        "diagnostics_total",
			Help:        "Schema violations observed on reads.",
			ConstLabels: opts.ConstLabels,
		}, []string{"index"}),
	}
}

// RecordMutation implements ixcoll.MetricsCollector.
func (c *Collector) RecordMutation(op string, affected int, duration time.Duration) {
	c.mutations.WithLabelValues(op).Inc()
	c.affected.WithLabelValues(op).Add(float64(affected))
	c.mutationTime.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordMaintenance implements ixcoll.MetricsCollector.
func (c *Collector) RecordMaintenance(index string, kind ixcoll.Kind, mode ixcoll.MaintenanceMode) {
	c.maintenance.WithLabelValues(index, kind.String(), mode.String()).Inc()
}

// RecordQuery implements ixcoll.MetricsCollector.
func (c *Collector) RecordQuery(index string, kind ixcoll.Kind, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.queries.WithLabelValues(index, kind.String(), status).Inc()
	c.queryTime.WithLabelValues(index, kind.String()).Observe(duration.Seconds())
}

// RecordDiagnostic implements ixcoll.MetricsCollector.
func (c *Collector) RecordDiagnostic(index string) {
	c.diagnostics.WithLabelValues(index).Inc()
}
