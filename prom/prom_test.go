package prom

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ixcoll"
)

type doc struct {
	ID   int
	Tag  string
	Size int
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	mc := New(reg)

	mc.RecordMutation("add", 1, time.Millisecond)
	mc.RecordMutation("add_many", 3, time.Millisecond)
	mc.RecordMaintenance("total", ixcoll.KindDerived, ixcoll.MaintenanceRecompute)
	mc.RecordQuery("tag", ixcoll.KindMulti, time.Microsecond, nil)
	mc.RecordQuery("tag", ixcoll.KindMulti, time.Microsecond, errors.New("boom"))
	mc.RecordDiagnostic("tag")

	assert.Equal(t, 1.0, testutil.ToFloat64(mc.mutations.WithLabelValues("add")))
	assert.Equal(t, 3.0, testutil.ToFloat64(mc.affected.WithLabelValues("add_many")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.maintenance.WithLabelValues("total", "derived", "recompute")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.queries.WithLabelValues("tag", "multi", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.diagnostics.WithLabelValues("tag")))

	expected := `
# HELP ixcoll_queries_total Index reads by index and status.
# TYPE ixcoll_queries_total counter
ixcoll_queries_total{index="tag",kind="multi",status="error"} 1
ixcoll_queries_total{index="tag",kind="multi",status="success"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ixcoll_queries_total"))
}

func TestCollectorWithCollection(t *testing.T) {
	reg := prometheus.NewRegistry()
	mc := New(reg, func(o *Options) {
		o.ConstLabels = prometheus.Labels{"collection": "docs"}
	})

	total := ixcoll.Derived[int]("total", func(v ixcoll.View[int, doc]) int {
		n := 0
		for d := range v.All() {
			n += d.Size
		}
		return n
	})
	c, err := ixcoll.New(func(d doc) int { return d.ID }, []ixcoll.Index[int, doc]{
		ixcoll.MultiOf[int]("tag", func(d doc) (string, bool) { return d.Tag, true }),
		total,
	}, ixcoll.WithMetricsCollector(mc))
	require.NoError(t, err)

	c.Add(doc{ID: 1, Tag: "a", Size: 2})
	c.Add(doc{ID: 2, Tag: "a", Size: 3})
	_, err = c.Where("tag", "a")
	require.NoError(t, err)
	_, err = c.Where("total", "a")
	require.ErrorIs(t, err, ixcoll.ErrKindMismatch)

	assert.Equal(t, 2.0, testutil.ToFloat64(mc.mutations.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.queries.WithLabelValues("tag", "multi", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.queries.WithLabelValues("total", "multi", "error")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(mc.maintenance.WithLabelValues("total", "derived", "recompute")), 2.0)

	n, err := testutil.GatherAndCount(reg, "ixcoll_mutations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
