package ixcoll

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ixcoll/schema"
)

func TestQueryDispatch(t *testing.T) {
	c := newItems(t, []Index[int, item]{scoreSum(), nameContains()})
	c.Add(item{ID: 1, Name: "a", Category: "x", Score: 4})
	c.Add(item{ID: 2, Name: "b", Category: "x", Score: 6})

	t.Run("Single", func(t *testing.T) {
		got, err := c.Query("name", "b")
		require.NoError(t, err)
		assert.Equal(t, 2, got.(item).ID)

		got, err = c.Query("name", "zz")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Multi", func(t *testing.T) {
		got, err := c.Query("category", "x")
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, ids(got.([]item)))
	})

	t.Run("Derived", func(t *testing.T) {
		got, err := c.Query("sum", "ignored")
		require.NoError(t, err)
		assert.Equal(t, 10, got)
	})

	t.Run("Dynamic", func(t *testing.T) {
		got, err := c.Query("contains", "a")
		require.NoError(t, err)
		assert.Equal(t, []int{1}, ids(got.([]item)))
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := c.Query("nope", nil)
		var ue *UnknownIndexError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, "nope", ue.Index)
	})
}

func TestGetIndex(t *testing.T) {
	c := newItems(t, []Index[int, item]{scoreSum()})

	_, err := c.GetIndex("nope")
	assert.ErrorIs(t, err, ErrUnknownIndex)

	_, err = c.GetIndex("sum")
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestValidation(t *testing.T) {
	var got []Diagnostic
	handler := func(_ context.Context, d Diagnostic) { got = append(got, d) }

	name := byName().WithInput(schema.Type(schema.FieldString)).
		WithOutput(schema.Func(func(v any) error {
			if v.(item).Score < 0 {
				return assert.AnError
			}
			return nil
		}))
	tags := byTag().WithInput(schema.Var("min=3"))

	newValidated := func(t *testing.T, enabled bool) *Collection[int, item] {
		c, err := New(itemID, []Index[int, item]{name, byCategory(), tags},
			WithValidation(enabled), WithDiagnosticHandler(handler))
		require.NoError(t, err)
		c.Add(item{ID: 1, Name: "neg", Score: -1, Tags: []string{"go"}})
		return c
	}

	t.Run("ReportsAndStillAnswers", func(t *testing.T) {
		got = nil
		c := newValidated(t, true)

		r, ok, err := c.ByOptional("name", "neg")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 1, r.ID)

		_, _, _ = c.ByOptional("name", 7)
		xs, err := c.Where("tags", "go")
		require.NoError(t, err)
		assert.Len(t, xs, 1)

		require.Len(t, got, 3)
		assert.Equal(t, "output", got[0].Stage)
		assert.Equal(t, "by_optional", got[0].Op)
		assert.Equal(t, "input", got[1].Stage)
		assert.Equal(t, 7, got[1].Value)
		assert.Equal(t, "tags", got[2].Index)
		assert.Equal(t, KindMulti, got[2].Kind)
	})

	t.Run("Disabled", func(t *testing.T) {
		got = nil
		c := newValidated(t, false)

		_, _, _ = c.ByOptional("name", "neg")
		_, _ = c.Where("tags", "go")
		assert.Empty(t, got)
	})

	t.Run("KindMismatchStaysFatal", func(t *testing.T) {
		c := newValidated(t, false)

		_, err := c.Where("name", "neg")
		assert.ErrorIs(t, err, ErrKindMismatch)
	})
}

func TestDiagnosticLogRateLimit(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mc := &BasicMetricsCollector{}

	idx := byName().WithInput(schema.Type(schema.FieldString))
	c, err := New(itemID, []Index[int, item]{idx},
		WithValidation(true),
		WithLogger(logger),
		WithMetricsCollector(mc),
		WithDiagnosticRate(0.0001, 2),
	)
	require.NoError(t, err)

	for i := range 5 {
		_, _, _ = c.ByOptional("name", i)
	}

	assert.Equal(t, 2, strings.Count(buf.String(), "schema validation failed"))
	assert.Equal(t, int64(5), mc.GetStats().Diagnostics)
}
