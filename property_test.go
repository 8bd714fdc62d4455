package ixcoll

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ixcoll/testutil"
)

func scriptedItem(op testutil.Op) item {
	return item{
		ID:       op.ID,
		Name:     fmt.Sprintf("k%d", op.Key),
		Category: fmt.Sprintf("c%d", op.Key%3),
		Tags:     []string{fmt.Sprintf("t%d", op.Key), "all"},
		Score:    op.Key * 7 % 11,
	}
}

// harness replays scripts against a collection and tracks when each record
// last entered it.
type harness struct {
	c     *Collection[int, item]
	seq   map[int]int
	clock int
}

func (h *harness) entered(id int) {
	h.clock++
	h.seq[id] = h.clock
}

func (h *harness) apply(t *testing.T, op testutil.Op) {
	t.Helper()
	switch op.Kind {
	case testutil.OpAdd:
		h.c.Add(scriptedItem(op))
		h.entered(op.ID)
	case testutil.OpAddFirst:
		h.c.AddFirst(scriptedItem(op))
		h.entered(op.ID)
	case testutil.OpInsert:
		_, err := h.c.InsertAt(scriptedItem(op), op.Pos)
		require.NoError(t, err)
		h.entered(op.ID)
	case testutil.OpUpdate:
		if _, ok := h.c.Update(scriptedItem(op)); ok {
			h.entered(op.ID)
		}
	case testutil.OpRemove:
		had := h.c.Has(op.ID)
		assert.Equal(t, had, h.c.Remove(op.ID))
		delete(h.seq, op.ID)
	case testutil.OpReorder:
		h.c.Reorder(op.From, op.To)
	case testutil.OpClear:
		h.c.Clear()
		clear(h.seq)
	}
}

// highScoreSum sums the scores above 2, maintained by hooks.
func highScoreSum() DerivedIndex[int, item, int] {
	high := func(it item) bool { return it.Score > 2 }
	return Derived[int]("sum", func(v View[int, item]) int {
		sum := 0
		for r := range v.All() {
			if high(r) {
				sum += r.Score
			}
		}
		return sum
	}).WithMatches(high).WithHooks(
		func(v *int, r item, _ View[int, item]) { *v += r.Score },
		func(v *int, r item, _ View[int, item]) { *v -= r.Score },
	)
}

func TestScriptedMutations(t *testing.T) {
	for _, seed := range []int64{1, 42, 4711} {
		t.Run(fmt.Sprint(seed), func(t *testing.T) {
			c := newItems(t, []Index[int, item]{
				TopN[int]("top", 4, byScoreDesc, func(it item) bool { return it.Category != "c0" }),
				CountBy[int]("per_category", func(it item) (string, bool) { return it.Category, true }),
				highScoreSum(),
				TextSearch[int]("search", func(it item) string { return it.Name }),
			})
			h := &harness{c: c, seq: make(map[int]int)}
			m := testutil.NewModel()

			cfg := testutil.DefaultScriptConfig()
			cfg.Steps = 300
			for i, op := range testutil.NewRNG(seed).Script(cfg) {
				h.apply(t, op)
				m.Apply(op)
				if !checkCollection(t, h, m) {
					t.Fatalf("step %d (%s) broke the collection", i, op.Kind)
				}
			}
		})
	}
}

func checkCollection(t *testing.T, h *harness, m *testutil.Model) bool {
	t.Helper()
	c := h.c
	ok := true

	ok = assert.True(t, c.store.Consistent(), "store order and id map diverged") && ok
	ok = assert.True(t, slices.Equal(m.IDs(), c.IDs()), "order %v, want %v", c.IDs(), m.IDs()) && ok

	records := c.Records()
	byKey := make(map[string][]item)
	byCat := make(map[string][]item)
	counts := make(map[string]int)
	sum := 0
	var ranked []item
	for _, r := range records {
		k, _ := m.Key(r.ID)
		ok = assert.Equal(t, fmt.Sprintf("k%d", k), r.Name) && ok
		byKey[r.Name] = append(byKey[r.Name], r)
		byCat[r.Category] = append(byCat[r.Category], r)
		counts[r.Category]++
		if r.Score > 2 {
			sum += r.Score
		}
		if r.Category != "c0" {
			ranked = append(ranked, r)
		}
	}

	// Single: a winner exists exactly for present keys and yields its key.
	for k := range 8 {
		key := fmt.Sprintf("k%d", k)
		r, found, err := c.ByOptional("name", key)
		require.NoError(t, err)
		ok = assert.Equal(t, len(byKey[key]) > 0, found, key) && ok
		if found {
			ok = assert.Equal(t, key, r.Name) && ok
		}
	}

	// Multi: buckets hold exactly the members, ordered by entry time.
	for cat, members := range byCat {
		got, err := c.Where("category", cat)
		require.NoError(t, err)
		want := slices.Clone(members)
		slices.SortFunc(want, func(a, b item) int { return h.seq[a.ID] - h.seq[b.ID] })
		ok = assert.Equal(t, ids(want), ids(got), cat) && ok
	}
	all, _ := c.Where("tags", "all")
	ok = assert.Len(t, all, len(records)) && ok

	// Derived: incremental values equal a fresh computation.
	top, err := DerivedValue[[]item](c, "top")
	require.NoError(t, err)
	ok = assert.Equal(t, ids(sortedTop(ranked, 4)), ids(top)) && ok

	gotCounts, _ := DerivedValue[map[string]int](c, "per_category")
	ok = assert.Equal(t, counts, gotCounts) && ok

	gotSum, _ := DerivedValue[int](c, "sum")
	ok = assert.Equal(t, sum, gotSum) && ok

	// Dynamic: text search finds exactly the records carrying a name.
	search, _ := DynamicFunc[string, []item](c, "search")
	for key, members := range byKey {
		got := search(strings.ToUpper(key))
		ok = assert.ElementsMatch(t, ids(members), ids(got), key) && ok
	}

	return ok
}
