package ixcoll

import (
	"maps"
	"slices"

	"github.com/hupe1980/ixcoll/lexical/bm25"
)

// TopN defines a derived index holding the n best records according to less,
// best first. matches may be nil to rank every record.
//
// less must be a strict total order over the ranked records: equal records
// are kept in collection order by Compute but their relative order is not
// preserved across incremental updates.
func TopN[ID comparable, R any](name string, n int, less func(a, b R) bool, matches func(R) bool) DerivedIndex[ID, R, []R] {
	rank := func(a, b R) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		default:
			return 0
		}
	}
	accept := func(r R) bool { return matches == nil || matches(r) }

	compute := func(v View[ID, R]) []R {
		out := make([]R, 0, max(n, 0))
		if n <= 0 {
			return out
		}
		for r := range v.All() {
			if accept(r) {
				out = append(out, r)
			}
		}
		slices.SortStableFunc(out, rank)
		return slices.Clip(out[:min(n, len(out))])
	}

	onAdd := func(value *[]R, r R, _ View[ID, R]) {
		cur := *value
		i := 0
		for i < len(cur) && !less(r, cur[i]) {
			i++
		}
		if i >= n {
			return
		}
		next := make([]R, 0, min(len(cur)+1, n))
		next = append(next, cur[:i]...)
		next = append(next, r)
		next = append(next, cur[i:min(len(cur), n-1)]...)
		*value = next
	}

	onRemove := func(value *[]R, r R, v View[ID, R]) {
		cur := *value
		id := v.IDOf(r)
		j := slices.IndexFunc(cur, func(x R) bool { return v.IDOf(x) == id })
		if j < 0 {
			return
		}
		next := make([]R, 0, len(cur))
		next = append(next, cur[:j]...)
		next = append(next, cur[j+1:]...)

		// The remaining entries are still the best n-1; refill the freed
		// place with the best record not already held.
		if len(cur) == n {
			held := make(map[ID]struct{}, len(next))
			for _, x := range next {
				held[v.IDOf(x)] = struct{}{}
			}
			var (
				best  R
				found bool
			)
			for cand := range v.All() {
				if !accept(cand) {
					continue
				}
				if _, ok := held[v.IDOf(cand)]; ok {
					continue
				}
				if !found || less(cand, best) {
					best, found = cand, true
				}
			}
			if found {
				next = append(next, best)
			}
		}
		*value = next
	}

	return DerivedIndex[ID, R, []R]{
		Name:     name,
		Compute:  compute,
		Matches:  matches,
		OnAdd:    onAdd,
		OnRemove: onRemove,
	}
}

// CountBy defines a derived index counting records per key. Records for which
// key returns false, or returns an unhashable key, are not counted. Each
// mutation publishes a new map, so a value obtained earlier is never modified.
func CountBy[ID comparable, R any, K comparable](name string, extract func(R) (K, bool)) DerivedIndex[ID, R, map[K]int] {
	checked := interfaceKeyed[K]()
	key := func(r R) (K, bool) {
		k, ok := extract(r)
		if !ok || (checked && !hashable(k)) {
			var zero K
			return zero, false
		}
		return k, true
	}

	compute := func(v View[ID, R]) map[K]int {
		counts := make(map[K]int)
		for r := range v.All() {
			if k, ok := key(r); ok {
				counts[k]++
			}
		}
		return counts
	}

	onAdd := func(value *map[K]int, r R, _ View[ID, R]) {
		k, ok := key(r)
		if !ok {
			return
		}
		next := maps.Clone(*value)
		if next == nil {
			next = make(map[K]int)
		}
		next[k]++
		*value = next
	}

	onRemove := func(value *map[K]int, r R, _ View[ID, R]) {
		k, ok := key(r)
		if !ok {
			return
		}
		if _, ok := (*value)[k]; !ok {
			return
		}
		next := maps.Clone(*value)
		if next[k]--; next[k] <= 0 {
			delete(next, k)
		}
		*value = next
	}

	return DerivedIndex[ID, R, map[K]int]{
		Name:     name,
		Compute:  compute,
		OnAdd:    onAdd,
		OnRemove: onRemove,
	}
}

// TextSearch defines a dynamic index answering free-text queries over the
// text of each record. Results are ordered by descending BM25 score; records
// sharing a score keep the order in which they were indexed.
func TextSearch[ID comparable, R any](name string, text func(R) string) DynamicIndex[ID, R, string, []R] {
	init := func(v View[ID, R]) *bm25.MemoryIndex[ID] {
		idx := bm25.New[ID]()
		for r := range v.All() {
			idx.Add(v.IDOf(r), text(r))
		}
		return idx
	}

	query := func(idx *bm25.MemoryIndex[ID], v View[ID, R]) func(string) []R {
		return func(q string) []R {
			hits := idx.Search(q, 0)
			out := make([]R, 0, len(hits))
			for _, h := range hits {
				if r, ok := v.Get(h.Key); ok {
					out = append(out, r)
				}
			}
			return out
		}
	}

	onAdd := func(idx *bm25.MemoryIndex[ID], r R, v View[ID, R]) { idx.Add(v.IDOf(r), text(r)) }
	onRemove := func(idx *bm25.MemoryIndex[ID], r R, v View[ID, R]) { idx.Delete(v.IDOf(r)) }

	return Stateful(name, init, query, onAdd, onRemove)
}
