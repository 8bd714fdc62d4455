package ixcoll

import (
	"slices"

	"github.com/hupe1980/ixcoll/internal/slotset"
	"github.com/hupe1980/ixcoll/internal/store"
	"github.com/hupe1980/ixcoll/schema"
)

// MultiIndex maps each key to the ordered bucket of records that yield it.
//
// A record joins the end of every bucket it belongs to when it is added and
// leaves every bucket when it is removed, so buckets list records in the order
// they were added. Positional moves of the collection do not reorder buckets.
type MultiIndex[ID comparable, R any, K comparable] struct {
	Name string
	// Extract returns the keys of r. An empty result omits r. Repeated keys
	// are collapsed.
	Extract func(r R) []K
	// Input validates lookup keys (one at a time), Output validates returned
	// buckets.
	Input  schema.Schema
	Output schema.Schema
}

// Multi defines a multi-value index over a many-key extractor.
func Multi[ID comparable, R any, K comparable](name string, extract func(R) []K) MultiIndex[ID, R, K] {
	return MultiIndex[ID, R, K]{Name: name, Extract: extract}
}

// MultiOf defines a multi-value index over a single-key extractor.
func MultiOf[ID comparable, R any, K comparable](name string, extract func(R) (K, bool)) MultiIndex[ID, R, K] {
	return MultiIndex[ID, R, K]{
		Name: name,
		Extract: func(r R) []K {
			if k, ok := extract(r); ok {
				return []K{k}
			}
			return nil
		},
	}
}

// IndexName implements Index.
func (d MultiIndex[ID, R, K]) IndexName() string { return d.Name }

// IndexKind implements Index.
func (d MultiIndex[ID, R, K]) IndexKind() Kind { return KindMulti }

// WithInput returns a copy of d validating lookup keys with s.
func (d MultiIndex[ID, R, K]) WithInput(s schema.Schema) MultiIndex[ID, R, K] {
	d.Input = s
	return d
}

// WithOutput returns a copy of d validating returned buckets with s.
func (d MultiIndex[ID, R, K]) WithOutput(s schema.Schema) MultiIndex[ID, R, K] {
	d.Output = s
	return d
}

func (d MultiIndex[ID, R, K]) build(e *env[ID, R]) (indexState[ID, R], error) {
	if d.Extract == nil {
		return nil, &DefinitionError{Index: d.Name, Reason: "multi index without extractor"}
	}
	return &multiState[ID, R, K]{
		def:     d,
		env:     e,
		buckets: make(map[K]*bucket),
		checked: interfaceKeyed[K](),
	}, nil
}

// bucket keeps its slots in insertion order and mirrors them in a bitmap for
// membership tests and set algebra.
type bucket struct {
	slots []store.Slot
	set   *slotset.Set
}

type multiState[ID comparable, R any, K comparable] struct {
	def     MultiIndex[ID, R, K]
	env     *env[ID, R]
	buckets map[K]*bucket
	// checked is set when K is an interface type.
	checked bool
}

func (s *multiState[ID, R, K]) kind() Kind                  { return KindMulti }
func (s *multiState[ID, R, K]) inputSchema() schema.Schema  { return s.def.Input }
func (s *multiState[ID, R, K]) outputSchema() schema.Schema { return s.def.Output }
func (s *multiState[ID, R, K]) reordered()                  {}
func (s *multiState[ID, R, K]) flush()                      {}

// keys returns the distinct keys of r. Unhashable keys are dropped.
func (s *multiState[ID, R, K]) keys(r R) []K {
	ks := s.def.Extract(r)
	if s.checked {
		ks = slices.DeleteFunc(slices.Clone(ks), func(k K) bool { return !hashable(k) })
	}
	if len(ks) < 2 {
		return ks
	}
	out := make([]K, 0, len(ks))
	seen := make(map[K]struct{}, len(ks))
	for _, k := range ks {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func (s *multiState[ID, R, K]) added(slot store.Slot, r R) {
	for _, k := range s.keys(r) {
		b, ok := s.buckets[k]
		if !ok {
			b = &bucket{set: slotset.New()}
			s.buckets[k] = b
		}
		b.slots = append(b.slots, slot)
		b.set.Add(uint32(slot))
	}
}

func (s *multiState[ID, R, K]) removed(slot store.Slot, r R) {
	for _, k := range s.keys(r) {
		b, ok := s.buckets[k]
		if !ok || !b.set.CheckedRemove(uint32(slot)) {
			continue
		}
		if i := slices.Index(b.slots, slot); i >= 0 {
			b.slots = slices.Delete(b.slots, i, i+1)
		}
		if len(b.slots) == 0 {
			delete(s.buckets, k)
		}
	}
}

func (s *multiState[ID, R, K]) reset() {
	clear(s.buckets)
}

func (s *multiState[ID, R, K]) lookup(key any) *bucket {
	k, ok := key.(K)
	if !ok || !hashable(key) {
		return nil
	}
	return s.buckets[k]
}

func (s *multiState[ID, R, K]) records(slots []store.Slot) []R {
	out := make([]R, len(slots))
	for i, slot := range slots {
		out[i] = s.env.store.Record(slot)
	}
	return out
}

// where returns the whole bucket for key, empty when absent.
func (s *multiState[ID, R, K]) where(key any) []R {
	b := s.lookup(key)
	if b == nil {
		return []R{}
	}
	return s.records(b.slots)
}

// first returns up to n records from the front of the bucket.
func (s *multiState[ID, R, K]) first(key any, n int) []R {
	b := s.lookup(key)
	if b == nil || n <= 0 {
		return []R{}
	}
	return s.records(b.slots[:min(n, len(b.slots))])
}

// latest returns up to n records from the back of the bucket.
func (s *multiState[ID, R, K]) latest(key any, n int) []R {
	b := s.lookup(key)
	if b == nil || n <= 0 {
		return []R{}
	}
	return s.records(b.slots[len(b.slots)-min(n, len(b.slots)):])
}

func (s *multiState[ID, R, K]) keyCount() int {
	return len(s.buckets)
}

func (s *multiState[ID, R, K]) count(key any) int {
	if b := s.lookup(key); b != nil {
		return len(b.slots)
	}
	return 0
}

// whereAll returns the records present in every bucket, in the order of the
// first key's bucket. Any missing bucket yields an empty result.
func (s *multiState[ID, R, K]) whereAll(keys []any) []R {
	if len(keys) == 0 {
		return []R{}
	}
	sets := make([]*slotset.Set, 0, len(keys))
	var base *bucket
	for i, key := range keys {
		b := s.lookup(key)
		if b == nil {
			return []R{}
		}
		if i == 0 {
			base = b
		}
		sets = append(sets, b.set)
	}
	both := slotset.Intersect(sets...)

	out := make([]R, 0, both.Cardinality())
	for _, slot := range base.slots {
		if both.Contains(uint32(slot)) {
			out = append(out, s.env.store.Record(slot))
		}
	}
	return out
}

// whereAny returns the records present in at least one bucket, in collection
// order.
func (s *multiState[ID, R, K]) whereAny(keys []any) []R {
	sets := make([]*slotset.Set, 0, len(keys))
	for _, key := range keys {
		if b := s.lookup(key); b != nil {
			sets = append(sets, b.set)
		}
	}
	if len(sets) == 0 {
		return []R{}
	}
	union := slotset.Union(sets...)

	out := make([]R, 0, union.Cardinality())
	for slot := range s.env.store.Slots() {
		if union.Contains(uint32(slot)) {
			out = append(out, s.env.store.Record(slot))
		}
	}
	return out
}
