package ixcoll

import (
	"github.com/hupe1980/ixcoll/internal/store"
	"github.com/hupe1980/ixcoll/schema"
)

// SingleIndex maps each key to at most one record.
//
// On a duplicate key the most recently added record wins. Removing the winner
// installs the first remaining record in collection order that still yields
// the key, or drops the key when none is left. Removing any other record
// leaves the index untouched.
type SingleIndex[ID comparable, R any, K comparable] struct {
	Name string
	// Extract returns the key of r; false excludes r from the index.
	Extract func(r R) (K, bool)
	// Input validates lookup keys, Output validates returned records.
	Input  schema.Schema
	Output schema.Schema
}

// Single defines a single-value index. ID must be given explicitly:
//
//	ixcoll.Single[int]("email", func(u User) (string, bool) { return u.Email, u.Email != "" })
func Single[ID comparable, R any, K comparable](name string, extract func(R) (K, bool)) SingleIndex[ID, R, K] {
	return SingleIndex[ID, R, K]{Name: name, Extract: extract}
}

// IndexName implements Index.
func (d SingleIndex[ID, R, K]) IndexName() string { return d.Name }

// IndexKind implements Index.
func (d SingleIndex[ID, R, K]) IndexKind() Kind { return KindSingle }

// WithInput returns a copy of d validating lookup keys with s.
func (d SingleIndex[ID, R, K]) WithInput(s schema.Schema) SingleIndex[ID, R, K] {
	d.Input = s
	return d
}

// WithOutput returns a copy of d validating returned records with s.
func (d SingleIndex[ID, R, K]) WithOutput(s schema.Schema) SingleIndex[ID, R, K] {
	d.Output = s
	return d
}

func (d SingleIndex[ID, R, K]) build(e *env[ID, R]) (indexState[ID, R], error) {
	if d.Extract == nil {
		return nil, &DefinitionError{Index: d.Name, Reason: "single index without extractor"}
	}
	return &singleState[ID, R, K]{
		def:     d,
		env:     e,
		winners: make(map[K]store.Slot),
		checked: interfaceKeyed[K](),
	}, nil
}

type singleState[ID comparable, R any, K comparable] struct {
	def     SingleIndex[ID, R, K]
	env     *env[ID, R]
	winners map[K]store.Slot
	// checked is set when K is an interface type.
	checked bool
}

func (s *singleState[ID, R, K]) kind() Kind                  { return KindSingle }
func (s *singleState[ID, R, K]) inputSchema() schema.Schema  { return s.def.Input }
func (s *singleState[ID, R, K]) outputSchema() schema.Schema { return s.def.Output }
func (s *singleState[ID, R, K]) reordered()                  {}
func (s *singleState[ID, R, K]) flush()                      {}

// key extracts the key of r. Unhashable keys exclude r like a false return.
func (s *singleState[ID, R, K]) key(r R) (K, bool) {
	k, ok := s.def.Extract(r)
	if !ok || (s.checked && !hashable(k)) {
		var zero K
		return zero, false
	}
	return k, true
}

func (s *singleState[ID, R, K]) added(slot store.Slot, r R) {
	if k, ok := s.key(r); ok {
		s.winners[k] = slot
	}
}

func (s *singleState[ID, R, K]) removed(slot store.Slot, r R) {
	k, ok := s.key(r)
	if !ok {
		return
	}
	if w, ok := s.winners[k]; !ok || w != slot {
		return
	}

	delete(s.winners, k)
	s.env.metrics.RecordMaintenance(s.def.Name, KindSingle, MaintenanceRescan)

	// No per-key history is kept: the first remaining record in store order
	// that yields k takes over.
	for cand := range s.env.store.Slots() {
		if ck, ok := s.key(s.env.store.Record(cand)); ok && ck == k {
			s.winners[k] = cand
			return
		}
	}
}

func (s *singleState[ID, R, K]) reset() {
	clear(s.winners)
}

// lookup returns the winner for key. Keys of another Go type never match.
func (s *singleState[ID, R, K]) lookup(key any) (R, bool) {
	k, ok := key.(K)
	if !ok || !hashable(key) {
		var zero R
		return zero, false
	}
	slot, ok := s.winners[k]
	if !ok {
		var zero R
		return zero, false
	}
	return s.env.store.Record(slot), true
}

func (s *singleState[ID, R, K]) keyCount() int {
	return len(s.winners)
}
