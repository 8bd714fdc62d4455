// Package store implements the record store that owns every record of a
// collection.
//
// Records live in slots of an arena. Indexes refer to records by Slot and
// resolve them through the store, so the store is the single owner of record
// values. The store keeps two views over the live slots:
//
//   - order: the canonical iteration and positional order
//   - byID:  the id -> slot lookup
//
// Both always contain exactly the same set of live slots.
package store

import (
	"iter"
	"slices"
)

// Slot is a lightweight handle to a record held by the store.
// Slots of removed records are recycled by later inserts.
type Slot uint32

type entry[ID comparable, R any] struct {
	id   ID
	rec  R
	live bool
}

// Store is the ordered, id-addressable record arena.
// It is not safe for concurrent use.
type Store[ID comparable, R any] struct {
	idOf    func(R) ID
	entries []entry[ID, R]
	free    []Slot
	order   []Slot
	byID    map[ID]Slot
}

// New creates an empty store using idOf to derive record identifiers.
func New[ID comparable, R any](idOf func(R) ID) *Store[ID, R] {
	return &Store[ID, R]{
		idOf: idOf,
		byID: make(map[ID]Slot),
	}
}

// IDOf returns the identifier of r.
func (s *Store[ID, R]) IDOf(r R) ID {
	return s.idOf(r)
}

// Len returns the number of live records.
func (s *Store[ID, R]) Len() int {
	return len(s.order)
}

// Lookup returns the slot holding id.
func (s *Store[ID, R]) Lookup(id ID) (Slot, bool) {
	slot, ok := s.byID[id]
	return slot, ok
}

// Get returns the record with the given id.
func (s *Store[ID, R]) Get(id ID) (R, bool) {
	slot, ok := s.byID[id]
	if !ok {
		var zero R
		return zero, false
	}
	return s.entries[slot].rec, true
}

// Record returns the record stored in slot. The slot must be live.
func (s *Store[ID, R]) Record(slot Slot) R {
	return s.entries[slot].rec
}

// Live reports whether slot currently holds a record.
func (s *Store[ID, R]) Live(slot Slot) bool {
	return int(slot) < len(s.entries) && s.entries[slot].live
}

// At returns the record at position i of the order.
func (s *Store[ID, R]) At(i int) (R, bool) {
	if i < 0 || i >= len(s.order) {
		var zero R
		return zero, false
	}
	return s.entries[s.order[i]].rec, true
}

// SlotAt returns the slot at position i of the order. i must be in range.
func (s *Store[ID, R]) SlotAt(i int) Slot {
	return s.order[i]
}

// Position returns the order position of slot, or -1.
func (s *Store[ID, R]) Position(slot Slot) int {
	return slices.Index(s.order, slot)
}

// Insert stores r at position pos of the order and returns its new slot.
// The id of r must not already be present and pos must be within [0, Len()].
func (s *Store[ID, R]) Insert(r R, pos int) Slot {
	id := s.idOf(r)

	var slot Slot
	if n := len(s.free); n > 0 {
		slot = s.free[n-1]
		s.free = s.free[:n-1]
		s.entries[slot] = entry[ID, R]{id: id, rec: r, live: true}
	} else {
		slot = Slot(len(s.entries))
		s.entries = append(s.entries, entry[ID, R]{id: id, rec: r, live: true})
	}

	s.byID[id] = slot
	s.order = slices.Insert(s.order, pos, slot)
	return slot
}

// Delete removes id from the store and returns the evicted slot, the record
// and the position it held. The slot is handed out again by the next Insert.
func (s *Store[ID, R]) Delete(id ID) (Slot, R, int, bool) {
	slot, ok := s.byID[id]
	if !ok {
		var zero R
		return 0, zero, -1, false
	}

	delete(s.byID, id)
	pos := slices.Index(s.order, slot)
	s.order = slices.Delete(s.order, pos, pos+1)
	rec := s.entries[slot].rec
	s.entries[slot] = entry[ID, R]{}
	s.free = append(s.free, slot)

	return slot, rec, pos, true
}

// Move relocates the record at position from to position to.
// Both positions must be in range.
func (s *Store[ID, R]) Move(from, to int) {
	slot := s.order[from]
	s.order = slices.Delete(s.order, from, from+1)
	s.order = slices.Insert(s.order, to, slot)
}

// Reset drops every record.
func (s *Store[ID, R]) Reset() {
	clear(s.byID)
	clear(s.entries)
	s.entries = s.entries[:0]
	s.free = s.free[:0]
	s.order = s.order[:0]
}

// Slots iterates the live slots in order.
func (s *Store[ID, R]) Slots() iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		for _, slot := range s.order {
			if !yield(slot) {
				return
			}
		}
	}
}

// All iterates the records in order.
func (s *Store[ID, R]) All() iter.Seq2[int, R] {
	return func(yield func(int, R) bool) {
		for i, slot := range s.order {
			if !yield(i, s.entries[slot].rec) {
				return
			}
		}
	}
}

// Records returns a snapshot copy of the records in order.
func (s *Store[ID, R]) Records() []R {
	out := make([]R, len(s.order))
	for i, slot := range s.order {
		out[i] = s.entries[slot].rec
	}
	return out
}

// IDs returns a snapshot copy of the identifiers in order.
func (s *Store[ID, R]) IDs() []ID {
	out := make([]ID, len(s.order))
	for i, slot := range s.order {
		out[i] = s.entries[slot].id
	}
	return out
}

// Consistent reports whether order and byID describe the same live slots.
func (s *Store[ID, R]) Consistent() bool {
	if len(s.order) != len(s.byID) {
		return false
	}
	seen := make(map[Slot]struct{}, len(s.order))
	for _, slot := range s.order {
		if _, dup := seen[slot]; dup {
			return false
		}
		seen[slot] = struct{}{}
		e := s.entries[slot]
		if !e.live {
			return false
		}
		if got, ok := s.byID[e.id]; !ok || got != slot {
			return false
		}
	}
	return true
}
