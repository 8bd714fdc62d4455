// Package slotset provides roaring-bitmap sets of record slots.
package slotset

import "github.com/RoaringBitmap/roaring/v2"

// Set is a 32-bit Roaring Bitmap of slot handles.
// It wraps the official roaring implementation.
type Set struct {
	rb *roaring.Bitmap
}

// New creates a new empty set.
func New() *Set {
	return &Set{rb: roaring.New()}
}

// Add adds a slot to the set.
func (s *Set) Add(slot uint32) {
	s.rb.Add(slot)
}

// CheckedRemove removes a slot and reports whether it was present.
func (s *Set) CheckedRemove(slot uint32) bool {
	return s.rb.CheckedRemove(slot)
}

// Contains checks if a slot is in the set.
func (s *Set) Contains(slot uint32) bool {
	return s.rb.Contains(slot)
}

// Cardinality returns the number of slots in the set.
func (s *Set) Cardinality() uint64 {
	return s.rb.GetCardinality()
}

// Intersect returns a new set holding the slots present in every input.
// It returns an empty set when no inputs are given.
func Intersect(sets ...*Set) *Set {
	if len(sets) == 0 {
		return New()
	}
	bms := make([]*roaring.Bitmap, len(sets))
	for i, s := range sets {
		bms[i] = s.rb
	}
	return &Set{rb: roaring.FastAnd(bms...)}
}

// Union returns a new set holding the slots present in any input.
func Union(sets ...*Set) *Set {
	bms := make([]*roaring.Bitmap, len(sets))
	for i, s := range sets {
		bms[i] = s.rb
	}
	return &Set{rb: roaring.FastOr(bms...)}
}
