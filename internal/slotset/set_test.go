package slotset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func setOf(slots ...uint32) *Set {
	s := New()
	for _, slot := range slots {
		s.Add(slot)
	}
	return s
}

func TestSet(t *testing.T) {
	s := New()
	assert.Equal(t, uint64(0), s.Cardinality())

	s.Add(3)
	s.Add(1)
	s.Add(7)
	s.Add(1)
	assert.Equal(t, uint64(3), s.Cardinality())
	assert.True(t, s.Contains(1))
	assert.False(t, s.Contains(2))

	assert.True(t, s.CheckedRemove(3))
	assert.False(t, s.CheckedRemove(3))
	assert.False(t, s.Contains(3))
	assert.Equal(t, uint64(2), s.Cardinality())
}

func TestIntersectUnion(t *testing.T) {
	a := setOf(1, 2, 3, 4)
	b := setOf(2, 4, 6)
	c := setOf(4, 2, 9)

	both := Intersect(a, b, c)
	assert.Equal(t, uint64(2), both.Cardinality())
	for _, slot := range []uint32{2, 4} {
		assert.True(t, both.Contains(slot))
	}
	assert.False(t, both.Contains(1))
	assert.Equal(t, uint64(0), Intersect().Cardinality())

	union := Union(a, b, c)
	assert.Equal(t, uint64(6), union.Cardinality())
	for _, slot := range []uint32{1, 2, 3, 4, 6, 9} {
		assert.True(t, union.Contains(slot))
	}

	// Inputs are not modified.
	assert.Equal(t, uint64(4), a.Cardinality())
	assert.Equal(t, uint64(3), b.Cardinality())
}
