package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int
	Name string
}

func newStore() *Store[int, item] {
	return New(func(it item) int { return it.ID })
}

func TestStoreInsertAndOrder(t *testing.T) {
	s := newStore()
	s.Insert(item{ID: 1}, 0)
	s.Insert(item{ID: 2}, 1)
	s.Insert(item{ID: 0}, 0)

	assert.Equal(t, []int{0, 1, 2}, s.IDs())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Consistent())

	r, ok := s.At(2)
	require.True(t, ok)
	assert.Equal(t, 2, r.ID)

	_, ok = s.At(3)
	assert.False(t, ok)
	_, ok = s.At(-1)
	assert.False(t, ok)
}

func TestStoreDeleteRecyclesSlots(t *testing.T) {
	s := newStore()
	a := s.Insert(item{ID: 1}, 0)
	s.Insert(item{ID: 2}, 1)

	slot, rec, pos, ok := s.Delete(1)
	require.True(t, ok)
	assert.Equal(t, a, slot)
	assert.Equal(t, 1, rec.ID)
	assert.Equal(t, 0, pos)
	assert.False(t, s.Live(slot))

	_, _, pos, ok = s.Delete(1)
	assert.False(t, ok)
	assert.Equal(t, -1, pos)

	c := s.Insert(item{ID: 3}, 1)
	assert.Equal(t, a, c)
	assert.Equal(t, []int{2, 3}, s.IDs())
	assert.True(t, s.Consistent())
}

func TestStoreMove(t *testing.T) {
	s := newStore()
	for i := range 4 {
		s.Insert(item{ID: i}, i)
	}

	s.Move(0, 3)
	assert.Equal(t, []int{1, 2, 3, 0}, s.IDs())
	s.Move(3, 1)
	assert.Equal(t, []int{1, 0, 2, 3}, s.IDs())

	slot, ok := s.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, 2, s.Position(slot))
	assert.Equal(t, slot, s.SlotAt(2))
	assert.True(t, s.Consistent())
}

func TestStoreReset(t *testing.T) {
	s := newStore()
	s.Insert(item{ID: 1}, 0)
	s.Insert(item{ID: 2}, 1)
	s.Reset()

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Records())
	_, ok := s.Get(1)
	assert.False(t, ok)
	assert.True(t, s.Consistent())

	s.Insert(item{ID: 5}, 0)
	assert.Equal(t, []int{5}, s.IDs())
}
