package bm25

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys[K comparable](idx *MemoryIndex[K], q string, limit int) []K {
	var out []K
	for _, h := range idx.Search(q, limit) {
		out = append(out, h.Key)
	}
	return out
}

func TestMemoryIndex_Basic(t *testing.T) {
	idx := New[uint64]()

	docs := []struct {
		id   uint64
		text string
	}{
		{1, "the quick brown fox"},
		{2, "jumped over the lazy dog"},
		{3, "quick brown dogs"},
		{4, "fox and dog"},
	}
	for _, d := range docs {
		idx.Add(d.id, d.text)
	}
	assert.Equal(t, 4, idx.Len())

	got := keys(idx, "fox", 10)
	assert.ElementsMatch(t, []uint64{1, 4}, got)

	// Shorter document ranks first on a single-term query.
	assert.Equal(t, uint64(4), got[0])

	assert.Len(t, idx.Search("quick fox", 1), 1)
	assert.Empty(t, idx.Search("zebra", 10))
}

func TestMemoryIndex_Delete(t *testing.T) {
	idx := New[string]()
	idx.Add("a", "test content")
	idx.Add("b", "other content")

	assert.Equal(t, []string{"a"}, keys(idx, "test", 10))

	idx.Delete("a")
	assert.Empty(t, idx.Search("test", 10))
	assert.Equal(t, []string{"b"}, keys(idx, "content", 10))
	assert.Equal(t, 1, idx.Len())

	idx.Delete("missing")
	assert.Equal(t, 1, idx.Len())
}

func TestMemoryIndex_Replace(t *testing.T) {
	idx := New[int]()
	idx.Add(1, "alpha")
	idx.Add(1, "beta")

	assert.Empty(t, idx.Search("alpha", 0))
	assert.Equal(t, []int{1}, keys(idx, "beta", 0))
	assert.Equal(t, 1, idx.Len())
}

func TestMemoryIndex_TiesKeepIndexOrder(t *testing.T) {
	idx := New[int]()
	idx.Add(3, "same words")
	idx.Add(1, "same words")
	idx.Add(2, "same words")

	assert.Equal(t, []int{3, 1, 2}, keys(idx, "same", 0))
}

func TestMemoryIndex_Reset(t *testing.T) {
	idx := New[int]()
	idx.Add(1, "x")
	idx.Reset()
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Search("x", 0))
}

func TestTokenize(t *testing.T) {
	require.Equal(t, []string{"hello", "world", "42"}, Tokenize("Hello, World! 42"))
}
