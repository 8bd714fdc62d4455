package ixcoll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type comment struct {
	Author   int            `json:"author_id"`
	Mentions []int          `json:"mentions"`
	Meta     map[string]any `json:"meta"`
	Parent   *comment       `json:"parent"`
}

func TestRelated(t *testing.T) {
	c := newItems(t, nil)
	for id := 1; id <= 4; id++ {
		c.Add(item{ID: id})
	}

	sources := []any{
		comment{Author: 2, Mentions: []int{4, 99, 1}, Meta: map[string]any{"owner": 3, "list": []any{1, "x", 2}}},
		&comment{Author: 1, Parent: &comment{Author: 4}},
		map[string]any{"author_id": 3, "mentions": []any{2}},
		nil,
		"not a record",
	}

	t.Run("FieldName", func(t *testing.T) {
		assert.Equal(t, []int{2, 1}, ids(c.Related(sources, "Author")))
	})

	t.Run("JSONTag", func(t *testing.T) {
		assert.Equal(t, []int{2, 1, 3}, ids(c.Related(sources, "author_id")))
	})

	t.Run("IDList", func(t *testing.T) {
		assert.Equal(t, []int{4, 1, 2}, ids(c.Related(sources, "mentions")))
	})

	t.Run("Index", func(t *testing.T) {
		assert.Equal(t, []int{4, 2}, ids(c.Related(sources, "mentions[0]")))
		assert.Empty(t, c.Related(sources, "mentions[7]"))
	})

	t.Run("QuotedKey", func(t *testing.T) {
		assert.Equal(t, []int{3}, ids(c.Related(sources, `meta["owner"]`)))
		assert.Equal(t, []int{1, 2}, ids(c.Related(sources, "meta.list")))
	})

	t.Run("Nested", func(t *testing.T) {
		assert.Equal(t, []int{4}, ids(c.Related(sources, "parent.author_id")))
	})

	t.Run("MalformedPath", func(t *testing.T) {
		for _, p := range []string{"", "a..b", "mentions[", "mentions[x]"} {
			got := c.Related(sources, p)
			assert.NotNil(t, got, p)
			assert.Empty(t, got, p)
		}
	})

	t.Run("UnknownIDsSkipped", func(t *testing.T) {
		c.Remove(2)
		assert.Equal(t, []int{1}, ids(c.Related(sources, "Author")))
	})
}
