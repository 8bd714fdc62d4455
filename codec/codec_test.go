package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, name := range Names() {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	c, ok := ByName("")
	require.True(t, ok)
	assert.Equal(t, Default.Name(), c.Name())

	_, ok = ByName("msgpack")
	assert.False(t, ok)
}

func TestDecodeRecords(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			recs, err := DecodeRecords(c, []byte(`[{"id":1,"name":"a"},{"id":2,"tags":["x"]}]`))
			require.NoError(t, err)
			require.Len(t, recs, 2)
			assert.Equal(t, float64(1), recs[0]["id"])
			assert.Equal(t, []any{"x"}, recs[1]["tags"])

			recs, err = DecodeRecords(c, []byte("{\"id\":1}\n\n  {\"id\":2}\n"))
			require.NoError(t, err)
			assert.Len(t, recs, 2)

			recs, err = DecodeRecords(c, []byte("  \n"))
			require.NoError(t, err)
			assert.Empty(t, recs)

			_, err = DecodeRecords(c, []byte("{\"id\":1}\n{oops"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestMustMarshal(t *testing.T) {
	assert.JSONEq(t, `{"a":1}`, string(MustMarshal(nil, map[string]int{"a": 1})))
	assert.Panics(t, func() { MustMarshal(JSON{}, func() {}) })
}

func TestPretty(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}, nil} {
		out, err := Pretty(c, map[string]int{"a": 1})
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"a\": 1\n}", string(out))
	}
}
