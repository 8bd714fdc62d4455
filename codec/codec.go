// Package codec centralizes record encoding for the ixq tool and config
// loading.
//
// Records are read as JSON objects, either as one array or as a stream of
// newline-separated objects.
package codec

import (
	"bytes"
	"fmt"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Indenter is implemented by codecs that can pretty-print.
type Indenter interface {
	MarshalIndent(v any, prefix, indent string) ([]byte, error)
}

// Pretty encodes v with two-space indentation when c supports it.
func Pretty(c Codec, v any) ([]byte, error) {
	if c == nil {
		c = Default
	}
	if in, ok := c.(Indenter); ok {
		return in.MarshalIndent(v, "", "  ")
	}
	return c.Marshal(v)
}

// ByName returns a built-in codec by its stable name.
// An empty name selects Default.
func ByName(name string) (Codec, bool) {
	switch name {
	case "":
		return Default, true
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Names lists the names accepted by ByName.
func Names() []string {
	return []string{"json", "go-json"}
}

// MustMarshal is a helper for internal tests/benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

// DecodeRecords decodes data holding either a JSON array of objects or one
// object per line. Blank lines are ignored.
func DecodeRecords(c Codec, data []byte) ([]map[string]any, error) {
	if c == nil {
		c = Default
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []map[string]any{}, nil
	}

	if trimmed[0] == '[' {
		var out []map[string]any
		if err := c.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("codec %s: decode records: %w", c.Name(), err)
		}
		return out, nil
	}

	var out []map[string]any
	for i, line := range bytes.Split(trimmed, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var rec map[string]any
		if err := c.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("codec %s: decode record on line %d: %w", c.Name(), i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
