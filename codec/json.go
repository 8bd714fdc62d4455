package codec

import (
	"encoding/json"
)

// JSON is the encoding/json codec. Numbers decoded into map[string]any are
// float64 here and in GoJSON alike.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSON) Name() string                       { return "json" }

// MarshalIndent implements Indenter.
func (JSON) MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}
