// Package config loads declarative index definitions from YAML.
//
// A config describes how to identify records and which indexes to build over
// them, using path expressions (package pathexpr) instead of Go extractors:
//
//	id_path: id
//	codec: go-json
//	validation: true
//	diagnostics: {rate: 5, burst: 10}
//	indexes:
//	  - {name: name, kind: single, path: name, type: string}
//	  - {name: tags, kind: multi, path: tags}
//	  - {name: top, kind: top, path: score, limit: 3, order: desc}
//	  - {name: per_category, kind: count, path: category}
//	  - {name: search, kind: search, path: title}
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/ixcoll"
	"github.com/hupe1980/ixcoll/codec"
	"github.com/hupe1980/ixcoll/pathexpr"
	"github.com/hupe1980/ixcoll/schema"
)

// MaxFileSize is the largest config LoadFile accepts.
const MaxFileSize = 1 << 20

// Index kinds accepted in a config.
const (
	KindSingle = "single"
	KindMulti  = "multi"
	KindTop    = "top"
	KindCount  = "count"
	KindSearch = "search"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the root of a config file.
type Config struct {
	IDPath      string        `yaml:"id_path" validate:"required"`
	Codec       string        `yaml:"codec" validate:"omitempty,oneof=json go-json"`
	Validation  bool          `yaml:"validation"`
	Diagnostics *Diagnostics  `yaml:"diagnostics,omitempty"`
	Indexes     []IndexConfig `yaml:"indexes" validate:"dive"`
}

// Diagnostics configures the default rate-limited diagnostic log.
type Diagnostics struct {
	Rate  float64 `yaml:"rate" validate:"gte=0"`
	Burst int     `yaml:"burst" validate:"gte=0"`
}

// IndexConfig declares one index.
type IndexConfig struct {
	Name string `yaml:"name" validate:"required"`
	Kind string `yaml:"kind" validate:"required,oneof=single multi top count search"`
	Path string `yaml:"path" validate:"required"`
	// Type declares the key type of single and multi indexes and is used for
	// input validation and key parsing.
	Type string `yaml:"type,omitempty" validate:"omitempty,oneof=any int float string bool"`
	// Limit and Order apply to top indexes.
	Limit int    `yaml:"limit,omitempty" validate:"gte=0"`
	Order string `yaml:"order,omitempty" validate:"omitempty,oneof=asc desc"`
}

// Load decodes and validates a config. Unknown fields are rejected.
func Load(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads and validates the config at path.
func LoadFile(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrInvalid, path, info.Size(), MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field constraints, path syntax and index name uniqueness.
func (c *Config) Validate() error {
	if err := schema.Struct().Validate(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := pathexpr.Parse(c.IDPath); err != nil {
		return fmt.Errorf("%w: id_path: %v", ErrInvalid, err)
	}

	seen := make(map[string]struct{}, len(c.Indexes))
	for i, ic := range c.Indexes {
		if _, dup := seen[ic.Name]; dup {
			return fmt.Errorf("%w: indexes[%d]: duplicate name %q", ErrInvalid, i, ic.Name)
		}
		seen[ic.Name] = struct{}{}

		if _, err := pathexpr.Parse(ic.Path); err != nil {
			return fmt.Errorf("%w: index %q: path: %v", ErrInvalid, ic.Name, err)
		}
		if ic.Kind == KindTop && ic.Limit == 0 {
			return fmt.Errorf("%w: index %q: top index needs a limit", ErrInvalid, ic.Name)
		}
		if ic.Type != "" && ic.Kind != KindSingle && ic.Kind != KindMulti {
			return fmt.Errorf("%w: index %q: type only applies to single and multi indexes", ErrInvalid, ic.Name)
		}
	}
	return nil
}

// Index returns the config of the named index.
func (c *Config) Index(name string) (IndexConfig, bool) {
	for _, ic := range c.Indexes {
		if ic.Name == name {
			return ic, true
		}
	}
	return IndexConfig{}, false
}

// CodecOrDefault resolves the configured codec.
func (c *Config) CodecOrDefault() codec.Codec {
	cd, ok := codec.ByName(c.Codec)
	if !ok {
		return codec.Default
	}
	return cd
}

// Options maps the config to collection options.
func (c *Config) Options() []ixcoll.Option {
	opts := []ixcoll.Option{ixcoll.WithValidation(c.Validation)}
	if c.Diagnostics != nil {
		opts = append(opts, ixcoll.WithDiagnosticRate(c.Diagnostics.Rate, c.Diagnostics.Burst))
	}
	return opts
}
