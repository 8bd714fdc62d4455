package config

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/hupe1980/ixcoll"
	"github.com/hupe1980/ixcoll/pathexpr"
	"github.com/hupe1980/ixcoll/schema"
)

// Record is the shape of records loaded through package codec.
type Record = map[string]any

// NormalizeKey converts a looked-up value into an index key. Numbers of any
// width become float64 so that decoded and typed keys meet in one bucket.
// Unhashable values are rejected.
func NormalizeKey(v any) (any, bool) {
	switch n := v.(type) {
	case nil:
		return nil, false
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	if !reflect.ValueOf(v).Comparable() {
		return nil, false
	}
	return v, true
}

// ParseKey converts a textual key, as given on a command line, to the key
// type declared for the index.
func (ic IndexConfig) ParseKey(s string) (any, error) {
	ft, err := schema.ParseFieldType(ic.Type)
	if err != nil {
		return nil, err
	}
	switch ft {
	case schema.FieldInt, schema.FieldFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("index %q: key %q is not a number", ic.Name, s)
		}
		return f, nil
	case schema.FieldBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("index %q: key %q is not a bool", ic.Name, s)
		}
		return b, nil
	default:
		return s, nil
	}
}

// IDOf returns an id extractor reading the id path of cfg. Records without an
// id yield "".
func IDOf[R any](cfg *Config) (func(R) string, error) {
	p, err := pathexpr.Parse(cfg.IDPath)
	if err != nil {
		return nil, fmt.Errorf("%w: id_path: %v", ErrInvalid, err)
	}
	return func(r R) string {
		v, ok := p.Lookup(r)
		if !ok || v == nil {
			return ""
		}
		if f, isFloat := v.(float64); isFloat {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return fmt.Sprint(v)
	}, nil
}

// Indexes builds the index definitions declared in cfg.
func Indexes[R any](cfg *Config) ([]ixcoll.Index[string, R], error) {
	idOf, err := IDOf[R](cfg)
	if err != nil {
		return nil, err
	}

	out := make([]ixcoll.Index[string, R], 0, len(cfg.Indexes))
	for _, ic := range cfg.Indexes {
		idx, err := buildIndex(ic, idOf)
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}

// New builds a collection from cfg. opts are applied after the options the
// config carries.
func New[R any](cfg *Config, opts ...ixcoll.Option) (*ixcoll.Collection[string, R], error) {
	idOf, err := IDOf[R](cfg)
	if err != nil {
		return nil, err
	}
	indexes, err := Indexes[R](cfg)
	if err != nil {
		return nil, err
	}
	return ixcoll.New(idOf, indexes, append(cfg.Options(), opts...)...)
}

func buildIndex[R any](ic IndexConfig, idOf func(R) string) (ixcoll.Index[string, R], error) {
	p, err := pathexpr.Parse(ic.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: index %q: path: %v", ErrInvalid, ic.Name, err)
	}
	lookup := func(r R) (any, bool) {
		v, ok := p.Lookup(r)
		if !ok || v == nil {
			return nil, false
		}
		return v, true
	}

	switch ic.Kind {
	case KindSingle:
		idx := ixcoll.Single[string](ic.Name, func(r R) (any, bool) {
			v, ok := lookup(r)
			if !ok {
				return nil, false
			}
			return NormalizeKey(v)
		})
		if ic.Type != "" {
			ft, err := schema.ParseFieldType(ic.Type)
			if err != nil {
				return nil, err
			}
			idx = idx.WithInput(schema.Type(ft))
		}
		return idx, nil

	case KindMulti:
		idx := ixcoll.Multi[string](ic.Name, func(r R) []any {
			v, ok := lookup(r)
			if !ok {
				return nil
			}
			return keysOf(v)
		})
		if ic.Type != "" {
			ft, err := schema.ParseFieldType(ic.Type)
			if err != nil {
				return nil, err
			}
			idx = idx.WithInput(schema.Type(ft))
		}
		return idx, nil

	case KindTop:
		score := func(r R) (float64, bool) {
			v, ok := lookup(r)
			if !ok {
				return 0, false
			}
			k, ok := NormalizeKey(v)
			if !ok {
				return 0, false
			}
			f, ok := k.(float64)
			return f, ok
		}
		desc := ic.Order != "asc"
		less := func(a, b R) bool {
			sa, _ := score(a)
			sb, _ := score(b)
			if sa != sb {
				if desc {
					return sa > sb
				}
				return sa < sb
			}
			return idOf(a) < idOf(b)
		}
		matches := func(r R) bool {
			_, ok := score(r)
			return ok
		}
		return ixcoll.TopN[string](ic.Name, ic.Limit, less, matches), nil

	case KindCount:
		return ixcoll.CountBy[string](ic.Name, func(r R) (any, bool) {
			v, ok := lookup(r)
			if !ok {
				return nil, false
			}
			return NormalizeKey(v)
		}), nil

	case KindSearch:
		return ixcoll.TextSearch[string](ic.Name, func(r R) string {
			v, ok := lookup(r)
			if !ok {
				return ""
			}
			if s, isString := v.(string); isString {
				return s
			}
			return fmt.Sprint(v)
		}), nil
	}
	return nil, fmt.Errorf("%w: index %q: unknown kind %q", ErrInvalid, ic.Name, ic.Kind)
}

// keysOf expands a list value into its hashable elements.
func keysOf(v any) []any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		if k, ok := NormalizeKey(v); ok {
			return []any{k}
		}
		return nil
	}
	keys := make([]any, 0, rv.Len())
	for i := range rv.Len() {
		if k, ok := NormalizeKey(rv.Index(i).Interface()); ok {
			keys = append(keys, k)
		}
	}
	return keys
}
