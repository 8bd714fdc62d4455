package ixcoll

import (
	"reflect"
)

// Related resolves path against every source and returns the records the
// resolved ids refer to, in source order. A value of type ID is looked up
// directly; a slice or array contributes each of its ID elements in order.
//
// Malformed paths, missing fields, out-of-range indexes, values that are not
// ids and unknown ids are skipped, so the result may be shorter than sources.
func (c *Collection[ID, R]) Related(sources []any, path string) []R {
	out := []R{}
	p, err := c.paths.Parse(path)
	if err != nil {
		return out
	}

	for _, src := range sources {
		v, ok := p.Lookup(src)
		if !ok {
			continue
		}
		if id, ok := v.(ID); ok {
			if r, ok := c.store.Get(id); ok {
				out = append(out, r)
			}
			continue
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			continue
		}
		for i := range rv.Len() {
			elem := rv.Index(i)
			if !elem.CanInterface() {
				continue
			}
			id, ok := elem.Interface().(ID)
			if !ok {
				continue
			}
			if r, ok := c.store.Get(id); ok {
				out = append(out, r)
			}
		}
	}
	return out
}
