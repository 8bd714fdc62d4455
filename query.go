package ixcoll

import (
	"context"
	"reflect"
	"time"
)

// Operation names used in errors, diagnostics and metrics.
const (
	opBy         = "by"
	opByOptional = "by_optional"
	opWhere      = "where"
	opFirst      = "first"
	opLatest     = "latest"
	opCount      = "count"
	opWhereAll   = "where_all"
	opWhereAny   = "where_any"
	opGetDerived = "get_derived"
	opGetIndex   = "get_index"
	opQuery      = "query"
)

type singleReader[R any] interface {
	lookup(key any) (R, bool)
}

type multiReader[R any] interface {
	where(key any) []R
	first(key any, n int) []R
	latest(key any, n int) []R
	count(key any) int
	whereAll(keys []any) []R
	whereAny(keys []any) []R
}

type valueReader interface {
	get() any
}

type dynamicCaller interface {
	get() any
	call(arg any) (any, error)
}

// By returns the record whose key in the named single index equals key.
// A miss returns *NotFoundError, an unregistered index *UnknownIndexError.
func (c *Collection[ID, R]) By(name string, key any) (R, error) {
	start := time.Now()
	r, ok, err := c.bySingle(name, opBy, key, true)
	if err == nil && !ok {
		err = &NotFoundError{Index: name, Value: key}
	}
	c.observe(name, KindSingle, start, err)
	return r, err
}

// ByOptional is By without a miss error. An unregistered index is a miss.
func (c *Collection[ID, R]) ByOptional(name string, key any) (R, bool, error) {
	start := time.Now()
	r, ok, err := c.bySingle(name, opByOptional, key, false)
	c.observe(name, KindSingle, start, err)
	return r, ok, err
}

func (c *Collection[ID, R]) bySingle(name, op string, key any, strict bool) (R, bool, error) {
	var zero R
	st, err := c.lookup(name, op, KindSingle, strict)
	if err != nil || st == nil {
		return zero, false, err
	}
	c.validateInput(st, name, op, key)
	r, ok := st.(singleReader[R]).lookup(key)
	if ok {
		c.validateOutput(st, name, op, r)
	}
	return r, ok, nil
}

// multi resolves a multi index for a soft read. It returns nil, nil for an
// unregistered name.
func (c *Collection[ID, R]) multi(name, op string, keys ...any) (multiReader[R], indexState[ID, R], error) {
	st, err := c.lookup(name, op, KindMulti, false)
	if err != nil || st == nil {
		return nil, nil, err
	}
	for _, k := range keys {
		c.validateInput(st, name, op, k)
	}
	return st.(multiReader[R]), st, nil
}

// Where returns every record whose keys in the named multi index include key,
// in the order they were added. Missing keys and unregistered indexes yield
// an empty slice.
func (c *Collection[ID, R]) Where(name string, key any) ([]R, error) {
	start := time.Now()
	out, err := c.bucketRead(name, opWhere, []any{key}, func(m multiReader[R]) []R { return m.where(key) })
	c.observe(name, KindMulti, start, err)
	return out, err
}

// First returns up to n records from the front of the bucket for key.
func (c *Collection[ID, R]) First(name string, key any, n int) ([]R, error) {
	start := time.Now()
	out, err := c.bucketRead(name, opFirst, []any{key}, func(m multiReader[R]) []R { return m.first(key, n) })
	c.observe(name, KindMulti, start, err)
	return out, err
}

// Latest returns up to n records from the back of the bucket for key, oldest
// first.
func (c *Collection[ID, R]) Latest(name string, key any, n int) ([]R, error) {
	start := time.Now()
	out, err := c.bucketRead(name, opLatest, []any{key}, func(m multiReader[R]) []R { return m.latest(key, n) })
	c.observe(name, KindMulti, start, err)
	return out, err
}

// WhereAll returns the records present in the bucket of every key, in the
// order of the first key's bucket.
func (c *Collection[ID, R]) WhereAll(name string, keys ...any) ([]R, error) {
	start := time.Now()
	out, err := c.bucketRead(name, opWhereAll, keys, func(m multiReader[R]) []R { return m.whereAll(keys) })
	c.observe(name, KindMulti, start, err)
	return out, err
}

// WhereAny returns the records present in the bucket of at least one key, in
// collection order.
func (c *Collection[ID, R]) WhereAny(name string, keys ...any) ([]R, error) {
	start := time.Now()
	out, err := c.bucketRead(name, opWhereAny, keys, func(m multiReader[R]) []R { return m.whereAny(keys) })
	c.observe(name, KindMulti, start, err)
	return out, err
}

// Count returns the size of the bucket for key.
func (c *Collection[ID, R]) Count(name string, key any) (int, error) {
	start := time.Now()
	m, _, err := c.multi(name, opCount, key)
	n := 0
	if m != nil {
		n = m.count(key)
	}
	c.observe(name, KindMulti, start, err)
	return n, err
}

func (c *Collection[ID, R]) bucketRead(name, op string, keys []any, read func(multiReader[R]) []R) ([]R, error) {
	m, st, err := c.multi(name, op, keys...)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return []R{}, nil
	}
	out := read(m)
	c.validateOutput(st, name, op, out)
	return out, nil
}

// GetDerived returns the current value of the named derived index, or nil for
// an unregistered name.
func (c *Collection[ID, R]) GetDerived(name string) (any, error) {
	start := time.Now()
	st, err := c.lookup(name, opGetDerived, KindDerived, false)
	var v any
	if st != nil {
		v = st.(valueReader).get()
		c.validateOutput(st, name, opGetDerived, v)
	}
	c.observe(name, KindDerived, start, err)
	return v, err
}

// GetIndex returns the function currently stored by the named dynamic index.
// Its dynamic type is func(A) T.
func (c *Collection[ID, R]) GetIndex(name string) (any, error) {
	start := time.Now()
	st, err := c.lookup(name, opGetIndex, KindDynamic, true)
	var fn any
	if st != nil {
		if err = st.(funcHolder).missing(); err == nil {
			fn = st.(valueReader).get()
		}
	}
	c.observe(name, KindDynamic, start, err)
	return fn, err
}

// Query dispatches on the kind of the named index: the winner (or nil) for a
// single index, the bucket for a multi index, the value for a derived index
// and fn(arg) for a dynamic index. arg is ignored by derived indexes.
func (c *Collection[ID, R]) Query(name string, arg any) (any, error) {
	start := time.Now()
	st, err := c.lookup(name, opQuery, 0, true)
	if err != nil {
		c.observe(name, 0, start, err)
		return nil, err
	}

	kind := st.kind()
	var out any
	switch kind {
	case KindSingle:
		c.validateInput(st, name, opQuery, arg)
		if r, ok := st.(singleReader[R]).lookup(arg); ok {
			out = r
		}
	case KindMulti:
		c.validateInput(st, name, opQuery, arg)
		out = st.(multiReader[R]).where(arg)
	case KindDerived:
		out = st.(valueReader).get()
	case KindDynamic:
		c.validateInput(st, name, opQuery, arg)
		out, err = st.(dynamicCaller).call(arg)
	}
	if err == nil && out != nil {
		c.validateOutput(st, name, opQuery, out)
	}
	c.observe(name, kind, start, err)
	return out, err
}

// DerivedValue returns the value of the named derived index as a V.
func DerivedValue[V any, ID comparable, R any](c *Collection[ID, R], name string) (V, error) {
	var zero V
	st, err := c.lookup(name, opGetDerived, KindDerived, true)
	if err != nil {
		return zero, err
	}
	typed, ok := st.(interface{ current() V })
	if !ok {
		return zero, &ArgumentTypeError{Index: name, Want: reflect.TypeFor[V]().String(), Got: st.(valueReader).get()}
	}
	return typed.current(), nil
}

// DynamicFunc returns the function stored by the named dynamic index.
func DynamicFunc[A, T any, ID comparable, R any](c *Collection[ID, R], name string) (func(A) T, error) {
	st, err := c.lookup(name, opGetIndex, KindDynamic, true)
	if err != nil {
		return nil, err
	}
	typed, ok := st.(interface{ current() func(A) T })
	if !ok {
		return nil, &ArgumentTypeError{Index: name, Want: reflect.TypeFor[func(A) T]().String(), Got: st.(valueReader).get()}
	}
	if err := st.(funcHolder).missing(); err != nil {
		return nil, err
	}
	return typed.current(), nil
}

func (c *Collection[ID, R]) observe(name string, kind Kind, start time.Time, err error) {
	c.opts.metricsCollector.RecordQuery(name, kind, time.Since(start), err)
}

func (c *Collection[ID, R]) validateInput(st indexState[ID, R], name, op string, v any) {
	if c.opts.validation {
		c.check(st, name, op, "input", v)
	}
}

func (c *Collection[ID, R]) validateOutput(st indexState[ID, R], name, op string, v any) {
	if c.opts.validation {
		c.check(st, name, op, "output", v)
	}
}

func (c *Collection[ID, R]) check(st indexState[ID, R], name, op, stage string, v any) {
	sc := st.inputSchema()
	if stage == "output" {
		sc = st.outputSchema()
	}
	if sc == nil {
		return
	}
	if err := sc.Validate(v); err != nil {
		c.opts.metricsCollector.RecordDiagnostic(name)
		c.diagnose(context.Background(), Diagnostic{
			Index: name,
			Kind:  st.kind(),
			Op:    op,
			Stage: stage,
			Value: v,
			Err:   err,
		})
	}
}
