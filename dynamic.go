package ixcoll

import (
	"fmt"
	"reflect"

	"github.com/hupe1980/ixcoll/internal/store"
	"github.com/hupe1980/ixcoll/schema"
)

// DynamicIndex stores a parameterized query function built from the
// collection.
//
// Factory runs once at construction and again on Clear and Rebuild. The
// returned function receives a live View, so it always answers against the
// current records. OnAdd and OnRemove may return a replacement function; a nil
// return keeps the current one.
type DynamicIndex[ID comparable, R any, A any, T any] struct {
	Name     string
	Factory  func(v View[ID, R]) func(A) T
	OnAdd    func(fn func(A) T, r R, v View[ID, R]) func(A) T
	OnRemove func(fn func(A) T, r R, v View[ID, R]) func(A) T
	// Input validates query arguments, Output validates results.
	Input  schema.Schema
	Output schema.Schema

	session func(v View[ID, R]) (fn func(A) T, onAdd, onRemove func(R))
}

// Dynamic defines a dynamic index over factory.
func Dynamic[ID comparable, R any, A any, T any](name string, factory func(View[ID, R]) func(A) T) DynamicIndex[ID, R, A, T] {
	return DynamicIndex[ID, R, A, T]{Name: name, Factory: factory}
}

// Stateful defines a dynamic index backed by per-collection state S.
//
// init builds the state from the current records, query turns it into the
// stored function, and onAdd and onRemove keep it current. S is shared by the
// hooks and the query function, so it should be a pointer or reference type.
// Each collection, and each Clear or Rebuild, gets a fresh state from init.
func Stateful[ID comparable, R any, S any, A any, T any](
	name string,
	init func(View[ID, R]) S,
	query func(S, View[ID, R]) func(A) T,
	onAdd, onRemove func(S, R, View[ID, R]),
) DynamicIndex[ID, R, A, T] {
	d := DynamicIndex[ID, R, A, T]{Name: name}
	if init == nil || query == nil {
		return d
	}
	d.session = func(v View[ID, R]) (func(A) T, func(R), func(R)) {
		st := init(v)
		var add, remove func(R)
		if onAdd != nil {
			add = func(r R) { onAdd(st, r, v) }
		}
		if onRemove != nil {
			remove = func(r R) { onRemove(st, r, v) }
		}
		return query(st, v), add, remove
	}
	return d
}

// IndexName implements Index.
func (d DynamicIndex[ID, R, A, T]) IndexName() string { return d.Name }

// IndexKind implements Index.
func (d DynamicIndex[ID, R, A, T]) IndexKind() Kind { return KindDynamic }

// WithInput returns a copy of d validating query arguments with s.
func (d DynamicIndex[ID, R, A, T]) WithInput(s schema.Schema) DynamicIndex[ID, R, A, T] {
	d.Input = s
	return d
}

// WithOutput returns a copy of d validating query results with s.
func (d DynamicIndex[ID, R, A, T]) WithOutput(s schema.Schema) DynamicIndex[ID, R, A, T] {
	d.Output = s
	return d
}

func (d DynamicIndex[ID, R, A, T]) build(e *env[ID, R]) (indexState[ID, R], error) {
	if d.Factory == nil && d.session == nil {
		return nil, &DefinitionError{Index: d.Name, Reason: "dynamic index without factory"}
	}
	return &dynamicState[ID, R, A, T]{def: d, env: e, stale: true}, nil
}

type dynamicState[ID comparable, R any, A any, T any] struct {
	def DynamicIndex[ID, R, A, T]
	env *env[ID, R]

	fn       func(A) T
	onAdd    func(R)
	onRemove func(R)
	stale    bool
}

func (s *dynamicState[ID, R, A, T]) kind() Kind                  { return KindDynamic }
func (s *dynamicState[ID, R, A, T]) inputSchema() schema.Schema  { return s.def.Input }
func (s *dynamicState[ID, R, A, T]) outputSchema() schema.Schema { return s.def.Output }
func (s *dynamicState[ID, R, A, T]) reordered()                  {}

// instantiate runs the factory or opens a new session.
func (s *dynamicState[ID, R, A, T]) instantiate() (fn func(A) T, onAdd, onRemove func(R)) {
	if s.def.session != nil {
		return s.def.session(s.env.view)
	}
	return s.def.Factory(s.env.view), nil, nil
}

func (s *dynamicState[ID, R, A, T]) install(fn func(A) T, onAdd, onRemove func(R)) {
	s.fn, s.onAdd, s.onRemove = fn, onAdd, onRemove
	s.stale = false
}

func (s *dynamicState[ID, R, A, T]) added(_ store.Slot, r R) {
	if s.stale {
		return
	}
	switch {
	case s.onAdd != nil:
		s.onAdd(r)
	case s.def.OnAdd != nil:
		if fn := s.def.OnAdd(s.fn, r, s.env.view); fn != nil {
			s.fn = fn
		}
	default:
		return
	}
	s.env.metrics.RecordMaintenance(s.def.Name, KindDynamic, MaintenanceIncremental)
}

func (s *dynamicState[ID, R, A, T]) removed(_ store.Slot, r R) {
	if s.stale {
		return
	}
	switch {
	case s.onRemove != nil:
		s.onRemove(r)
	case s.def.OnRemove != nil:
		if fn := s.def.OnRemove(s.fn, r, s.env.view); fn != nil {
			s.fn = fn
		}
	default:
		return
	}
	s.env.metrics.RecordMaintenance(s.def.Name, KindDynamic, MaintenanceIncremental)
}

func (s *dynamicState[ID, R, A, T]) reset() {
	s.stale = true
}

func (s *dynamicState[ID, R, A, T]) flush() {
	if !s.stale {
		return
	}
	s.install(s.instantiate())
	s.env.metrics.RecordMaintenance(s.def.Name, KindDynamic, MaintenanceRecompute)
}

func (s *dynamicState[ID, R, A, T]) rebuild() (apply func(), err error) {
	defer func() {
		if p := recover(); p != nil {
			apply, err = nil, fmt.Errorf("dynamic index %q: factory panicked: %v", s.def.Name, p)
		}
	}()
	fn, onAdd, onRemove := s.instantiate()
	if fn == nil {
		return nil, s.nilFunc()
	}
	return func() {
		s.install(fn, onAdd, onRemove)
		s.env.metrics.RecordMaintenance(s.def.Name, KindDynamic, MaintenanceRecompute)
	}, nil
}

func (s *dynamicState[ID, R, A, T]) get() any { return s.fn }

func (s *dynamicState[ID, R, A, T]) current() func(A) T { return s.fn }

// missing reports a factory or session that produced no function.
func (s *dynamicState[ID, R, A, T]) missing() error {
	if s.fn == nil {
		return s.nilFunc()
	}
	return nil
}

func (s *dynamicState[ID, R, A, T]) nilFunc() error {
	return &DefinitionError{Index: s.def.Name, Reason: "dynamic factory returned a nil function"}
}

// call applies the stored function to arg. A nil arg means the zero A.
func (s *dynamicState[ID, R, A, T]) call(arg any) (any, error) {
	if err := s.missing(); err != nil {
		return nil, err
	}
	var a A
	if arg != nil {
		v, ok := arg.(A)
		if !ok {
			return nil, &ArgumentTypeError{Index: s.def.Name, Want: reflect.TypeFor[A]().String(), Got: arg}
		}
		a = v
	}
	return s.fn(a), nil
}
