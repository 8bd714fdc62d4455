package ixcoll

import (
	"fmt"

	"github.com/hupe1980/ixcoll/internal/store"
	"github.com/hupe1980/ixcoll/schema"
)

// DerivedIndex holds a single value computed from the whole collection.
//
// Compute is authoritative. It runs at construction, on Clear and Rebuild, and
// after every mutation that touches a matching record unless both OnAdd and
// OnRemove are set. With both hooks the value is maintained incrementally and
// must stay equal to what Compute would return for the current records.
type DerivedIndex[ID comparable, R any, V any] struct {
	Name    string
	Compute func(v View[ID, R]) V
	// Matches restricts maintenance to records it accepts. Mutations of other
	// records neither call the hooks nor trigger a recompute.
	Matches func(r R) bool
	// OnAdd runs after r entered the collection, OnRemove after r left it.
	// The view already reflects the change.
	OnAdd    func(value *V, r R, v View[ID, R])
	OnRemove func(value *V, r R, v View[ID, R])
	// OrderSensitive recomputes the value after Reorder.
	OrderSensitive bool
	Output         schema.Schema
}

// Derived defines a derived index recomputed on every relevant mutation.
func Derived[ID comparable, R any, V any](name string, compute func(View[ID, R]) V) DerivedIndex[ID, R, V] {
	return DerivedIndex[ID, R, V]{Name: name, Compute: compute}
}

// IndexName implements Index.
func (d DerivedIndex[ID, R, V]) IndexName() string { return d.Name }

// IndexKind implements Index.
func (d DerivedIndex[ID, R, V]) IndexKind() Kind { return KindDerived }

// WithMatches returns a copy of d restricted to records accepted by fn.
func (d DerivedIndex[ID, R, V]) WithMatches(fn func(R) bool) DerivedIndex[ID, R, V] {
	d.Matches = fn
	return d
}

// WithHooks returns a copy of d maintained incrementally by onAdd and onRemove.
func (d DerivedIndex[ID, R, V]) WithHooks(onAdd, onRemove func(*V, R, View[ID, R])) DerivedIndex[ID, R, V] {
	d.OnAdd = onAdd
	d.OnRemove = onRemove
	return d
}

// WithOrderSensitive returns a copy of d recomputed after every Reorder.
func (d DerivedIndex[ID, R, V]) WithOrderSensitive() DerivedIndex[ID, R, V] {
	d.OrderSensitive = true
	return d
}

// WithOutput returns a copy of d validating its value with s.
func (d DerivedIndex[ID, R, V]) WithOutput(s schema.Schema) DerivedIndex[ID, R, V] {
	d.Output = s
	return d
}

func (d DerivedIndex[ID, R, V]) build(e *env[ID, R]) (indexState[ID, R], error) {
	if d.Compute == nil {
		return nil, &DefinitionError{Index: d.Name, Reason: "derived index without compute"}
	}
	return &derivedState[ID, R, V]{def: d, env: e, dirty: true}, nil
}

type derivedState[ID comparable, R any, V any] struct {
	def   DerivedIndex[ID, R, V]
	env   *env[ID, R]
	value V
	dirty bool
}

func (s *derivedState[ID, R, V]) kind() Kind                  { return KindDerived }
func (s *derivedState[ID, R, V]) inputSchema() schema.Schema  { return nil }
func (s *derivedState[ID, R, V]) outputSchema() schema.Schema { return s.def.Output }

func (s *derivedState[ID, R, V]) incremental() bool {
	return s.def.OnAdd != nil && s.def.OnRemove != nil
}

func (s *derivedState[ID, R, V]) matches(r R) bool {
	if s.def.Matches != nil && !s.def.Matches(r) {
		s.env.metrics.RecordMaintenance(s.def.Name, KindDerived, MaintenanceSkipped)
		return false
	}
	return true
}

func (s *derivedState[ID, R, V]) added(_ store.Slot, r R) {
	if !s.matches(r) {
		return
	}
	if s.dirty || !s.incremental() {
		s.dirty = true
		return
	}
	s.def.OnAdd(&s.value, r, s.env.view)
	s.env.metrics.RecordMaintenance(s.def.Name, KindDerived, MaintenanceIncremental)
}

func (s *derivedState[ID, R, V]) removed(_ store.Slot, r R) {
	if !s.matches(r) {
		return
	}
	if s.dirty || !s.incremental() {
		s.dirty = true
		return
	}
	s.def.OnRemove(&s.value, r, s.env.view)
	s.env.metrics.RecordMaintenance(s.def.Name, KindDerived, MaintenanceIncremental)
}

func (s *derivedState[ID, R, V]) reordered() {
	if s.def.OrderSensitive {
		s.dirty = true
	}
}

func (s *derivedState[ID, R, V]) reset() {
	s.dirty = true
}

func (s *derivedState[ID, R, V]) flush() {
	if !s.dirty {
		return
	}
	s.value = s.def.Compute(s.env.view)
	s.dirty = false
	s.env.metrics.RecordMaintenance(s.def.Name, KindDerived, MaintenanceRecompute)
}

func (s *derivedState[ID, R, V]) rebuild() (apply func(), err error) {
	defer func() {
		if p := recover(); p != nil {
			apply, err = nil, fmt.Errorf("derived index %q: compute panicked: %v", s.def.Name, p)
		}
	}()
	v := s.def.Compute(s.env.view)
	return func() {
		s.value = v
		s.dirty = false
		s.env.metrics.RecordMaintenance(s.def.Name, KindDerived, MaintenanceRecompute)
	}, nil
}

func (s *derivedState[ID, R, V]) get() any { return s.value }

func (s *derivedState[ID, R, V]) current() V { return s.value }
