package ixcoll

import (
	"iter"
	"reflect"

	"github.com/hupe1980/ixcoll/internal/store"
	"github.com/hupe1980/ixcoll/schema"
)

// Kind identifies one of the four index variants.
type Kind uint8

const (
	// KindSingle maps a key to at most one record.
	KindSingle Kind = iota + 1
	// KindMulti maps a key to an ordered bucket of records.
	KindMulti
	// KindDerived holds a materialized value computed from the whole store.
	KindDerived
	// KindDynamic holds a stored, parameterized query function.
	KindDynamic
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindMulti:
		return "multi"
	case KindDerived:
		return "derived"
	case KindDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// View is a live, read-only view over the records of a collection in order.
// Derived computations and dynamic queries receive a View; it always reflects
// the current store contents.
type View[ID comparable, R any] interface {
	// Len returns the number of records.
	Len() int
	// Get returns the record with the given id.
	Get(id ID) (R, bool)
	// At returns the record at position i.
	At(i int) (R, bool)
	// All iterates the records in order.
	All() iter.Seq[R]
	// IDs returns the record identifiers in order.
	IDs() []ID
	// IDOf returns the identifier of r.
	IDOf(r R) ID
}

// Index is an immutable index definition. The four implementations are
// SingleIndex, MultiIndex, DerivedIndex and DynamicIndex.
type Index[ID comparable, R any] interface {
	IndexName() string
	IndexKind() Kind
	build(e *env[ID, R]) (indexState[ID, R], error)
}

// IndexInfo describes a registered index.
type IndexInfo struct {
	Name string
	Kind Kind
	// Keys is the number of distinct keys of a single or multi index.
	Keys int
}

type storeView[ID comparable, R any] struct {
	s *store.Store[ID, R]
}

func (v storeView[ID, R]) Len() int            { return v.s.Len() }
func (v storeView[ID, R]) Get(id ID) (R, bool) { return v.s.Get(id) }
func (v storeView[ID, R]) At(i int) (R, bool)  { return v.s.At(i) }
func (v storeView[ID, R]) IDs() []ID           { return v.s.IDs() }
func (v storeView[ID, R]) IDOf(r R) ID         { return v.s.IDOf(r) }

func (v storeView[ID, R]) All() iter.Seq[R] {
	return func(yield func(R) bool) {
		for _, r := range v.s.All() {
			if !yield(r) {
				return
			}
		}
	}
}

// env is what index states share with their collection.
type env[ID comparable, R any] struct {
	store   *store.Store[ID, R]
	view    View[ID, R]
	metrics MetricsCollector
}

// indexState is the mutable backing structure of one index.
//
// added is called after the record entered the store, removed after it left
// it. flush runs once at the end of every public mutation so states may defer
// expensive work across a batch.
type indexState[ID comparable, R any] interface {
	kind() Kind
	added(slot store.Slot, r R)
	removed(slot store.Slot, r R)
	reordered()
	reset()
	flush()
	inputSchema() schema.Schema
	outputSchema() schema.Schema
}

// rebuilder is implemented by states that can be recomputed from the store.
// rebuild must only read the store; apply installs the result.
type rebuilder interface {
	rebuild() (apply func(), err error)
}

// funcHolder is implemented by dynamic states, whose factory may have
// produced no function.
type funcHolder interface {
	missing() error
}

// hashable reports whether key can be used as a map key without panicking.
// The dynamic value is inspected, so an array holding a slice is rejected
// even though its type is comparable.
func hashable(key any) bool {
	if key == nil {
		return true
	}
	return reflect.ValueOf(key).Comparable()
}

// interfaceKeyed reports whether keys of type K need a hashable check before
// they are stored in a map.
func interfaceKeyed[K comparable]() bool {
	return reflect.TypeFor[K]().Kind() == reflect.Interface
}
