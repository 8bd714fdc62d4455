package ixcoll

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a strict single-key lookup has no match.
	ErrNotFound = errors.New("not found")
	// ErrUnknownIndex is returned when a strict operation names an index that
	// was never registered.
	ErrUnknownIndex = errors.New("unknown index")
	// ErrKindMismatch is returned when an operation does not fit the kind of
	// the index it names.
	ErrKindMismatch = errors.New("index kind mismatch")
	// ErrOutOfRange is returned by InsertAt for a position outside [0, Len()].
	ErrOutOfRange = errors.New("position out of range")
	// ErrInvalidDefinition is returned by New for a malformed index definition.
	ErrInvalidDefinition = errors.New("invalid index definition")
	// ErrArgumentType is returned when a value cannot be used as the declared
	// Go type of a dynamic index argument or typed accessor.
	ErrArgumentType = errors.New("argument type mismatch")
)

// NotFoundError reports a By lookup without a matching record.
type NotFoundError struct {
	Index string
	Value any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("index %q: no record for key %v: %v", e.Index, e.Value, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// UnknownIndexError reports an operation naming an unregistered index.
type UnknownIndexError struct {
	Index string
	Op    string
}

func (e *UnknownIndexError) Error() string {
	return fmt.Sprintf("%s: index %q: %v", e.Op, e.Index, ErrUnknownIndex)
}

func (e *UnknownIndexError) Unwrap() error { return ErrUnknownIndex }

// KindMismatchError reports an operation whose semantics do not match the
// declared kind of the index.
type KindMismatchError struct {
	Index string
	Kind  Kind
	Op    string
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("%s: index %q is a %s index: %v", e.Op, e.Index, e.Kind, ErrKindMismatch)
}

func (e *KindMismatchError) Unwrap() error { return ErrKindMismatch }

// OutOfRangeError reports an InsertAt position outside [0, Len].
type OutOfRangeError struct {
	Index int
	Len   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("insert at %d with length %d: %v", e.Index, e.Len, ErrOutOfRange)
}

func (e *OutOfRangeError) Unwrap() error { return ErrOutOfRange }

// DefinitionError reports a malformed index definition passed to New.
type DefinitionError struct {
	Index  string
	Reason string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("index %q: %s: %v", e.Index, e.Reason, ErrInvalidDefinition)
}

func (e *DefinitionError) Unwrap() error { return ErrInvalidDefinition }

// ArgumentTypeError reports a value whose Go type does not match the type an
// index or accessor expects.
type ArgumentTypeError struct {
	Index string
	Want  string
	Got   any
}

func (e *ArgumentTypeError) Error() string {
	return fmt.Sprintf("index %q: want %s, got %T: %v", e.Index, e.Want, e.Got, ErrArgumentType)
}

func (e *ArgumentTypeError) Unwrap() error { return ErrArgumentType }

// Must returns v or panics with err. It suits call sites that treat index
// misuse as a programming error.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
