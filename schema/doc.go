// Package schema provides shape descriptors for index query arguments and
// results.
//
// A Schema validates a loosely-typed value and reports the first violation it
// finds. Collections consult the input and output schemas of an index only
// when validation is enabled, and a failure never prevents the query from
// running.
//
// # Descriptors
//
//   - Type(FieldString): scalar kind check
//   - Fields{"name": FieldString}: object (map[string]any) field kinds
//   - SliceOf(s): every element of a slice or array
//   - Struct(): go-playground/validator struct tags
//   - Var("required,min=1"): a validator tag applied to a single value
//   - Func(fn): arbitrary check
//
// Example:
//
//	in := schema.Type(schema.FieldString)
//	out := schema.SliceOf(schema.Struct())
package schema
