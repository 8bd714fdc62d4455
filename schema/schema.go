package schema

import (
	"fmt"
	"reflect"
)

// Schema validates the shape of a value.
type Schema interface {
	Validate(v any) error
}

// FieldType defines the data type of a value or object field.
type FieldType uint8

const (
	FieldAny FieldType = iota
	FieldInt
	FieldFloat
	FieldString
	FieldBool
	FieldArray
	FieldObject
)

// String returns the string representation of the FieldType.
func (t FieldType) String() string {
	switch t {
	case FieldAny:
		return "Any"
	case FieldInt:
		return "Int"
	case FieldFloat:
		return "Float"
	case FieldString:
		return "String"
	case FieldBool:
		return "Bool"
	case FieldArray:
		return "Array"
	case FieldObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// ParseFieldType maps a lowercase type name ("int", "string", ...) to a FieldType.
func ParseFieldType(name string) (FieldType, error) {
	switch name {
	case "", "any":
		return FieldAny, nil
	case "int":
		return FieldInt, nil
	case "float":
		return FieldFloat, nil
	case "string":
		return FieldString, nil
	case "bool":
		return FieldBool, nil
	case "array":
		return FieldArray, nil
	case "object":
		return FieldObject, nil
	default:
		return FieldAny, fmt.Errorf("unknown field type %q", name)
	}
}

// Type returns a schema accepting values of the given kind. Nil is accepted.
func Type(t FieldType) Schema {
	return typeSchema(t)
}

type typeSchema FieldType

func (s typeSchema) Validate(v any) error {
	if !checkType(v, FieldType(s)) {
		return fmt.Errorf("value has invalid type %T, expected %s", v, FieldType(s))
	}
	return nil
}

// Fields defines the expected kinds of the fields of an object value.
// Fields missing from the value and fields without a declared type are not checked.
type Fields map[string]FieldType

// Validate checks that v is a map[string]any conforming to the field kinds.
func (s Fields) Validate(v any) error {
	if s == nil || v == nil {
		return nil
	}
	md, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("value has invalid type %T, expected Object", v)
	}
	for k, fv := range md {
		expectedType, ok := s[k]
		if !ok {
			continue
		}
		if !checkType(fv, expectedType) {
			return fmt.Errorf("field %q has invalid type %T, expected %s", k, fv, expectedType)
		}
	}
	return nil
}

// SliceOf returns a schema validating every element of a slice or array with elem.
func SliceOf(elem Schema) Schema {
	return sliceSchema{elem: elem}
}

type sliceSchema struct {
	elem Schema
}

func (s sliceSchema) Validate(v any) error {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("value has invalid type %T, expected Array", v)
	}
	for i := range rv.Len() {
		if err := s.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// Func adapts a function to the Schema interface.
type Func func(v any) error

// Validate calls f(v).
func (f Func) Validate(v any) error {
	return f(v)
}

func checkType(v any, expected FieldType) bool {
	if v == nil {
		return true
	}

	switch expected {
	case FieldAny:
		return true
	case FieldInt:
		switch val := v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64:
			// JSON unmarshals numbers as float64.
			return val == float64(int64(val))
		}
	case FieldFloat:
		switch v.(type) {
		case float32, float64:
			return true
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		}
	case FieldString:
		_, ok := v.(string)
		return ok
	case FieldBool:
		_, ok := v.(bool)
		return ok
	case FieldArray:
		k := reflect.TypeOf(v).Kind()
		return k == reflect.Slice || k == reflect.Array
	case FieldObject:
		k := reflect.TypeOf(v).Kind()
		if k == reflect.Pointer {
			k = reflect.TypeOf(v).Elem().Kind()
		}
		return k == reflect.Map || k == reflect.Struct
	}
	return false
}
