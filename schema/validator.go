package schema

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// validate is shared by every struct and tag schema. validator.Validate caches
// struct metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterValidation adds a custom tag usable by Struct and Var schemas.
func RegisterValidation(tag string, fn validator.Func) error {
	return validate.RegisterValidation(tag, fn)
}

// Struct returns a schema validating struct values (or pointers to structs)
// against their `validate` struct tags.
func Struct() Schema {
	return structSchema{}
}

type structSchema struct{}

func (structSchema) Validate(v any) error {
	if v == nil {
		return fmt.Errorf("value is nil, expected struct")
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Errorf("value is a nil %T, expected struct", v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("value has invalid type %T, expected struct", v)
	}
	return validate.Struct(rv.Interface())
}

// Var returns a schema applying a validator tag such as "required,min=1" to the
// value itself.
func Var(tag string) Schema {
	return varSchema(tag)
}

type varSchema string

func (s varSchema) Validate(v any) error {
	return validate.Var(v, string(s))
}
