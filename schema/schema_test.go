package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType(t *testing.T) {
	tests := []struct {
		name  string
		typ   FieldType
		value any
		ok    bool
	}{
		{"string", FieldString, "x", true},
		{"string mismatch", FieldString, 1, false},
		{"int", FieldInt, 3, true},
		{"int from json float", FieldInt, float64(3), true},
		{"int fractional", FieldInt, 3.5, false},
		{"float accepts int", FieldFloat, 2, true},
		{"bool", FieldBool, true, true},
		{"array", FieldArray, []string{"a"}, true},
		{"array mismatch", FieldArray, "a", false},
		{"object map", FieldObject, map[string]any{}, true},
		{"object struct pointer", FieldObject, &struct{}{}, true},
		{"nil always valid", FieldString, nil, true},
		{"any", FieldAny, struct{}{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Type(tt.typ).Validate(tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFields(t *testing.T) {
	s := Fields{"name": FieldString, "age": FieldInt}

	assert.NoError(t, s.Validate(map[string]any{"name": "a", "age": 3, "extra": true}))
	assert.NoError(t, s.Validate(nil))

	err := s.Validate(map[string]any{"name": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "name"`)

	assert.Error(t, s.Validate("not an object"))
}

func TestSliceOf(t *testing.T) {
	s := SliceOf(Type(FieldInt))
	assert.NoError(t, s.Validate([]int{1, 2}))
	assert.NoError(t, s.Validate([]any{}))

	err := s.Validate([]any{1, "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element 1")

	assert.Error(t, s.Validate(5))
}

type user struct {
	Name  string `validate:"required"`
	Email string `validate:"omitempty,email"`
}

func TestStruct(t *testing.T) {
	s := Struct()
	assert.NoError(t, s.Validate(user{Name: "a"}))
	assert.NoError(t, s.Validate(&user{Name: "a", Email: "a@b.io"}))
	assert.Error(t, s.Validate(user{}))
	assert.Error(t, s.Validate(user{Name: "a", Email: "nope"}))
	assert.Error(t, s.Validate(nil))
	assert.Error(t, s.Validate((*user)(nil)))
	assert.Error(t, s.Validate(42))
}

func TestVar(t *testing.T) {
	s := Var("required,min=2")
	assert.NoError(t, s.Validate("ab"))
	assert.Error(t, s.Validate("a"))
	assert.Error(t, s.Validate(""))
}

func TestFunc(t *testing.T) {
	calls := 0
	s := Func(func(v any) error {
		calls++
		return nil
	})
	assert.NoError(t, s.Validate(1))
	assert.Equal(t, 1, calls)
}

func TestParseFieldType(t *testing.T) {
	ft, err := ParseFieldType("string")
	require.NoError(t, err)
	assert.Equal(t, FieldString, ft)
	assert.Equal(t, "String", ft.String())

	_, err = ParseFieldType("uuid")
	assert.Error(t, err)
}
