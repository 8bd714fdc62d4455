// Package pathexpr parses and evaluates lightweight path expressions over
// arbitrary Go values.
//
// A path is a sequence of steps. Field steps are written dotted or as quoted
// brackets, index steps as bracketed non-negative integers:
//
//	parent_id
//	children[0]
//	meta["owner"].id
//	rows[2]['display name']
//
// Evaluation walks maps with string keys, structs (by Go field name or json
// tag), pointers, interfaces, slices and arrays. A step that cannot be taken
// makes the whole path undefined, and so does a nil result. Evaluation never
// panics.
package pathexpr

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("pathexpr: invalid syntax")

// Step is one element of a path.
type Step struct {
	Field   string
	Index   int
	IsIndex bool
}

// Path is a parsed path expression.
type Path []Step

// Parse parses a path expression.
func Parse(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty path", ErrSyntax)
	}

	var (
		p   Path
		i   int
		dot = true // a field is expected next
	)
	for i < len(s) {
		switch c := s[i]; {
		case c == '[':
			step, n, err := parseBracket(s, i)
			if err != nil {
				return nil, err
			}
			p = append(p, step)
			i = n
			dot = false
		case c == '.':
			if dot {
				return nil, fmt.Errorf("%w: unexpected '.' at %d in %q", ErrSyntax, i, s)
			}
			i++
			dot = true
			if i == len(s) {
				return nil, fmt.Errorf("%w: trailing '.' in %q", ErrSyntax, s)
			}
		case c == ']':
			return nil, fmt.Errorf("%w: unexpected ']' at %d in %q", ErrSyntax, i, s)
		default:
			if !dot {
				return nil, fmt.Errorf("%w: expected '.' or '[' at %d in %q", ErrSyntax, i, s)
			}
			j := i
			for j < len(s) && s[j] != '.' && s[j] != '[' && s[j] != ']' {
				j++
			}
			p = append(p, Step{Field: s[i:j]})
			i = j
			dot = false
		}
	}
	return p, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func parseBracket(s string, start int) (Step, int, error) {
	i := start + 1
	if i >= len(s) {
		return Step{}, 0, fmt.Errorf("%w: unterminated '[' in %q", ErrSyntax, s)
	}

	if q := s[i]; q == '"' || q == '\'' {
		var b strings.Builder
		i++
		for i < len(s) && s[i] != q {
			if s[i] == '\\' && i+1 < len(s) {
				i++
			}
			b.WriteByte(s[i])
			i++
		}
		if i+1 >= len(s) || s[i+1] != ']' {
			return Step{}, 0, fmt.Errorf("%w: unterminated quoted key in %q", ErrSyntax, s)
		}
		return Step{Field: b.String()}, i + 2, nil
	}

	end := strings.IndexByte(s[i:], ']')
	if end < 0 {
		return Step{}, 0, fmt.Errorf("%w: unterminated '[' in %q", ErrSyntax, s)
	}
	n, err := strconv.Atoi(s[i : i+end])
	if err != nil || n < 0 {
		return Step{}, 0, fmt.Errorf("%w: invalid index %q in %q", ErrSyntax, s[i:i+end], s)
	}
	return Step{Index: n, IsIndex: true}, i + end + 1, nil
}

// String formats the path in canonical form.
func (p Path) String() string {
	var b strings.Builder
	for i, st := range p {
		switch {
		case st.IsIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(st.Index))
			b.WriteByte(']')
		case isPlainField(st.Field):
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(st.Field)
		default:
			b.WriteString("[")
			b.WriteString(strconv.Quote(st.Field))
			b.WriteString("]")
		}
	}
	return b.String()
}

func isPlainField(f string) bool {
	return f != "" && !strings.ContainsAny(f, `.[]"'\`)
}

// Lookup evaluates the path against v. The boolean reports whether the path
// is defined for v.
func (p Path) Lookup(v any) (any, bool) {
	rv := reflect.ValueOf(v)
	for _, st := range p {
		var ok bool
		rv, ok = step(rv, st)
		if !ok {
			return nil, false
		}
	}
	rv, ok := indirect(rv)
	if !ok || !rv.CanInterface() {
		return nil, false
	}
	return rv.Interface(), true
}

// indirect unwraps interfaces and pointers. A nil along the way is undefined.
func indirect(rv reflect.Value) (reflect.Value, bool) {
	for rv.IsValid() && (rv.Kind() == reflect.Interface || rv.Kind() == reflect.Pointer) {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, rv.IsValid()
}

func step(rv reflect.Value, st Step) (reflect.Value, bool) {
	rv, ok := indirect(rv)
	if !ok {
		return reflect.Value{}, false
	}

	if st.IsIndex {
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			if st.Index >= rv.Len() {
				return reflect.Value{}, false
			}
			return rv.Index(st.Index), true
		}
		return reflect.Value{}, false
	}

	switch rv.Kind() {
	case reflect.Map:
		kt := rv.Type().Key()
		if kt.Kind() != reflect.String {
			return reflect.Value{}, false
		}
		mv := rv.MapIndex(reflect.ValueOf(st.Field).Convert(kt))
		return mv, mv.IsValid()
	case reflect.Struct:
		return structField(rv, st.Field)
	}
	return reflect.Value{}, false
}

func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()
	if f, ok := t.FieldByName(name); ok && f.IsExported() {
		return rv.FieldByIndex(f.Index), true
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == name {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}
