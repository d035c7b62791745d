package schema

import (
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// TagName is the struct tag key naming a column.
const TagName = "skiff"

var inferCache sync.Map // reflect.Type -> *Schema

// For derives the row schema of T. See FromType.
func For[T any]() (*Schema, error) {
	return FromType(reflect.TypeFor[T]())
}

// FromType derives a row schema from the shape of a struct type.
//
// Each exported field becomes a tuple child. The column name defaults to the
// Go field name with its first rune lower cased and can be set with a
// `skiff:"name"` tag; `skiff:"-"` skips the field. Names starting with "$"
// are reserved for engine columns and rejected.
//
// Go kinds map to wire types as follows:
//
//	int8, int16, int32, int64, int  -> int8 .. int64 (int is int64)
//	uint8 .. uint64, uint           -> uint8 .. uint64 (uint is uint64)
//	float32, float64                -> double
//	bool                            -> boolean
//	string, []byte                  -> string32
//	*T                              -> variant8<nothing, T>
//	[]T                             -> repeated_variant8<T>
//	struct                          -> tuple
//
// Maps, arrays, interfaces, channels, funcs and recursive types are not
// supported. The returned schema is a private copy the caller may modify.
func FromType(t reflect.Type) (*Schema, error) {
	if t == nil {
		return nil, &UnsupportedTypeError{Type: t, Message: "nil type"}
	}
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, &UnsupportedTypeError{Type: t, Message: "row type must be a struct"}
	}
	if cached, ok := inferCache.Load(t); ok {
		return cached.(*Schema).Clone(), nil
	}
	s, err := inferType(t, nil)
	if err != nil {
		return nil, err
	}
	inferCache.Store(t, s)
	return s.Clone(), nil
}

func inferType(t reflect.Type, parents []reflect.Type) (*Schema, error) {
	switch t.Kind() {
	case reflect.Int8:
		return Simple(Int8), nil
	case reflect.Int16:
		return Simple(Int16), nil
	case reflect.Int32:
		return Simple(Int32), nil
	case reflect.Int64, reflect.Int:
		return Simple(Int64), nil
	case reflect.Uint8:
		return Simple(Uint8), nil
	case reflect.Uint16:
		return Simple(Uint16), nil
	case reflect.Uint32:
		return Simple(Uint32), nil
	case reflect.Uint64, reflect.Uint:
		return Simple(Uint64), nil
	case reflect.Float32, reflect.Float64:
		return Simple(Double), nil
	case reflect.Bool:
		return Simple(Boolean), nil
	case reflect.String:
		return Simple(String32), nil
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Pointer {
			return nil, &UnsupportedTypeError{Type: t, Message: "nested optional"}
		}
		inner, err := inferType(t.Elem(), parents)
		if err != nil {
			return nil, err
		}
		return Optional(inner), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return Simple(String32), nil
		}
		inner, err := inferType(t.Elem(), parents)
		if err != nil {
			return nil, err
		}
		return RepeatedVariant8Of(inner), nil
	case reflect.Struct:
		return inferStruct(t, parents)
	default:
		return nil, &UnsupportedTypeError{Type: t}
	}
}

func inferStruct(t reflect.Type, parents []reflect.Type) (*Schema, error) {
	for _, p := range parents {
		if p == t {
			return nil, &UnsupportedTypeError{Type: t, Message: "recursive type"}
		}
	}
	parents = append(parents, t)

	out := TupleOf()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, ok, err := FieldName(t, f)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		child, err := inferType(f.Type, parents)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, child.Named(name))
	}
	return out, nil
}

// FieldName returns the column name of struct field f, or false when the
// field does not map to a column.
func FieldName(t reflect.Type, f reflect.StructField) (string, bool, error) {
	if f.Anonymous || !f.IsExported() {
		return "", false, nil
	}
	tag, hasTag := f.Tag.Lookup(TagName)
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return "", false, nil
	}
	if !hasTag || name == "" {
		return lowerFirst(f.Name), true, nil
	}
	if IsSystemField(name) || strings.ContainsAny(name, " \t\r\n") {
		return "", false, &InvalidTagError{Type: t, Field: f.Name, Tag: tag}
	}
	return name, true, nil
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}
