package entity

import (
	"fmt"
	"reflect"

	"github.com/sesho96/ytsaurus/internal/skiff"
	"github.com/sesho96/ytsaurus/internal/skiff/schema"
)

// rowType resolves T to the struct type the plan is compiled against.
// T may be a struct or a pointer to a struct.
func rowType[T any]() (reflect.Type, bool, error) {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		return t.Elem(), true, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, false, fmt.Errorf("entity: %s is not a struct or pointer to struct", t)
	}
	return t, false, nil
}

// Serializer writes values of T laid out by a row schema.
type Serializer[T any] struct {
	plan plan
	ptr  bool
}

// NewSerializer compiles an encoder for T against s. Every column of s must
// map to a field of T.
func NewSerializer[T any](s *schema.Schema) (*Serializer[T], error) {
	t, ptr, err := rowType[T]()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(s); err != nil {
		return nil, err
	}
	p, err := compile(s, t, "")
	if err != nil {
		return nil, err
	}
	return &Serializer[T]{plan: p, ptr: ptr}, nil
}

// Serialize writes v's fields in schema order.
func (s *Serializer[T]) Serialize(w *skiff.Writer, v T) error {
	rv := reflect.ValueOf(&v).Elem()
	if s.ptr {
		if rv.IsNil() {
			return ErrNilEntity
		}
		rv = rv.Elem()
	}
	return s.plan.enc(w, rv)
}

// Deserializer reads values of T laid out by a row schema.
type Deserializer[T any] struct {
	plan plan
	t    reflect.Type
	ptr  bool
}

// NewDeserializer compiles a decoder for T against s. Every column of s must
// map to a field of T.
func NewDeserializer[T any](s *schema.Schema) (*Deserializer[T], error) {
	t, ptr, err := rowType[T]()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(s); err != nil {
		return nil, err
	}
	p, err := compile(s, t, "")
	if err != nil {
		return nil, err
	}
	return &Deserializer[T]{plan: p, t: t, ptr: ptr}, nil
}

// Deserialize reads one entity. ok is false when the stream ended before
// the entity's first byte; a stream that ends mid-entity is an error
// wrapping skiff.ErrTruncated. An entity with no columns occupies no bytes
// and is always read.
func (d *Deserializer[T]) Deserialize(p *skiff.Parser) (out T, ok bool, err error) {
	if !d.plan.empty {
		more, err := p.HasMoreData()
		if err != nil || !more {
			return out, false, err
		}
	}
	rv := reflect.ValueOf(&out).Elem()
	if d.ptr {
		rv.Set(reflect.New(d.t))
		rv = rv.Elem()
	}
	if err := d.plan.dec(p, rv); err != nil {
		var zero T
		return zero, false, err
	}
	return out, true, nil
}
