// Package schema describes the binary layout of a skiff row.
package schema

import (
	"fmt"
	"strings"
)

// WireType names a skiff wire type as the engine spells it.
type WireType string

const (
	Nothing           WireType = "nothing"
	Int8              WireType = "int8"
	Int16             WireType = "int16"
	Int32             WireType = "int32"
	Int64             WireType = "int64"
	Uint8             WireType = "uint8"
	Uint16            WireType = "uint16"
	Uint32            WireType = "uint32"
	Uint64            WireType = "uint64"
	Double            WireType = "double"
	Boolean           WireType = "boolean"
	String32          WireType = "string32"
	Yson32            WireType = "yson32"
	Tuple             WireType = "tuple"
	Variant8          WireType = "variant8"
	Variant16         WireType = "variant16"
	RepeatedVariant8  WireType = "repeated_variant8"
	RepeatedVariant16 WireType = "repeated_variant16"
)

// IsSimple reports whether t is a leaf type without children.
func (t WireType) IsSimple() bool {
	switch t {
	case Tuple, Variant8, Variant16, RepeatedVariant8, RepeatedVariant16:
		return false
	default:
		return true
	}
}

func (t WireType) known() bool {
	switch t {
	case Nothing, Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64,
		Double, Boolean, String32, Yson32,
		Tuple, Variant8, Variant16, RepeatedVariant8, RepeatedVariant16:
		return true
	default:
		return false
	}
}

// Schema is one node of a row layout tree.
type Schema struct {
	Name     string
	WireType WireType
	Children []*Schema
}

func Simple(t WireType) *Schema {
	return &Schema{WireType: t}
}

func NothingType() *Schema {
	return &Schema{WireType: Nothing}
}

func TupleOf(children ...*Schema) *Schema {
	return &Schema{WireType: Tuple, Children: children}
}

func Variant8Of(children ...*Schema) *Schema {
	return &Schema{WireType: Variant8, Children: children}
}

func Variant16Of(children ...*Schema) *Schema {
	return &Schema{WireType: Variant16, Children: children}
}

func RepeatedVariant8Of(children ...*Schema) *Schema {
	return &Schema{WireType: RepeatedVariant8, Children: children}
}

func RepeatedVariant16Of(children ...*Schema) *Schema {
	return &Schema{WireType: RepeatedVariant16, Children: children}
}

// Optional wraps s as variant8<nothing, s>.
func Optional(s *Schema) *Schema {
	return Variant8Of(NothingType(), s)
}

// Named returns a shallow copy of s carrying name.
func (s *Schema) Named(name string) *Schema {
	out := *s
	out.Name = name
	return &out
}

// IsOptional reports whether s is variant8<nothing, x> or variant16<nothing, x>.
func (s *Schema) IsOptional() bool {
	if s.WireType != Variant8 && s.WireType != Variant16 {
		return false
	}
	return len(s.Children) == 2 && s.Children[0].WireType == Nothing
}

// Clone returns a deep copy of s.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := &Schema{Name: s.Name, WireType: s.WireType}
	if s.Children != nil {
		out.Children = make([]*Schema, len(s.Children))
		for i, c := range s.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Child returns the direct child with the given name.
func (s *Schema) Child(name string) (*Schema, bool) {
	for _, c := range s.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (s *Schema) String() string {
	var b strings.Builder
	s.format(&b)
	return b.String()
}

func (s *Schema) format(b *strings.Builder) {
	if s.Name != "" {
		fmt.Fprintf(b, "%s:", s.Name)
	}
	b.WriteString(string(s.WireType))
	if len(s.Children) == 0 {
		return
	}
	b.WriteByte('<')
	for i, c := range s.Children {
		if i > 0 {
			b.WriteByte(',')
		}
		c.format(b)
	}
	b.WriteByte('>')
}
