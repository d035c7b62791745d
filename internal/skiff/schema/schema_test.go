package schema

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	City string
	Zip  *int32 `skiff:"zip_code"`
}

type person struct {
	ID       int64 `skiff:"id"`
	Name     string
	Age      uint8
	Score    float32
	Active   bool
	Payload  []byte
	Tags     []string
	Home     *address
	Count    int
	Big      uint
	Ignored  string `skiff:"-"`
	internal int
}

func TestForMapsGoKindsToWireTypes(t *testing.T) {
	s, err := For[person]()
	require.NoError(t, err)
	assert.Equal(t,
		"tuple<id:int64,name:string32,age:uint8,score:double,active:boolean,payload:string32,"+
			"tags:repeated_variant8<string32>,"+
			"home:variant8<nothing,tuple<city:string32,zip_code:variant8<nothing,int32>>>,"+
			"count:int64,big:uint64>",
		s.String())
	require.NoError(t, Validate(s))

	home, ok := s.Child("home")
	require.True(t, ok)
	assert.True(t, home.IsOptional())
}

func TestForAcceptsPointerToStruct(t *testing.T) {
	a, err := For[*address]()
	require.NoError(t, err)
	b, err := For[address]()
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
}

func TestForReturnsPrivateCopies(t *testing.T) {
	a, err := For[address]()
	require.NoError(t, err)
	a.Children[0].Name = "mutated"
	a.Children = a.Children[:1]

	b, err := For[address]()
	require.NoError(t, err)
	require.Len(t, b.Children, 2)
	assert.Equal(t, "city", b.Children[0].Name)
}

type node struct {
	Value int64
	Next  *node
}

type withMap struct {
	M map[string]int
}

type nestedPointer struct {
	P **int64
}

type badTag struct {
	Index int64 `skiff:"$row_index"`
}

type spacedTag struct {
	A int64 `skiff:"a b"`
}

func TestForRejectsUnsupportedTypes(t *testing.T) {
	cases := []struct {
		name string
		typ  reflect.Type
	}{
		{"not a struct", reflect.TypeFor[int]()},
		{"recursive", reflect.TypeFor[node]()},
		{"map field", reflect.TypeFor[withMap]()},
		{"nested pointer", reflect.TypeFor[nestedPointer]()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromType(tc.typ)
			var unsupported *UnsupportedTypeError
			assert.True(t, errors.As(err, &unsupported), "got %v", err)
		})
	}
}

func TestForRejectsInvalidTags(t *testing.T) {
	for _, typ := range []reflect.Type{reflect.TypeFor[badTag](), reflect.TypeFor[spacedTag]()} {
		_, err := FromType(typ)
		var tagErr *InvalidTagError
		assert.ErrorAs(t, err, &tagErr)
	}
}

func TestWithRowIndexLeavesBaseUntouched(t *testing.T) {
	base := TupleOf(Simple(Int64).Named("id"), Simple(String32).Named("name"))
	before := base.String()

	extended, err := WithRowIndex(base)
	require.NoError(t, err)
	assert.Equal(t, before, base.String())
	assert.Len(t, base.Children, 2)
	assert.True(t, HasRowIndex(extended))
	assert.False(t, HasRowIndex(base))
	assert.Equal(t, "tuple<id:int64,name:string32,$row_index:variant8<nothing,int64>>", extended.String())

	again, err := WithRowIndex(base)
	require.NoError(t, err)
	assert.Equal(t, extended.String(), again.String())
	assert.NotSame(t, extended.Children[0], again.Children[0])
}

func TestWithRowIndexErrors(t *testing.T) {
	_, err := WithRowIndex(Simple(Int64))
	assert.ErrorIs(t, err, ErrNotTuple)

	extended, err := WithRowIndex(TupleOf())
	require.NoError(t, err)
	_, err = WithRowIndex(extended)
	assert.ErrorIs(t, err, ErrRowIndexPresent)
}

func TestValidate(t *testing.T) {
	tooMany := make([]*Schema, 256)
	for i := range tooMany {
		tooMany[i] = NothingType()
	}
	cases := []struct {
		name string
		s    *Schema
		ok   bool
	}{
		{"empty tuple", TupleOf(), true},
		{"nested", TupleOf(Optional(TupleOf(Simple(Yson32).Named("y"))).Named("o")), true},
		{"not a tuple", Simple(Int64), false},
		{"unknown type", TupleOf(Simple("int128").Named("x")), false},
		{"duplicate names", TupleOf(Simple(Int64).Named("a"), Simple(Int32).Named("a")), false},
		{"empty variant", TupleOf(Variant8Of().Named("v")), false},
		{"empty variant16", TupleOf(RepeatedVariant16Of().Named("v")), false},
		{"too many alternatives", TupleOf(Variant8Of(tooMany...).Named("v")), false},
		{"variant16 alternatives", TupleOf(Variant16Of(tooMany...).Named("v")), true},
		{"simple with children", TupleOf(&Schema{Name: "x", WireType: Int64, Children: []*Schema{NothingType()}}), false},
		{"nil child", TupleOf(nil), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.s)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
		})
	}
}

func TestValidationErrorPath(t *testing.T) {
	err := Validate(TupleOf(TupleOf(Simple("bogus").Named("leaf")).Named("outer")))
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "outer.leaf", verr.Path)
}

func TestFieldNameDefaults(t *testing.T) {
	typ := reflect.TypeFor[person]()
	f, _ := typ.FieldByName("Name")
	name, ok, err := FieldName(typ, f)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "name", name)

	f, _ = typ.FieldByName("internal")
	_, ok, err = FieldName(typ, f)
	require.NoError(t, err)
	assert.False(t, ok)
}
