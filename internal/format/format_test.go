package format

import (
	"strings"
	"testing"

	"github.com/sesho96/ytsaurus/internal/skiff/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkiffDescriptor(t *testing.T) {
	s := schema.TupleOf(
		schema.Optional(schema.Simple(schema.Int64)).Named("v"),
	)
	f, err := Skiff(s, 3)
	require.NoError(t, err)
	assert.Equal(t, "skiff", f.Name)
	assert.Equal(t, 3, f.TableCount())
	assert.Equal(t, []string{"$table", "$table", "$table"}, f.TableSchemas)
	assert.Equal(t, SchemaNode{
		WireType: "tuple",
		Children: []SchemaNode{{
			WireType: "variant8",
			Name:     "v",
			Children: []SchemaNode{{WireType: "nothing"}, {WireType: "int64"}},
		}},
	}, f.SchemaRegistry.Table)
}

func TestDescriptorText(t *testing.T) {
	f, err := Skiff(schema.TupleOf(schema.Simple(schema.String32).Named("name")), 2)
	require.NoError(t, err)

	text, err := f.Text()
	require.NoError(t, err)
	s := string(text)
	assert.True(t, strings.HasPrefix(s, "<"), s)
	for _, token := range []string{"skiff_schema_registry", "table_skiff_schemas", "$table", "wire_type", "string32", "name", "skiff"} {
		assert.Contains(t, s, token)
	}
	assert.Equal(t, s, f.String())
}

func TestDescribeSkipsEmptyName(t *testing.T) {
	n := Describe(schema.TupleOf())
	assert.Equal(t, SchemaNode{WireType: "tuple"}, n)
}

func TestSkiffZeroTables(t *testing.T) {
	f, err := Skiff(schema.TupleOf(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, f.TableCount())
	assert.NotNil(t, f.TableSchemas)
}

func TestSkiffRejectsBadInput(t *testing.T) {
	_, err := Skiff(schema.TupleOf(), -1)
	assert.ErrorIs(t, err, ErrInvalidTableCount)

	_, err = Skiff(schema.Simple(schema.Int64), 1)
	assert.ErrorIs(t, err, schema.ErrNotTuple)
}
