// Package format builds the format descriptor exchanged with the engine
// before rows start flowing.
package format

import (
	"errors"
	"fmt"

	"go.ytsaurus.tech/yt/go/yson"

	"github.com/sesho96/ytsaurus/internal/skiff/schema"
)

const (
	skiffFormatName = "skiff"
	tableSchemaName = "table"
)

var ErrInvalidTableCount = errors.New("format: invalid table count")

// SchemaNode is the descriptor form of one schema node.
type SchemaNode struct {
	WireType string       `yson:"wire_type"`
	Name     string       `yson:"name,omitempty"`
	Children []SchemaNode `yson:"children,omitempty"`
}

// Registry holds the schemas tables refer to by "$" name.
type Registry struct {
	Table SchemaNode `yson:"table"`
}

// Format is a skiff format descriptor: the format name with the schema
// registry and per-table schema references as attributes.
type Format struct {
	Name           string   `yson:",value"`
	SchemaRegistry Registry `yson:"skiff_schema_registry,attr"`
	TableSchemas   []string `yson:"table_skiff_schemas,attr"`
}

// Skiff describes tableCount tables sharing one row schema. The schema is
// registered once and every table references it by name.
func Skiff(s *schema.Schema, tableCount int) (Format, error) {
	if tableCount < 0 {
		return Format{}, fmt.Errorf("%w: %d", ErrInvalidTableCount, tableCount)
	}
	if err := schema.Validate(s); err != nil {
		return Format{}, err
	}
	tables := make([]string, tableCount)
	for i := range tables {
		tables[i] = "$" + tableSchemaName
	}
	return Format{
		Name:           skiffFormatName,
		SchemaRegistry: Registry{Table: Describe(s)},
		TableSchemas:   tables,
	}, nil
}

// TableCount returns the number of table schemas the descriptor carries.
func (f Format) TableCount() int {
	return len(f.TableSchemas)
}

// Text renders the descriptor as text YSON.
func (f Format) Text() ([]byte, error) {
	return yson.MarshalFormat(f, yson.FormatText)
}

func (f Format) String() string {
	b, err := f.Text()
	if err != nil {
		return fmt.Sprintf("<format %s: %v>", f.Name, err)
	}
	return string(b)
}

// Describe converts a schema tree to its descriptor form.
func Describe(s *schema.Schema) SchemaNode {
	n := SchemaNode{WireType: string(s.WireType), Name: s.Name}
	for _, c := range s.Children {
		n.Children = append(n.Children, Describe(c))
	}
	return n
}
