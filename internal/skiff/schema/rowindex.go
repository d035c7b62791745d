package schema

import "strings"

// RowIndexField is the trailing column carrying explicit row indices.
const RowIndexField = "$row_index"

// RowIndex returns the $row_index field layout: variant8<nothing, int64>.
func RowIndex() *Schema {
	return Optional(Simple(Int64)).Named(RowIndexField)
}

// WithRowIndex derives a row schema with $row_index appended as the last
// child. base is left untouched.
func WithRowIndex(base *Schema) (*Schema, error) {
	if base == nil || base.WireType != Tuple {
		return nil, ErrNotTuple
	}
	if _, ok := base.Child(RowIndexField); ok {
		return nil, ErrRowIndexPresent
	}
	out := base.Clone()
	out.Children = append(out.Children, RowIndex())
	return out, nil
}

// HasRowIndex reports whether s ends with the $row_index field.
func HasRowIndex(s *Schema) bool {
	if s == nil || len(s.Children) == 0 {
		return false
	}
	return s.Children[len(s.Children)-1].Name == RowIndexField
}

// IsSystemField reports whether name is reserved for engine-managed columns.
func IsSystemField(name string) bool {
	return strings.HasPrefix(name, "$")
}
