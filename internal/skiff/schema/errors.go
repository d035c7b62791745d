package schema

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrNotTuple        = errors.New("schema: row schema must be a tuple")
	ErrRowIndexPresent = errors.New("schema: row index field already present")
)

// ValidationError reports a structural problem at a schema path.
type ValidationError struct {
	Path   string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schema: %s", e.Reason)
	}
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Reason)
}

// UnsupportedTypeError is returned when a Go type has no skiff layout.
type UnsupportedTypeError struct {
	Type    reflect.Type
	Message string
}

func (e *UnsupportedTypeError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "type is not supported"
	}
	return fmt.Sprintf("schema: %s: %s", e.Type, msg)
}

// InvalidTagError is returned for a skiff struct tag that cannot name a column.
type InvalidTagError struct {
	Type  reflect.Type
	Field string
	Tag   string
}

func (e *InvalidTagError) Error() string {
	return fmt.Sprintf("schema: %s.%s: invalid skiff tag %q", e.Type, e.Field, e.Tag)
}
