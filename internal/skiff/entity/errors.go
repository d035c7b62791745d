package entity

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/sesho96/ytsaurus/internal/skiff/schema"
)

var (
	ErrNilEntity = errors.New("entity: nil entity")
	ErrOverflow  = errors.New("entity: value overflows wire type")
)

// MismatchError reports a schema node that cannot hold a Go type.
type MismatchError struct {
	Path     string
	WireType schema.WireType
	Type     reflect.Type
	Reason   string
}

func (e *MismatchError) Error() string {
	msg := fmt.Sprintf("entity: %s: wire type %s does not match %s", e.Path, e.WireType, e.Type)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}
