package tableentry

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfiguration = errors.New("tableentry: invalid configuration")
	ErrExhaustedStream      = errors.New("tableentry: exhausted stream")
	ErrClosed               = errors.New("tableentry: closed")
)

// IOError is a transport failure on one stream.
type IOError struct {
	Op     string
	Stream int
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("tableentry: %s stream %d: %v", e.Op, e.Stream, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IndexError reports a destination table outside the bound streams.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("tableentry: output index %d out of range [0, %d)", e.Index, e.Len)
}

// errorKind labels err for metrics.
func errorKind(err error) string {
	var (
		ioErr  *IOError
		idxErr *IndexError
	)
	switch {
	case errors.Is(err, ErrExhaustedStream):
		return "exhausted"
	case errors.As(err, &ioErr):
		return "io"
	case errors.As(err, &idxErr):
		return "index"
	case errors.Is(err, ErrInvalidConfiguration):
		return "configuration"
	default:
		return "encode"
	}
}
