package tableentry

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/rs/zerolog/log"
	"github.com/sesho96/ytsaurus/internal/observability"
	"github.com/sesho96/ytsaurus/internal/skiff"
	"github.com/sesho96/ytsaurus/internal/skiff/entity"
)

type decoderState int

const (
	stateHasMore decoderState = iota
	stateExhausted
)

// RowDecoder is a forward-only, single-pass sequence of entities read from
// one input stream. It is not safe for concurrent use.
//
//	dec, err := et.Iterator(r, ctx)
//	...
//	defer dec.Close()
//	for dec.Next() {
//		use(dec.Value())
//	}
//	if err := dec.Err(); err != nil { ... }
type RowDecoder[T any] struct {
	input  io.ReadCloser
	parser *skiff.Parser
	des    *entity.Deserializer[T]
	ctx    OperationContext
	track  bool

	state      decoderState
	rowIndex   int64
	tableIndex int
	rows       int64
	value      T
	err        error
	closed     bool
}

func newRowDecoder[T any](e *EntityType[T], input io.ReadCloser, ctx OperationContext) *RowDecoder[T] {
	return &RowDecoder[T]{
		input:    input,
		parser:   skiff.NewParserSize(input, e.opts.BufferSize, e.opts.Limits),
		des:      e.des,
		ctx:      ctx,
		track:    e.opts.TrackIndices,
		state:    stateHasMore,
		rowIndex: -1,
	}
}

// Next decodes the next row. It returns false once the stream is exhausted
// or a row fails to decode; Err distinguishes the two.
func (d *RowDecoder[T]) Next() bool {
	if d.state == stateExhausted {
		return false
	}
	more, err := d.parser.HasMoreData()
	if err != nil {
		d.fail(&IOError{Op: "read", Stream: 0, Err: err})
		return false
	}
	if !more {
		d.state = stateExhausted
		return false
	}
	v, err := d.decodeRow()
	if err != nil {
		d.fail(err)
		return false
	}
	d.value = v
	d.rows++
	observability.RecordRowDecoded(d.tableIndex)
	return true
}

func (d *RowDecoder[T]) decodeRow() (T, error) {
	var zero T

	tableIndex, err := d.parser.ParseUint16()
	if err != nil {
		return zero, d.readError(err)
	}
	d.tableIndex = int(tableIndex)

	v, ok, err := d.des.Deserialize(d.parser)
	if err != nil {
		return zero, d.readError(err)
	}
	if !ok {
		return zero, fmt.Errorf("%w: row %d: no entity after table index", ErrExhaustedStream, d.rows)
	}

	if d.track {
		d.rowIndex++
		tag, err := d.parser.ParseVariant8Tag()
		if err != nil {
			return zero, d.readError(err)
		}
		if tag != 0 {
			idx, err := d.parser.ParseInt64()
			if err != nil {
				return zero, d.readError(err)
			}
			d.rowIndex = idx
		}
		d.ctx.SetRowIndex(d.rowIndex)
		d.ctx.SetTableIndex(d.tableIndex)
	}
	return v, nil
}

// readError separates framing damage from transport failures.
func (d *RowDecoder[T]) readError(err error) error {
	if errors.Is(err, skiff.ErrTruncated) || errors.Is(err, skiff.ErrMalformed) {
		return fmt.Errorf("%w: row %d: %w", ErrExhaustedStream, d.rows, err)
	}
	return &IOError{Op: "read", Stream: 0, Err: err}
}

func (d *RowDecoder[T]) fail(err error) {
	d.err = err
	d.state = stateExhausted
	observability.RecordCodecError(observability.DirectionInput, errorKind(err))
	log.Error().Err(err).Int64("rows", d.rows).Msg("tableentry: decode failed")
}

// Value returns the entity decoded by the last successful Next.
func (d *RowDecoder[T]) Value() T {
	return d.value
}

// Err returns the error that stopped iteration, if any.
func (d *RowDecoder[T]) Err() error {
	return d.err
}

// RowIndex returns the row index of the last decoded row when indices are
// tracked, and -1 before the first row.
func (d *RowDecoder[T]) RowIndex() int64 {
	return d.rowIndex
}

// TableIndex returns the source table of the last decoded row.
func (d *RowDecoder[T]) TableIndex() int {
	return d.tableIndex
}

// Rows returns the number of rows decoded so far.
func (d *RowDecoder[T]) Rows() int64 {
	return d.rows
}

// All adapts the decoder to a range-over-func sequence. A decode failure is
// yielded once as the final element.
func (d *RowDecoder[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for d.Next() {
			if !yield(d.value, nil) {
				return
			}
		}
		if d.err != nil {
			var zero T
			yield(zero, d.err)
		}
	}
}

// Close closes the input stream. Only the first call closes it.
func (d *RowDecoder[T]) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.state = stateExhausted
	observability.RecordStreamBytes(observability.DirectionInput, d.parser.BytesRead())
	log.Debug().Int64("rows", d.rows).Int64("bytes", d.parser.BytesRead()).Msg("tableentry: closing input")
	if err := d.input.Close(); err != nil {
		return &IOError{Op: "close", Stream: 0, Err: err}
	}
	return nil
}
