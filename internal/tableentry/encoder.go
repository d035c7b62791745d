package tableentry

import (
	"bytes"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/sesho96/ytsaurus/internal/observability"
	"github.com/sesho96/ytsaurus/internal/skiff"
	"github.com/sesho96/ytsaurus/internal/skiff/entity"
)

// firstTableIndex prefixes every output row regardless of destination.
var firstTableIndex = [2]byte{0, 0}

// RowEncoder writes entities to a fixed set of output streams, one per
// output table. It is not safe for concurrent use.
type RowEncoder[T any] struct {
	outputs []io.WriteCloser
	writers []*skiff.Writer
	ser     *entity.Serializer[T]
	track   bool
	rows    int64
	closed  bool

	// A row is staged here and reaches its stream only once fully encoded.
	row     bytes.Buffer
	staging *skiff.Writer
}

func newRowEncoder[T any](e *EntityType[T], outputs []io.WriteCloser) *RowEncoder[T] {
	writers := make([]*skiff.Writer, len(outputs))
	for i, out := range outputs {
		writers[i] = skiff.NewWriterSize(out, e.opts.BufferSize)
	}
	enc := &RowEncoder[T]{
		outputs: outputs,
		writers: writers,
		ser:     e.ser,
		track:   e.opts.TrackIndices,
	}
	enc.staging = skiff.NewWriterSize(&enc.row, 512)
	return enc
}

// Tables returns the number of bound output streams.
func (e *RowEncoder[T]) Tables() int {
	return len(e.writers)
}

// Rows returns the number of rows accepted so far.
func (e *RowEncoder[T]) Rows() int64 {
	return e.rows
}

// Yield buffers v as one row of output table index.
func (e *RowEncoder[T]) Yield(index int, v T) error {
	if e.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(e.writers) {
		err := &IndexError{Index: index, Len: len(e.writers)}
		observability.RecordCodecError(observability.DirectionOutput, errorKind(err))
		return err
	}
	row, err := e.encodeRow(v)
	if err != nil {
		observability.RecordCodecError(observability.DirectionOutput, errorKind(err))
		return err
	}
	if _, err := e.writers[index].Write(row); err != nil {
		err = &IOError{Op: "write", Stream: index, Err: err}
		observability.RecordCodecError(observability.DirectionOutput, errorKind(err))
		return err
	}
	e.rows++
	observability.RecordRowEncoded(index)
	return nil
}

// encodeRow frames v into the staging buffer. The returned slice is valid
// until the next call.
func (e *RowEncoder[T]) encodeRow(v T) ([]byte, error) {
	e.row.Reset()
	e.staging.Reset(&e.row)
	if _, err := e.staging.Write(firstTableIndex[:]); err != nil {
		return nil, err
	}
	if err := e.ser.Serialize(e.staging, v); err != nil {
		return nil, err
	}
	if e.track {
		// No explicit $row_index; the engine numbers output rows itself.
		if err := e.staging.WriteVariant8Tag(0); err != nil {
			return nil, err
		}
	}
	if err := e.staging.Flush(); err != nil {
		return nil, err
	}
	return e.row.Bytes(), nil
}

// Close flushes and closes every output in table order. Every stream is
// attempted even after a failure; the first failure is returned.
func (e *RowEncoder[T]) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	var first error
	record := func(err error) {
		observability.RecordCodecError(observability.DirectionOutput, errorKind(err))
		log.Error().Err(err).Msg("tableentry: closing output")
		if first == nil {
			first = err
		}
	}
	for i, w := range e.writers {
		if err := w.Flush(); err != nil {
			record(&IOError{Op: "flush", Stream: i, Err: err})
		}
		if err := e.outputs[i].Close(); err != nil {
			record(&IOError{Op: "close", Stream: i, Err: err})
		}
		observability.RecordStreamBytes(observability.DirectionOutput, w.BytesWritten())
	}
	log.Debug().Int64("rows", e.rows).Int("tables", len(e.writers)).Msg("tableentry: outputs closed")
	return first
}
