package skiff

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Writer buffers skiff primitives in front of an output stream. Nothing is
// guaranteed to reach the stream before Flush.
type Writer struct {
	w       *bufio.Writer
	buf     [8]byte
	written int64
}

func NewWriter(w io.Writer) *Writer {
	return NewWriterSize(w, DefaultBufferSize)
}

func NewWriterSize(w io.Writer, size int) *Writer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Writer{w: bufio.NewWriterSize(w, size)}
}

// Write implements io.Writer for raw framing bytes.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.written += int64(n)
	if err != nil {
		return n, fmt.Errorf("skiff: writing raw bytes: %w", err)
	}
	return n, nil
}

// BytesWritten returns the number of bytes accepted so far, flushed or not.
func (w *Writer) BytesWritten() int64 {
	return w.written
}

// Reset discards unflushed data and redirects w to out.
func (w *Writer) Reset(out io.Writer) {
	w.w.Reset(out)
	w.written = 0
}

func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("skiff: flushing: %w", err)
	}
	return nil
}

func (w *Writer) put(n int, what string) error {
	m, err := w.w.Write(w.buf[:n])
	w.written += int64(m)
	if err != nil {
		return fmt.Errorf("skiff: writing %s: %w", what, err)
	}
	return nil
}

func (w *Writer) WriteInt8(v int8) error   { return w.WriteUint8(uint8(v)) }
func (w *Writer) WriteInt16(v int16) error { return w.WriteUint16(uint16(v)) }
func (w *Writer) WriteInt32(v int32) error { return w.WriteUint32(uint32(v)) }
func (w *Writer) WriteInt64(v int64) error { return w.WriteUint64(uint64(v)) }

func (w *Writer) WriteUint8(v uint8) error {
	w.buf[0] = v
	return w.put(1, "uint8")
}

func (w *Writer) WriteUint16(v uint16) error {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	return w.put(2, "uint16")
}

func (w *Writer) WriteUint32(v uint32) error {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	return w.put(4, "uint32")
}

func (w *Writer) WriteUint64(v uint64) error {
	binary.LittleEndian.PutUint64(w.buf[:8], v)
	return w.put(8, "uint64")
}

func (w *Writer) WriteDouble(v float64) error {
	binary.LittleEndian.PutUint64(w.buf[:8], math.Float64bits(v))
	return w.put(8, "double")
}

func (w *Writer) WriteBoolean(v bool) error {
	w.buf[0] = 0
	if v {
		w.buf[0] = 1
	}
	return w.put(1, "boolean")
}

func (w *Writer) WriteString32(v []byte) error {
	if uint64(len(v)) > math.MaxUint32 {
		return fmt.Errorf("%w: string32 length %d overflows", ErrMalformed, len(v))
	}
	binary.LittleEndian.PutUint32(w.buf[:4], uint32(len(v)))
	if err := w.put(4, "string32 length"); err != nil {
		return err
	}
	if len(v) == 0 {
		return nil
	}
	n, err := w.w.Write(v)
	w.written += int64(n)
	if err != nil {
		return fmt.Errorf("skiff: writing string32 content: %w", err)
	}
	return nil
}

// WriteString is WriteString32 without the []byte conversion at call sites.
func (w *Writer) WriteString(v string) error {
	if uint64(len(v)) > math.MaxUint32 {
		return fmt.Errorf("%w: string32 length %d overflows", ErrMalformed, len(v))
	}
	binary.LittleEndian.PutUint32(w.buf[:4], uint32(len(v)))
	if err := w.put(4, "string32 length"); err != nil {
		return err
	}
	n, err := w.w.WriteString(v)
	w.written += int64(n)
	if err != nil {
		return fmt.Errorf("skiff: writing string32 content: %w", err)
	}
	return nil
}

func (w *Writer) WriteVariant8Tag(tag uint8) error {
	w.buf[0] = tag
	return w.put(1, "variant8 tag")
}

func (w *Writer) WriteVariant16Tag(tag uint16) error {
	binary.LittleEndian.PutUint16(w.buf[:2], tag)
	return w.put(2, "variant16 tag")
}
