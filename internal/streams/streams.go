// Package streams opens the byte streams a job reads rows from and writes
// rows to.
package streams

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Compression selects optional framing around a skiff stream. Streams handed
// to a job by the engine are never compressed; compression applies to local
// files only.
type Compression string

const (
	CompressionNone   Compression = "none"
	CompressionZstd   Compression = "zstd"
	CompressionSnappy Compression = "snappy"
)

var ErrUnknownCompression = errors.New("streams: unknown compression")

func ParseCompression(raw string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(raw))); c {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionZstd, CompressionSnappy:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCompression, raw)
	}
}

// JobOutputDescriptor returns the descriptor the engine binds to output
// table index: 1 for table 0, 4 for table 1, and so on.
func JobOutputDescriptor(index int) uintptr {
	return uintptr(3*index + 1)
}

// OpenInput opens path for reading; "" and "-" mean stdin.
func OpenInput(path string, c Compression) (io.ReadCloser, error) {
	var f *os.File
	if path == "" || path == "-" {
		f = os.Stdin
	} else {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("streams: open input %s: %w", path, err)
		}
	}
	r, err := WrapReader(f, c)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

// OpenOutput creates path for writing; "" means the job descriptor of
// output table index.
func OpenOutput(path string, index int, c Compression) (io.WriteCloser, error) {
	var f *os.File
	if path == "" {
		fd := JobOutputDescriptor(index)
		f = os.NewFile(fd, fmt.Sprintf("output-%d", index))
		if f == nil {
			return nil, fmt.Errorf("streams: output descriptor %d is not valid", fd)
		}
	} else {
		var err error
		f, err = os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("streams: create output %s: %w", path, err)
		}
	}
	w, err := WrapWriter(f, c)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// WrapReader layers decompression over r. Closing the result closes r.
func WrapReader(r io.ReadCloser, c Compression) (io.ReadCloser, error) {
	switch c {
	case "", CompressionNone:
		return r, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("streams: zstd reader: %w", err)
		}
		return &stackedReader{Reader: dec, closers: []func() error{
			func() error { dec.Close(); return nil },
			r.Close,
		}}, nil
	case CompressionSnappy:
		return &stackedReader{Reader: snappy.NewReader(r), closers: []func() error{r.Close}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, c)
	}
}

// WrapWriter layers compression over w. Closing the result finishes the
// compressed stream, then closes w.
func WrapWriter(w io.WriteCloser, c Compression) (io.WriteCloser, error) {
	switch c {
	case "", CompressionNone:
		return w, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("streams: zstd writer: %w", err)
		}
		return &stackedWriter{Writer: enc, closers: []func() error{enc.Close, w.Close}}, nil
	case CompressionSnappy:
		enc := snappy.NewBufferedWriter(w)
		return &stackedWriter{Writer: enc, closers: []func() error{enc.Close, w.Close}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, c)
	}
}

type stackedReader struct {
	io.Reader
	closers []func() error
}

func (s *stackedReader) Close() error {
	return closeAll(s.closers)
}

type stackedWriter struct {
	io.Writer
	closers []func() error
}

func (s *stackedWriter) Close() error {
	return closeAll(s.closers)
}

// closeAll runs every closer in order and returns the first error.
func closeAll(closers []func() error) error {
	var first error
	for _, c := range closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
