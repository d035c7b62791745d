package skiff

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Parser reads skiff primitives from an input stream.
type Parser struct {
	r      *bufio.Reader
	limits Limits
	buf    [8]byte
	read   int64
}

func NewParser(r io.Reader) *Parser {
	return NewParserSize(r, DefaultBufferSize, DefaultLimits())
}

func NewParserSize(r io.Reader, size int, limits Limits) *Parser {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Parser{r: bufio.NewReaderSize(r, size), limits: limits}
}

// HasMoreData reports whether at least one more byte can be read.
// A clean end of stream is not an error.
func (p *Parser) HasMoreData() (bool, error) {
	if _, err := p.r.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("skiff: peeking next byte: %w", err)
	}
	return true, nil
}

// BytesRead returns the number of bytes consumed so far.
func (p *Parser) BytesRead() int64 {
	return p.read
}

func (p *Parser) fill(n int, what string) ([]byte, error) {
	b := p.buf[:n]
	if _, err := io.ReadFull(p.r, b); err != nil {
		return nil, readError(what, err)
	}
	p.read += int64(n)
	return b, nil
}

func readError(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s", ErrTruncated, what)
	}
	return fmt.Errorf("skiff: reading %s: %w", what, err)
}

func (p *Parser) ParseInt8() (int8, error) {
	v, err := p.ParseUint8()
	return int8(v), err
}

func (p *Parser) ParseInt16() (int16, error) {
	v, err := p.ParseUint16()
	return int16(v), err
}

func (p *Parser) ParseInt32() (int32, error) {
	v, err := p.ParseUint32()
	return int32(v), err
}

func (p *Parser) ParseInt64() (int64, error) {
	v, err := p.ParseUint64()
	return int64(v), err
}

func (p *Parser) ParseUint8() (uint8, error) {
	b, err := p.fill(1, "uint8")
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (p *Parser) ParseUint16() (uint16, error) {
	b, err := p.fill(2, "uint16")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (p *Parser) ParseUint32() (uint32, error) {
	b, err := p.fill(4, "uint32")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (p *Parser) ParseUint64() (uint64, error) {
	b, err := p.fill(8, "uint64")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (p *Parser) ParseDouble() (float64, error) {
	b, err := p.fill(8, "double")
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

func (p *Parser) ParseBoolean() (bool, error) {
	b, err := p.fill(1, "boolean")
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: invalid boolean byte 0x%02x", ErrMalformed, b[0])
	}
}

// ParseString32 reads a length-prefixed byte string. The returned slice is
// owned by the caller.
func (p *Parser) ParseString32() ([]byte, error) {
	b, err := p.fill(4, "string32 length")
	if err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(b)
	if n > p.limits.MaxString32Bytes {
		return nil, fmt.Errorf("%w: string32 length %d exceeds limit %d", ErrMalformed, n, p.limits.MaxString32Bytes)
	}
	out := make([]byte, n)
	if n == 0 {
		return out, nil
	}
	if _, err := io.ReadFull(p.r, out); err != nil {
		return nil, readError("string32 content", err)
	}
	p.read += int64(n)
	return out, nil
}

func (p *Parser) ParseVariant8Tag() (uint8, error) {
	b, err := p.fill(1, "variant8 tag")
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (p *Parser) ParseVariant16Tag() (uint16, error) {
	b, err := p.fill(2, "variant16 tag")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}
