package skiff

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitivesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteInt8(-5))
	require.NoError(t, w.WriteInt16(-300))
	require.NoError(t, w.WriteInt32(math.MinInt32))
	require.NoError(t, w.WriteInt64(math.MaxInt64))
	require.NoError(t, w.WriteUint8(250))
	require.NoError(t, w.WriteUint16(65000))
	require.NoError(t, w.WriteUint32(math.MaxUint32))
	require.NoError(t, w.WriteUint64(math.MaxUint64))
	require.NoError(t, w.WriteDouble(-2.5))
	require.NoError(t, w.WriteBoolean(true))
	require.NoError(t, w.WriteString("héllo"))
	require.NoError(t, w.WriteString32([]byte{0, 1, 2}))
	require.NoError(t, w.WriteString32(nil))
	require.NoError(t, w.WriteVariant8Tag(EndOfSequence8))
	require.NoError(t, w.WriteVariant16Tag(EndOfSequence16))
	require.NoError(t, w.Flush())
	assert.Equal(t, int64(buf.Len()), w.BytesWritten())

	p := NewParser(&buf)
	i8, err := p.ParseInt8()
	require.NoError(t, err)
	assert.Equal(t, int8(-5), i8)
	i16, err := p.ParseInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(-300), i16)
	i32, err := p.ParseInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(math.MinInt32), i32)
	i64, err := p.ParseInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), i64)
	u8, err := p.ParseUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(250), u8)
	u16, err := p.ParseUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(65000), u16)
	u32, err := p.ParseUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), u32)
	u64, err := p.ParseUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), u64)
	d, err := p.ParseDouble()
	require.NoError(t, err)
	assert.Equal(t, -2.5, d)
	b, err := p.ParseBoolean()
	require.NoError(t, err)
	assert.True(t, b)
	s, err := p.ParseString32()
	require.NoError(t, err)
	assert.Equal(t, "héllo", string(s))
	raw, err := p.ParseString32()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, raw)
	empty, err := p.ParseString32()
	require.NoError(t, err)
	assert.Empty(t, empty)
	tag8, err := p.ParseVariant8Tag()
	require.NoError(t, err)
	assert.Equal(t, EndOfSequence8, tag8)
	tag16, err := p.ParseVariant16Tag()
	require.NoError(t, err)
	assert.Equal(t, EndOfSequence16, tag16)

	more, err := p.HasMoreData()
	require.NoError(t, err)
	assert.False(t, more)
	assert.Equal(t, w.BytesWritten(), p.BytesRead())
}

func TestLittleEndianLayout(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteUint16(0x0102))
	require.NoError(t, w.WriteString("ab"))
	require.NoError(t, w.Flush())
	assert.Equal(t, []byte{0x02, 0x01, 2, 0, 0, 0, 'a', 'b'}, buf.Bytes())
}

func TestParserTruncated(t *testing.T) {
	p := NewParser(bytes.NewReader([]byte{1, 2, 3}))
	_, err := p.ParseInt64()
	assert.ErrorIs(t, err, ErrTruncated)

	p = NewParser(bytes.NewReader([]byte{5, 0, 0, 0, 'a', 'b'}))
	_, err = p.ParseString32()
	assert.ErrorIs(t, err, ErrTruncated)

	p = NewParser(bytes.NewReader(nil))
	_, err = p.ParseVariant8Tag()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestParserMalformedBoolean(t *testing.T) {
	p := NewParser(bytes.NewReader([]byte{2}))
	_, err := p.ParseBoolean()
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParserStringLimit(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteString("0123456789"))
	require.NoError(t, w.Flush())

	p := NewParserSize(&buf, 0, Limits{MaxString32Bytes: 4})
	_, err := p.ParseString32()
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestHasMoreDataDoesNotConsume(t *testing.T) {
	p := NewParser(bytes.NewReader([]byte{7}))
	for range 2 {
		more, err := p.HasMoreData()
		require.NoError(t, err)
		assert.True(t, more)
	}
	v, err := p.ParseUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(7), v)
	assert.Equal(t, int64(1), p.BytesRead())
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("device gone") }

func TestReadFailureIsNotTruncation(t *testing.T) {
	p := NewParser(brokenReader{})
	_, err := p.HasMoreData()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTruncated)

	_, err = p.ParseUint32()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTruncated)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriterBuffersUntilFlush(t *testing.T) {
	w := NewWriterSize(brokenWriter{}, 64)
	require.NoError(t, w.WriteUint64(1))
	assert.Equal(t, int64(8), w.BytesWritten())
	assert.ErrorContains(t, w.Flush(), "disk full")
}
