package tableentry

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/sesho96/ytsaurus/internal/skiff"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   int64  `skiff:"id"`
	Name string `skiff:"name"`
}

type recordingContext struct {
	settingCalls int
	trackRow     bool
	trackTable   bool
	rows         []int64
	tables       []int
}

func (c *recordingContext) WithSettingIndices(row, table bool) {
	c.settingCalls++
	c.trackRow, c.trackTable = row, table
}

func (c *recordingContext) SetRowIndex(i int64) { c.rows = append(c.rows, i) }
func (c *recordingContext) SetTableIndex(i int) { c.tables = append(c.tables, i) }

type trackedReader struct {
	io.Reader
	closes int
}

func (r *trackedReader) Close() error {
	r.closes++
	return nil
}

type trackedWriter struct {
	bytes.Buffer
	writeErr error
	closeErr error
	closes   int
}

func (w *trackedWriter) Write(p []byte) (int, error) {
	if w.writeErr != nil {
		return 0, w.writeErr
	}
	return w.Buffer.Write(p)
}

func (w *trackedWriter) Close() error {
	w.closes++
	return w.closeErr
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

var errDisk = errors.New("disk on fire")

// rawRow appends one input row: table index, record payload and, when
// override is non-nil, a $row_index tag.
type rawRow struct {
	table    uint16
	rec      record
	track    bool
	override *int64
}

func buildInput(t *testing.T, rows ...rawRow) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := skiff.NewWriter(&buf)
	for _, r := range rows {
		require.NoError(t, w.WriteUint16(r.table))
		require.NoError(t, w.WriteInt64(r.rec.ID))
		require.NoError(t, w.WriteString(r.rec.Name))
		if !r.track {
			continue
		}
		if r.override == nil {
			require.NoError(t, w.WriteVariant8Tag(0))
			continue
		}
		require.NoError(t, w.WriteVariant8Tag(1))
		require.NoError(t, w.WriteInt64(*r.override))
	}
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

func decodeAll[T any](t *testing.T, dec *RowDecoder[T]) []T {
	t.Helper()
	var out []T
	for dec.Next() {
		out = append(out, dec.Value())
	}
	require.NoError(t, dec.Err())
	return out
}

func ptr[T any](v T) *T { return &v }
