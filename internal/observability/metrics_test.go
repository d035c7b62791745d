package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordRowDecoded(0)
	RecordRowEncoded(1)
	RecordStreamBytes(DirectionInput, 0)
	RecordJob(12*time.Millisecond, true)
}

func TestRecordRowDecodedCountsPerTable(t *testing.T) {
	before := testutil.ToFloat64(rowsDecoded.WithLabelValues("7"))
	RecordRowDecoded(7)
	RecordRowDecoded(7)
	require.Equal(t, before+2, testutil.ToFloat64(rowsDecoded.WithLabelValues("7")))
}

func TestRecordCodecErrorCountsPerKind(t *testing.T) {
	before := testutil.ToFloat64(codecErrors.WithLabelValues(DirectionOutput, "io"))
	RecordCodecError(DirectionOutput, "io")
	require.Equal(t, before+1, testutil.ToFloat64(codecErrors.WithLabelValues(DirectionOutput, "io")))
}

func TestRecordStreamBytesIgnoresEmpty(t *testing.T) {
	before := testutil.ToFloat64(streamBytes.WithLabelValues(DirectionOutput))
	RecordStreamBytes(DirectionOutput, 0)
	RecordStreamBytes(DirectionOutput, -3)
	RecordStreamBytes(DirectionOutput, 10)
	require.Equal(t, before+10, testutil.ToFloat64(streamBytes.WithLabelValues(DirectionOutput)))
}

func TestWriteTextfileExportsRecordedMetrics(t *testing.T) {
	RecordRowEncoded(3)
	RecordCodecError(DirectionInput, "exhausted")

	path := filepath.Join(t.TempDir(), "job.prom")
	require.NoError(t, WriteTextfile(path))
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(body), `ytsaurus_skiff_rows_encoded_total{table="3"}`)
	require.Contains(t, string(body), `ytsaurus_skiff_errors_total{direction="input",kind="exhausted"}`)
}

func TestWriteTextfileReportsBadPath(t *testing.T) {
	require.Error(t, WriteTextfile(filepath.Join(t.TempDir(), "missing", "job.prom")))
}
