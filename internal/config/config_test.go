package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sesho96/ytsaurus/internal/skiff"
	"github.com/sesho96/ytsaurus/internal/streams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadJobConfigDefaults(t *testing.T) {
	cfg, err := LoadJobConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultJobConfig(), cfg)
	assert.Equal(t, skiff.DefaultBufferSize, cfg.BufferSize)
}

func TestLoadJobConfigOverrides(t *testing.T) {
	cfg, err := LoadJobConfig(writeConfig(t, `
track_indices = true
buffer_size = 4096
input_table_count = 3
output_table_count = 2
compression = "snappy"
input = " in.skiff "
outputs = ["a.skiff", " b.skiff"]
log_level = "debug"
metrics_path = " /tmp/job.prom "
`))
	require.NoError(t, err)
	assert.True(t, cfg.TrackIndices)
	assert.Equal(t, 4096, cfg.BufferSize)
	assert.Equal(t, 3, cfg.InputTableCount)
	assert.Equal(t, 2, cfg.OutputTableCount)
	assert.Equal(t, streams.CompressionSnappy, cfg.Compression)
	assert.Equal(t, "in.skiff", cfg.Input)
	assert.Equal(t, []string{"a.skiff", "b.skiff"}, cfg.Outputs)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/job.prom", cfg.MetricsPath)
}

func TestLoadJobConfigRejectsUnknownKey(t *testing.T) {
	_, err := LoadJobConfig(writeConfig(t, `row_index = true`))
	assert.ErrorContains(t, err, "unknown key")
}

func TestLoadJobConfigRejectsOutputCountMismatch(t *testing.T) {
	_, err := LoadJobConfig(writeConfig(t, `
output_table_count = 2
outputs = ["only-one.skiff"]
`))
	assert.ErrorContains(t, err, "1 outputs for 2 output tables")
}

func TestLoadJobConfigRejectsBadCompression(t *testing.T) {
	_, err := LoadJobConfig(writeConfig(t, `compression = "brotli"`))
	assert.ErrorIs(t, err, streams.ErrUnknownCompression)
}

func TestTemplatesLoad(t *testing.T) {
	for _, kind := range []string{"job", "local"} {
		path := filepath.Join(t.TempDir(), kind+".toml")
		require.NoError(t, WriteTemplate(path, kind, false))
		_, err := LoadJobConfig(path)
		require.NoError(t, err, kind)
		assert.Error(t, WriteTemplate(path, kind, false), "existing file must not be overwritten")
	}
	_, err := Template("cluster")
	assert.Error(t, err)
}
