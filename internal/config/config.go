package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sesho96/ytsaurus/internal/logging"
	"github.com/sesho96/ytsaurus/internal/skiff"
	"github.com/sesho96/ytsaurus/internal/streams"
)

// JobConfig configures one mapper job run.
type JobConfig struct {
	TrackIndices     bool
	BufferSize       int
	InputTableCount  int
	OutputTableCount int
	Compression      streams.Compression
	// Input is a file path; empty reads stdin.
	Input string
	// Outputs lists one file path per output table; empty uses the job
	// descriptors the engine provides.
	Outputs  []string
	LogLevel string
	// MetricsPath receives a metrics snapshot when the job ends; empty
	// disables it.
	MetricsPath string
}

type fileConfig struct {
	TrackIndices     bool     `toml:"track_indices"`
	BufferSize       int      `toml:"buffer_size"`
	InputTableCount  int      `toml:"input_table_count"`
	OutputTableCount int      `toml:"output_table_count"`
	Compression      string   `toml:"compression"`
	Input            string   `toml:"input"`
	Outputs          []string `toml:"outputs"`
	LogLevel         string   `toml:"log_level"`
	MetricsPath      string   `toml:"metrics_path"`
}

func DefaultJobConfig() JobConfig {
	return JobConfig{
		BufferSize:       skiff.DefaultBufferSize,
		InputTableCount:  1,
		OutputTableCount: 1,
		Compression:      streams.CompressionNone,
		LogLevel:         "info",
	}
}

// LoadJobConfig overlays the keys present in path onto DefaultJobConfig.
func LoadJobConfig(path string) (JobConfig, error) {
	cfg := DefaultJobConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return JobConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return JobConfig{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("track_indices") {
		cfg.TrackIndices = raw.TrackIndices
	}
	if meta.IsDefined("buffer_size") {
		cfg.BufferSize = raw.BufferSize
	}
	if meta.IsDefined("input_table_count") {
		cfg.InputTableCount = raw.InputTableCount
	}
	if meta.IsDefined("output_table_count") {
		cfg.OutputTableCount = raw.OutputTableCount
	}
	if meta.IsDefined("compression") {
		c, err := streams.ParseCompression(raw.Compression)
		if err != nil {
			return JobConfig{}, fmt.Errorf("parse compression: %w", err)
		}
		cfg.Compression = c
	}
	if meta.IsDefined("input") {
		cfg.Input = strings.TrimSpace(raw.Input)
	}
	if meta.IsDefined("outputs") {
		cfg.Outputs = normalizePaths(raw.Outputs)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("metrics_path") {
		cfg.MetricsPath = strings.TrimSpace(raw.MetricsPath)
	}

	if err := ValidateJobConfig(cfg); err != nil {
		return JobConfig{}, err
	}
	return cfg, nil
}

func ValidateJobConfig(cfg JobConfig) error {
	if cfg.BufferSize <= 0 {
		return fmt.Errorf("job config buffer_size must be positive, got %d", cfg.BufferSize)
	}
	if cfg.InputTableCount <= 0 {
		return fmt.Errorf("job config input_table_count must be positive, got %d", cfg.InputTableCount)
	}
	if cfg.OutputTableCount < 0 {
		return fmt.Errorf("job config output_table_count must not be negative, got %d", cfg.OutputTableCount)
	}
	if len(cfg.Outputs) > 0 && len(cfg.Outputs) != cfg.OutputTableCount {
		return fmt.Errorf("job config lists %d outputs for %d output tables", len(cfg.Outputs), cfg.OutputTableCount)
	}
	if _, err := streams.ParseCompression(string(cfg.Compression)); err != nil {
		return err
	}
	if cfg.LogLevel != "" {
		if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
			return fmt.Errorf("job config log_level %q is unknown", cfg.LogLevel)
		}
	}
	return nil
}

func normalizePaths(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
