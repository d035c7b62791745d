// Package job runs typed mapper code inside a worker process: rows are
// decoded from the input stream, handed to a Mapper, and whatever it yields
// is encoded into the output tables.
package job

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sesho96/ytsaurus/internal/config"
	"github.com/sesho96/ytsaurus/internal/format"
	"github.com/sesho96/ytsaurus/internal/observability"
	"github.com/sesho96/ytsaurus/internal/operation"
	"github.com/sesho96/ytsaurus/internal/streams"
	"github.com/sesho96/ytsaurus/internal/tableentry"
)

// Yield accepts output rows for a table.
type Yield[O any] interface {
	Yield(index int, v O) error
}

// Mapper transforms one input row into any number of output rows.
type Mapper[I, O any] interface {
	Map(in I, out Yield[O], ctx *operation.Context) error
}

// MapperFunc adapts a function to Mapper.
type MapperFunc[I, O any] func(in I, out Yield[O], ctx *operation.Context) error

func (f MapperFunc[I, O]) Map(in I, out Yield[O], ctx *operation.Context) error {
	return f(in, out, ctx)
}

// Stats summarizes a finished run.
type Stats struct {
	RowsIn   int64
	RowsOut  int64
	Duration time.Duration
}

// Streams are the opened job streams. Run takes ownership of them.
type Streams struct {
	Input   io.ReadCloser
	Outputs []io.WriteCloser
}

// OpenStreams opens the input and output streams cfg describes. On failure
// every stream already opened is closed.
func OpenStreams(cfg config.JobConfig) (Streams, error) {
	in, err := streams.OpenInput(cfg.Input, cfg.Compression)
	if err != nil {
		return Streams{}, err
	}
	outs := make([]io.WriteCloser, 0, cfg.OutputTableCount)
	for i := 0; i < cfg.OutputTableCount; i++ {
		path := ""
		if len(cfg.Outputs) > 0 {
			path = cfg.Outputs[i]
		}
		w, err := streams.OpenOutput(path, i, cfg.Compression)
		if err != nil {
			_ = in.Close()
			for _, o := range outs {
				_ = o.Close()
			}
			return Streams{}, err
		}
		outs = append(outs, w)
	}
	return Streams{Input: in, Outputs: outs}, nil
}

// Describe renders the input and output format descriptors for a job over
// I and O.
func Describe[I, O any](cfg config.JobConfig) (input, output format.Format, err error) {
	in, err := tableentry.New[I](tableentry.Options{TrackIndices: cfg.TrackIndices, Input: true})
	if err != nil {
		return format.Format{}, format.Format{}, err
	}
	out, err := tableentry.New[O](tableentry.Options{})
	if err != nil {
		return format.Format{}, format.Format{}, err
	}
	fctx := operation.FormatContext{Input: &cfg.InputTableCount, Output: &cfg.OutputTableCount}
	if input, err = in.Format(fctx); err != nil {
		return format.Format{}, format.Format{}, err
	}
	if output, err = out.Format(fctx); err != nil {
		return format.Format{}, format.Format{}, err
	}
	return input, output, nil
}

// Run maps every input row. Cancelling ctx stops the job between rows. All
// streams are closed before Run returns, on every path. When
// cfg.MetricsPath is set the metrics are written there last.
func Run[I, O any](ctx context.Context, cfg config.JobConfig, s Streams, m Mapper[I, O]) (stats Stats, err error) {
	start := time.Now()
	defer func() {
		stats.Duration = time.Since(start)
		observability.RecordJob(stats.Duration, err == nil)
		if cfg.MetricsPath != "" {
			err = errors.Join(err, observability.WriteTextfile(cfg.MetricsPath))
		}
	}()

	if len(s.Outputs) != cfg.OutputTableCount {
		closeStreams(s)
		return stats, fmt.Errorf("%w: %d output streams for %d output tables",
			tableentry.ErrInvalidConfiguration, len(s.Outputs), cfg.OutputTableCount)
	}

	inType, err := tableentry.New[I](tableentry.Options{
		TrackIndices: cfg.TrackIndices,
		Input:        true,
		BufferSize:   cfg.BufferSize,
	})
	if err != nil {
		closeStreams(s)
		return stats, err
	}
	outType, err := tableentry.New[O](tableentry.Options{BufferSize: cfg.BufferSize})
	if err != nil {
		closeStreams(s)
		return stats, err
	}

	opCtx := operation.NewContext()
	dec, err := inType.Iterator(s.Input, opCtx)
	if err != nil {
		closeStreams(s)
		return stats, err
	}
	enc, err := outType.Yield(s.Outputs)
	if err != nil {
		_ = dec.Close()
		closeOutputs(s.Outputs)
		return stats, err
	}
	defer func() {
		err = errors.Join(err, dec.Close(), enc.Close())
		stats.RowsIn = dec.Rows()
		stats.RowsOut = enc.Rows()
		log.Info().
			Int64("rows_in", stats.RowsIn).
			Int64("rows_out", stats.RowsOut).
			Err(err).
			Msg("job: finished")
	}()

	for row, derr := range dec.All() {
		if derr != nil {
			return stats, derr
		}
		if cerr := ctx.Err(); cerr != nil {
			return stats, cerr
		}
		if merr := m.Map(row, enc, opCtx); merr != nil {
			idx, _ := opCtx.RowIndex()
			return stats, fmt.Errorf("job: map row %d (row index %d): %w", dec.Rows()-1, idx, merr)
		}
	}
	return stats, nil
}

func closeStreams(s Streams) {
	if s.Input != nil {
		_ = s.Input.Close()
	}
	closeOutputs(s.Outputs)
}

func closeOutputs(outs []io.WriteCloser) {
	for _, o := range outs {
		if o != nil {
			_ = o.Close()
		}
	}
}
