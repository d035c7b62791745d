package tableentry

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/sesho96/ytsaurus/internal/format"
	"github.com/sesho96/ytsaurus/internal/skiff"
	"github.com/sesho96/ytsaurus/internal/skiff/entity"
	"github.com/sesho96/ytsaurus/internal/skiff/schema"
)

// Options configure an EntityType.
type Options struct {
	// TrackIndices extends the row schema with $row_index and reports row
	// and table indices to the OperationContext while decoding.
	TrackIndices bool
	// Input selects the input direction for Format.
	Input bool
	// BufferSize is the per-stream buffer; zero means skiff.DefaultBufferSize.
	BufferSize int
	// Limits bounds parser allocations; zero means skiff.DefaultLimits.
	Limits skiff.Limits
}

// EntityType is the skiff table entry type for entities of type T.
type EntityType[T any] struct {
	opts   Options
	base   *schema.Schema
	schema *schema.Schema
	ser    *entity.Serializer[T]
	des    *entity.Deserializer[T]
}

// New derives T's row schema with schema.For and builds an EntityType.
func New[T any](opts Options) (*EntityType[T], error) {
	s, err := schema.For[T]()
	if err != nil {
		return nil, err
	}
	return NewWithSchema[T](s, opts)
}

// NewWithSchema builds an EntityType from an externally derived row schema.
// base is not retained; the EntityType keeps its own copy.
func NewWithSchema[T any](base *schema.Schema, opts Options) (*EntityType[T], error) {
	if opts.BufferSize < 0 {
		return nil, fmt.Errorf("%w: negative buffer size %d", ErrInvalidConfiguration, opts.BufferSize)
	}
	if opts.BufferSize == 0 {
		opts.BufferSize = skiff.DefaultBufferSize
	}
	if opts.Limits == (skiff.Limits{}) {
		opts.Limits = skiff.DefaultLimits()
	}
	if err := schema.Validate(base); err != nil {
		return nil, err
	}
	if schema.HasRowIndex(base) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, schema.ErrRowIndexPresent)
	}
	base = base.Clone()

	rowSchema := base
	if opts.TrackIndices {
		extended, err := schema.WithRowIndex(base)
		if err != nil {
			return nil, err
		}
		rowSchema = extended
	}

	ser, err := entity.NewSerializer[T](base)
	if err != nil {
		return nil, err
	}
	des, err := entity.NewDeserializer[T](base)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Bool("track_indices", opts.TrackIndices).
		Bool("input", opts.Input).
		Str("schema", rowSchema.String()).
		Msg("tableentry: entity type ready")
	return &EntityType[T]{
		opts:   opts,
		base:   base,
		schema: rowSchema,
		ser:    ser,
		des:    des,
	}, nil
}

// Schema returns the row schema used on the wire, including $row_index when
// indices are tracked. Callers must not modify it.
func (e *EntityType[T]) Schema() *schema.Schema {
	return e.schema
}

// TrackIndices reports whether rows carry $row_index.
func (e *EntityType[T]) TrackIndices() bool {
	return e.opts.TrackIndices
}

// Format builds the descriptor for this entity type's direction. It fails
// with ErrInvalidConfiguration when ctx lacks that direction's table count.
func (e *EntityType[T]) Format(ctx FormatContext) (format.Format, error) {
	if ctx == nil {
		return format.Format{}, fmt.Errorf("%w: nil format context", ErrInvalidConfiguration)
	}
	var (
		count int
		ok    bool
		dir   = "output"
	)
	if e.opts.Input {
		dir = "input"
		count, ok = ctx.InputTableCount()
	} else {
		count, ok = ctx.OutputTableCount()
	}
	if !ok {
		return format.Format{}, fmt.Errorf("%w: %s table count is not set", ErrInvalidConfiguration, dir)
	}
	f, err := format.Skiff(e.schema, count)
	if err != nil {
		return format.Format{}, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return f, nil
}

// Iterator starts decoding input. The returned decoder owns input and closes
// it on Close.
func (e *EntityType[T]) Iterator(input io.ReadCloser, ctx OperationContext) (*RowDecoder[T], error) {
	if input == nil {
		return nil, fmt.Errorf("%w: nil input stream", ErrInvalidConfiguration)
	}
	if ctx == nil {
		ctx = nopContext{}
	}
	ctx.WithSettingIndices(e.opts.TrackIndices, e.opts.TrackIndices)
	return newRowDecoder(e, input, ctx), nil
}

// Yield starts encoding to outputs; output i receives rows for table i. The
// returned encoder owns the streams and closes them on Close.
func (e *EntityType[T]) Yield(outputs []io.WriteCloser) (*RowEncoder[T], error) {
	for i, out := range outputs {
		if out == nil {
			return nil, fmt.Errorf("%w: nil output stream %d", ErrInvalidConfiguration, i)
		}
	}
	return newRowEncoder(e, outputs), nil
}
