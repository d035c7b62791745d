package skiff

const (
	// DefaultBufferSize matches the buffering the engine expects per stream.
	DefaultBufferSize = 1 << 16

	// EndOfSequence8 terminates a repeated_variant8 sequence.
	EndOfSequence8 uint8 = 0xff
	// EndOfSequence16 terminates a repeated_variant16 sequence.
	EndOfSequence16 uint16 = 0xffff
)

// Limits constrains parser memory use.
type Limits struct {
	MaxString32Bytes uint32
}

func DefaultLimits() Limits {
	return Limits{
		MaxString32Bytes: 256 * 1024 * 1024,
	}
}
