// Package skiff owns the skiff wire primitives.
//
// Ownership boundary:
// - Parser: positional cursor over an input byte stream
// - Writer: buffered cursor over an output byte stream
//
// All multi-byte values are little-endian. Structured layouts live in
// skiff/schema and skiff/entity.
package skiff
