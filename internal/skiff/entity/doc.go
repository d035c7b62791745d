// Package entity encodes and decodes Go structs as skiff rows.
//
// A Serializer or Deserializer is compiled once from a row schema and the
// entity type; encoding then walks the compiled plan without re-inspecting
// the schema.
package entity
