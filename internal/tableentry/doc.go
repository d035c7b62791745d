// Package tableentry adapts typed entities to skiff table streams.
//
// An EntityType derives a row schema once from the entity's Go type and then
// serves three operations:
//   - Format builds the descriptor negotiated with the engine
//   - Iterator decodes one input stream into entities (RowDecoder)
//   - Yield encodes entities into one stream per output table (RowEncoder)
//
// Input rows are framed as
//
//	[uint16 table index][entity payload][variant8 $row_index, when tracked]
//
// and output rows as
//
//	[uint16 0][entity payload][variant8 tag 0, when tracked]
//
// The output table marker is always zero: each output table has its own
// physical stream and the engine attributes rows by stream.
package tableentry
