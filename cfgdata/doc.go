// Package cfgdata implements a tagged-union value store for hierarchical
// configuration data (null, booleans, numbers, strings, arrays, objects) in
// a single relocatable byte buffer.
//
// Values are addressed by Loc, a 32-bit handle packing a 3-bit type tag and
// an offset. For NUMBER the offset points to an 8-byte double in the value
// region; for STRING the offset is a symbol id in the embedded string
// table, not a byte offset; for ARRAY and OBJECT the offset points to the
// first block of a chain of fixed-capacity blocks. A Loc is valid for the
// lifetime of the Data it was produced from, across any number of
// reallocations: growth only ever appends to the buffer or relinks block
// chains, it never moves an entry that has already been written.
//
// A Data is not safe for concurrent mutation. Concurrent readers of an
// otherwise-immutable Data are safe provided no writer is active.
package cfgdata
