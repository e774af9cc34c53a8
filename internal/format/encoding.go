package format

import (
	"encoding/binary"
	"math"
)

// Binary encoding utilities for little-endian integers and floats.
//
// Implementation note: as with the codebase this package is grown from, we
// benchmarked an unsafe-pointer cast against encoding/binary.LittleEndian
// and found no measurable difference once inlined; LittleEndian it stays.

// PutU16 writes v at b[off:off+2] in little-endian order.
func PutU16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:off+2], v)
}

// PutU32 writes v at b[off:off+4] in little-endian order.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// PutU64 writes v at b[off:off+8] in little-endian order.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU16 reads a little-endian uint16 from b[off:off+2].
func ReadU16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off : off+2])
}

// ReadU32 reads a little-endian uint32 from b[off:off+4].
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// ReadU64 reads a little-endian uint64 from b[off:off+8].
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// PutF64 writes v as an 8-byte IEEE-754 double at b[off:off+8].
func PutF64(b []byte, off int, v float64) {
	PutU64(b, off, math.Float64bits(v))
}

// ReadF64 reads an 8-byte IEEE-754 double from b[off:off+8].
func ReadF64(b []byte, off int) float64 {
	return math.Float64frombits(ReadU64(b, off))
}
