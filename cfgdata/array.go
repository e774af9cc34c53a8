package cfgdata

import (
	"github.com/relocore/cfgdata/internal/buf"
	"github.com/relocore/cfgdata/internal/format"
)

// Array entries are stored as chains of fixed-capacity blocks so that
// appending past an existing block's capacity never moves items already
// written to an earlier block; only the chain's tail pointer changes.
//
// Block header (12 bytes):
//
//	[0:4)  AllocatedCapacity  number of element slots in this block
//	[4:8)  UsedCount          number of slots in this block currently in use
//	[8:12) NextBlockOffset    value-region offset of the next block, or
//	                          noNextBlock if this is the chain's tail
//
// NextBlockOffset uses an all-ones sentinel rather than 0 because 0 is
// itself a legitimate value-region offset: the very first allocation in a
// fresh Data can land at offset 0, so 0 cannot double as "no next block"
// the way symbol 0 doubles as "empty slot" in the string table.
const (
	blockHeaderSize      = 12
	offBlockCapacity     = 0
	offBlockUsed         = 4
	offBlockNext         = 8
	defaultBlockCapacity = 16
	noNextBlock          = ^uint32(0)
)

func blockCapacity(block []byte) uint32 { return format.ReadU32(block, offBlockCapacity) }
func blockUsed(block []byte) uint32     { return format.ReadU32(block, offBlockUsed) }
func blockNext(block []byte) uint32     { return format.ReadU32(block, offBlockNext) }

func setBlockCapacity(block []byte, v uint32) { format.PutU32(block, offBlockCapacity, v) }
func setBlockUsed(block []byte, v uint32)     { format.PutU32(block, offBlockUsed, v) }
func setBlockNext(block []byte, v uint32)     { format.PutU32(block, offBlockNext, v) }

// arrayElemSize is the width of one array slot: a single Loc.
const arrayElemSize = 4

// block returns the value-region suffix starting at off, or ok=false if off
// does not leave room for at least a block header. A Loc can in principle
// point outside the region it claims to (corruption, or a Loc handed to the
// wrong Data), so every chain walk goes through this rather than slicing
// the region directly, the same way buf.CheckListBounds guards list
// iteration against an out-of-range offset/count pair.
func (d *Data) block(off uint32) ([]byte, bool) {
	region := d.valueRegion()
	if !buf.Has(region, int(off), blockHeaderSize) {
		return nil, false
	}
	return region[off:], true
}

// arrayElemAt reads the i-th element of block, or ok=false if i falls
// outside the bytes block actually has, which can happen if a corrupted or
// foreign block reports a capacity wider than its own allocation.
func arrayElemAt(block []byte, i uint32) (Loc, bool) {
	s, ok := buf.Slice(block, blockHeaderSize+int(i)*arrayElemSize, arrayElemSize)
	if !ok {
		return Null(), false
	}
	return Loc(format.ReadU32(s, 0)), true
}

func setArrayElemAt(block []byte, i uint32, l Loc) bool {
	s, ok := buf.Slice(block, blockHeaderSize+int(i)*arrayElemSize, arrayElemSize)
	if !ok {
		return false
	}
	format.PutU32(s, 0, uint32(l))
	return true
}

// newBlock allocates a fresh block of the given capacity and element size,
// wired as the chain's new tail (NextBlockOffset = noNextBlock).
func (d *Data) newBlock(capacity uint32, elemSize int) (uint32, error) {
	off, block, err := d.allocValue(blockHeaderSize + int(capacity)*elemSize)
	if err != nil {
		return 0, err
	}
	setBlockCapacity(block, capacity)
	setBlockUsed(block, 0)
	setBlockNext(block, noNextBlock)
	return off, nil
}

// AddArray creates a new, empty array with room for cap elements before its
// first block needs to grow, and returns its Loc. cap <= 0 defaults to 16.
func (d *Data) AddArray(cap int) (Loc, error) {
	if cap <= 0 {
		cap = defaultBlockCapacity
	}
	off, err := d.newBlock(uint32(cap), arrayElemSize)
	if err != nil {
		return Null(), err
	}
	return makeLoc(KindArray, off), nil
}

// lastArrayBlock walks the chain rooted at off and returns the offset of
// its tail block along with the total element count seen across the chain.
// A chain that runs off the end of the value region is treated as ending at
// the last block that was still in bounds.
func (d *Data) lastArrayBlock(off uint32) (tail uint32, total uint32) {
	for {
		block, ok := d.block(off)
		if !ok {
			return off, total
		}
		total += blockUsed(block)
		next := blockNext(block)
		if next == noNextBlock {
			return off, total
		}
		off = next
	}
}

// ArraySize returns the number of elements in the array addressed by l, or
// 0 if l is not an ARRAY.
func (d *Data) ArraySize(l Loc) int {
	if l.Kind() != KindArray {
		return 0
	}
	_, total := d.lastArrayBlock(l.offset())
	return int(total)
}

// ArrayItem returns the element at index i of the array addressed by l, or
// Null() if l is not an ARRAY or i is out of range.
func (d *Data) ArrayItem(l Loc, i int) Loc {
	if l.Kind() != KindArray || i < 0 {
		return Null()
	}
	off := l.offset()
	remaining := uint32(i)
	for {
		block, ok := d.block(off)
		if !ok {
			return Null()
		}
		used := blockUsed(block)
		if remaining < used {
			elem, ok := arrayElemAt(block, remaining)
			if !ok {
				return Null()
			}
			return elem
		}
		remaining -= used
		next := blockNext(block)
		if next == noNextBlock {
			return Null()
		}
		off = next
	}
}

// Push appends v to the array addressed by l. If the chain's tail block is
// full, a new block double the tail's capacity is allocated and linked in;
// elements already written to earlier blocks never move.
func (d *Data) Push(l Loc, v Loc) error {
	if l.Kind() != KindArray {
		return ErrInvalidLoc
	}
	tailOff, _ := d.lastArrayBlock(l.offset())
	tail, ok := d.block(tailOff)
	if !ok {
		return ErrInvalidLoc
	}
	cap_ := blockCapacity(tail)
	used := blockUsed(tail)

	if used < cap_ && setArrayElemAt(tail, used, v) {
		setBlockUsed(tail, used+1)
		return nil
	}

	newOff, err := d.newBlock(cap_*2, arrayElemSize)
	if err != nil {
		return err
	}
	// allocValue may have reallocated the buffer; re-fetch the tail block
	// by its offset rather than reusing the stale slice.
	tail, ok = d.block(tailOff)
	if !ok {
		return ErrInvalidLoc
	}
	setBlockNext(tail, newOff)

	newBlock, ok := d.block(newOff)
	if !ok {
		return ErrInvalidLoc
	}
	setArrayElemAt(newBlock, 0, v)
	setBlockUsed(newBlock, 1)
	return nil
}
