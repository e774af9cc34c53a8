package cfgdata

import (
	"github.com/relocore/cfgdata/internal/buf"
	"github.com/relocore/cfgdata/internal/format"
)

// Object entries are {KeyLoc, ValueLoc} pairs stored in the same
// fixed-capacity block-chain layout as arrays; KeyLoc is always a STRING
// Loc, ValueLoc may be any Kind.
const objectElemSize = 8

func objectKeyAt(block []byte, i uint32) (Loc, bool) {
	s, ok := buf.Slice(block, blockHeaderSize+int(i)*objectElemSize, 4)
	if !ok {
		return Null(), false
	}
	return Loc(format.ReadU32(s, 0)), true
}

func objectValueAt(block []byte, i uint32) (Loc, bool) {
	s, ok := buf.Slice(block, blockHeaderSize+int(i)*objectElemSize+4, 4)
	if !ok {
		return Null(), false
	}
	return Loc(format.ReadU32(s, 0)), true
}

func setObjectKeyAt(block []byte, i uint32, l Loc) bool {
	s, ok := buf.Slice(block, blockHeaderSize+int(i)*objectElemSize, 4)
	if !ok {
		return false
	}
	format.PutU32(s, 0, uint32(l))
	return true
}

func setObjectValueAt(block []byte, i uint32, l Loc) bool {
	s, ok := buf.Slice(block, blockHeaderSize+int(i)*objectElemSize+4, 4)
	if !ok {
		return false
	}
	format.PutU32(s, 0, uint32(l))
	return true
}

// AddObject creates a new, empty object with room for cap pairs before its
// first block needs to grow, and returns its Loc. cap <= 0 defaults to 16.
func (d *Data) AddObject(cap int) (Loc, error) {
	if cap <= 0 {
		cap = defaultBlockCapacity
	}
	off, err := d.newBlock(uint32(cap), objectElemSize)
	if err != nil {
		return Null(), err
	}
	return makeLoc(KindObject, off), nil
}

// lastObjectBlock mirrors lastArrayBlock for the object block chain.
func (d *Data) lastObjectBlock(off uint32) (tail uint32, total uint32) {
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

// ObjectSize returns the number of key/value pairs in the object addressed
// by l, or 0 if l is not an OBJECT.
func (d *Data) ObjectSize(l Loc) int {
	if l.Kind() != KindObject {
		return 0
	}
	_, total := d.lastObjectBlock(l.offset())
	return int(total)
}

// objectPairAt walks the chain rooted at off to the i-th pair, returning
// the block it lives in and its index within that block, or ok=false if i
// is out of range.
func (d *Data) objectPairAt(off uint32, i int) (block []byte, idx uint32, ok bool) {
	remaining := uint32(i)
	for {
		b, ok := d.block(off)
		if !ok {
			return nil, 0, false
		}
		used := blockUsed(b)
		if remaining < used {
			return b, remaining, true
		}
		remaining -= used
		next := blockNext(b)
		if next == noNextBlock {
			return nil, 0, false
		}
		off = next
	}
}

// ObjectKeyLoc returns the STRING Loc of the i-th key in the object
// addressed by l, or Null() if l is not an OBJECT or i is out of range.
func (d *Data) ObjectKeyLoc(l Loc, i int) Loc {
	if l.Kind() != KindObject || i < 0 {
		return Null()
	}
	block, idx, ok := d.objectPairAt(l.offset(), i)
	if !ok {
		return Null()
	}
	key, ok := objectKeyAt(block, idx)
	if !ok {
		return Null()
	}
	return key
}

// ObjectKey returns the string value of the i-th key in the object
// addressed by l, or "" if l is not an OBJECT or i is out of range.
func (d *Data) ObjectKey(l Loc, i int) string {
	return d.ToString(d.ObjectKeyLoc(l, i))
}

// ObjectValue returns the i-th value in the object addressed by l, or
// Null() if l is not an OBJECT or i is out of range.
func (d *Data) ObjectValue(l Loc, i int) Loc {
	if l.Kind() != KindObject || i < 0 {
		return Null()
	}
	block, idx, ok := d.objectPairAt(l.offset(), i)
	if !ok {
		return Null()
	}
	value, ok := objectValueAt(block, idx)
	if !ok {
		return Null()
	}
	return value
}

// ObjectLookup returns the value stored under key in the object addressed
// by l, or Null() if l is not an OBJECT, key was never interned at all, or
// no pair in the chain carries it as a key. Looking a key up with
// ToSymbolConst rather than ToSymbol means a lookup never mutates the
// string table, matching the read-only contract of a lookup call.
func (d *Data) ObjectLookup(l Loc, key string) Loc {
	if l.Kind() != KindObject {
		return Null()
	}
	sym, err := lookupSymbolConst(d, key)
	if err != nil {
		return Null()
	}
	want := makeLoc(KindString, uint32(sym))

	off := l.offset()
	for {
		block, ok := d.block(off)
		if !ok {
			return Null()
		}
		used := blockUsed(block)
		for i := uint32(0); i < used; i++ {
			k, ok := objectKeyAt(block, i)
			if ok && k == want {
				v, ok := objectValueAt(block, i)
				if !ok {
					return Null()
				}
				return v
			}
		}
		next := blockNext(block)
		if next == noNextBlock {
			return Null()
		}
		off = next
	}
}

// Set stores key/value as a pair in the object addressed by l, overwriting
// the value in place if key is already present, or appending a new pair
// otherwise. key is interned if it is not already in the string table.
func (d *Data) Set(l Loc, key string, value Loc) error {
	keyLoc, err := d.AddString(key)
	if err != nil {
		return err
	}
	return d.SetLoc(l, keyLoc, value)
}

// SetLoc is Set with an already-interned STRING Loc as the key, avoiding a
// redundant intern when the caller already holds one.
func (d *Data) SetLoc(l Loc, key Loc, value Loc) error {
	if l.Kind() != KindObject {
		return ErrInvalidLoc
	}
	if key.Kind() != KindString {
		return ErrInvalidLoc
	}

	if d.cache != nil {
		d.cache.Invalidate(l.offset(), d.ToString(key))
	}

	off := l.offset()
	for {
		block, ok := d.block(off)
		if !ok {
			return ErrInvalidLoc
		}
		used := blockUsed(block)
		for i := uint32(0); i < used; i++ {
			k, ok := objectKeyAt(block, i)
			if ok && k == key {
				if !setObjectValueAt(block, i, value) {
					return ErrInvalidLoc
				}
				return nil
			}
		}
		next := blockNext(block)
		if next == noNextBlock {
			break
		}
		off = next
	}

	// Not found anywhere in the chain; append to the tail, growing it the
	// same way Push grows an array's tail block.
	tailOff, _ := d.lastObjectBlock(l.offset())
	tail, ok := d.block(tailOff)
	if !ok {
		return ErrInvalidLoc
	}
	cap_ := blockCapacity(tail)
	used := blockUsed(tail)

	if used < cap_ && setObjectKeyAt(tail, used, key) {
		setObjectValueAt(tail, used, value)
		setBlockUsed(tail, used+1)
		return nil
	}

	newOff, err := d.newBlock(cap_*2, objectElemSize)
	if err != nil {
		return err
	}
	tail, ok = d.block(tailOff)
	if !ok {
		return ErrInvalidLoc
	}
	setBlockNext(tail, newOff)

	newBlock, ok := d.block(newOff)
	if !ok {
		return ErrInvalidLoc
	}
	setObjectKeyAt(newBlock, 0, key)
	setObjectValueAt(newBlock, 0, value)
	setBlockUsed(newBlock, 1)
	return nil
}
