package cfgdata

import (
	"fmt"

	"github.com/relocore/cfgdata/internal/format"
	"github.com/relocore/cfgdata/strtab"
	"github.com/relocore/cfgdata/cfgdata/symcache"
)

// Combined-buffer layout:
//
//	[0:headerSize)                               combined header
//	[headerSize:headerSize+ValueRegionBytes)      value region
//	[headerSize+ValueRegionBytes:TotalBytes)       embedded string table
//
// The string table is always the buffer's tail; its own size is never
// stored explicitly, it is derived as TotalBytes - headerSize -
// ValueRegionBytes. Growing the value region shifts the string table up;
// growing the string table only extends the buffer, the table never moves.
const (
	offTotalBytes      = 0
	offValueRegionSize = 4
	offUsedValueBytes  = 8
	offRootLoc         = 12
	headerSize         = 16
)

const (
	defaultValueBytes  = 8 * 1024
	defaultStringBytes = 8 * 1024
	minStringTableSize = strtab.MinSize
)

// Data is a handle onto a single relocatable byte buffer holding a tagged
// tree of JSON-like values plus the string table that backs its STRING
// locs. All mutation goes through the configured Allocator; a *Data never
// holds more memory than its buf field, so growth is always visible to
// every Loc previously handed out by this Data (none of them encode an
// absolute pointer, only an offset relative to the buffer it came from).
type Data struct {
	buf   []byte
	alloc Allocator
	cache *symcache.Cache
}

// EnableLookupCache wires a sharded LRU cache of the given capacity in
// front of ObjectLookupCached. Without calling this, ObjectLookupCached
// behaves exactly like ObjectLookup; it exists so hot lookup-heavy callers
// can opt in without every Data paying the cache's bookkeeping cost.
func (d *Data) EnableLookupCache(capacity int) {
	d.cache = symcache.New(capacity)
}

// ObjectLookupCached behaves like ObjectLookup but consults the Data's
// lookup cache first, if EnableLookupCache was called. Every Set/SetLoc
// invalidates the corresponding cache entry, so a cached miss or hit never
// observes a stale value across a mutation.
func (d *Data) ObjectLookupCached(l Loc, key string) Loc {
	if d.cache == nil || l.Kind() != KindObject {
		return d.ObjectLookup(l, key)
	}
	if v, ok := d.cache.Lookup(l.offset(), key); ok {
		return Loc(v)
	}
	result := d.ObjectLookup(l, key)
	d.cache.Store(l.offset(), key, uint32(result))
	return result
}

// Make creates a new Data with an initial value region of valueBytes and an
// initial string table region of stringBytes. A size of 0 defaults to 8KiB
// for that region, matching nfcd_make's defaults. A nil Allocator defaults
// to DefaultAllocator.
func Make(alloc Allocator, valueBytes, stringBytes int) (*Data, error) {
	if alloc == nil {
		alloc = DefaultAllocator
	}
	if valueBytes <= 0 {
		valueBytes = defaultValueBytes
	}
	if stringBytes <= 0 {
		stringBytes = defaultStringBytes
	}
	if stringBytes < minStringTableSize {
		stringBytes = minStringTableSize
	}
	valueBytes = format.Align8(valueBytes)

	total := headerSize + valueBytes + stringBytes
	buf, err := alloc.Realloc(nil, total)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllocFailed, err)
	}

	d := &Data{buf: buf, alloc: alloc}
	d.setTotalBytes(uint32(total))
	d.setValueRegionBytes(uint32(valueBytes))
	d.setUsedValueBytes(0)
	d.setRootLoc(Null())

	if err := strtab.Init(d.stringTableRegion(), 16); err != nil {
		return nil, err
	}
	return d, nil
}

// Close releases the underlying buffer back to the Allocator. The Data
// must not be used afterward.
func (d *Data) Close() error {
	if d.buf == nil {
		return nil
	}
	_, err := d.alloc.Realloc(d.buf, 0)
	d.buf = nil
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAllocFailed, err)
	}
	return nil
}

func (d *Data) totalBytes() uint32      { return format.ReadU32(d.buf, offTotalBytes) }
func (d *Data) valueRegionBytes() uint32 { return format.ReadU32(d.buf, offValueRegionSize) }
func (d *Data) usedValueBytes() uint32  { return format.ReadU32(d.buf, offUsedValueBytes) }
func (d *Data) rootLoc() Loc            { return Loc(format.ReadU32(d.buf, offRootLoc)) }

func (d *Data) setTotalBytes(v uint32)      { format.PutU32(d.buf, offTotalBytes, v) }
func (d *Data) setValueRegionBytes(v uint32) { format.PutU32(d.buf, offValueRegionSize, v) }
func (d *Data) setUsedValueBytes(v uint32)  { format.PutU32(d.buf, offUsedValueBytes, v) }
func (d *Data) setRootLoc(l Loc)            { format.PutU32(d.buf, offRootLoc, uint32(l)) }

// Root returns the Loc of the document's root value. A freshly made Data
// has Null() as its root.
func (d *Data) Root() Loc { return d.rootLoc() }

// SetRoot replaces the document's root value.
func (d *Data) SetRoot(l Loc) { d.setRootLoc(l) }

// Type returns the Kind of the value addressed by l.
func (d *Data) Type(l Loc) Kind { return l.Kind() }

func (d *Data) valueRegion() []byte {
	return d.buf[headerSize : headerSize+d.valueRegionBytes()]
}

func (d *Data) stringTableRegion() []byte {
	return d.buf[headerSize+d.valueRegionBytes():]
}

// ensureValueSpace guarantees at least need more bytes are available in the
// value region beyond usedValueBytes, growing (doubling) the value region
// and reallocating the combined buffer if not. Growing the value region
// shifts the string table, which sits immediately after it, up by the same
// number of bytes; the bytes already written in the string table's region
// are preserved by copying them to their new absolute offset.
func (d *Data) ensureValueSpace(need int) error {
	avail := int(d.valueRegionBytes()) - int(d.usedValueBytes())
	if avail >= need {
		return nil
	}

	oldValueBytes := d.valueRegionBytes()
	newValueBytes := oldValueBytes
	if newValueBytes == 0 {
		newValueBytes = format.Align8U32(uint32(need))
	}
	for int(newValueBytes)-int(d.usedValueBytes()) < need {
		newValueBytes *= 2
	}

	stringTableBytes := d.totalBytes() - headerSize - oldValueBytes
	newTotal := headerSize + newValueBytes + stringTableBytes

	newBuf, err := d.alloc.Realloc(d.buf, int(newTotal))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAllocFailed, err)
	}

	// Shift the string table's bytes up to sit after the enlarged value
	// region. copy() handles the forward-overlapping move correctly since
	// it is specified to work on aliasing byte slices.
	oldStringOff := headerSize + oldValueBytes
	newStringOff := headerSize + newValueBytes
	copy(newBuf[newStringOff:newTotal], newBuf[oldStringOff:oldStringOff+stringTableBytes])

	d.buf = newBuf
	d.setTotalBytes(newTotal)
	d.setValueRegionBytes(newValueBytes)
	return nil
}

// growStringTable doubles the string table's own region. Unlike the value
// region, the string table always sits at the buffer's tail, so growing it
// only extends the combined buffer's length; none of the bytes already
// written anywhere in the buffer need to move.
func (d *Data) growStringTable() error {
	oldTotal := d.totalBytes()
	oldStringBytes := oldTotal - headerSize - d.valueRegionBytes()
	newStringBytes := oldStringBytes * 2
	newTotal := oldTotal + (newStringBytes - oldStringBytes)

	newBuf, err := d.alloc.Realloc(d.buf, int(newTotal))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAllocFailed, err)
	}
	d.buf = newBuf
	d.setTotalBytes(newTotal)

	if err := strtab.Grow(d.stringTableRegion()); err != nil {
		return err
	}
	return nil
}

// internString adds s to the embedded string table, growing the table and
// retrying on ErrTableFull.
func (d *Data) internString(s string) (strtab.Symbol, error) {
	for {
		sym, err := strtab.ToSymbol(d.stringTableRegion(), s)
		if err == nil {
			return sym, nil
		}
		if err != strtab.ErrTableFull {
			return 0, err
		}
		if err := d.growStringTable(); err != nil {
			return 0, err
		}
	}
}

// allocValue reserves n bytes, 8-byte aligned, from the value region and
// returns the offset the allocation starts at along with a slice over it.
// Every value-region allocation goes through here, numbers and block
// headers alike, so offsets are always suitably aligned for format.ReadF64.
func (d *Data) allocValue(n int) (uint32, []byte, error) {
	aligned := format.Align8(n)
	if err := d.ensureValueSpace(aligned); err != nil {
		return 0, nil, err
	}
	off := d.usedValueBytes()
	d.setUsedValueBytes(off + uint32(aligned))
	return off, d.valueRegion()[off : off+uint32(n)], nil
}

// lookupSymbolConst looks up s in d's string table without interning it.
func lookupSymbolConst(d *Data, s string) (strtab.Symbol, error) {
	return strtab.ToSymbolConst(d.stringTableRegion(), s)
}

// AddNumber stores v in the value region and returns its Loc.
func (d *Data) AddNumber(v float64) (Loc, error) {
	off, slice, err := d.allocValue(8)
	if err != nil {
		return Null(), err
	}
	format.PutF64(slice, 0, v)
	return makeLoc(KindNumber, off), nil
}

// ToNumber returns the float64 addressed by l, or 0 if l is not a NUMBER.
func (d *Data) ToNumber(l Loc) float64 {
	if l.Kind() != KindNumber {
		return 0
	}
	return format.ReadF64(d.valueRegion(), int(l.offset()))
}

// AddString interns s and returns a STRING Loc wrapping its symbol id.
func (d *Data) AddString(s string) (Loc, error) {
	sym, err := d.internString(s)
	if err != nil {
		return Null(), err
	}
	return makeLoc(KindString, uint32(sym)), nil
}

// ToString returns the string addressed by l, or "" if l is not a STRING.
// The returned string is a copy; it remains valid after further mutation
// of d. Use ToStringBytes to borrow the bytes without copying.
func (d *Data) ToString(l Loc) string {
	return string(d.ToStringBytes(l))
}

// ToStringBytes returns the raw bytes backing the string addressed by l,
// borrowed directly from the embedded string table's arena. The slice is
// valid only until the next call that may grow the string table
// (AddString, or Set interning a new key).
func (d *Data) ToStringBytes(l Loc) []byte {
	if l.Kind() != KindString {
		return nil
	}
	return strtab.ToStringBytes(d.stringTableRegion(), strtab.Symbol(l.offset()))
}
