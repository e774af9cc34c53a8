package strtab

import "errors"

// ErrTableFull is returned by ToSymbol when a string cannot be inserted
// because either the hash slot array or the string arena is at capacity, or
// because the new symbol would fall outside the 16-bit addressable range
// while the table is in 16-bit slot mode. The caller is expected to grow the
// buffer and retry; cfgdata is the only caller that does so automatically.
var ErrTableFull = errors.New("strtab: table full")

// ErrNotFound is returned by ToSymbolConst when the string is not already
// interned.
var ErrNotFound = errors.New("strtab: symbol not found")

// ErrBufferTooSmall is returned by Init when the supplied buffer is smaller
// than MinSize.
var ErrBufferTooSmall = errors.New("strtab: buffer too small")
