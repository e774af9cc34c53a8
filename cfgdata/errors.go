package cfgdata

import "errors"

// ErrAllocFailed is returned when the configured Allocator fails to grow or
// shrink the combined buffer. The allocator contract otherwise promises
// success, so callers should treat this as fatal.
var ErrAllocFailed = errors.New("cfgdata: allocator failed")

// ErrInvalidLoc is returned by mutating calls (Push, Set, SetLoc) when the
// supplied Loc does not carry the Kind the call requires, or addresses a
// block that does not lie inside the value region. Read paths never
// return this: an out-of-range index or a Loc of the wrong Kind reads back
// as Null() instead, per the data layer's never-fail contract.
var ErrInvalidLoc = errors.New("cfgdata: invalid loc")
