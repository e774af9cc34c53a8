package cfgdata

import "sync"

// Allocator mediates every resize of a Data's combined buffer. It mirrors
// the C ancestor's realloc callback (alloc(ud, old_ptr, old_size, new_size,
// file, line)): old == nil, newSize > 0 allocates; old != nil, newSize > 0
// reallocates, preserving old's contents up to min(len(old), newSize);
// old != nil, newSize == 0 frees and may return nil.
//
// The file/line diagnostic parameters of the C signature are dropped:
// runtime.Caller makes them ambient information in Go rather than something
// an interface needs to carry explicitly.
type Allocator interface {
	Realloc(old []byte, newSize int) ([]byte, error)
}

type defaultAllocator struct{}

func (defaultAllocator) Realloc(old []byte, newSize int) ([]byte, error) {
	if newSize == 0 {
		return nil, nil
	}
	buf := make([]byte, newSize)
	copy(buf, old)
	return buf, nil
}

// DefaultAllocator is the zero-configuration Allocator backed by plain Go
// slices. Growth always copies into a freshly made slice; there is no
// pooling or reuse of freed buffers.
var DefaultAllocator Allocator = defaultAllocator{}

// pooledAllocator recycles freed buffers through a single sync.Pool
// instead of handing them back to the garbage collector, for callers that
// create and discard many short-lived Data values.
type pooledAllocator struct {
	pool sync.Pool
}

// NewPooledAllocator returns an Allocator that recycles freed buffers
// through a sync.Pool, acquiring and releasing buffers the same way
// hive/index.AcquireNumericIndex/ReleaseNumericIndex recycle their scratch
// indexes: freed buffers are pooled re-sliced to zero length, a pool miss
// (or a pooled buffer too small for the request) falls back to a fresh
// allocation, and a pool hit is re-sliced to the requested size and zeroed
// before reuse.
func NewPooledAllocator() Allocator {
	return &pooledAllocator{}
}

func (p *pooledAllocator) Realloc(old []byte, newSize int) ([]byte, error) {
	if newSize == 0 {
		if old != nil {
			p.pool.Put(old[:0]) //nolint:staticcheck // intentionally pool a zero-length slice to retain capacity
		}
		return nil, nil
	}

	if v := p.pool.Get(); v != nil {
		buf := v.([]byte)
		if cap(buf) >= newSize {
			buf = buf[:newSize]
			for i := range buf {
				buf[i] = 0
			}
			copy(buf, old)
			return buf, nil
		}
		// Too small for this request; let it be collected and fall through
		// to a fresh allocation sized for the request.
	}

	buf := make([]byte, newSize)
	copy(buf, old)
	return buf, nil
}
