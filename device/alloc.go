package device

import (
	"fmt"
	"sync"

	"github.com/graftml/graft/format"
	"github.com/graftml/graft/logutil"
)

// Allocator hands out device buffers and tracks live bytes. It stands in for
// the framework's stream-ordered memory pool: allocation is cheap, release is
// accounting only, and the GC reclaims storage once nothing references it.
type Allocator struct {
	mu sync.Mutex

	live   int64
	peak   int64
	allocs int64
}

func NewAllocator() *Allocator {
	return &Allocator{}
}

// Alloc returns a zeroed buffer of n elements of dtype dt.
func (a *Allocator) Alloc(dt DType, n int) *Buffer {
	if n < 0 {
		panic(fmt.Sprintf("device: negative allocation length %d", n))
	}

	nbytes := int64(n) * int64(dt.Size())

	a.mu.Lock()
	a.live += nbytes
	a.allocs++
	if a.live > a.peak {
		a.peak = a.live
	}
	a.mu.Unlock()

	logutil.Trace("alloc", "dtype", dt.String(), "len", n, "bytes", format.HumanBytes(nbytes))

	return &Buffer{a: a, dt: dt, n: n, raw: make([]byte, nbytes)}
}

// AllocScratch returns untyped scratch storage of exactly nbytes bytes,
// sized by a prior scratch query (see kernels.AdjacentDifferenceScratchBytes).
func (a *Allocator) AllocScratch(nbytes int) *Buffer {
	return a.Alloc(DTypeUint8, nbytes)
}

func (a *Allocator) release(nbytes int64) {
	a.mu.Lock()
	a.live -= nbytes
	a.mu.Unlock()
}

// Live reports currently allocated bytes.
func (a *Allocator) Live() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

// Peak reports the allocation high-water mark.
func (a *Allocator) Peak() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.peak
}
