package fractalloc

import (
	"sync/atomic"
	"unsafe"
)

// wordAlign is the alignment AllocBytes hands out.
const wordAlign = unsafe.Sizeof(uintptr(0))

// Bump is a lock-free monotonic allocator over a fixed region. A single
// cursor advances with compare-and-swap; blocks are never freed one by one.
// It is independent of Allocator and its free lists.
type Bump struct {
	cursor atomic.Uintptr
	start  uintptr
	end    uintptr
	buf    []byte // keeps a Go-backed region reachable
}

// NewBump creates a bump allocator over buf. buf must outlive every pointer
// handed out and must not be used for anything else.
func NewBump(buf []byte) *Bump {
	b := &Bump{buf: buf}
	if len(buf) > 0 {
		b.start = uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
		b.end = b.start + uintptr(len(buf))
	}
	b.cursor.Store(b.start)
	return b
}

// NewBumpRange creates a bump allocator over the raw region
// [start, start+size), which must lie outside the Go heap (for example a
// page from a PageProvider) and stay mapped while the allocator is in use.
func NewBumpRange(start, size uintptr) *Bump {
	if start == 0 && size > 0 {
		panic("fractalloc: bump region at address zero")
	}
	if start+size < start {
		panic("fractalloc: bump region wraps the address space")
	}
	b := &Bump{start: start, end: start + size}
	b.cursor.Store(start)
	return b
}

// Allocate reserves size bytes aligned to align (zero means 1). It returns
// ErrCapacityExhausted once the aligned request no longer fits; the cursor
// is left untouched in that case, so later smaller requests may still fit.
func (b *Bump) Allocate(size, align uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, ErrInvalidSize
	}
	if align == 0 {
		align = 1
	}
	if align&(align-1) != 0 {
		return nil, ErrInvalidAlignment
	}
	mask := align - 1
	cur := b.cursor.Load()
	for {
		aligned := (cur + mask) &^ mask
		if aligned < cur || aligned > b.end || size > b.end-aligned {
			return nil, ErrCapacityExhausted
		}
		if b.cursor.CompareAndSwap(cur, aligned+size) {
			return b.pointer(aligned), nil
		}
		cur = b.cursor.Load()
	}
}

// AllocBytes returns n pointer-aligned bytes from the region, or nil if
// n <= 0 or the region is exhausted. The bytes are not zeroed beyond what
// the region held initially.
func (b *Bump) AllocBytes(n int) []byte {
	if n <= 0 {
		return nil
	}
	p, err := b.Allocate(uintptr(n), wordAlign)
	if err != nil {
		return nil
	}
	return unsafe.Slice((*byte)(p), n)
}

// pointer converts a region address, deriving it from buf when the region
// is Go memory.
func (b *Bump) pointer(addr uintptr) unsafe.Pointer {
	if b.buf != nil {
		return unsafe.Add(unsafe.Pointer(unsafe.SliceData(b.buf)), addr-b.start)
	}
	return unsafe.Pointer(addr)
}
