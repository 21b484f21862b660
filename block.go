package fractalloc

import (
	"sync/atomic"
	"unsafe"
)

// block overlays the first word of a free block. It exists only while the
// block is free; once handed out, every byte belongs to the caller.
type block struct {
	next uintptr
}

// blockAt views the free block at addr. Blocks live in pages that are never
// returned to the operating system, so addr stays dereferenceable even after
// the block has been handed out again.
func blockAt(addr uintptr) *block {
	return (*block)(unsafe.Pointer(addr))
}

func (b *block) loadNext() uintptr {
	return atomic.LoadUintptr(&b.next)
}

func (b *block) storeNext(next uintptr) {
	atomic.StoreUintptr(&b.next, next)
}

// carve slices the page at base into blocks of class c, linked in ascending
// address order, and returns the first and last block and their count.
func carve(base uintptr, c SizeClass) (first, last uintptr, n int) {
	n = int(PageSize / c.size)
	last = base + uintptr(n-1)*c.size
	for addr := base; addr < last; addr += c.size {
		blockAt(addr).storeNext(addr + c.size)
	}
	blockAt(last).storeNext(0)
	return base, last, n
}
