package fractalloc

import "unsafe"

// Heap is the allocate/deallocate pair shared by *Allocator and *Cache. A
// block must be deallocated with the size and align it was allocated with.
type Heap interface {
	Allocate(size, align uintptr) unsafe.Pointer
	Deallocate(p unsafe.Pointer, size, align uintptr)
}

var (
	_ Heap = (*Allocator)(nil)
	_ Heap = (*Cache)(nil)
)

// sizeOf reports the size Alloc and Release agree on for T. Zero-sized types
// still occupy one block.
func sizeOf[T any]() uintptr {
	var zero T
	return max(unsafe.Sizeof(zero), 1)
}

// Alloc returns a pointer to a zeroed T allocated from h, or nil if T is
// larger than MaxSize or h is out of memory. T must not contain Go pointers:
// the garbage collector does not scan memory from h.
func Alloc[T any](h Heap) *T {
	var zero T
	size := sizeOf[T]()
	if size > MaxSize {
		return nil
	}
	p := h.Allocate(size, unsafe.Alignof(zero))
	if p == nil {
		return nil
	}
	clear(unsafe.Slice((*byte)(p), size))
	return (*T)(p)
}

// Release gives a pointer obtained from Alloc back to h.
func Release[T any](h Heap, p *T) {
	if p == nil {
		return
	}
	var zero T
	h.Deallocate(unsafe.Pointer(p), sizeOf[T](), unsafe.Alignof(zero))
}

// AllocSlice allocates a slice of n elements of type T from h. The elements
// are not initialized. Returns nil if n <= 0, if the slice would not fit in
// MaxSize bytes, or if h is out of memory.
func AllocSlice[T any](h Heap, n int) []T {
	if n <= 0 {
		return nil
	}
	var zero T
	elemSize := unsafe.Sizeof(zero)
	if elemSize != 0 && uintptr(n) > MaxSize/elemSize {
		return nil
	}
	total := max(elemSize*uintptr(n), 1)
	p := h.Allocate(total, unsafe.Alignof(zero))
	if p == nil {
		return nil
	}
	return unsafe.Slice((*T)(p), n)
}

// AllocSliceZeroed is AllocSlice with every element set to its zero value.
func AllocSliceZeroed[T any](h Heap, n int) []T {
	s := AllocSlice[T](h, n)
	clear(s)
	return s
}

// ReleaseSlice gives a slice obtained from AllocSlice back to h. The slice's
// capacity must not have been changed by reslicing.
func ReleaseSlice[T any](h Heap, s []T) {
	if cap(s) == 0 {
		return
	}
	var zero T
	total := max(unsafe.Sizeof(zero)*uintptr(cap(s)), 1)
	h.Deallocate(unsafe.Pointer(unsafe.SliceData(s)), total, unsafe.Alignof(zero))
}

// AllocBytes allocates n uninitialized bytes from h.
func AllocBytes(h Heap, n int) []byte {
	return AllocSlice[byte](h, n)
}

// ReleaseBytes gives a slice obtained from AllocBytes back to h.
func ReleaseBytes(h Heap, b []byte) {
	ReleaseSlice(h, b)
}
