package fractalloc

import "unsafe"

// Default is the process-wide allocator behind the package-level functions.
// It takes pages from the operating system and is safe for concurrent use.
var Default = New()

// Allocate allocates from Default. See Allocator.Allocate.
func Allocate(size, align uintptr) unsafe.Pointer {
	return Default.Allocate(size, align)
}

// Deallocate returns p to Default. See Allocator.Deallocate.
func Deallocate(p unsafe.Pointer, size, align uintptr) {
	Default.Deallocate(p, size, align)
}

// NewCache returns a cache over Default owned by the caller.
func NewCache() *Cache {
	return Default.NewCache()
}

// WorkerCache returns the cache of worker id on Default. See Allocator.Cache.
func WorkerCache(worker int) *Cache {
	return Default.Cache(worker)
}
