// Package fractalloc implements a size-class memory allocator over pages
// obtained directly from the operating system.
//
// # Overview
//
// Requests are rounded up to one of 32 size classes. Classes come in bands
// of four: each band doubles a base size and the position within the band
// multiplies it by 1, 2, 3 or 4, which gives finer steps than powers of two.
// The smallest class is 8 bytes, the largest is one 4096-byte page.
//
// Every class has a lock-free free list shared by all goroutines. When a
// list runs dry the allocator maps a fresh page, slices it into blocks of
// that class, hands out the first block and links the rest into the list.
// Pages are never returned to the operating system.
//
// # Basic Usage
//
//	a := fractalloc.New()
//
//	p := a.Allocate(64, 8)
//	if p == nil {
//		// out of memory
//	}
//	defer a.Deallocate(p, 64, 8) // same size and align as Allocate
//
//	// Typed helpers work on any Heap (*Allocator or *Cache)
//	v := fractalloc.Alloc[Point](a)
//	defer fractalloc.Release(a, v)
//
// # Worker Caches
//
// Go has no thread-local storage, so the fast path is an explicit Cache
// owned by one goroutine. A cache is a set of 32 unsynchronized stacks that
// is checked before the global lists and always absorbs deallocations:
//
//	c := a.Cache(workerID) // or a.NewCache()
//	p := c.Allocate(48, 16)
//	c.Deallocate(p, 48, 16)
//
// A Cache must never be shared between goroutines. Caches are unbounded and
// never spill back, so memory freed into a cache is only reusable by that
// cache's owner.
//
// # Bump Allocation
//
// Bump is an independent monotonic allocator over a fixed region. It
// advances a single cursor with compare-and-swap and never frees
// individual allocations:
//
//	b := fractalloc.NewBump(make([]byte, 1<<20))
//	p, err := b.Allocate(16, 8)
//	if errors.Is(err, fractalloc.ErrCapacityExhausted) {
//		// region is full
//	}
//
// # Important Notes
//
//   - Allocation failure is reported as a nil pointer, never as a panic
//   - Deallocate must be called with the size and align passed to Allocate;
//     they are not checked and a mismatch corrupts the free lists
//   - Requests above MaxSize silently get the largest class
//   - Memory lives outside the Go heap and must not hold Go pointers
//   - Memory is not zeroed on reuse; Alloc and AllocSliceZeroed zero it
//
// # Metrics and Monitoring
//
// Attach a Metrics recorder to observe the allocator:
//
//	m := fractalloc.NewMetrics()
//	a := fractalloc.New(fractalloc.WithObserver(m))
//	...
//	stats := m.Stats()
//	fmt.Printf("Cache hit rate: %.2f%%\n", stats.CacheHitRate()*100)
//	fmt.Printf("Bytes outstanding: %d\n", stats.BytesAllocated)
package fractalloc
