package fractalloc

import "unsafe"

// Cache is a per-worker stack of free blocks for every size class, sitting
// in front of an Allocator's global free lists. It uses no synchronization:
// a Cache must only ever be used by the goroutine that owns it.
//
// Deallocate always keeps the block in the cache; nothing is spilled back to
// the global lists, so a cache grows to its owner's peak working set. Blocks
// still cached when the owner drops its Cache are abandoned, not reclaimed.
type Cache struct {
	a     *Allocator
	heads [NumClasses]uintptr
	count [NumClasses]int
}

// NewCache returns a cache owned by the caller.
func (a *Allocator) NewCache() *Cache {
	return &Cache{a: a}
}

// Cache returns the cache of worker id, creating it on first use. It returns
// nil if worker is outside [0, Workers()). The caller must make sure no two
// goroutines use the same worker id at the same time.
func (a *Allocator) Cache(worker int) *Cache {
	if worker < 0 || worker >= len(a.workers) {
		return nil
	}
	slot := &a.workers[worker].cache
	if c := slot.Load(); c != nil {
		return c
	}
	c := a.NewCache()
	if slot.CompareAndSwap(nil, c) {
		return c
	}
	return slot.Load()
}

// Allocator returns the allocator behind this cache.
func (c *Cache) Allocator() *Allocator {
	return c.a
}

// Allocate pops a block of the right class from the cache, falling through
// to the allocator's global free lists on a miss. It has the same contract
// as Allocator.Allocate.
func (c *Cache) Allocate(size, align uintptr) unsafe.Pointer {
	sc, ok := classFor(size, align)
	if !ok {
		c.a.obs.RecordFailure()
		return nil
	}
	if addr := c.heads[sc.index]; addr != 0 {
		c.heads[sc.index] = blockAt(addr).loadNext()
		c.count[sc.index]--
		c.a.obs.RecordCacheHit()
		c.a.obs.RecordAllocation(size)
		return unsafe.Pointer(addr)
	}
	c.a.obs.RecordCacheMiss()
	return c.a.allocateClass(sc, size)
}

// Deallocate pushes p onto the cache. size and align must be the values
// passed to the matching Allocate. A nil p, or an invalid align, is ignored.
func (c *Cache) Deallocate(p unsafe.Pointer, size, align uintptr) {
	if p == nil {
		return
	}
	sc, ok := classFor(size, align)
	if !ok {
		return
	}
	i := sc.index
	addr := uintptr(p)
	blockAt(addr).storeNext(c.heads[i])
	c.heads[i] = addr
	c.count[i]++
	c.a.obs.RecordDeallocation(size)
}

// Len returns the number of blocks cached for class i.
func (c *Cache) Len(class int) int {
	if class < 0 || class >= NumClasses {
		return 0
	}
	return c.count[class]
}
