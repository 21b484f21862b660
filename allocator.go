package fractalloc

import (
	"log/slog"
	"runtime"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Allocator is a size-class allocator over OS pages. Each class has a
// lock-free global free list shared by all goroutines; worker caches (see
// Cache) sit in front of it for unsynchronized fast paths.
//
// All methods are safe for concurrent use. Memory returned by an Allocator
// lives outside the Go heap and must not hold Go pointers.
type Allocator struct {
	lists   [NumClasses]freeList
	workers []workerSlot
	minted  atomic.Int64

	pages    PageProvider
	obs      Observer
	log      *slog.Logger
	nworkers int
}

type workerSlot struct {
	cache atomic.Pointer[Cache]
	_     cpu.CacheLinePad
}

// New creates an Allocator. Without options it takes pages from the
// operating system, records nothing and logs nothing.
func New(opts ...Option) *Allocator {
	a := &Allocator{
		pages: OSPages{},
		obs:   nopObserver{},
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.nworkers <= 0 {
		a.nworkers = runtime.GOMAXPROCS(0)
	}
	a.workers = make([]workerSlot, a.nworkers)
	return a
}

// Allocate returns a block of at least size bytes aligned to align, or nil
// if no memory could be obtained or align is not a power of two no larger
// than PageSize. An align of zero asks only for the class's own alignment.
// Sizes above MaxSize saturate to the largest class.
//
// Allocate goes straight to the global free lists; use a Cache for the
// unsynchronized fast path.
func (a *Allocator) Allocate(size, align uintptr) unsafe.Pointer {
	c, ok := classFor(size, align)
	if !ok {
		a.obs.RecordFailure()
		return nil
	}
	return a.allocateClass(c, size)
}

// Deallocate returns p to the global free list of its class. size and align
// must be the values passed to the matching Allocate, which together pick the
// class; they are not validated. A nil p, or an align no Allocate could have
// accepted, is ignored.
func (a *Allocator) Deallocate(p unsafe.Pointer, size, align uintptr) {
	if p == nil {
		return
	}
	c, ok := classFor(size, align)
	if !ok {
		return
	}
	a.lists[c.index].push(uintptr(p))
	a.obs.RecordDeallocation(size)
}

func (a *Allocator) allocateClass(c SizeClass, size uintptr) unsafe.Pointer {
	addr := a.lists[c.index].pop()
	if addr == 0 {
		addr = a.refill(c)
	}
	if addr == 0 {
		a.obs.RecordFailure()
		return nil
	}
	a.obs.RecordAllocation(size)
	return unsafe.Pointer(addr)
}

// refill mints a page for class c, keeps its first block for the caller and
// links the rest into the class's global free list.
func (a *Allocator) refill(c SizeClass) uintptr {
	base, err := checkPage(a.pages.AcquirePage())
	if err != nil {
		a.log.Warn("page acquisition failed", "class", c.index, "size", c.size, "err", err)
		return 0
	}
	a.minted.Add(1)

	first, last, n := carve(base, c)
	if n > 1 {
		a.lists[c.index].pushChain(first+c.size, last)
	}
	a.log.Debug("page minted", "class", c.index, "size", c.size, "blocks", n)
	return first
}

// Pages returns the number of pages minted so far.
func (a *Allocator) Pages() int {
	return int(a.minted.Load())
}

// Free returns the number of blocks on the global free list of class i.
// It walks the list through the blocks themselves, so it must only be called
// while no other goroutine is using the allocator.
func (a *Allocator) Free(class int) int {
	if class < 0 || class >= NumClasses {
		return 0
	}
	return a.lists[class].depth()
}

// Workers returns the number of worker caches Cache can hand out.
func (a *Allocator) Workers() int {
	return len(a.workers)
}
