package fractalloc

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// chunkSize is how much OSPages maps per system call. It is a multiple of
// the 16 KiB pages of darwin/arm64 and of the 64 KiB VirtualAlloc
// granularity on Windows, so no mapping is rounded up behind our back.
const (
	chunkPages = 16
	chunkSize  = chunkPages * PageSize
)

// PageProvider supplies pages to an Allocator. A page is PageSize bytes,
// PageSize-aligned, zeroed, readable and writable, and must stay valid for
// the life of the process: the allocator never gives pages back.
//
// AcquirePage returns the base address of the page, or an error. Failures
// should wrap ErrOutOfMemory.
type PageProvider interface {
	AcquirePage() (uintptr, error)
}

// OSPages acquires anonymous pages from the operating system: mmap on Unix,
// VirtualAlloc on Windows. On other platforms pages are carved from pinned
// Go heap memory. Memory is mapped chunkSize bytes at a time and handed out
// one page per call; all OSPages values share the same chunk.
type OSPages struct{}

var osChunk = pageChunk{sysAlloc: sysAlloc}

// AcquirePage implements PageProvider.
func (OSPages) AcquirePage() (uintptr, error) {
	return osChunk.next()
}

// pageChunk carves pages out of chunkSize mappings obtained from sysAlloc.
type pageChunk struct {
	mu       sync.Mutex
	cur, end uintptr
	sysAlloc func(n int) (uintptr, error)
}

func (c *pageChunk) next() (uintptr, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == c.end {
		base, err := c.sysAlloc(chunkSize)
		if err != nil {
			return 0, err
		}
		c.cur, c.end = base, base+chunkSize
	}
	p := c.cur
	c.cur += PageSize
	return p, nil
}

// LimitPages wraps p so that at most n pages are acquired through it. Once
// the budget is spent every call fails with ErrOutOfMemory.
func LimitPages(p PageProvider, n int) PageProvider {
	l := &limitedPages{p: p}
	l.left.Store(int64(n))
	return l
}

type limitedPages struct {
	p    PageProvider
	left atomic.Int64
}

func (l *limitedPages) AcquirePage() (uintptr, error) {
	if l.left.Add(-1) < 0 {
		return 0, fmt.Errorf("%w: page budget spent", ErrOutOfMemory)
	}
	return l.p.AcquirePage()
}

// checkPage is the single gate every provider result passes before a block
// chain is built over it.
func checkPage(base uintptr, err error) (uintptr, error) {
	switch {
	case err != nil:
		return 0, err
	case base == 0:
		return 0, fmt.Errorf("%w: nil base address", ErrBadPage)
	case base%PageSize != 0:
		return 0, fmt.Errorf("%w: base %#x is not %d-byte aligned", ErrBadPage, base, PageSize)
	case !packable(base) || !packable(base+PageSize-minClassSize):
		return 0, fmt.Errorf("%w: base %#x outside the addressable range", ErrBadPage, base)
	}
	return base, nil
}
