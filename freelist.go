package fractalloc

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// A free-list head is a block address packed together with a generation
// counter, the same layout the Go runtime uses for its lock-free stacks.
// Bumping the counter on every successful CAS defeats the pop/pop/push ABA
// interleaving on reused blocks.
//
// On 64-bit targets user addresses fit in 48 bits and blocks are 8-byte
// aligned, leaving 19 bits for the counter. On 32-bit targets the address
// takes the upper half and the counter the lower half.
const (
	ptrBits  = 32 << (^uintptr(0) >> 63)
	addrBits = 48
	cntBits  = 64 - addrBits + 3
)

func packHead(addr uintptr, cnt uint64) uint64 {
	if ptrBits == 32 {
		return uint64(addr)<<32 | cnt&(1<<32-1)
	}
	return uint64(addr)<<(64-addrBits) | cnt&(1<<cntBits-1)
}

func unpackHead(val uint64) uintptr {
	if ptrBits == 32 {
		return uintptr(val >> 32)
	}
	return uintptr(int64(val) >> cntBits << 3)
}

func headCount(val uint64) uint64 {
	if ptrBits == 32 {
		return val & (1<<32 - 1)
	}
	return val & (1<<cntBits - 1)
}

// packable reports whether addr survives a round trip through a head word.
func packable(addr uintptr) bool {
	return unpackHead(packHead(addr, 0)) == addr
}

// freeList is a lock-free LIFO of free blocks of one size class. Pop order is
// best effort under contention.
type freeList struct {
	head atomic.Uint64
	_    cpu.CacheLinePad
}

func (l *freeList) push(addr uintptr) {
	l.pushChain(addr, addr)
}

// pushChain pushes the already linked blocks first..last in one CAS.
func (l *freeList) pushChain(first, last uintptr) {
	tail := blockAt(last)
	for {
		old := l.head.Load()
		tail.storeNext(unpackHead(old))
		if l.head.CompareAndSwap(old, packHead(first, headCount(old)+1)) {
			return
		}
	}
}

// pop returns 0 when the list is empty.
func (l *freeList) pop() uintptr {
	for {
		old := l.head.Load()
		addr := unpackHead(old)
		if addr == 0 {
			return 0
		}
		next := blockAt(addr).loadNext()
		if l.head.CompareAndSwap(old, packHead(next, headCount(old)+1)) {
			return addr
		}
	}
}

// depth walks the list. The result is only exact while no other goroutine
// touches the list.
func (l *freeList) depth() int {
	n := 0
	for addr := unpackHead(l.head.Load()); addr != 0; addr = blockAt(addr).loadNext() {
		n++
	}
	return n
}
