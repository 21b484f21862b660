//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly && !solaris && !windows

package fractalloc

import (
	"sync"
	"unsafe"
)

// Without an anonymous mapping facility, pages come from the Go heap. Every
// backing buffer is kept reachable here so the collector never frees it.
var heapPages struct {
	sync.Mutex
	bufs [][]byte
}

func sysAlloc(n int) (uintptr, error) {
	buf := make([]byte, n+PageSize)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	base = (base + PageSize - 1) &^ (PageSize - 1)
	heapPages.Lock()
	heapPages.bufs = append(heapPages.bufs, buf)
	heapPages.Unlock()
	return base, nil
}
