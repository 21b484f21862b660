//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly || solaris

package fractalloc

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

func sysAlloc(n int) (uintptr, error) {
	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, fmt.Errorf("%w: mmap %d bytes: %w", ErrOutOfMemory, n, err)
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b))), nil
}
