//go:build windows

package fractalloc

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func sysAlloc(n int) (uintptr, error) {
	p, err := windows.VirtualAlloc(0, uintptr(n), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return 0, fmt.Errorf("%w: VirtualAlloc %d bytes: %w", ErrOutOfMemory, n, err)
	}
	return p, nil
}
