package fractalloc

import (
	"errors"
	"fmt"
	"unsafe"
)

// Example demonstrates basic allocator usage
func Example() {
	a := New()

	p := a.Allocate(64, 8)
	*(*uint64)(p) = 42
	fmt.Printf("Value: %d\n", *(*uint64)(p))

	// Give it back with the same size it was allocated with
	a.Deallocate(p, 64, 8)

	q := a.Allocate(64, 8)
	fmt.Printf("Reused: %v\n", p == q)
	fmt.Printf("Pages: %d\n", a.Pages())
	fmt.Printf("Free 64-byte blocks: %d\n", a.Free(SizeClassOf(64).Index()))

	// Output:
	// Value: 42
	// Reused: true
	// Pages: 1
	// Free 64-byte blocks: 63
}

// ExampleSizeClassOf shows how request sizes are rounded up
func ExampleSizeClassOf() {
	for _, n := range []uintptr{1, 8, 9, 33, 100, 4096, 5000} {
		c := SizeClassOf(n)
		fmt.Printf("%d -> class %d (%d bytes)\n", n, c.Index(), c.Size())
	}

	// Output:
	// 1 -> class 0 (8 bytes)
	// 8 -> class 0 (8 bytes)
	// 9 -> class 1 (16 bytes)
	// 33 -> class 6 (48 bytes)
	// 100 -> class 11 (128 bytes)
	// 4096 -> class 31 (4096 bytes)
	// 5000 -> class 31 (4096 bytes)
}

// ExampleCache demonstrates the per-worker fast path
func ExampleCache() {
	m := NewMetrics()
	a := New(WithObserver(m))
	c := a.NewCache()

	p := c.Allocate(32, 8) // miss: served by the global lists
	c.Deallocate(p, 32, 8)    // always kept in the cache
	fmt.Printf("Cached: %d\n", c.Len(SizeClassOf(32).Index()))

	q := c.Allocate(32, 8) // hit
	fmt.Printf("Reused: %v\n", p == q)
	c.Deallocate(q, 32, 8)

	stats := m.Stats()
	fmt.Printf("Cache hit rate: %.0f%%\n", stats.CacheHitRate()*100)
	fmt.Printf("Bytes outstanding: %d\n", stats.BytesAllocated)

	// Output:
	// Cached: 1
	// Reused: true
	// Cache hit rate: 50%
	// Bytes outstanding: 0
}

// ExampleBump demonstrates monotonic allocation over a fixed region
func ExampleBump() {
	b := NewBump(make([]byte, 64))

	b.Allocate(16, 8)
	b.Allocate(16, 8)
	fmt.Printf("Used: %d of %d\n", b.Used(), b.Capacity())

	_, err := b.Allocate(40, 8)
	fmt.Printf("Exhausted: %v\n", errors.Is(err, ErrCapacityExhausted))
	fmt.Printf("Remaining: %d\n", b.Remaining())

	// Output:
	// Used: 32 of 64
	// Exhausted: true
	// Remaining: 32
}

// Example_alignment demonstrates that alignment is honoured by moving to a
// larger class when needed
func Example_alignment() {
	a := New()

	p1 := a.Allocate(24, 16) // 24-byte class is only 8-aligned
	p2 := a.Allocate(48, 32)
	p3 := Alloc[int64](a)

	fmt.Printf("24/16 address alignment: %d\n", uintptr(p1)%16)
	fmt.Printf("48/32 address alignment: %d\n", uintptr(p2)%32)
	fmt.Printf("int64 address alignment: %d\n", uintptr(unsafe.Pointer(p3))%8)

	// Output:
	// 24/16 address alignment: 0
	// 48/32 address alignment: 0
	// int64 address alignment: 0
}
