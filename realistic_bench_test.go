package fractalloc

import (
	"math/rand"
	"runtime"
	"testing"
	"unsafe"
)

// BenchmarkRealisticUsage tests scenarios where a size-class allocator should excel
func BenchmarkRealisticUsage(b *testing.B) {

	// Test 1: Single allocation followed by immediate free
	b.Run("Single/Cache", func(b *testing.B) {
		c := New().NewCache()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			p := c.Allocate(64, 8)
			*(*byte)(p) = byte(i)
			c.Deallocate(p, 64, 8)
		}
	})

	b.Run("Single/Global", func(b *testing.B) {
		a := New()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			p := a.Allocate(64, 8)
			*(*byte)(p) = byte(i)
			a.Deallocate(p, 64, 8)
		}
	})

	b.Run("Single/Builtin", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf := make([]byte, 64)
			buf[0] = byte(i)
		}
	})

	// Test 2: 1000 live blocks freed in random order
	b.Run("Bulk1000/Cache", func(b *testing.B) {
		c := New().NewCache()
		ptrs := make([]unsafe.Pointer, 1000)
		rng := rand.New(rand.NewSource(1))
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for j := range ptrs {
				ptrs[j] = c.Allocate(128, 8)
			}
			rng.Shuffle(len(ptrs), func(x, y int) { ptrs[x], ptrs[y] = ptrs[y], ptrs[x] })
			for _, p := range ptrs {
				c.Deallocate(p, 128, 8)
			}
		}
	})

	b.Run("Bulk1000/Builtin", func(b *testing.B) {
		bufs := make([][]byte, 1000)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for j := range bufs {
				bufs[j] = make([]byte, 128)
			}
			clear(bufs)
			if i%10 == 0 {
				runtime.GC()
			}
		}
	})

	// Test 3: Struct allocation patterns
	type TestStruct struct {
		ID   int64
		Data [56]byte // Total 64 bytes
	}

	b.Run("StructAllocs/Cache", func(b *testing.B) {
		c := New().NewCache()
		structs := make([]*TestStruct, 50)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for j := range structs {
				s := Alloc[TestStruct](c)
				s.ID = int64(j)
				structs[j] = s
			}
			for _, s := range structs {
				Release(c, s)
			}
		}
	})

	b.Run("StructAllocs/Builtin", func(b *testing.B) {
		structs := make([]*TestStruct, 50)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for j := range structs {
				structs[j] = &TestStruct{ID: int64(j)}
			}
			if i%10 == 0 {
				runtime.GC()
			}
		}
	})

	// Test 4: Mixed sizes across every class
	b.Run("MixedSizes/Cache", func(b *testing.B) {
		c := New().NewCache()
		sizes := []uintptr{8, 24, 48, 96, 192, 384, 768, 1536, 3072, 4096}
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			size := sizes[i%len(sizes)]
			p := c.Allocate(size, 8)
			c.Deallocate(p, size, 8)
		}
	})

	// Test 5: No GC pressure test
	b.Run("NoGCPressure/Cache", func(b *testing.B) {
		c := New().NewCache()
		runtime.GC()

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			c.Deallocate(c.Allocate(128, 8), 128, 8)
		}
	})

	b.Run("NoGCPressure/Builtin", func(b *testing.B) {
		runtime.GC()

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = make([]byte, 128)
		}
	})
}
