package fractalloc

import (
	"errors"
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPages returns a fixed result from every AcquirePage call.
type stubPages struct {
	base uintptr
	err  error
}

func (s stubPages) AcquirePage() (uintptr, error) {
	return s.base, s.err
}

func TestOSPages(t *testing.T) {
	base, err := OSPages{}.AcquirePage()
	require.NoError(t, err)
	require.NotZero(t, base)
	assert.Zero(t, base%PageSize)

	page := unsafe.Slice((*byte)(unsafe.Pointer(base)), PageSize)
	for i, b := range page {
		if b != 0 {
			t.Fatalf("page byte %d = %d, want 0", i, b)
		}
	}
	page[0], page[PageSize-1] = 1, 2
	assert.Equal(t, byte(1), page[0])
	assert.Equal(t, byte(2), page[PageSize-1])
}

func TestCheckPage(t *testing.T) {
	good := testPage(t)
	oom := errors.New("no memory")

	tests := []struct {
		name string
		base uintptr
		err  error
		want error
	}{
		{"provider error", 0, oom, oom},
		{"provider error with base", good, oom, oom},
		{"nil base", 0, nil, ErrBadPage},
		{"misaligned", good + 8, nil, ErrBadPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, err := checkPage(tt.base, tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, base)
		})
	}

	base, err := checkPage(good, nil)
	require.NoError(t, err)
	assert.Equal(t, good, base)
}

func TestLimitPages(t *testing.T) {
	p := LimitPages(OSPages{}, 2)

	for i := 0; i < 2; i++ {
		base, err := p.AcquirePage()
		require.NoError(t, err)
		assert.NotZero(t, base)
	}
	for i := 0; i < 3; i++ {
		_, err := p.AcquirePage()
		assert.ErrorIs(t, err, ErrOutOfMemory)
	}
}

func TestOSPagesAcrossChunks(t *testing.T) {
	seen := make(map[uintptr]bool)
	for i := 0; i < chunkPages+2; i++ {
		base, err := OSPages{}.AcquirePage()
		require.NoError(t, err)
		require.Zero(t, base%PageSize)
		require.False(t, seen[base], "page %#x handed out twice", base)
		seen[base] = true

		page := unsafe.Slice((*byte)(unsafe.Pointer(base)), PageSize)
		for j, b := range page {
			if b != 0 {
				t.Fatalf("page %d byte %d = %d, want 0", i, j, b)
			}
		}
		page[0], page[PageSize-1] = 0xff, 0xff
	}
}

func TestPageChunkBatchesMappings(t *testing.T) {
	var sizes []int
	c := &pageChunk{sysAlloc: func(n int) (uintptr, error) {
		sizes = append(sizes, n)
		return uintptr(len(sizes)) << 20, nil
	}}

	for i := 0; i < 2*chunkPages; i++ {
		base, err := c.next()
		require.NoError(t, err)
		chunk := uintptr(i/chunkPages+1) << 20
		assert.Equal(t, chunk+uintptr(i%chunkPages)*PageSize, base)
	}
	assert.Equal(t, []int{chunkSize, chunkSize}, sizes)
}

func TestPageChunkFailure(t *testing.T) {
	oom := fmt.Errorf("%w: test", ErrOutOfMemory)
	c := &pageChunk{sysAlloc: func(int) (uintptr, error) { return 0, oom }}

	base, err := c.next()
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Zero(t, base)
	_, err = c.next()
	assert.ErrorIs(t, err, ErrOutOfMemory)
}
