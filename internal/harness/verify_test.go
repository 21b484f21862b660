package harness

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifierTrackUntrack(t *testing.T) {
	v := NewVerifier()
	buf := make([]byte, 256)
	base := unsafe.Pointer(unsafe.SliceData(buf))

	require.NoError(t, v.Track(base, 64, 1))
	require.NoError(t, v.Track(unsafe.Add(base, 64), 64, 2))
	require.NoError(t, v.Track(unsafe.Add(base, 192), 64, 3))
	assert.Equal(t, 3, v.Live())
	assert.NotEqual(t, buf[0], buf[64], "payload depends on the tag")

	require.NoError(t, v.Untrack(unsafe.Add(base, 64), 64))
	require.NoError(t, v.Untrack(base, 64))
	require.NoError(t, v.Untrack(unsafe.Add(base, 192), 64))
	assert.Zero(t, v.Live())
}

func TestVerifierOverlap(t *testing.T) {
	buf := make([]byte, 256)
	base := unsafe.Pointer(unsafe.SliceData(buf))

	testCases := []struct {
		name   string
		offset uintptr
		size   uintptr
	}{
		{"SameStart", 64, 8},
		{"InsideLive", 80, 8},
		{"TailOverlaps", 120, 16},
		{"HeadOverlaps", 48, 32},
		{"Covers", 32, 128},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewVerifier()
			require.NoError(t, v.Track(unsafe.Add(base, 64), 64, 1))
			err := v.Track(unsafe.Add(base, tc.offset), tc.size, 2)
			assert.ErrorIs(t, err, ErrOverlap)
			assert.Equal(t, 1, v.Live())
		})
	}

	// touching ranges do not overlap
	v := NewVerifier()
	require.NoError(t, v.Track(unsafe.Add(base, 64), 64, 1))
	require.NoError(t, v.Track(base, 64, 2))
	require.NoError(t, v.Track(unsafe.Add(base, 128), 64, 3))
}

func TestVerifierCorruption(t *testing.T) {
	v := NewVerifier()
	buf := make([]byte, 128)
	base := unsafe.Pointer(unsafe.SliceData(buf))

	require.NoError(t, v.Track(base, 32, 7))
	buf[31] ^= 0xFF
	assert.ErrorIs(t, v.Untrack(base, 32), ErrCorrupt)

	// untracked and mismatched sizes
	assert.ErrorIs(t, v.Untrack(unsafe.Add(base, 64), 32), ErrCorrupt)
	require.NoError(t, v.Track(unsafe.Add(base, 64), 32, 8))
	assert.ErrorIs(t, v.Untrack(unsafe.Add(base, 64), 16), ErrCorrupt)
}

func TestVerifierConcurrent(t *testing.T) {
	const workers = 8
	const blocks = 100

	v := NewVerifier()
	buf := make([]byte, workers*blocks*16)
	base := unsafe.Pointer(unsafe.SliceData(buf))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < blocks; i++ {
				p := unsafe.Add(base, (w*blocks+i)*16)
				assert.NoError(t, v.Track(p, 16, uint64(w)<<32|uint64(i)))
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, workers*blocks, v.Live())
}
