package harness

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"github.com/google/btree"
)

var (
	// ErrOverlap is returned when a newly allocated block overlaps a block
	// that is still live.
	ErrOverlap = errors.New("harness: overlapping blocks")

	// ErrCorrupt is returned when a block's payload changed while it was
	// live, or a block is released that was never tracked.
	ErrCorrupt = errors.New("harness: corrupted block")
)

// liveRange is a tracked block [Start, Start+Size) and the checksum of the
// payload written into it.
type liveRange struct {
	Start uintptr
	Size  uintptr
	Sum   uint64
}

func (r liveRange) end() uintptr {
	return r.Start + r.Size
}

func (r liveRange) overlaps(o liveRange) bool {
	return r.Start < o.end() && o.Start < r.end()
}

// Verifier tracks every live block of a run. Track stamps a payload into a
// block and records its range; Untrack checks the payload is unchanged.
// It is safe for concurrent use.
type Verifier struct {
	mu   sync.Mutex
	live *btree.BTreeG[liveRange]
}

// NewVerifier returns a verifier with no live blocks.
func NewVerifier() *Verifier {
	return &Verifier{
		live: btree.NewG(32, func(a, b liveRange) bool {
			return a.Start < b.Start
		}),
	}
}

func payload(p unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(p), size)
}

// Track fills the size bytes at p with a pattern derived from tag and
// records the block. It fails with ErrOverlap if the block overlaps one that
// is still live.
func (v *Verifier) Track(p unsafe.Pointer, size uintptr, tag uint64) error {
	buf := payload(p, size)
	for i := range buf {
		buf[i] = byte(tag >> (8 * (uint(i) % 8)))
	}
	r := liveRange{Start: uintptr(p), Size: size, Sum: xxhash.Sum64(buf)}

	v.mu.Lock()
	defer v.mu.Unlock()

	var clash *liveRange
	v.live.DescendLessOrEqual(r, func(prev liveRange) bool {
		if prev.overlaps(r) {
			clash = &prev
		}
		return false
	})
	if clash == nil {
		v.live.AscendGreaterOrEqual(r, func(next liveRange) bool {
			if next.overlaps(r) {
				clash = &next
			}
			return false
		})
	}
	if clash != nil {
		return fmt.Errorf("%w: [%#x,+%d) and [%#x,+%d)", ErrOverlap, r.Start, r.Size, clash.Start, clash.Size)
	}
	v.live.ReplaceOrInsert(r)
	return nil
}

// Untrack checks the payload of the block at p and forgets it. It must be
// called before the block is deallocated.
func (v *Verifier) Untrack(p unsafe.Pointer, size uintptr) error {
	addr := uintptr(p)

	v.mu.Lock()
	r, ok := v.live.Delete(liveRange{Start: addr})
	v.mu.Unlock()

	switch {
	case !ok:
		return fmt.Errorf("%w: %#x is not live", ErrCorrupt, addr)
	case r.Size != size:
		return fmt.Errorf("%w: %#x tracked with %d bytes, released with %d", ErrCorrupt, addr, r.Size, size)
	}
	if sum := xxhash.Sum64(payload(p, size)); sum != r.Sum {
		return fmt.Errorf("%w: %#x checksum %016x, want %016x", ErrCorrupt, addr, sum, r.Sum)
	}
	return nil
}

// Live returns the number of tracked blocks.
func (v *Verifier) Live() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.live.Len()
}
