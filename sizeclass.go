package fractalloc

const (
	// NumClasses is the number of size classes served by an Allocator.
	NumClasses = 32

	// PageSize is the size of every page acquired from the operating system.
	PageSize = 4096

	// MaxSize is the canonical size of the largest class. Requests above it
	// saturate to the largest class; callers needing a hard limit must check
	// against MaxSize themselves.
	MaxSize = PageSize

	minClassSize = 8
)

// SizeClass is one bucket of the size-class table.
type SizeClass struct {
	index int
	size  uintptr
}

// classSizes holds the canonical size of every class. Classes come in bands
// of four: band b = i/4 has base 8<<b and the position within the band
// multiplies it by 1, 2, 3 or 4. A band restarts below the top of the
// previous one, so each canonical size is the running maximum of the band
// formula, keeping sizes non-decreasing in index.
var classSizes = func() (sizes [NumClasses]uintptr) {
	var top uintptr
	for i := range sizes {
		raw := uintptr(minClassSize<<(i/4)) * uintptr(i%4+1)
		top = max(top, raw)
		sizes[i] = top
	}
	return sizes
}()

// SizeClassOf returns the smallest class whose size is at least n. Requests
// larger than MaxSize get the largest class.
func SizeClassOf(n uintptr) SizeClass {
	i := 0
	for classSizes[i] < n && i < NumClasses-1 {
		i++
	}
	return SizeClass{index: i, size: classSizes[i]}
}

// SizeClassAt returns the class at index i, clamped to [0, NumClasses).
func SizeClassAt(i int) SizeClass {
	i = min(max(i, 0), NumClasses-1)
	return SizeClass{index: i, size: classSizes[i]}
}

// Index returns the position of the class in the table.
func (c SizeClass) Index() int {
	return c.index
}

// Size returns the canonical byte size of blocks in this class.
func (c SizeClass) Size() uintptr {
	return c.size
}

// Align returns the alignment every block of this class is guaranteed.
// Blocks are carved from page-aligned pages at multiples of the class size,
// so this is the lowest set bit of the size.
func (c SizeClass) Align() uintptr {
	return c.size & -c.size
}

// classFor picks the smallest class that holds size bytes and whose blocks
// are aligned to align. An align of zero means no requirement beyond the
// class's own alignment.
func classFor(size, align uintptr) (SizeClass, bool) {
	if align == 0 {
		align = 1
	}
	if align&(align-1) != 0 || align > PageSize {
		return SizeClass{}, false
	}
	c := SizeClassOf(size)
	for c.Align() < align {
		if c.index == NumClasses-1 {
			return SizeClass{}, false
		}
		c = SizeClassAt(c.index + 1)
	}
	return c, true
}
