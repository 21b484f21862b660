package fractalloc

import "errors"

var (
	// ErrOutOfMemory is returned by a PageProvider that could not obtain a
	// page from the operating system.
	ErrOutOfMemory = errors.New("fractalloc: out of memory")

	// ErrBadPage marks a page provider result that cannot be carved: a nil
	// base, a misaligned base or an address outside the packable range.
	ErrBadPage = errors.New("fractalloc: unusable page")

	// ErrCapacityExhausted is returned by Bump when the aligned request does
	// not fit in the remaining region.
	ErrCapacityExhausted = errors.New("fractalloc: capacity exhausted")

	// ErrInvalidAlignment is returned for an alignment that is not a power
	// of two.
	ErrInvalidAlignment = errors.New("fractalloc: alignment must be a power of two")

	// ErrInvalidSize is returned by Bump for a zero-byte request.
	ErrInvalidSize = errors.New("fractalloc: size must be greater than zero")
)
