package fractalloc

import "sync/atomic"

// Observer receives allocation events from an Allocator. It is a passive
// collaborator: the allocator never reads anything back from it. Methods are
// called concurrently from every goroutine using the allocator.
type Observer interface {
	RecordAllocation(size uintptr)
	RecordDeallocation(size uintptr)
	RecordFailure()
	RecordCacheHit()
	RecordCacheMiss()
}

type nopObserver struct{}

func (nopObserver) RecordAllocation(uintptr)   {}
func (nopObserver) RecordDeallocation(uintptr) {}
func (nopObserver) RecordFailure()             {}
func (nopObserver) RecordCacheHit()            {}
func (nopObserver) RecordCacheMiss()           {}

// Metrics is an Observer backed by independent atomic counters.
// The zero value is ready to use.
type Metrics struct {
	allocations   atomic.Uint64
	deallocations atomic.Uint64
	bytes         atomic.Int64
	failures      atomic.Uint64
	cacheHits     atomic.Uint64
	cacheMisses   atomic.Uint64
}

// NewMetrics returns an empty recorder.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordAllocation counts one allocation of size requested bytes.
func (m *Metrics) RecordAllocation(size uintptr) {
	m.allocations.Add(1)
	m.bytes.Add(int64(size))
}

// RecordDeallocation counts one deallocation. size must match the size
// recorded for the allocation or BytesAllocated drifts.
func (m *Metrics) RecordDeallocation(size uintptr) {
	m.deallocations.Add(1)
	m.bytes.Add(-int64(size))
}

// RecordFailure counts an allocation that returned nil.
func (m *Metrics) RecordFailure() {
	m.failures.Add(1)
}

// RecordCacheHit counts an allocation served by a worker cache.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordCacheMiss counts a worker cache lookup that fell through to the
// global free lists.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

// Stats returns a snapshot of the counters. Fields are loaded one at a time,
// so a snapshot taken under load may mix values from slightly different
// instants; each field on its own is exact.
func (m *Metrics) Stats() Stats {
	return Stats{
		Allocations:    m.allocations.Load(),
		Deallocations:  m.deallocations.Load(),
		BytesAllocated: m.bytes.Load(),
		Failures:       m.failures.Load(),
		CacheHits:      m.cacheHits.Load(),
		CacheMisses:    m.cacheMisses.Load(),
	}
}

// Stats is a point-in-time view of a Metrics recorder.
type Stats struct {
	Allocations    uint64 // Successful allocations
	Deallocations  uint64 // Deallocations
	BytesAllocated int64  // Requested bytes currently outstanding
	Failures       uint64 // Allocations that returned nil
	CacheHits      uint64 // Allocations served by a worker cache
	CacheMisses    uint64 // Worker cache lookups that fell through
}

// CacheHitRate returns hits / (hits + misses), or 0 with no lookups.
func (s Stats) CacheHitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}

// Live returns the number of allocations not yet deallocated.
func (s Stats) Live() int64 {
	return int64(s.Allocations) - int64(s.Deallocations)
}

// Used returns the number of bytes handed out by the bump allocator,
// including alignment padding.
func (b *Bump) Used() int {
	return int(b.cursor.Load() - b.start)
}

// Capacity returns the size of the bump allocator's region in bytes.
func (b *Bump) Capacity() int {
	return int(b.end - b.start)
}

// Remaining returns the number of bytes left before the cursor reaches the
// end of the region.
func (b *Bump) Remaining() int {
	return int(b.end - b.cursor.Load())
}

// Utilization returns the ratio of used bytes to capacity (0.0 to 1.0).
// Returns 0.0 for an empty region.
func (b *Bump) Utilization() float64 {
	capacity := b.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(b.Used()) / float64(capacity)
}

// Metrics returns a snapshot of bump allocator statistics.
func (b *Bump) Metrics() BumpMetrics {
	used := b.Used()
	capacity := b.Capacity()
	m := BumpMetrics{
		Used:      used,
		Capacity:  capacity,
		Remaining: capacity - used,
	}
	if capacity > 0 {
		m.Utilization = float64(used) / float64(capacity)
	}
	return m
}

// BumpMetrics contains statistical information about a bump allocator.
type BumpMetrics struct {
	Used        int     // Bytes handed out, including padding
	Capacity    int     // Region size in bytes
	Remaining   int     // Bytes left in the region
	Utilization float64 // Ratio of used to capacity (0.0-1.0)
}
