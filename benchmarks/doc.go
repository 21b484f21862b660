// Package benchmarks holds comparative benchmarks of fractalloc against the
// Go runtime allocator. It has no exported API; run it with
//
//	go test -bench=. -benchmem ./benchmarks
package benchmarks
