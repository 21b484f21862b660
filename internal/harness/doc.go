// Package harness drives an allocator through the benchmark workloads used
// by cmd/fractalbench: single allocate/free pairs, bulk allocation with
// shuffled release, and mixed sizes. Every worker goroutine owns one worker
// cache. Per-operation latencies are collected in histograms and, when
// verification is on, every live block is tracked so that overlapping or
// corrupted blocks fail the run.
package harness
