package harness

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pavanmanishd/fractalloc"
)

// Result is the outcome of one workload over one size group, summed over
// every worker and round.
type Result struct {
	Workload Workload
	Sizes    []uintptr
	Elapsed  time.Duration // wall clock for all workers
	Latency  *Histogram    // per-allocation latency in nanoseconds
}

// Throughput returns allocations per second across all workers.
func (r Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Latency.Samples()) / r.Elapsed.Seconds()
}

func (r Result) sizeLabel() string {
	ss := make([]string, len(r.Sizes))
	for i, s := range r.Sizes {
		ss[i] = strconv.FormatUint(uint64(s), 10)
	}
	return strings.Join(ss, ",")
}

// Report collects the results of a Run.
type Report struct {
	Workers int
	Results []Result
	Stats   fractalloc.Stats
	Pages   int
}

// WriteTo writes the report as an aligned text table.
func (rep *Report) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	tw := tabwriter.NewWriter(cw, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "workload\tsizes\tallocs\telapsed\tallocs/s\tmin\tmean\tp50\tp99\tmax\t")
	for _, r := range rep.Results {
		h := r.Latency
		fmt.Fprintf(tw, "%v\t%s\t%d\t%v\t%.0f\t%d\t%d\t%d\t%d\t%d\t\n",
			r.Workload, r.sizeLabel(), h.Samples(), r.Elapsed.Round(time.Microsecond),
			r.Throughput(), h.Min(), h.Mean(), h.Percentile(50), h.Percentile(99), h.Max())
	}
	if err := tw.Flush(); err != nil {
		return cw.n, err
	}
	s := rep.Stats
	fmt.Fprintf(cw, "\nworkers: %d  pages: %d (%d KiB)\n", rep.Workers, rep.Pages, rep.Pages*fractalloc.PageSize/1024)
	fmt.Fprintf(cw, "allocations: %d  deallocations: %d  failures: %d  outstanding: %d bytes\n",
		s.Allocations, s.Deallocations, s.Failures, s.BytesAllocated)
	fmt.Fprintf(cw, "cache hits: %d  misses: %d  hit rate: %.2f%%\n",
		s.CacheHits, s.CacheMisses, s.CacheHitRate()*100)
	return cw.n, cw.err
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
