package harness

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Histogram accumulates int64 samples into fixed-width buckets between from
// and till, with one overflow bucket on each side. It is not safe for
// concurrent use; give every worker its own and Merge them.
type Histogram struct {
	// stats
	n      int64
	minval int64
	maxval int64
	sum    int64
	sumsq  float64
	counts []int64
	// setup
	init  bool
	from  int64
	till  int64
	width int64
}

// NewHistogram returns an empty histogram. from and till are rounded down
// to a multiple of width.
func NewHistogram(from, till, width int64) *Histogram {
	if width <= 0 {
		width = 1
	}
	from = (from / width) * width
	till = (till / width) * width
	if till < from {
		till = from
	}
	h := &Histogram{from: from, till: till, width: width}
	h.counts = make([]int64, 1+((till-from)/width)+1)
	return h
}

// Add a sample to this histogram.
func (h *Histogram) Add(sample int64) {
	h.n++
	h.sum += sample
	f := float64(sample)
	h.sumsq += f * f
	if !h.init || sample < h.minval {
		h.minval = sample
		h.init = true
	}
	if h.maxval < sample {
		h.maxval = sample
	}
	h.counts[h.bucket(sample)]++
}

func (h *Histogram) bucket(sample int64) int {
	switch {
	case sample < h.from:
		return 0
	case sample >= h.till:
		return len(h.counts) - 1
	}
	return int((sample-h.from)/h.width) + 1
}

// Merge adds every sample of o into h. Both must share the same bucket
// layout.
func (h *Histogram) Merge(o *Histogram) error {
	if o.from != h.from || o.till != h.till || o.width != h.width {
		return fmt.Errorf("harness: histogram layout [%d,%d)/%d differs from [%d,%d)/%d",
			o.from, o.till, o.width, h.from, h.till, h.width)
	}
	if o.n == 0 {
		return nil
	}
	if !h.init || o.minval < h.minval {
		h.minval = o.minval
		h.init = true
	}
	if o.maxval > h.maxval {
		h.maxval = o.maxval
	}
	h.n += o.n
	h.sum += o.sum
	h.sumsq += o.sumsq
	for i, c := range o.counts {
		h.counts[i] += c
	}
	return nil
}

// Min return minimum value from sample.
func (h *Histogram) Min() int64 {
	return h.minval
}

// Max return maximum value from sample.
func (h *Histogram) Max() int64 {
	return h.maxval
}

// Samples return total number of samples in the set.
func (h *Histogram) Samples() int64 {
	return h.n
}

// Sum return the sum of all sample values.
func (h *Histogram) Sum() int64 {
	return h.sum
}

// Mean return the average value of all samples.
func (h *Histogram) Mean() int64 {
	if h.n == 0 {
		return 0
	}
	return int64(float64(h.sum) / float64(h.n))
}

// Variance return the squared deviation of a random sample from
// its mean.
func (h *Histogram) Variance() int64 {
	if h.n == 0 {
		return 0
	}
	nF, meanF := float64(h.n), float64(h.sum)/float64(h.n)
	return int64((h.sumsq / nF) - (meanF * meanF))
}

// SD return by how much the samples differ from the mean value of
// sample set.
func (h *Histogram) SD() int64 {
	if h.n == 0 {
		return 0
	}
	return int64(math.Sqrt(float64(h.Variance())))
}

// Percentile returns the upper bound of the bucket holding the p-th
// percentile, 0 < p <= 100. Samples in the overflow bucket report Max.
func (h *Histogram) Percentile(p float64) int64 {
	if h.n == 0 {
		return 0
	}
	rank := int64(math.Ceil(float64(h.n) * p / 100))
	rank = min(max(rank, 1), h.n)
	var cumm int64
	for i, c := range h.counts {
		cumm += c
		if cumm < rank {
			continue
		}
		switch i {
		case 0:
			return min(h.from, h.maxval)
		case len(h.counts) - 1:
			return h.maxval
		}
		return min(h.from+int64(i)*h.width, h.maxval)
	}
	return h.maxval
}

// Clone copies the entire instance.
func (h *Histogram) Clone() *Histogram {
	newh := *h
	newh.counts = make([]int64, len(h.counts))
	copy(newh.counts, h.counts)
	return &newh
}

// Stats return cumulative counts keyed by bucket lower bound, up to the
// last non-empty bucket, which is keyed "+".
func (h *Histogram) Stats() map[string]int64 {
	m := make(map[string]int64)
	last := -1
	for i := len(h.counts) - 1; i >= 0; i-- {
		if h.counts[i] != 0 {
			last = i
			break
		}
	}
	cumm := int64(0)
	for j := 0; j <= last; j++ {
		cumm += h.counts[j]
		if j == last {
			m["+"] = cumm
		} else {
			m[strconv.Itoa(int(h.from+(int64(j)*h.width)))] = cumm
		}
	}
	return m
}

// String summarises the histogram on one line.
func (h *Histogram) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "samples=%d min=%d mean=%d sd=%d", h.Samples(), h.Min(), h.Mean(), h.SD())
	for _, p := range []float64{50, 99, 99.9} {
		fmt.Fprintf(&sb, " p%s=%d", strconv.FormatFloat(p, 'f', -1, 64), h.Percentile(p))
	}
	fmt.Fprintf(&sb, " max=%d", h.Max())
	return sb.String()
}
