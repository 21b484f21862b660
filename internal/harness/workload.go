package harness

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/pavanmanishd/fractalloc"
)

// ErrConfig is returned for an unusable Config.
var ErrConfig = errors.New("harness: invalid config")

// Workload is one allocation pattern.
type Workload int

const (
	// Single allocates one block and frees it immediately.
	Single Workload = iota
	// Bulk allocates Iterations blocks of one size, then frees them in
	// random order.
	Bulk
	// Mixed allocates Iterations blocks of random sizes, then frees them in
	// allocation order.
	Mixed
)

var workloadNames = [...]string{
	Single: "single",
	Bulk:   "bulk",
	Mixed:  "mixed",
}

func (w Workload) String() string {
	if w < 0 || int(w) >= len(workloadNames) {
		return "workload(" + strconv.Itoa(int(w)) + ")"
	}
	return workloadNames[w]
}

// ParseWorkloads parses a comma separated list of workload names.
func ParseWorkloads(s string) ([]Workload, error) {
	var ws []Workload
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		found := false
		for i, n := range workloadNames {
			if n == name {
				ws = append(ws, Workload(i))
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: unknown workload %q", ErrConfig, name)
		}
	}
	if len(ws) == 0 {
		return nil, fmt.Errorf("%w: no workloads", ErrConfig)
	}
	return ws, nil
}

// ParseSizes parses a comma separated list of request sizes in bytes.
func ParseSizes(s string) ([]uintptr, error) {
	var sizes []uintptr
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: size %q: %v", ErrConfig, field, err)
		}
		sizes = append(sizes, uintptr(n))
	}
	return sizes, nil
}

// Config describes a harness run.
type Config struct {
	Workloads  []Workload
	Sizes      []uintptr // request sizes; Single and Bulk run once per size
	Align      uintptr   // alignment of every request
	Iterations int       // blocks per round
	Rounds     int       // rounds per workload and size
	Workers    int       // goroutines, each with its own worker cache
	Seed       int64     // shuffle and size selection seed
	PageLimit  int       // pages the allocator may acquire; 0 means no limit
	Verify     bool      // track live blocks and payload checksums
}

// DefaultConfig returns the configuration of the reference benchmark suite.
func DefaultConfig() Config {
	return Config{
		Workloads:  []Workload{Single, Bulk, Mixed},
		Sizes:      []uintptr{8, 16, 32, 64, 128, 256},
		Align:      8,
		Iterations: 1000,
		Rounds:     10,
		Workers:    runtime.GOMAXPROCS(0),
		Seed:       1,
		Verify:     true,
	}
}

// Validate reports the first problem with c, if any.
func (c Config) Validate() error {
	switch {
	case len(c.Workloads) == 0:
		return fmt.Errorf("%w: no workloads", ErrConfig)
	case len(c.Sizes) == 0:
		return fmt.Errorf("%w: no sizes", ErrConfig)
	case c.Align == 0 || c.Align&(c.Align-1) != 0:
		return fmt.Errorf("%w: alignment %d is not a power of two", ErrConfig, c.Align)
	case c.Align > fractalloc.PageSize:
		return fmt.Errorf("%w: alignment %d exceeds the %d-byte page", ErrConfig, c.Align, fractalloc.PageSize)
	case c.Iterations <= 0:
		return fmt.Errorf("%w: iterations must be positive", ErrConfig)
	case c.Rounds <= 0:
		return fmt.Errorf("%w: rounds must be positive", ErrConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrConfig)
	case c.PageLimit < 0:
		return fmt.Errorf("%w: negative page limit", ErrConfig)
	}
	for _, size := range c.Sizes {
		if size == 0 || size > fractalloc.MaxSize {
			return fmt.Errorf("%w: size %d outside (0, %d]", ErrConfig, size, fractalloc.MaxSize)
		}
	}
	for _, w := range c.Workloads {
		if w < Single || w > Mixed {
			return fmt.Errorf("%w: %v", ErrConfig, w)
		}
	}
	return nil
}
