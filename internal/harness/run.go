package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
	"unsafe"

	"golang.org/x/sync/errgroup"

	"github.com/pavanmanishd/fractalloc"
)

// ErrAllocFailed is returned when the allocator returns nil during a run.
var ErrAllocFailed = errors.New("harness: allocation failed")

// Latency buckets in nanoseconds.
const (
	latencyFrom  = 0
	latencyTill  = 5000
	latencyWidth = 25
)

// Runner owns an allocator built for one Config and runs its workloads.
type Runner struct {
	cfg     Config
	alloc   *fractalloc.Allocator
	metrics *fractalloc.Metrics
	verify  *Verifier
	log     *slog.Logger
}

// NewRunner validates cfg and builds an allocator with one worker cache per
// configured worker. A nil logger discards.
func NewRunner(cfg Config, logger *slog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var pages fractalloc.PageProvider = fractalloc.OSPages{}
	if cfg.PageLimit > 0 {
		pages = fractalloc.LimitPages(pages, cfg.PageLimit)
	}
	r := &Runner{
		cfg:     cfg,
		metrics: fractalloc.NewMetrics(),
		log:     logger,
	}
	r.alloc = fractalloc.New(
		fractalloc.WithWorkers(cfg.Workers),
		fractalloc.WithObserver(r.metrics),
		fractalloc.WithPageProvider(pages),
		fractalloc.WithLogger(logger.With("component", "allocator")),
	)
	if cfg.Verify {
		r.verify = NewVerifier()
	}
	return r, nil
}

// Allocator returns the allocator under test.
func (r *Runner) Allocator() *fractalloc.Allocator {
	return r.alloc
}

// Run executes every configured workload in turn and returns the report. It
// stops at the first allocation failure, verification failure or context
// cancellation; the partial report is returned alongside the error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	rep := &Report{Workers: r.cfg.Workers}
	defer func() {
		rep.Stats = r.metrics.Stats()
		rep.Pages = r.alloc.Pages()
	}()

	for _, w := range r.cfg.Workloads {
		groups := [][]uintptr{r.cfg.Sizes}
		if w != Mixed {
			groups = groups[:0]
			for _, size := range r.cfg.Sizes {
				groups = append(groups, []uintptr{size})
			}
		}
		for _, sizes := range groups {
			res, err := r.runWorkload(ctx, w, sizes)
			if res != nil {
				rep.Results = append(rep.Results, *res)
			}
			if err != nil {
				return rep, err
			}
			r.log.Debug("workload done", "workload", w, "sizes", sizes,
				"ops", res.Latency.Samples(), "elapsed", res.Elapsed)
		}
	}
	return rep, nil
}

func (r *Runner) runWorkload(ctx context.Context, w Workload, sizes []uintptr) (*Result, error) {
	hists := make([]*Histogram, r.cfg.Workers)
	g, gctx := errgroup.WithContext(ctx)

	start := time.Now()
	for id := range r.cfg.Workers {
		hists[id] = NewHistogram(latencyFrom, latencyTill, latencyWidth)
		wk := &worker{
			id:    id,
			cache: r.alloc.Cache(id),
			rng:   rand.New(rand.NewSource(r.cfg.Seed + int64(id))),
			hist:  hists[id],
			ver:   r.verify,
			align: r.cfg.Align,
		}
		g.Go(func() error {
			for round := 0; round < r.cfg.Rounds; round++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := wk.round(w, sizes, r.cfg.Iterations); err != nil {
					return fmt.Errorf("worker %d %v round %d: %w", wk.id, w, round, err)
				}
			}
			return nil
		})
	}
	err := g.Wait()

	res := &Result{
		Workload: w,
		Sizes:    sizes,
		Elapsed:  time.Since(start),
		Latency:  NewHistogram(latencyFrom, latencyTill, latencyWidth),
	}
	for _, h := range hists {
		if merr := res.Latency.Merge(h); merr != nil {
			return res, merr
		}
	}
	return res, err
}

// worker is the per-goroutine state of a workload. Its cache is never
// shared.
type worker struct {
	id    int
	cache *fractalloc.Cache
	rng   *rand.Rand
	hist  *Histogram
	ver   *Verifier
	align uintptr
	seq   uint64
	live  []block
}

type block struct {
	p    unsafe.Pointer
	size uintptr
}

func (wk *worker) round(w Workload, sizes []uintptr, n int) error {
	switch w {
	case Single:
		for i := 0; i < n; i++ {
			b, err := wk.allocate(sizes[0])
			if err != nil {
				return err
			}
			if err := wk.release(b); err != nil {
				return err
			}
		}
		return nil
	case Bulk:
		for i := 0; i < n; i++ {
			if err := wk.hold(sizes[0]); err != nil {
				return err
			}
		}
		wk.rng.Shuffle(len(wk.live), func(i, j int) {
			wk.live[i], wk.live[j] = wk.live[j], wk.live[i]
		})
	case Mixed:
		for i := 0; i < n; i++ {
			if err := wk.hold(sizes[wk.rng.Intn(len(sizes))]); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %v", ErrConfig, w)
	}
	return wk.releaseAll()
}

func (wk *worker) allocate(size uintptr) (block, error) {
	t0 := time.Now()
	p := wk.cache.Allocate(size, wk.align)
	wk.hist.Add(int64(time.Since(t0)))
	if p == nil {
		return block{}, fmt.Errorf("%w: %d bytes", ErrAllocFailed, size)
	}
	b := block{p: p, size: size}
	if wk.ver != nil {
		wk.seq++
		if err := wk.ver.Track(p, size, uint64(wk.id)<<48|wk.seq); err != nil {
			wk.cache.Deallocate(p, size, wk.align)
			return block{}, err
		}
	}
	return b, nil
}

func (wk *worker) hold(size uintptr) error {
	b, err := wk.allocate(size)
	if err != nil {
		return err
	}
	wk.live = append(wk.live, b)
	return nil
}

func (wk *worker) release(b block) error {
	if wk.ver != nil {
		if err := wk.ver.Untrack(b.p, b.size); err != nil {
			return err
		}
	}
	wk.cache.Deallocate(b.p, b.size, wk.align)
	return nil
}

func (wk *worker) releaseAll() error {
	defer func() { wk.live = wk.live[:0] }()
	for _, b := range wk.live {
		if err := wk.release(b); err != nil {
			return err
		}
	}
	return nil
}
