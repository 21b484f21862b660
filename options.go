package fractalloc

import "log/slog"

// Option configures an Allocator. The class table and PageSize are fixed;
// options only wire in collaborators.
type Option func(*Allocator)

// WithLogger sets the structured logger used on the slow path (page
// acquisition). By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Allocator) {
		if logger != nil {
			a.log = logger
		}
	}
}

// WithObserver attaches an Observer, typically a *Metrics, that is told
// about every allocation, deallocation, failure and cache lookup.
func WithObserver(o Observer) Option {
	return func(a *Allocator) {
		if o != nil {
			a.obs = o
		}
	}
}

// WithPageProvider replaces the operating system page source.
func WithPageProvider(p PageProvider) Option {
	return func(a *Allocator) {
		if p != nil {
			a.pages = p
		}
	}
}

// WithWorkers sets how many worker caches Cache can hand out. If n <= 0,
// runtime.GOMAXPROCS(0) is used.
func WithWorkers(n int) Option {
	return func(a *Allocator) {
		a.nworkers = n
	}
}
