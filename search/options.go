package search

import "time"

// Expansion describes one expanded state. It is handed to observers in
// expansion order.
type Expansion struct {
	Step        int // 1-based expansion index
	State       any
	Depth       int
	G           float64
	Priority    float64
	FrontierLen int
}

// Options bounds and instruments a single search.
type Options struct {
	// MaxExpansions stops the search once this many states were expanded.
	// Zero means unbounded.
	MaxExpansions int
	// TimeLimit is checked at every dequeue. Zero means unbounded.
	TimeLimit time.Duration
	// Observer, when set, is called synchronously for every expanded state.
	Observer func(Expansion)
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithMaxExpansions caps the number of expanded states.
func WithMaxExpansions(n int) Option {
	return func(o *Options) { o.MaxExpansions = n }
}

// WithTimeLimit caps the wall-clock time of the search.
func WithTimeLimit(d time.Duration) Option {
	return func(o *Options) { o.TimeLimit = d }
}

// WithObserver registers a callback invoked for each expansion.
func WithObserver(fn func(Expansion)) Option {
	return func(o *Options) { o.Observer = fn }
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o Options) exceeded(expanded int, start time.Time) bool {
	if o.MaxExpansions > 0 && expanded >= o.MaxExpansions {
		return true
	}
	if o.TimeLimit > 0 && time.Since(start) > o.TimeLimit {
		return true
	}
	return false
}
