package strand

import "time"

// DefaultStackHint is the default per-fiber scratch arena segment size.
// Go fibers are goroutines, not raw stacks, so this sizes the Arena handed
// to each fiber rather than a guarded mmap region, but it is exposed under
// the name spec.md uses (§3: "owned stack region of configurable size...
// default on the order of 64 KiB") so a caller porting intuition from the
// original library finds the knob where they expect it.
const DefaultStackHint = 64 * 1024

// DefaultReactorTimeout bounds how long the reactor fiber blocks in the
// platform multiplexor when it has registrations but none are imminently
// expected to fire. It exists purely so Stop() is observed promptly even
// if nothing else wakes the reactor.
const DefaultReactorTimeout = 250 * time.Millisecond

type config struct {
	stackHint      int
	logger         Logger
	panicHandler   func(fiber *Fiber, recovered any)
	reactorTimeout time.Duration
	metricsEnabled bool
}

func defaultConfig() *config {
	return &config{
		stackHint:      DefaultStackHint,
		logger:         defaultLogger(),
		reactorTimeout: DefaultReactorTimeout,
	}
}

// Option configures a Runtime. See New.
type Option interface {
	apply(*config) error
}

type optionFunc func(*config) error

func (f optionFunc) apply(c *config) error { return f(c) }

// WithStackHint sets the scratch arena segment size handed to each new
// fiber. Non-positive values fall back to DefaultStackHint.
func WithStackHint(n int) Option {
	return optionFunc(func(c *config) error {
		if n <= 0 {
			n = DefaultStackHint
		}
		c.stackHint = n
		return nil
	})
}

// WithLogger overrides the Runtime's Logger. A nil logger is treated as
// NewNoOpLogger().
func WithLogger(l Logger) Option {
	return optionFunc(func(c *config) error {
		if l == nil {
			l = NewNoOpLogger()
		}
		c.logger = l
		return nil
	})
}

// WithPanicHandler installs a hook invoked with the recovered value when a
// fiber's entry function panics. Fiber panics are recovered whether or not a
// handler is installed; the fiber is still transitioned to terminated with an
// ErrKindUnexpectedState error after the handler returns.
func WithPanicHandler(fn func(fiber *Fiber, recovered any)) Option {
	return optionFunc(func(c *config) error {
		c.panicHandler = fn
		return nil
	})
}

// WithReactorTimeout sets the maximum time the reactor fiber blocks in the
// platform multiplexor per iteration.
func WithReactorTimeout(d time.Duration) Option {
	return optionFunc(func(c *config) error {
		if d <= 0 {
			d = DefaultReactorTimeout
		}
		c.reactorTimeout = d
		return nil
	})
}

// WithMetrics enables lightweight runtime counters (fiber spawns,
// terminations, reactor wakeups) retrievable via Runtime.Metrics.
func WithMetrics(enabled bool) Option {
	return optionFunc(func(c *config) error {
		c.metricsEnabled = enabled
		return nil
	})
}

func resolveOptions(opts []Option) (*config, error) {
	c := defaultConfig()
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o.apply(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
