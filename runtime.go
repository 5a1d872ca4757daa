package strand

import (
	"sync"

	"golang.org/x/sys/unix"
)

// Runtime is the façade over one Scheduler + Reactor pair (spec.md §4.1,
// §6). It owns the handoff machinery but none of the fibers' application
// state, the same way the teacher's Loop does not retain user-level state
// beyond what a submitted task needs to run once.
//
// A Runtime is single-use: exactly one call to Work is permitted, mirroring
// the teacher's Awake -> Running -> Terminated state machine (state.go) —
// there is no Reset.
type Runtime struct {
	cfg *config

	scheduler *Scheduler
	reactor   reactor

	reactorStop chan struct{}
	wakeReadFD  int
	wakeWriteFD int

	state    *atomicState
	stopOnce sync.Once

	reactorCloseOnce sync.Once
	reactorCloseErr  error

	closeOnce sync.Once
	closeErr  error

	metrics *Metrics
}

// New constructs a Runtime, creating its reactor and wakeup descriptors.
// Close releases them; Work closes only the reactor's own descriptor.
func New(opts ...Option) (*Runtime, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{
		cfg:         cfg,
		reactorStop: make(chan struct{}),
		state:       newAtomicState(stateAwake),
	}
	rt.scheduler = newScheduler(rt)
	if cfg.metricsEnabled {
		rt.metrics = &Metrics{}
	}

	rc, err := newReactor(rt)
	if err != nil {
		return nil, err
	}
	rt.reactor = rc

	readFD, writeFD, err := newWakeFD()
	if err != nil {
		_ = rt.closeReactor()
		return nil, err
	}
	if err := rc.armWake(readFD); err != nil {
		_ = rt.closeReactor()
		_ = unix.Close(readFD)
		if writeFD != readFD {
			_ = unix.Close(writeFD)
		}
		return nil, err
	}
	rt.wakeReadFD, rt.wakeWriteFD = readFD, writeFD
	return rt, nil
}

func (rt *Runtime) logger() Logger { return rt.cfg.logger }

// closeReactor closes the reactor exactly once, however it is reached: the
// reactor fiber's own shutdown path (reactorEntry, once rt.reactorStop is
// closed) and Runtime.Close both call this instead of rt.reactor.close()
// directly, so a Work call followed by a deferred Close — the lifecycle
// every test and example in this package uses — never double-closes the
// same fd number, which could otherwise silently sever an unrelated
// descriptor the OS had since reused.
func (rt *Runtime) closeReactor() error {
	rt.reactorCloseOnce.Do(func() {
		rt.reactorCloseErr = rt.reactor.close()
	})
	return rt.reactorCloseErr
}

// Metrics returns the runtime's counters, or nil if WithMetrics(true) was
// not supplied to New.
func (rt *Runtime) Metrics() *Metrics { return rt.metrics }

// Work spawns the entry fiber and the reactor fiber, then runs the
// scheduler until both the ready queue and the iowait count have drained,
// returning the entry fiber's recorded error, if any (spec.md §4.1, §4.5).
func (rt *Runtime) Work(entry func(*Fiber, any), arg any) error {
	if !rt.state.TryTransition(stateAwake, stateRunning) {
		switch rt.state.Load() {
		case stateTerminated, stateTerminating:
			return ErrLoopTerminated
		default:
			return NewError(ErrKindInProgress, "Work has already been called on this runtime")
		}
	}
	if entry == nil {
		rt.state.Store(stateTerminated)
		return NewError(ErrKindBadArgument, "entry must not be nil")
	}

	reactorFiber := newFiber(rt, reactorEntry, nil)
	rt.scheduler.setReactorFiber(reactorFiber)

	entryFiber := newFiber(rt, entry, arg)
	entryFiber.SetName("entry")
	rt.scheduler.resume(entryFiber)

	if rt.cfg.metricsEnabled {
		rt.metrics.FibersSpawned.Add(2)
	}

	rt.scheduler.run()
	rt.state.Store(stateTerminated)
	return entryFiber.Err()
}

// Spawn starts a new fiber from inside a currently running fiber (spec.md
// §4.4). It returns ErrNotRunningFiber if called from outside the fiber
// whose goroutine currently holds the resume token — the Go analogue of the
// original's "spawn may only be called from inside the loop" restriction,
// checked the same way the teacher's isLoopThread() gates its fast path.
func (rt *Runtime) Spawn(entry func(*Fiber, any), arg any) (*Fiber, error) {
	return rt.spawn(entry, arg)
}

func (rt *Runtime) spawn(entry func(*Fiber, any), arg any) (*Fiber, error) {
	cur := rt.scheduler.current
	if cur == nil || !cur.isCurrentGoroutine() {
		return nil, ErrNotRunningFiber
	}
	if entry == nil {
		return nil, NewError(ErrKindBadArgument, "entry must not be nil")
	}
	f := newFiber(rt, entry, arg)
	rt.scheduler.resume(f)
	if rt.cfg.metricsEnabled {
		rt.metrics.FibersSpawned.Add(1)
	}
	return f, nil
}

// onFiberTerminated runs while the scheduler drains its terminated queue —
// the single place fiber-scoped bookkeeping and logging happen.
func (rt *Runtime) onFiberTerminated(f *Fiber) {
	if rt.cfg.metricsEnabled {
		rt.metrics.FibersTerminated.Add(1)
	}
	if f.err != nil && rt.logger().Enabled(LevelDebug) {
		rt.logger().Log(Entry{Level: LevelDebug, Category: "scheduler", Message: "fiber terminated with error", FiberID: f.id, Err: f.err})
	}
}

// Stop requests that the runtime wind down. It is idempotent and
// async-signal-safe: its only side effects are an atomic CAS and a
// non-blocking write to the wakeup descriptor (spec.md §5). The scheduler
// itself never polls the resulting flag — it only terminates once its
// queues drain — so Stopping is what a long-running fiber (an accept loop,
// out of scope per spec.md §1) would poll to know to wind itself down.
func (rt *Runtime) Stop() {
	rt.stopOnce.Do(func() {
		rt.state.TryTransition(stateRunning, stateTerminating)
		signalWake(rt.wakeWriteFD)
	})
}

// Stopping reports whether the runtime is in the terminating state: Stop was
// called while Work was running, and Work has not yet returned. It is false
// before Work starts and after Work returns, including when Stop was called
// at those times.
func (rt *Runtime) Stopping() bool { return rt.state.Load() == stateTerminating }

// Close releases the reactor's descriptors. Safe to call whether or not
// Work ever ran, and safe to call more than once: both the reactor close
// and the wake-fd closes underneath are idempotent.
func (rt *Runtime) Close() error {
	rt.closeOnce.Do(func() {
		if rt.reactor != nil {
			rt.closeErr = rt.closeReactor()
		}
		if rt.wakeReadFD > 0 {
			_ = unix.Close(rt.wakeReadFD)
		}
		if rt.wakeWriteFD > 0 && rt.wakeWriteFD != rt.wakeReadFD {
			_ = unix.Close(rt.wakeWriteFD)
		}
		rt.wakeReadFD, rt.wakeWriteFD = 0, 0
	})
	return rt.closeErr
}
