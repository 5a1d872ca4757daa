package strand

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/strandrt/strand/internal/arena"
	"github.com/strandrt/strand/internal/list"
)

// fiberState is the lifecycle state of a Fiber, tracked for observability
// and the invariants in Testable Properties — it is never consulted to
// decide control flow, only asserted.
type fiberState int32

const (
	fiberStateReady fiberState = iota
	fiberStateRunning
	fiberStateIOWait
	fiberStateWaitingMutex
	fiberStateWaitingCond
	fiberStateTerminated
)

func (s fiberState) String() string {
	switch s {
	case fiberStateReady:
		return "ready"
	case fiberStateRunning:
		return "running"
	case fiberStateIOWait:
		return "iowait"
	case fiberStateWaitingMutex:
		return "waiting-mutex"
	case fiberStateWaitingCond:
		return "waiting-cond"
	case fiberStateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

var fiberIDSeq atomic.Int64

// Fiber is a single cooperatively scheduled unit of execution. Exactly one
// Fiber's goroutine ever runs at a time across a Runtime; every other
// Fiber's goroutine is parked receiving on its own resume channel.
type Fiber struct {
	id    int64
	rt    *Runtime
	entry func(*Fiber, any)
	arg   any

	hook  list.Hook[*Fiber]
	state fiberState

	resume chan struct{}
	done   chan struct{}
	goid   atomic.Uint64

	nameMu sync.Mutex
	name   string

	arena *arena.Arena

	err error
}

// Hook implements list.Hooked so a *Fiber can live on the scheduler's ready,
// terminated, mutex-wait and condvar-wait lists — one at a time, per §3.
func (f *Fiber) Hook() *list.Hook[*Fiber] { return &f.hook }

// ID returns the fiber's runtime-unique identifier.
func (f *Fiber) ID() int64 { return f.id }

// Runtime returns the Runtime that owns f. The reference is borrowed, never
// retained by Fiber beyond this accessor, matching the design note in
// spec.md §9 on avoiding fiber->runtime->scheduler->fiber cycles.
func (f *Fiber) Runtime() *Runtime { return f.rt }

// Name returns the fiber's best-effort diagnostic name.
func (f *Fiber) Name() string {
	f.nameMu.Lock()
	defer f.nameMu.Unlock()
	return f.name
}

// SetName sets the fiber's diagnostic name, formatted as with fmt.Sprintf.
func (f *Fiber) SetName(format string, args ...any) {
	f.nameMu.Lock()
	defer f.nameMu.Unlock()
	f.name = fmt.Sprintf(format, args...)
}

// Arena returns the fiber's private scratch allocator. It is valid for the
// fiber's whole lifetime and is reset — running every registered finalizer
// in order — immediately before the fiber's termination is published to the
// scheduler's terminated list (spec.md §4.6).
func (f *Fiber) Arena() *arena.Arena { return f.arena }

// Err returns the error recorded when the fiber terminated, or nil if it is
// still running or exited cleanly.
func (f *Fiber) Err() error { return f.err }

// Done returns a channel closed once the fiber has terminated.
func (f *Fiber) Done() <-chan struct{} { return f.done }

func newFiber(rt *Runtime, entry func(*Fiber, any), arg any) *Fiber {
	f := &Fiber{
		id:     fiberIDSeq.Add(1),
		rt:     rt,
		entry:  entry,
		arg:    arg,
		state:  fiberStateReady,
		resume: make(chan struct{}),
		done:   make(chan struct{}),
		arena:  arena.New(rt.cfg.stackHint),
	}
	go f.loop()
	return f
}

// loop is the body of every fiber's backing goroutine. It blocks immediately
// on resume, exactly as a newly created stackful coroutine would sit at its
// entry trampoline until first switched into (spec.md §4.4).
func (f *Fiber) loop() {
	<-f.resume
	f.goid.Store(currentGoroutineID())
	f.runEntry()
}

func (f *Fiber) runEntry() {
	defer func() {
		if r := recover(); r != nil {
			if h := f.rt.cfg.panicHandler; h != nil {
				h(f, r)
			}
			f.err = NewError(ErrKindUnexpectedState, "fiber %d panicked: %v", f.id, r)
			f.rt.logger().Log(Entry{Level: LevelError, Category: "fiber", Message: "recovered panic", FiberID: f.id, Err: f.err})
		}
		f.arena.Reset()
		close(f.done)
		f.rt.scheduler.terminate(f, f.err)
	}()
	f.entry(f, f.arg)
}

// isCurrentGoroutine reports whether the calling goroutine is the one
// backing f — the same isLoopThread() trick the teacher uses to gate its
// fast path, repurposed here to assert suspension points only ever run on
// their owning fiber's goroutine.
func (f *Fiber) isCurrentGoroutine() bool {
	return f.goid.Load() != 0 && f.goid.Load() == currentGoroutineID()
}

// Yield hands control directly to another fiber without going through the
// scheduler's ready queue (spec.md §4.4). Like suspend, Yield does not
// place f on any queue; something else must later call Resume(f) or it will
// never run again.
func (f *Fiber) Yield(to *Fiber) {
	f.rt.scheduler.yield(f, to)
}

// Postpone appends f to the back of the ready queue and hands control back
// to the scheduler, giving up the CPU for this turn while staying runnable
// (spec.md §4.5) — distinct from Yield, which hands off directly to a named
// fiber instead of going through the ready queue.
func (f *Fiber) Postpone() {
	f.rt.scheduler.postpone(f)
}

// SpawnCopy clones arg via cloner before handing it to the new fiber,
// reproducing the byte-copy-onto-the-new-stack semantics of the original
// library's arg_size parameter (spec.md §4.4) for callers whose arg must
// not be shared by reference with the spawning fiber.
func SpawnCopy(rt *Runtime, entry func(*Fiber, any), arg any, cloner func(any) any) (*Fiber, error) {
	return rt.spawn(entry, cloner(arg))
}
