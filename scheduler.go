package strand

import "github.com/strandrt/strand/internal/list"

// Scheduler runs the cooperative ready/iowait/terminated loop described in
// spec.md §4.5. At most one Fiber's goroutine is ever unparked; every
// handoff — scheduler-to-fiber, fiber-to-fiber (Yield) or fiber-to-scheduler
// (Suspend/Postpone/IOSuspend/Terminate) — is a rendezvous on an unbuffered
// channel, which is also what gives the rest of the package its "no locks
// needed on scheduler state" property: a channel send/receive pair is a Go
// memory-model synchronization point.
type Scheduler struct {
	rt    *Runtime
	backCh chan struct{}

	current *Fiber
	reactor *Fiber

	ready      list.List[*Fiber]
	terminated list.List[*Fiber]
	iowait     int

	testHooks *schedulerTestHooks
}

// schedulerTestHooks mirrors the teacher's loopTestHooks: unexported
// injection points, settable only from _test.go files in this package, that
// give the ordering/race tests in scheduler_internal_test.go a way to pin
// down interleavings instead of relying on timing luck.
type schedulerTestHooks struct {
	BeforeReactorPoll func()
	AfterSchedulerTick func()
}

func newScheduler(rt *Runtime) *Scheduler {
	return &Scheduler{
		rt:     rt,
		backCh: make(chan struct{}),
	}
}

func (s *Scheduler) setReactorFiber(f *Fiber) { s.reactor = f }

// dispatch sets f current, wakes its goroutine and blocks until control is
// handed back to the scheduler — whether directly by f, or by whichever
// fiber f (or a chain of Yields starting at f) eventually hands off to.
func (s *Scheduler) dispatch(f *Fiber) {
	s.current = f
	f.state = fiberStateRunning
	f.resume <- struct{}{}
	<-s.backCh
}

// handBack is called from the currently running fiber's own goroutine to
// return control to whichever dispatch() call is waiting on backCh.
func (s *Scheduler) handBack() {
	s.backCh <- struct{}{}
}

// Resume appends f to the ready queue without switching into it. Used by
// Mutex.Unlock, Cond.Signal/Broadcast and IOResume's ready-side half.
func (s *Scheduler) resume(f *Fiber) {
	f.state = fiberStateReady
	s.ready.PushBack(f)
}

// suspend hands control back to the scheduler without enqueueing f anywhere
// — the caller is responsible for having already recorded f on whatever
// wait list it belongs to (spec.md §4.5's Suspend contract).
func (s *Scheduler) suspend(f *Fiber) {
	s.handBack()
	<-f.resume
}

// ioSuspend increments iowait and parks f, to be woken later by ioResume
// once the reactor observes readiness.
func (s *Scheduler) ioSuspend(f *Fiber) {
	f.state = fiberStateIOWait
	s.iowait++
	s.handBack()
	<-f.resume
}

// ioResume decrements iowait and appends f to ready; called only from the
// reactor fiber's own goroutine, once per fiber the platform multiplexor
// reported ready — this is the single place shared by every reactor
// backend, so it is also where the ReactorWakeups metric is counted.
func (s *Scheduler) ioResume(f *Fiber) {
	s.iowait--
	s.resume(f)
	if s.rt.cfg.metricsEnabled {
		s.rt.metrics.ReactorWakeups.Add(1)
	}
}

// postpone appends the calling fiber to the back of the ready queue and
// hands control back to the scheduler, implementing the "give up the CPU
// but stay runnable" half of spec.md §4.5 (distinct from the direct
// fiber-to-fiber Yield).
func (s *Scheduler) postpone(f *Fiber) {
	s.resume(f)
	s.handBack()
	<-f.resume
}

// terminate appends f to the terminated queue and hands control back. It is
// always called from f's own runEntry deferred cleanup, which never blocks
// on f.resume again afterwards — the goroutine simply returns.
func (s *Scheduler) terminate(f *Fiber, err error) {
	f.err = err
	f.state = fiberStateTerminated
	s.terminated.PushBack(f)
	s.handBack()
}

// yield implements the direct fiber-to-fiber handoff of spec.md §4.4: from
// hands control straight to to, bypassing the ready queue, then blocks on
// its own resume channel until someone later calls Resume(from) (or Yields
// back to it directly).
func (s *Scheduler) yield(from, to *Fiber) {
	s.current = to
	to.state = fiberStateRunning
	to.resume <- struct{}{}
	<-from.resume
}

// drainTerminated frees every fiber that finished during the last tick.
func (s *Scheduler) drainTerminated() {
	for !s.terminated.Empty() {
		f := s.terminated.PopFront()
		s.rt.onFiberTerminated(f)
	}
}

// run is the scheduler's main loop (spec.md §4.5 tick()), executed directly
// on the goroutine that called Runtime.Work — there is no separate
// goroutine for "the scheduler fiber" because nothing ever needs to switch
// back into a saved caller context except by this function returning.
func (s *Scheduler) run() {
	for {
		if s.ready.Empty() && s.terminated.Empty() && s.iowait == 0 {
			break
		}
		s.drainTerminated()

		var snapshot list.List[*Fiber]
		snapshot.Swap(&s.ready)
		for !snapshot.Empty() {
			f := snapshot.PopFront()
			s.dispatch(f)
		}

		if s.ready.Empty() && s.iowait > 0 && s.reactor != nil {
			if s.testHooks != nil && s.testHooks.BeforeReactorPoll != nil {
				s.testHooks.BeforeReactorPoll()
			}
			s.dispatch(s.reactor)
		}

		if s.testHooks != nil && s.testHooks.AfterSchedulerTick != nil {
			s.testHooks.AfterSchedulerTick()
		}
	}
	s.drainTerminated()
	s.shutdownReactor()
}

// shutdownReactor wakes the reactor fiber one final time after closing
// rt.reactorStop, giving it a chance to release its epoll/pipe descriptors
// before its goroutine exits.
func (s *Scheduler) shutdownReactor() {
	if s.reactor == nil {
		return
	}
	close(s.rt.reactorStop)
	s.dispatch(s.reactor)
	s.drainTerminated()
	s.reactor = nil
}
