package strand

import "github.com/strandrt/strand/internal/list"

// Cond is a FIFO condition variable (spec.md §4.9). Unlike POSIX
// pthread_cond_t, wakeups are strictly ordered: the Nth fiber to call Wait
// is the Nth fiber woken by Signal/Broadcast, never reordered by scheduler
// timing.
type Cond struct {
	waiters list.List[*Fiber]
}

// NewCond returns an empty Cond.
func NewCond() *Cond { return &Cond{} }

// Wait releases m (which f must own), suspends f until a matching
// Signal/Broadcast, then re-acquires m before returning. The caller must
// re-check its predicate after Wait returns, as with any condition
// variable.
func (c *Cond) Wait(f *Fiber, m *Mutex) {
	if m.owner != f {
		panic("strand: Cond.Wait called without holding the mutex")
	}
	f.state = fiberStateWaitingCond
	c.waiters.PushBack(f)
	m.Unlock(f)
	f.rt.scheduler.suspend(f)
	m.Lock(f)
}

// Signal wakes the single longest-waiting fiber, if any.
func (c *Cond) Signal(f *Fiber) {
	if c.waiters.Empty() {
		return
	}
	next := c.waiters.PopFront()
	f.rt.scheduler.resume(next)
}

// Broadcast wakes every waiting fiber, in the order they called Wait. It
// first splices the whole wait list into a local list before resuming
// anyone, so a woken fiber re-Waiting before Broadcast finishes cannot be
// mistaken for one of the fibers this call is already responsible for
// (spec.md §4.9).
func (c *Cond) Broadcast(f *Fiber) {
	var local list.List[*Fiber]
	local.MoveAllFrom(&c.waiters)
	for !local.Empty() {
		next := local.PopFront()
		f.rt.scheduler.resume(next)
	}
}
