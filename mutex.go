package strand

import "github.com/strandrt/strand/internal/list"

// Mutex is a recursive, cooperative mutual-exclusion lock (spec.md §4.8):
// the same fiber may Lock it repeatedly without blocking itself, and it
// hands off to waiters in strict FIFO order on Unlock.
type Mutex struct {
	owner   *Fiber
	depth   int
	waiters list.List[*Fiber]
}

// NewMutex returns an unlocked Mutex.
func NewMutex() *Mutex { return &Mutex{} }

// Lock acquires m for f, blocking (suspending f) if another fiber holds it.
// Recursive: if f already owns m, Lock just increments the recursion depth
// and returns immediately, matching the original dfk_mutex_lock.
func (m *Mutex) Lock(f *Fiber) {
	if m.owner == f {
		m.depth++
		return
	}
	if m.owner == nil {
		m.owner = f
		m.depth = 1
		return
	}
	f.state = fiberStateWaitingMutex
	m.waiters.PushBack(f)
	f.rt.scheduler.suspend(f)
	// The unlocker must have set m.owner = f before resuming it.
	if m.owner != f {
		panic("strand: mutex invariant violated: resumed waiter is not the new owner")
	}
}

// TryLock attempts to acquire m without ever queueing f. Reports whether it
// succeeded.
func (m *Mutex) TryLock(f *Fiber) bool {
	if m.owner == f {
		m.depth++
		return true
	}
	if m.owner == nil {
		m.owner = f
		m.depth = 1
		return true
	}
	return false
}

// Unlock releases one level of recursion. If this was the outermost Unlock
// and waiters remain, the front waiter becomes the new owner and is
// appended to the ready queue — control returns to the unlocker immediately
// (a handoff, not a synchronous transfer), per spec.md §4.8.
func (m *Mutex) Unlock(f *Fiber) {
	if m.owner != f {
		panic("strand: Unlock called by a fiber that does not own the mutex")
	}
	m.depth--
	if m.depth > 0 {
		return
	}
	if m.waiters.Empty() {
		m.owner = nil
		return
	}
	next := m.waiters.PopFront()
	m.owner = next
	m.depth = 1
	f.rt.scheduler.resume(next)
}

// Owner returns the fiber currently holding m, or nil if it is free.
func (m *Mutex) Owner() *Fiber { return m.owner }
