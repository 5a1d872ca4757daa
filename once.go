package strand

import "sync/atomic"

// Once arms a callback to run the next time its owning fiber is
// rescheduled, then disarms. Grounded on original_source's dfk_once_t (a
// libuv-prepare-handle-backed "run exactly once, on the next loop tick"
// primitive) and rebuilt here purely from the scheduler's Postpone, since
// this runtime has no separate prepare-handle phase — postponing already
// means "run again on this fiber's next turn".
type Once struct {
	armed atomic.Bool
	fn    func(*Fiber)
}

// NewOnce returns a Once that will invoke fn the next time Fire's caller is
// rescheduled.
func NewOnce(fn func(*Fiber)) *Once { return &Once{fn: fn} }

// Fire arms the callback and postpones f. If f is already armed, Fire is a
// no-op (matching dfk_once_fire's idempotence while a fire is pending) —
// the caller is still postponed exactly once per outstanding Fire.
func (o *Once) Fire(f *Fiber) {
	if !o.armed.CompareAndSwap(false, true) {
		return
	}
	f.rt.scheduler.postpone(f)
	if o.armed.CompareAndSwap(true, false) {
		o.fn(f)
	}
}

// Free disarms a pending Fire so the callback does not run when f is next
// rescheduled.
func (o *Once) Free() {
	o.armed.Store(false)
}
