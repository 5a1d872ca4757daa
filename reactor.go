package strand

import (
	"syscall"
	"time"

	"github.com/strandrt/strand/internal/list"
)

// IOEvents is a bitmask of readiness conditions a fd can be registered for,
// or observed to have fired. Named and valued after the teacher's
// poller_linux.go IOEvents, trimmed to what the reactor's contract (spec.md
// §4.6) actually promises plus EventHangup for observability.
type IOEvents uint32

const (
	// EventRead indicates the fd is ready for reading.
	EventRead IOEvents = 1 << iota
	// EventWrite indicates the fd is ready for writing.
	EventWrite
	// EventError indicates an error condition was observed on the fd. A
	// fiber resumed with only this bit set must still treat the wakeup as
	// a legitimate readiness notification (spec.md §8, Testable Properties).
	EventError
	// EventHangup indicates the peer closed its end of the connection.
	EventHangup
)

// registration ties one pending Io() call back to the fiber that issued it
// and the slot the reactor writes the observed mask into before resuming
// it. It participates in the portable reactor's readiness list via
// list.Hooked; the epoll reactor keys it by fd directly instead.
type registration struct {
	hook     list.Hook[*registration]
	fd       int
	interest IOEvents
	fiber    *Fiber
	slot     *IOEvents
}

func (r *registration) Hook() *list.Hook[*registration] { return &r.hook }

// reactor is implemented by reactor_epoll_linux.go (edge-triggered epoll)
// and reactor_poll_other.go (portable unix.Poll readiness list). Exactly
// one exists per Runtime, and every method is only ever called from the
// reactor's own fiber goroutine or — for register/unregister — from
// whichever fiber is current when it calls Runtime.Io, which per the
// scheduler's single-active-goroutine rule is never concurrent with a
// runOnce in progress.
type reactor interface {
	register(fd int, interest IOEvents, f *Fiber, slot *IOEvents) error
	unregister(fd int) error
	empty() bool
	armWake(fd int) error
	runOnce(timeout time.Duration) (int, error)
	close() error
}

// sysErr wraps a syscall failure as an ErrKindSystem *Error, capturing the
// errno when the underlying error carries one (x/sys/unix functions return
// syscall.Errno on every platform this reactor supports).
func sysErr(op string, err error) error {
	if errno, ok := err.(syscall.Errno); ok {
		return SystemError(op, errno)
	}
	return WrapError(ErrKindSystem, err, "%s", op)
}

// reactorEntry is the reactor fiber's body (spec.md §4.6): suspend while
// idle, otherwise block in the platform multiplexor for up to
// cfg.reactorTimeout and resume every fiber whose fd became ready, then
// suspend back to the scheduler. It returns once shutdownReactor has closed
// rt.reactorStop and dispatched it a last time, or after a multiplexor
// failure; both paths close the reactor first.
func reactorEntry(f *Fiber, _ any) {
	rt := f.rt
	f.SetName("reactor")
	for {
		select {
		case <-rt.reactorStop:
			_ = rt.closeReactor()
			return
		default:
		}
		if rt.reactor.empty() {
			rt.scheduler.suspend(f)
			continue
		}
		if _, err := rt.reactor.runOnce(rt.cfg.reactorTimeout); err != nil {
			rt.logger().Log(Entry{Level: LevelError, Category: "reactor", Message: "poll failed", Err: err})
			_ = rt.closeReactor()
			return
		}
		rt.scheduler.suspend(f)
	}
}

// Io is the suspending I/O adapter's primitive suspend point (spec.md
// §4.6): register interest in fd on behalf of f, hand f to io_suspend, and
// return whatever mask the reactor observed once f is resumed.
func (rt *Runtime) Io(f *Fiber, fd int, interest IOEvents) (IOEvents, error) {
	var slot IOEvents
	if err := rt.reactor.register(fd, interest, f, &slot); err != nil {
		return 0, err
	}
	rt.scheduler.ioSuspend(f)
	return slot, nil
}
