//go:build !linux && unix

package strand

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/strandrt/strand/internal/list"
)

// pollReactor is the portable reactor (spec.md §4.6's "readiness-list
// implementation"): a list of live registrations, rebuilt into a
// []unix.PollFd and dispatched with unix.Poll every wakeup.
type pollReactor struct {
	rt     *Runtime
	regs   list.List[*registration]
	byFD   map[int]*registration
	wakeFD int
}

func newReactor(rt *Runtime) (reactor, error) {
	return &pollReactor{rt: rt, byFD: make(map[int]*registration)}, nil
}

func (r *pollReactor) register(fd int, interest IOEvents, f *Fiber, slot *IOEvents) error {
	if _, exists := r.byFD[fd]; exists {
		return NewError(ErrKindBusy, "fd %d already registered with reactor", fd)
	}
	reg := &registration{fd: fd, interest: interest, fiber: f, slot: slot}
	r.regs.PushBack(reg)
	r.byFD[fd] = reg
	return nil
}

func (r *pollReactor) unregister(fd int) error {
	reg, ok := r.byFD[fd]
	if !ok {
		return nil
	}
	delete(r.byFD, fd)
	r.regs.Remove(reg)
	return nil
}

func (r *pollReactor) empty() bool { return r.regs.Empty() }

func (r *pollReactor) armWake(fd int) error {
	r.wakeFD = fd
	return nil
}

func (r *pollReactor) runOnce(timeout time.Duration) (int, error) {
	fds := make([]unix.PollFd, 0, r.regs.Len()+1)
	hasWake := r.wakeFD != 0
	if hasWake {
		fds = append(fds, unix.PollFd{Fd: int32(r.wakeFD), Events: unix.POLLIN})
	}
	var order []*registration
	r.regs.ForEach(func(reg *registration) {
		fds = append(fds, unix.PollFd{Fd: int32(reg.fd), Events: pollEventsFor(reg.interest)})
		order = append(order, reg)
	})

	n, err := unix.Poll(fds, int(timeout/time.Millisecond))
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, sysErr("poll", err)
	}
	if n == 0 {
		return 0, nil
	}

	start := 0
	if hasWake {
		if fds[0].Revents != 0 {
			drainWake(r.wakeFD)
		}
		start = 1
	}
	ready := 0
	for i, reg := range order {
		revents := fds[start+i].Revents
		if revents == 0 {
			continue
		}
		delete(r.byFD, reg.fd)
		r.regs.Remove(reg)
		*reg.slot = pollToEvents(revents)
		r.rt.scheduler.ioResume(reg.fiber)
		ready++
	}
	return ready, nil
}

func (r *pollReactor) close() error { return nil }

func pollEventsFor(interest IOEvents) int16 {
	var e int16
	if interest&EventRead != 0 {
		e |= unix.POLLIN
	}
	if interest&EventWrite != 0 {
		e |= unix.POLLOUT
	}
	return e
}

func pollToEvents(revents int16) IOEvents {
	var e IOEvents
	if revents&unix.POLLIN != 0 {
		e |= EventRead
	}
	if revents&unix.POLLOUT != 0 {
		e |= EventWrite
	}
	if revents&unix.POLLERR != 0 {
		e |= EventError
	}
	if revents&unix.POLLHUP != 0 {
		e |= EventHangup
	}
	return e
}
