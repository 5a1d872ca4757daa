//go:build linux

package strand

import (
	"time"

	"golang.org/x/sys/unix"
)

// maxFDs caps direct-indexed lookups, matching the teacher's FastPoller
// (poller_linux.go). This reactor uses a map instead of a direct-indexed
// array because, unlike the teacher, it is never touched from more than
// one goroutine at a time and so has no RWMutex contention to avoid.
const maxFDs = 1 << 20

// epollReactor is the edge-triggered Linux reactor, grounded on the
// teacher's FastPoller: one epoll_create1 descriptor, EpollCtl add/del,
// EpollWait into a reusable event buffer.
type epollReactor struct {
	rt     *Runtime
	epfd   int
	wakeFD int
	events [256]unix.EpollEvent
	regs   map[int]*registration
}

func newReactor(rt *Runtime) (reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, sysErr("epoll_create1", err)
	}
	return &epollReactor{rt: rt, epfd: epfd, regs: make(map[int]*registration)}, nil
}

func (r *epollReactor) register(fd int, interest IOEvents, f *Fiber, slot *IOEvents) error {
	if fd < 0 || fd >= maxFDs {
		return NewError(ErrKindBadArgument, "fd %d out of range", fd)
	}
	if _, exists := r.regs[fd]; exists {
		return NewError(ErrKindBusy, "fd %d already registered with reactor", fd)
	}
	ev := &unix.EpollEvent{Events: eventsToEpoll(interest) | unix.EPOLLET, Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		return sysErr("epoll_ctl(add)", err)
	}
	r.regs[fd] = &registration{fd: fd, interest: interest, fiber: f, slot: slot}
	return nil
}

func (r *epollReactor) unregister(fd int) error {
	if _, ok := r.regs[fd]; !ok {
		return nil
	}
	delete(r.regs, fd)
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return sysErr("epoll_ctl(del)", err)
	}
	return nil
}

func (r *epollReactor) empty() bool { return len(r.regs) == 0 }

// armWake registers the self-pipe/eventfd fd for level-triggered EventRead
// readiness, outside the fiber-tied registration table, so Runtime.Stop can
// interrupt a blocked EpollWait asynchronously (spec.md §5).
func (r *epollReactor) armWake(fd int) error {
	r.wakeFD = fd
	ev := &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		return sysErr("epoll_ctl(add wake)", err)
	}
	return nil
}

func (r *epollReactor) runOnce(timeout time.Duration) (int, error) {
	n, err := unix.EpollWait(r.epfd, r.events[:], int(timeout/time.Millisecond))
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, sysErr("epoll_wait", err)
	}
	ready := 0
	for i := 0; i < n; i++ {
		fd := int(r.events[i].Fd)
		if fd == r.wakeFD {
			drainWake(fd)
			continue
		}
		reg, ok := r.regs[fd]
		if !ok {
			continue
		}
		delete(r.regs, fd)
		_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
		*reg.slot = epollToEvents(r.events[i].Events)
		r.rt.scheduler.ioResume(reg.fiber)
		ready++
	}
	return ready, nil
}

func (r *epollReactor) close() error {
	return unix.Close(r.epfd)
}

func eventsToEpoll(events IOEvents) uint32 {
	var e uint32
	if events&EventRead != 0 {
		e |= unix.EPOLLIN
	}
	if events&EventWrite != 0 {
		e |= unix.EPOLLOUT
	}
	return e
}

func epollToEvents(e uint32) IOEvents {
	var events IOEvents
	if e&unix.EPOLLIN != 0 {
		events |= EventRead
	}
	if e&unix.EPOLLOUT != 0 {
		events |= EventWrite
	}
	if e&unix.EPOLLERR != 0 {
		events |= EventError
	}
	if e&unix.EPOLLHUP != 0 {
		events |= EventHangup
	}
	return events
}
