//go:build linux

package strand

import "golang.org/x/sys/unix"

// newWakeFD creates the eventfd used to bridge Runtime.Stop (and any future
// signal handler) into the reactor asynchronously-signal-safely, grounded
// on the teacher's wakeup_linux.go. Read and write ends are the same fd.
func newWakeFD() (readFD, writeFD int, err error) {
	fd, e := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if e != nil {
		return -1, -1, sysErr("eventfd", e)
	}
	return fd, fd, nil
}

// signalWake performs the one async-signal-safe write permitted into a
// running Runtime (spec.md §5): an 8-byte eventfd counter increment.
func signalWake(fd int) {
	var buf [8]byte
	buf[0] = 1
	_, _ = unix.Write(fd, buf[:])
}

func drainWake(fd int) {
	var buf [8]byte
	_, _ = unix.Read(fd, buf[:])
}
