//go:build !linux && unix

package strand

import "golang.org/x/sys/unix"

// newWakeFD creates the portable self-pipe used to bridge Runtime.Stop into
// the reactor on platforms without eventfd.
func newWakeFD() (readFD, writeFD int, err error) {
	var fds [2]int
	if e := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); e != nil {
		return -1, -1, sysErr("pipe2", e)
	}
	return fds[0], fds[1], nil
}

// signalWake writes one byte into the pipe; the only async-signal-safe
// operation permitted into a running Runtime (spec.md §5).
func signalWake(fd int) {
	var buf [1]byte
	_, _ = unix.Write(fd, buf[:])
}

func drainWake(fd int) {
	var buf [64]byte
	for {
		n, err := unix.Read(fd, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}
