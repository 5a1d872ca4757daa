package strand

import "golang.org/x/sys/unix"

// Conn wraps a non-blocking fd with the suspending read/write adapter of
// spec.md §4.7. It has a single owner fiber at a time; using the same Conn
// concurrently from two fibers, or racing a Close against an in-flight
// Read/Write, is a programmer error the original documents the same way.
type Conn struct {
	rt *Runtime
	fd int
}

// NewConn sets fd non-blocking and wraps it, grounded on ehrlich-b-go-ublk's
// fd-management style of owning the fd for the lifetime of the wrapper.
func NewConn(rt *Runtime, fd int) (*Conn, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, sysErr("setnonblock", err)
	}
	return &Conn{rt: rt, fd: fd}, nil
}

// FD returns the wrapped file descriptor.
func (c *Conn) FD() int { return c.fd }

// Read attempts a non-blocking read; on EAGAIN/EWOULDBLOCK it suspends f via
// the reactor and retries exactly once on resume (spec.md §4.7).
func (c *Conn) Read(f *Fiber, buf []byte) (int, error) {
	n, err := unix.Read(c.fd, buf)
	if err == nil {
		if n == 0 {
			return 0, ErrEOF
		}
		return n, nil
	}
	if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
		return 0, sysErr("read", err)
	}
	mask, ioerr := c.rt.Io(f, c.fd, EventRead)
	if ioerr != nil {
		return 0, ioerr
	}
	if mask&EventError != 0 {
		return 0, NewError(ErrKindSystem, "fd %d reported an error condition", c.fd)
	}
	n, err = unix.Read(c.fd, buf)
	if err != nil {
		return 0, sysErr("read", err)
	}
	if n == 0 {
		return 0, ErrEOF
	}
	return n, nil
}

// Write is the symmetric suspending write over EventWrite.
func (c *Conn) Write(f *Fiber, buf []byte) (int, error) {
	n, err := unix.Write(c.fd, buf)
	if err == nil {
		return n, nil
	}
	if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
		return 0, sysErr("write", err)
	}
	mask, ioerr := c.rt.Io(f, c.fd, EventWrite)
	if ioerr != nil {
		return 0, ioerr
	}
	if mask&EventError != 0 {
		return 0, NewError(ErrKindSystem, "fd %d reported an error condition", c.fd)
	}
	n, err = unix.Write(c.fd, buf)
	if err != nil {
		return 0, sysErr("write", err)
	}
	return n, nil
}

// ReadVec reads into each buffer in turn, stopping at the first short read
// or error. Vectored readv is a possible future optimization (spec.md
// §4.7 leaves it optional); this falls back to the single-buffer path.
func (c *Conn) ReadVec(f *Fiber, bufs [][]byte) (int, error) {
	total := 0
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		n, err := c.Read(f, b)
		total += n
		if err != nil {
			return total, err
		}
		if n < len(b) {
			break
		}
	}
	return total, nil
}

// WriteVec is the symmetric fallback over Write.
func (c *Conn) WriteVec(f *Fiber, bufs [][]byte) (int, error) {
	total := 0
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		n, err := c.Write(f, b)
		total += n
		if err != nil {
			return total, err
		}
		if n < len(b) {
			break
		}
	}
	return total, nil
}

// Close closes the underlying fd unconditionally. A concurrent reactor
// registration on the same fd is the caller's problem (spec.md §4.7).
func (c *Conn) Close() error {
	_ = c.rt.reactor.unregister(c.fd)
	if err := unix.Close(c.fd); err != nil {
		return sysErr("close", err)
	}
	return nil
}
