package strand

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrKind classifies a runtime failure. The set mirrors the error kinds of
// the original dfk_err_* enumeration (original_source/include/dfk/error.h)
// verbatim in meaning, renamed to idiomatic Go.
type ErrKind int

const (
	// ErrKindOK indicates no error occurred.
	ErrKindOK ErrKind = iota
	// ErrKindEOF indicates end of stream or iterator.
	ErrKindEOF
	// ErrKindBusy indicates the resource is already acquired.
	ErrKindBusy
	// ErrKindNoMem indicates an allocation failed.
	ErrKindNoMem
	// ErrKindNotFound indicates the object was not found.
	ErrKindNotFound
	// ErrKindBadArgument indicates an invalid argument was supplied.
	ErrKindBadArgument
	// ErrKindSystem indicates a platform system call failed; Errno carries
	// the captured errno.
	ErrKindSystem
	// ErrKindInProgress indicates the operation is already in progress.
	ErrKindInProgress
	// ErrKindUnexpectedState indicates a programmer error / invariant
	// violation was detected.
	ErrKindUnexpectedState
	// ErrKindNotImplemented indicates the functionality does not exist yet.
	ErrKindNotImplemented
	// ErrKindOverflow indicates an integer or buffer overflow.
	ErrKindOverflow
	// ErrKindProtocol indicates a protocol violation.
	ErrKindProtocol
	// ErrKindTimeout indicates an operation timed out.
	ErrKindTimeout
)

// String returns a human-readable name for the kind, matching the
// original dfk_strerr() wording where applicable.
func (k ErrKind) String() string {
	switch k {
	case ErrKindOK:
		return "ok"
	case ErrKindEOF:
		return "eof"
	case ErrKindBusy:
		return "resource busy"
	case ErrKindNoMem:
		return "out of memory"
	case ErrKindNotFound:
		return "not found"
	case ErrKindBadArgument:
		return "bad argument"
	case ErrKindSystem:
		return "system error"
	case ErrKindInProgress:
		return "operation in progress"
	case ErrKindUnexpectedState:
		return "unexpected state"
	case ErrKindNotImplemented:
		return "not implemented"
	case ErrKindOverflow:
		return "overflow"
	case ErrKindProtocol:
		return "protocol violation"
	case ErrKindTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("unknown error kind(%d)", int(k))
	}
}

// Error is the concrete error type returned across the runtime's public
// API. It always carries a Kind, an optional human-readable Message, and
// (for ErrKindSystem) the captured platform errno.
type Error struct {
	Kind    ErrKind
	Message string
	Errno   syscall.Errno
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		if e.Kind == ErrKindSystem && e.Errno != 0 {
			return fmt.Sprintf("strand: %s: %s (%s)", e.Kind, e.Message, e.Errno)
		}
		return fmt.Sprintf("strand: %s: %s", e.Kind, e.Message)
	}
	if e.Kind == ErrKindSystem && e.Errno != 0 {
		return fmt.Sprintf("strand: %s (%s)", e.Kind, e.Errno)
	}
	return fmt.Sprintf("strand: %s", e.Kind)
}

// Unwrap exposes the captured cause (if any) and, for system errors, the
// errno, so that errors.Is(err, syscall.EAGAIN) and errors.Is(err,
// io.EOF)-style checks work through the chain.
func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	if e.Kind == ErrKindSystem && e.Errno != 0 {
		return e.Errno
	}
	return nil
}

// Is reports whether target is an *Error with the same Kind, allowing
// errors.Is(err, strand.NewError(ErrKindTimeout, "")) style comparisons that
// ignore Message/Cause.
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return te.Kind == e.Kind
	}
	return false
}

// NewError constructs an *Error of the given kind with a formatted message.
func NewError(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps cause under kind, preserving it for errors.Is/As via
// Unwrap.
func WrapError(kind ErrKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// SystemError captures a syscall failure as an ErrKindSystem *Error.
func SystemError(op string, errno syscall.Errno) *Error {
	return &Error{Kind: ErrKindSystem, Message: op, Errno: errno}
}

// Standard sentinel errors for conditions with no further context, mirroring
// the public surface of dfk_err_ok/eof/busy/etc. as Go error values rather
// than a numeric return code.
var (
	ErrEOF             = &Error{Kind: ErrKindEOF}
	ErrBusy            = &Error{Kind: ErrKindBusy, Message: "resource is already acquired"}
	ErrNotFound        = &Error{Kind: ErrKindNotFound}
	ErrNotImplemented  = &Error{Kind: ErrKindNotImplemented}
	ErrLoopTerminated  = &Error{Kind: ErrKindUnexpectedState, Message: "runtime has already terminated"}
	ErrNotRunningFiber = &Error{Kind: ErrKindBadArgument, Message: "Spawn called from outside a running fiber"}
)
