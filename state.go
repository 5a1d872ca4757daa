package strand

import "sync/atomic"

// runState is the lifecycle of a Runtime.
//
//	Awake -> Running -> Terminating -> Terminated
//
// Awake is the state after New, before Work is called. Running covers the
// whole body of Work. Stop moves Running to Terminating; the scheduler
// moves Terminating to Terminated once every queue has drained (spec.md
// §4.5: "the scheduler itself does not poll the flag; it terminates when
// its queues drain").
type runState uint32

const (
	stateAwake runState = iota
	stateRunning
	stateTerminating
	stateTerminated
)

func (s runState) String() string {
	switch s {
	case stateAwake:
		return "awake"
	case stateRunning:
		return "running"
	case stateTerminating:
		return "terminating"
	case stateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// atomicState is a lock-free state machine, mirroring the CAS-based
// FastState in the teacher's state.go.
type atomicState struct {
	v atomic.Uint32
}

func newAtomicState(initial runState) *atomicState {
	s := &atomicState{}
	s.v.Store(uint32(initial))
	return s
}

func (s *atomicState) Load() runState { return runState(s.v.Load()) }

func (s *atomicState) Store(v runState) { s.v.Store(uint32(v)) }

func (s *atomicState) TryTransition(from, to runState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}
