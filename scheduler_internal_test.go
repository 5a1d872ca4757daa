package strand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSchedulerTestHooksFireOnEachTick is a white-box check that the
// scheduler's test-hook injection points (mirroring the teacher's
// loopTestHooks) actually fire, giving future tests a deterministic way to
// pin down interleavings around reactor dispatch instead of relying on
// sleeps.
func TestSchedulerTestHooksFireOnEachTick(t *testing.T) {
	rt, err := New()
	require.NoError(t, err)
	defer rt.Close()

	var ticks int
	rt.scheduler.testHooks = &schedulerTestHooks{
		AfterSchedulerTick: func() { ticks++ },
	}

	entry := func(f *Fiber, arg any) {
		f.Postpone()
	}
	require.NoError(t, rt.Work(entry, nil))
	assert.GreaterOrEqual(t, ticks, 2)
}

// TestFiberStateObservableWhileWaitingMutex checks the fiberState invariant
// from spec.md §8 (a fiber belongs to exactly one logical place at a time) by
// inspecting the state field of a fiber blocked on a contended Mutex — only
// possible from within the package, since fiberState is unexported.
func TestFiberStateObservableWhileWaitingMutex(t *testing.T) {
	rt, err := New()
	require.NoError(t, err)
	defer rt.Close()

	m := NewMutex()
	var sawWaitingMutex bool

	holder := func(f *Fiber, arg any) {
		m.Lock(f)
		f.Postpone()
		m.Unlock(f)
	}
	waiter := func(f *Fiber, arg any) {
		m.Lock(f)
		m.Unlock(f)
	}
	root := func(f *Fiber, arg any) {
		h, err := f.Runtime().spawn(holder, nil)
		require.NoError(t, err)
		w, err := f.Runtime().spawn(waiter, nil)
		require.NoError(t, err)
		f.Postpone()
		sawWaitingMutex = w.state == fiberStateWaitingMutex
		_ = h
	}

	require.NoError(t, rt.Work(root, nil))
	assert.True(t, sawWaitingMutex)
}
