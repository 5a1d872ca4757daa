package strand_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandrt/strand"
)

// TestSpawnAndDieChain is spec.md §8 scenario 1: an entry that decrements a
// counter starting at 8 and, while non-zero, spawns another fiber running
// the same entry with the same counter. work must return ok once the chain
// bottoms out.
func TestSpawnAndDieChain(t *testing.T) {
	rt, err := strand.New()
	require.NoError(t, err)
	defer rt.Close()

	var spawnCount int64

	var entry func(f *strand.Fiber, arg any)
	entry = func(f *strand.Fiber, arg any) {
		n := arg.(int)
		atomic.AddInt64(&spawnCount, 1)
		if n > 0 {
			_, err := f.Runtime().Spawn(entry, n-1)
			require.NoError(t, err)
		}
	}

	err = rt.Work(entry, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(9), spawnCount) // counters 8,7,...,0 inclusive
}

// TestSchedulerDrainsThousandFibers is spec.md §8 scenario 6.
func TestSchedulerDrainsThousandFibers(t *testing.T) {
	rt, err := strand.New()
	require.NoError(t, err)
	defer rt.Close()

	const fiberCount = 1000
	var terminated int64

	entry := func(f *strand.Fiber, arg any) {
		atomic.AddInt64(&terminated, 1)
	}

	root := func(f *strand.Fiber, arg any) {
		for i := 0; i < fiberCount-1; i++ {
			_, err := f.Runtime().Spawn(entry, nil)
			require.NoError(t, err)
		}
	}

	done := make(chan error, 1)
	go func() { done <- rt.Work(root, nil) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not drain in time")
	}
	assert.Equal(t, int64(fiberCount-1), atomic.LoadInt64(&terminated))
}

// TestWorkPropagatesEntryError exercises the "work returns the entry
// fiber's recorded error" contract.
func TestWorkPropagatesEntryError(t *testing.T) {
	rt, err := strand.New()
	require.NoError(t, err)
	defer rt.Close()

	err = rt.Work(func(f *strand.Fiber, arg any) {
		panic("deliberate")
	}, nil)
	var se *strand.Error
	require.Error(t, err)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, strand.ErrKindUnexpectedState, se.Kind)
}

// TestWorkRejectsSecondCall checks the single-use Runtime state machine.
func TestWorkRejectsSecondCall(t *testing.T) {
	rt, err := strand.New()
	require.NoError(t, err)
	defer rt.Close()

	require.NoError(t, rt.Work(func(f *strand.Fiber, arg any) {}, nil))
	err = rt.Work(func(f *strand.Fiber, arg any) {}, nil)
	assert.ErrorIs(t, err, strand.ErrLoopTerminated)
}

// TestSpawnOutsideFiberFails checks Runtime.Spawn's "only from inside a
// running fiber" precondition.
func TestSpawnOutsideFiberFails(t *testing.T) {
	rt, err := strand.New()
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.Spawn(func(f *strand.Fiber, arg any) {}, nil)
	assert.ErrorIs(t, err, strand.ErrNotRunningFiber)
}
