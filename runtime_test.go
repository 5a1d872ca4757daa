package strand_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandrt/strand"
)

// TestCloseWithoutWorkSucceeds checks that a freshly constructed Runtime can
// be torn down without ever calling Work.
func TestCloseWithoutWorkSucceeds(t *testing.T) {
	rt, err := strand.New()
	require.NoError(t, err)
	assert.NoError(t, rt.Close())
}

// TestStopIsIdempotent checks that calling Stop twice has the same
// observable effect as calling it once.
func TestStopIsIdempotent(t *testing.T) {
	rt, err := strand.New()
	require.NoError(t, err)
	defer rt.Close()

	assert.NotPanics(t, func() {
		rt.Stop()
		rt.Stop()
	})
}

// TestCloseAfterWorkIsIdempotent checks that the reactor's own shutdown
// path (run during Work) and an explicit, deferred Close — the lifecycle
// every test and example in this package uses — can't double-close the
// same fd: a second Close after Work completed must be a safe no-op.
func TestCloseAfterWorkIsIdempotent(t *testing.T) {
	rt, err := strand.New()
	require.NoError(t, err)

	require.NoError(t, rt.Work(func(f *strand.Fiber, arg any) {}, nil))

	assert.NotPanics(t, func() {
		require.NoError(t, rt.Close())
		require.NoError(t, rt.Close())
	})
}

// TestMutexOwnerNoneImpliesEmptyWaitQueue exercises the invariant that once
// a mutex's owner becomes nil, a subsequent TryLock by any fiber succeeds —
// i.e. nothing was left queued behind a phantom owner.
func TestMutexOwnerNoneImpliesEmptyWaitQueue(t *testing.T) {
	rt, err := strand.New()
	require.NoError(t, err)
	defer rt.Close()

	m := strand.NewMutex()
	var secondLockOK bool

	err = rt.Work(func(f *strand.Fiber, arg any) {
		m.Lock(f)
		m.Unlock(f)
		assert.Nil(t, m.Owner())
		secondLockOK = m.TryLock(f)
		m.Unlock(f)
	}, nil)
	require.NoError(t, err)
	assert.True(t, secondLockOK)
}
