package strand_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandrt/strand"
)

// TestOnceFiresOnNextTurn checks that Fire postpones the caller exactly once
// and then invokes the callback exactly once.
func TestOnceFiresOnNextTurn(t *testing.T) {
	rt, err := strand.New()
	require.NoError(t, err)
	defer rt.Close()

	var fired int
	var before bool

	err = rt.Work(func(f *strand.Fiber, arg any) {
		o := strand.NewOnce(func(f *strand.Fiber) { fired++ })
		// The observer is queued ahead of f, so it runs while f is postponed
		// inside Fire, before the callback has had its turn.
		_, err := f.Runtime().Spawn(func(*strand.Fiber, any) { before = fired == 0 }, nil)
		require.NoError(t, err)
		o.Fire(f)
	}, nil)
	require.NoError(t, err)
	assert.True(t, before, "Fire must not invoke the callback synchronously")
	assert.Equal(t, 1, fired)
}

// TestOnceFreeCancelsPendingFire checks that calling Free while a Fire is
// pending (postponed but not yet resumed) cancels the callback.
func TestOnceFreeCancelsPendingFire(t *testing.T) {
	rt, err := strand.New()
	require.NoError(t, err)
	defer rt.Close()

	var fired int
	o := strand.NewOnce(func(f *strand.Fiber) { fired++ })

	firer := func(f *strand.Fiber, arg any) {
		o.Fire(f)
	}
	freer := func(f *strand.Fiber, arg any) {
		o.Free()
	}
	root := func(f *strand.Fiber, arg any) {
		_, err := f.Runtime().Spawn(firer, nil)
		require.NoError(t, err)
		_, err = f.Runtime().Spawn(freer, nil)
		require.NoError(t, err)
	}

	require.NoError(t, rt.Work(root, nil))
	assert.Equal(t, 0, fired)
}
