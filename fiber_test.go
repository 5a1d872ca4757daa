package strand_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandrt/strand"
)

// TestFiberArenaResetOnTermination checks that a fiber's scratch arena runs
// its registered finalizers, in order, once the fiber terminates.
func TestFiberArenaResetOnTermination(t *testing.T) {
	rt, err := strand.New()
	require.NoError(t, err)
	defer rt.Close()

	var order []int
	var scratch []byte

	err = rt.Work(func(f *strand.Fiber, arg any) {
		a := f.Arena()
		scratch = a.AllocWithFinalizer(8, func() { order = append(order, 1) })
		a.AllocWithFinalizer(8, func() { order = append(order, 2) })
		require.Len(t, scratch, 8)
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, order)
}
