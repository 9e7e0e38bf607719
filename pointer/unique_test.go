package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gomemoc/memoc/allocator"
	"github.com/gomemoc/memoc/pointer"
)

type destroyCounter struct {
	n *int
}

func (d destroyCounter) Destroy() {
	*d.n++
}

func TestUniqueMakeGetReset(t *testing.T) {
	require := require.New(t)

	u, err := pointer.MakeUnique[int](allocator.Malloc{}, 42)
	require.NoError(err)
	require.False(u.IsNil())
	require.Equal(42, *u.Get())

	u.Reset()
	require.True(u.IsNil())
	require.Nil(u.Get())
}

func TestUniqueResetRunsDestroyOnce(t *testing.T) {
	require := require.New(t)

	destroyed := 0
	u, err := pointer.MakeUnique[destroyCounter](allocator.Malloc{}, destroyCounter{n: &destroyed})
	require.NoError(err)

	u.Reset()
	require.Equal(1, destroyed)

	// Resetting an already-empty Unique must not run Destroy again.
	u.Reset()
	require.Equal(1, destroyed)
}

func TestUniqueMoveFromLeavesSourceEmpty(t *testing.T) {
	require := require.New(t)

	src, err := pointer.MakeUnique[int](allocator.Malloc{}, 7)
	require.NoError(err)

	var dst pointer.Unique[int, allocator.Malloc]
	dst.MoveFrom(&src)

	require.True(src.IsNil())
	require.False(dst.IsNil())
	require.Equal(7, *dst.Get())
}

func TestUniqueResetWithReplacesPointee(t *testing.T) {
	require := require.New(t)

	u, err := pointer.MakeUnique[int](allocator.Malloc{}, 1)
	require.NoError(err)

	require.NoError(u.ResetWith(2))
	require.Equal(2, *u.Get())
}
