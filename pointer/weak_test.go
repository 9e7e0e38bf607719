package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gomemoc/memoc/allocator"
	"github.com/gomemoc/memoc/pointer"
)

func TestWeakLockBeforeExpiry(t *testing.T) {
	require := require.New(t)

	sp, err := pointer.MakeShared[int](allocator.Malloc{}, 5)
	require.NoError(err)

	wp := pointer.NewWeak[int](&sp)
	require.False(wp.Expired())

	locked := wp.Lock()
	require.False(locked.IsNil())
	require.Equal(5, *locked.Get())
	require.Equal(int64(2), sp.UseCount())
}

func TestWeakLockAfterExpiryReturnsEmpty(t *testing.T) {
	require := require.New(t)

	sp, err := pointer.MakeShared[int](allocator.Malloc{}, 5)
	require.NoError(err)

	wp := pointer.NewWeak[int](&sp)
	sp.Reset()

	require.True(wp.Expired())
	locked := wp.Lock()
	require.True(locked.IsNil())
}

func TestWeakResetDoesNotAffectUseCount(t *testing.T) {
	require := require.New(t)

	sp, err := pointer.MakeShared[int](allocator.Malloc{}, 5)
	require.NoError(err)

	wp := pointer.NewWeak[int](&sp)
	require.Equal(int64(1), sp.WeakCount())

	wp.Reset()
	require.Equal(int64(0), sp.WeakCount())
	require.Equal(int64(1), sp.UseCount())
}

func TestWeakSurvivesAfterSharedDroppedUntilReset(t *testing.T) {
	require := require.New(t)

	destroyed := 0
	sp, err := pointer.MakeShared[destroyCounter](allocator.Malloc{}, destroyCounter{n: &destroyed})
	require.NoError(err)

	wp := pointer.NewWeak[destroyCounter](&sp)
	sp.Reset()
	require.Equal(1, destroyed)
	require.True(wp.Expired())

	// The control block's own storage isn't released until the last Weak also lets go.
	wp.Reset()
}
