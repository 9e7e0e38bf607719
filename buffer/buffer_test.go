package buffer_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/gomemoc/memoc/allocator"
	"github.com/gomemoc/memoc/buffer"
	"github.com/gomemoc/memoc/memutils"
)

func TestBufferConstructWithinSmallCapacityNeverCallsAllocator(t *testing.T) {
	require := require.New(t)

	s, err := allocator.NewStack(8)
	require.NoError(err)

	b, err := buffer.TryConstruct[int64](s, 4, 4, []int64{1, 2, 3, 4})
	require.NoError(err)
	require.Equal(int64(4), b.Size())
	require.Equal([]int64{1, 2, 3, 4}, b.Elements())
	require.True(b.Block().IsEmpty())

	// The stack never served an allocation: its whole capacity remains free.
	require.Equal(int64(8), s.Remaining())
}

func TestBufferConstructBeyondSmallCapacityUsesAllocator(t *testing.T) {
	require := require.New(t)

	b, err := buffer.TryConstruct[int64](allocator.Malloc{}, 0, 4, []int64{9, 9, 9, 9})
	require.NoError(err)
	require.Equal(int64(4), b.Size())
	require.NotNil(b.Data())
	require.False(b.Block().IsEmpty())
	require.Equal([]int64{9, 9, 9, 9}, b.Elements())
}

func TestBufferConstructZeroesTailBeyondSrcOnDirtyBacking(t *testing.T) {
	require := require.New(t)

	s, err := allocator.NewStack(64)
	require.NoError(err)

	// Dirty the bytes a later allocation of the same size will reuse: a Stack's Deallocate
	// only retreats the bump pointer (LIFO reuse), it never zeroes the freed bytes.
	dirty, err := s.Allocate(4 * 8)
	require.NoError(err)
	dirtyView := unsafe.Slice((*int64)(dirty.Data), 4)
	for i := range dirtyView {
		dirtyView[i] = -1
	}
	s.Deallocate(&dirty)

	b, err := buffer.TryConstruct[int64](s, 0, 4, []int64{1, 2})
	require.NoError(err)
	require.Equal([]int64{1, 2, 0, 0}, b.Elements())
}

func TestBufferTryConstructNegativeSizeIsInvalidSize(t *testing.T) {
	require := require.New(t)

	_, err := buffer.TryConstruct[int64](allocator.Malloc{}, 0, -1, nil)
	require.Error(err)
	require.ErrorIs(err, memutils.ErrBufferInvalidSize)
}

func TestBufferCopyNeverAliases(t *testing.T) {
	require := require.New(t)

	b, err := buffer.TryConstruct[int64](allocator.Malloc{}, 0, 3, []int64{1, 2, 3})
	require.NoError(err)

	c, err := b.Copy()
	require.NoError(err)

	*c.Data() = 100
	require.Equal(int64(1), *b.Data())
}

func TestBufferMoveFromSmallPerformsElementCopy(t *testing.T) {
	require := require.New(t)

	src, err := buffer.TryConstruct[int64](allocator.Malloc{}, 4, 2, []int64{5, 6})
	require.NoError(err)

	dst := buffer.Move(&src)
	require.True(src.Empty())
	require.Equal([]int64{5, 6}, dst.Elements())
}

func TestBufferMoveBeyondSmallCapacityTransfersBackingWithoutCopy(t *testing.T) {
	require := require.New(t)

	src, err := buffer.TryConstruct[int64](allocator.Malloc{}, 0, 2, []int64{5, 6})
	require.NoError(err)
	origData := src.Block().Data

	dst := buffer.Move(&src)
	require.True(src.Empty())
	require.Equal(origData, dst.Block().Data)
}

func TestBufferDestructRunsElementHookAndReleasesBacking(t *testing.T) {
	require := require.New(t)

	destroyed := 0
	b, err := buffer.TryConstruct[destroyHook](allocator.Malloc{}, 0, 2, []destroyHook{{n: &destroyed}, {n: &destroyed}})
	require.NoError(err)

	b.Destruct()
	require.Equal(2, destroyed)
	require.True(b.Empty())
}

type destroyHook struct {
	n *int
}

func (d destroyHook) Destroy() {
	*d.n++
}
