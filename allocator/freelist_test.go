package allocator_test

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/gomemoc/memoc/allocator"
	"github.com/gomemoc/memoc/block"
)

func TestFreeListUniversalProperties(t *testing.T) {
	fl, err := allocator.NewFreeList(allocator.Malloc{}, 16, 32, 2)
	require.NoError(t, err)
	universalProperties(t, "freelist", fl)
}

// TestFreeListCachedBlocksSurviveGC guards against the noscan-pointer-chain hazard: with
// MaxListSize >= 2, every cached block past the most recently pushed one used to be reachable
// only through a *freeListNode stored inside allocator-owned (noscan) memory, which the garbage
// collector does not scan for pointers. Forcing a collection while several blocks are cached
// and then reading back through them (instead of through GC-visible local variables) exercises
// that the free list itself, not the test's own references, keeps them alive.
func TestFreeListCachedBlocksSurviveGC(t *testing.T) {
	require := require.New(t)
	fl, err := allocator.NewFreeList(allocator.Malloc{}, 16, 32, 4)
	require.NoError(err)

	// All n allocations happen before any deallocation, so the cache is empty throughout and
	// every one is served fresh by Inner rather than recycled from the cache.
	const n = 3
	blocks := make([]block.Untyped, n)
	ptrs := make([]unsafe.Pointer, n)
	for i := 0; i < n; i++ {
		b, err := fl.Allocate(24)
		require.NoError(err)
		*(*byte)(b.Data) = byte(0xAB)
		blocks[i] = b
		ptrs[i] = b.Data
	}
	for i := range blocks {
		fl.Deallocate(&blocks[i])
	}
	require.Equal(n, fl.Len())

	runtime.GC()
	runtime.GC()

	for i := 0; i < n; i++ {
		b, err := fl.Allocate(24)
		require.NoError(err)
		require.False(b.IsEmpty())
		require.Contains(ptrs, b.Data)
	}
	require.Equal(0, fl.Len())
}

func TestFreeListRecyclesInLIFOOrder(t *testing.T) {
	require := require.New(t)
	fl, err := allocator.NewFreeList(allocator.Malloc{}, 16, 32, 2)
	require.NoError(err)

	b1, err := fl.Allocate(24)
	require.NoError(err)
	b2, err := fl.Allocate(24)
	require.NoError(err)

	p1, p2 := b1.Data, b2.Data
	fl.Deallocate(&b1)
	fl.Deallocate(&b2)

	b3, err := fl.Allocate(24)
	require.NoError(err)
	b4, err := fl.Allocate(24)
	require.NoError(err)

	require.Equal(p2, b3.Data)
	require.Equal(p1, b4.Data)

	b5, err := fl.Allocate(24)
	require.NoError(err)
	require.NotEqual(p1, b5.Data)
	require.NotEqual(p2, b5.Data)
}

func TestFreeListOutOfRangePassesThrough(t *testing.T) {
	require := require.New(t)
	fl, err := allocator.NewFreeList(allocator.Malloc{}, 16, 32, 2)
	require.NoError(err)

	b, err := fl.Allocate(1024)
	require.NoError(err)
	require.Equal(int64(1024), b.Size)
}

func TestFreeListCloseReturnsAllToInner(t *testing.T) {
	require := require.New(t)
	fl, err := allocator.NewFreeList(allocator.Malloc{}, 16, 32, 2)
	require.NoError(err)

	b1, err := fl.Allocate(24)
	require.NoError(err)
	fl.Deallocate(&b1)

	fl.Close()
	require.Equal(0, fl.Len())
}
