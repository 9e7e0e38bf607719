package allocator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gomemoc/memoc/allocator"
)

func TestStackUniversalProperties(t *testing.T) {
	s, err := allocator.NewStack(64)
	require.NoError(t, err)
	universalProperties(t, "stack", s)
}

func TestStackReusesMemoryOnLIFOFree(t *testing.T) {
	require := require.New(t)
	s, err := allocator.NewStack(16)
	require.NoError(err)

	b1, err := s.Allocate(8)
	require.NoError(err)
	p1 := b1.Data

	s.Deallocate(&b1)
	require.True(b1.IsEmpty())

	b2, err := s.Allocate(8)
	require.NoError(err)
	require.Equal(p1, b2.Data)
	require.Equal(int64(8), b2.Size)
}

func TestStackOutOfMemory(t *testing.T) {
	require := require.New(t)
	s, err := allocator.NewStack(16)
	require.NoError(err)

	_, err = s.Allocate(17)
	require.Error(err)
}

func TestStackOutOfOrderFreeIsNoop(t *testing.T) {
	require := require.New(t)
	s, err := allocator.NewStack(32)
	require.NoError(err)

	b1, err := s.Allocate(8)
	require.NoError(err)
	b2, err := s.Allocate(8)
	require.NoError(err)

	// Freeing b1 while b2 (allocated after it) is still live must not retreat the bump
	// pointer, since that would corrupt b2's backing storage.
	s.Deallocate(&b1)
	require.True(b1.IsEmpty())

	b3, err := s.Allocate(8)
	require.NoError(err)
	require.NotEqual(b2.Data, b3.Data)
}

func TestNewMultiStackRejectsNonPositiveCount(t *testing.T) {
	require := require.New(t)
	_, err := allocator.NewMultiStack(0, 8)
	require.Error(err)

	_, err = allocator.NewMultiStack(-1, 8)
	require.Error(err)
}

func TestMultiStackPartitionsAcrossBuffers(t *testing.T) {
	require := require.New(t)
	ms, err := allocator.NewMultiStack(2, 8)
	require.NoError(err)

	b1, err := ms.Allocate(8)
	require.NoError(err)
	b2, err := ms.Allocate(8)
	require.NoError(err)
	require.True(ms.Owns(b1))
	require.True(ms.Owns(b2))

	_, err = ms.Allocate(8)
	require.Error(err)
}
