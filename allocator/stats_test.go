package allocator_test

import (
	"fmt"
	"testing"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"

	"github.com/gomemoc/memoc/allocator"
	"github.com/gomemoc/memoc/memutils"
)

func TestStatsUniversalProperties(t *testing.T) {
	s, err := allocator.NewStats(allocator.Malloc{}, 4)
	require.NoError(t, err)
	universalProperties(t, "stats", s)
}

func TestStatsRingRecyclesOldestEntry(t *testing.T) {
	require := require.New(t)
	s, err := allocator.NewStats(allocator.Malloc{}, 2)
	require.NoError(err)

	b1, err := s.Allocate(1)
	require.NoError(err)
	s.Deallocate(&b1)

	b2, err := s.Allocate(2)
	require.NoError(err)
	s.Deallocate(&b2)

	require.Equal(2, s.Len())

	// Capacity 2 can only hold the most recent 2 of the 4 events recorded so far
	// (alloc1, free1, alloc2, free2); the oldest (alloc1) has already been recycled out,
	// leaving alloc2 as the head.
	head, ok := s.Head()
	require.True(ok)
	require.Equal(int64(2)+memutils.RecordSize, head.Delta)

	b3, err := s.Allocate(3)
	require.NoError(err)
	s.Deallocate(&b3)

	require.Equal(2, s.Len())
	head, ok = s.Head()
	require.True(ok)
	require.Equal(int64(3)+memutils.RecordSize, head.Delta)
}

func TestStatsTotalAllocatedIsMonotonic(t *testing.T) {
	require := require.New(t)
	s, err := allocator.NewStats(allocator.Malloc{}, 1)
	require.NoError(err)

	b1, err := s.Allocate(10)
	require.NoError(err)
	s.Deallocate(&b1)

	first := s.TotalAllocated()
	require.True(first > 0)

	b2, err := s.Allocate(10)
	require.NoError(err)
	s.Deallocate(&b2)

	require.True(s.TotalAllocated() > first)
}

func TestStatsDetailedTracksLifetimeTotals(t *testing.T) {
	require := require.New(t)
	s, err := allocator.NewStats(allocator.Malloc{}, 4)
	require.NoError(err)

	b1, err := s.Allocate(10)
	require.NoError(err)
	b2, err := s.Allocate(20)
	require.NoError(err)
	s.Deallocate(&b1)
	s.Deallocate(&b2)

	d := s.Detailed()
	require.Equal(2, d.AllocationCount)
	require.Equal(30, d.AllocationBytes)
	require.Equal(2, d.UnusedRangeCount)
	require.Equal(10, d.UnusedRangeSizeMin)
	require.Equal(20, d.UnusedRangeSizeMax)
}

func TestStatsMarshalRingEmitsSessionAndTotals(t *testing.T) {
	require := require.New(t)
	s, err := allocator.NewStats(allocator.Malloc{}, 4)
	require.NoError(err)

	b, err := s.Allocate(10)
	require.NoError(err)
	s.Deallocate(&b)

	w := jwriter.NewWriter()
	obj := w.Object()
	s.MarshalRing(obj)
	obj.End()

	out := w.Bytes()
	require.NoError(w.Error())

	want := fmt.Sprintf(
		`{"sessionId":%q,"ringLength":2,"capacity":4,"totalAllocated":%d,"allocationCount":1,"unusedRangeCount":1}`,
		s.SessionID.String(), s.TotalAllocated(),
	)
	require.JSONEq(want, string(out))
}

func TestStatsSessionIDsAreDistinctAndStable(t *testing.T) {
	require := require.New(t)
	s1, err := allocator.NewStats(allocator.Malloc{}, 1)
	require.NoError(err)
	s2, err := allocator.NewStats(allocator.Malloc{}, 1)
	require.NoError(err)

	require.NotEqual(s1.SessionID, s2.SessionID)

	w := jwriter.NewWriter()
	obj := w.Object()
	s1.MarshalRing(obj)
	obj.End()

	out := w.Bytes()
	require.NoError(w.Error())
	require.Contains(string(out), s1.SessionID.String())
	require.NotContains(string(out), s2.SessionID.String())
}
