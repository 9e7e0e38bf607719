package memutils

import "math"

// DetailedStatistics is the lifetime allocation aggregate allocator.Stats accumulates: counts and
// byte totals for allocations served, plus size extrema for both allocations and the ranges freed
// back. Trimmed from the teacher's Statistics/DetailedStatistics pair to the single flat surface
// this module's Stats actually drives (Clear/AddAllocation/AddUnusedRange) — the teacher's
// block-count fields and cross-block AddStatistics/AddDetailedStatistics merges belonged to
// summing many BlockMetadata instances together, which memoc's single-ring Stats has no need for.
type DetailedStatistics struct {
	AllocationCount    int
	AllocationBytes    int
	AllocationSizeMin  int
	AllocationSizeMax  int
	UnusedRangeCount   int
	UnusedRangeSizeMin int
	UnusedRangeSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.AllocationCount = 0
	s.AllocationBytes = 0
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
	s.UnusedRangeCount = 0
	s.UnusedRangeSizeMin = math.MaxInt
	s.UnusedRangeSizeMax = 0
}

func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocationBytes += size

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}

func (s *DetailedStatistics) AddUnusedRange(size int) {
	s.UnusedRangeCount++

	if size < s.UnusedRangeSizeMin {
		s.UnusedRangeSizeMin = size
	}

	if size > s.UnusedRangeSizeMax {
		s.UnusedRangeSizeMax = size
	}
}
