package allocator

import (
	"unsafe"

	"github.com/google/uuid"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"golang.org/x/exp/slog"

	"github.com/gomemoc/memoc/block"
	"github.com/gomemoc/memoc/memutils"
)

// Stats wraps Inner and records the last Capacity allocate/deallocate events in a ring,
// generalizing the teacher's memutils.DetailedStatistics block-level sums into a per-event
// history (spec §4.5.3). SessionID distinguishes this recorder's diagnostic dumps from any
// other Stats-wrapped allocator in the process.
type Stats struct {
	Inner    Allocator
	Capacity int

	SessionID uuid.UUID

	ring           []memutils.Record
	head, tail     int
	length         int
	totalAllocated int64
	events         int64
	detailed       memutils.DetailedStatistics
	log            *slog.Logger
}

var _ Allocator = (*Stats)(nil)

// NewStats wraps inner with a ring buffer holding up to capacity events.
func NewStats(inner Allocator, capacity int, opts ...Option) (*Stats, error) {
	if capacity <= 0 {
		return nil, invalidSize(int64(capacity))
	}
	s := &Stats{
		Inner:     inner,
		Capacity:  capacity,
		SessionID: uuid.New(),
		ring:      make([]memutils.Record, capacity),
	}
	s.detailed.Clear()
	applyOptions(&s.log, opts)
	return s, nil
}

func (s *Stats) record(requestAddr uintptr, delta int64) {
	rec := memutils.Record{
		Request:   requestAddr,
		Delta:     delta,
		Timestamp: s.events,
	}
	s.events++
	rec.Self = uintptr(unsafe.Pointer(&s.ring[s.tail]))

	s.ring[s.tail] = rec
	s.tail = (s.tail + 1) % s.Capacity

	if s.length < s.Capacity {
		s.length++
	} else {
		s.head = (s.head + 1) % s.Capacity
	}

	if delta > 0 {
		s.totalAllocated += delta
	} else {
		s.totalAllocated += -delta
	}
}

// Allocate delegates to Inner and, on success, records a +size+memutils.RecordSize event.
func (s *Stats) Allocate(n memutils.Sz) (block.Untyped, error) {
	b, err := s.Inner.Allocate(n)
	if err != nil {
		return b, err
	}
	if !b.IsEmpty() {
		s.record(uintptr(b.Data), n+memutils.RecordSize)
		s.detailed.AddAllocation(int(n))
		s.log.Debug("stats: allocation recorded", "size", n, "ringLength", s.length)
	}
	return b, nil
}

// Deallocate records a -size+memutils.RecordSize event, then delegates to Inner.
func (s *Stats) Deallocate(b *block.Untyped) {
	if !b.IsEmpty() {
		s.record(uintptr(b.Data), -b.Size+memutils.RecordSize)
		s.detailed.AddUnusedRange(int(b.Size))
	}
	s.Inner.Deallocate(b)
}

// Owns delegates to Inner.
func (s *Stats) Owns(b block.Untyped) bool {
	return s.Inner.Owns(b)
}

// Head returns the oldest recorded event still present in the ring.
func (s *Stats) Head() (memutils.Record, bool) {
	if s.length == 0 {
		return memutils.Record{}, false
	}
	return s.ring[s.head], true
}

// Len reports how many events currently live in the ring.
func (s *Stats) Len() int {
	return s.length
}

// Detailed returns the running lifetime totals (allocation count/bytes, freed-range count/size
// extrema) this Stats instance has accumulated, independent of what the bounded event ring still
// holds. Grounded on the teacher's memutils.DetailedStatistics block-level aggregate.
func (s *Stats) Detailed() memutils.DetailedStatistics {
	return s.detailed
}

// TotalAllocated returns the monotonic sum of absolute deltas across every recorded event,
// which keeps growing even after old records are recycled out of the ring (spec §4.5.3 and the
// original memoc stats_allocator's get_total_allocated()).
func (s *Stats) TotalAllocated() int64 {
	return s.totalAllocated
}

// MarshalRing dumps the recorder's session identity and current ring contents into an active
// JSON object, grounded on the teacher's PrintDetailedMapHeader/BlockJsonData diagnostic dumps.
func (s *Stats) MarshalRing(w jwriter.ObjectState) {
	w.Name("sessionId").String(s.SessionID.String())
	w.Name("ringLength").Int(s.length)
	w.Name("capacity").Int(s.Capacity)
	w.Name("totalAllocated").Int(int(s.totalAllocated))
	w.Name("allocationCount").Int(s.detailed.AllocationCount)
	w.Name("unusedRangeCount").Int(s.detailed.UnusedRangeCount)
}
