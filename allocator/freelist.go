package allocator

import (
	"golang.org/x/exp/slog"

	"github.com/gomemoc/memoc/block"
	"github.com/gomemoc/memoc/memutils"
)

// FreeList caches blocks whose sizes fall within [Min, Max] up to a bounded list length,
// delegating everything else to Inner. Min and Max must both be even and > 1, Min <= Max;
// MaxListSize must be > 0 (spec §4.5.2).
//
// Cached blocks are tracked in cache, an ordinary Go slice, rather than by threading a
// *freeListNode pointer chain through the cached blocks' own (allocator-owned) storage: a
// Malloc-backed block's storage is a make([]byte, n), and a Stack's is a slice over one — the Go
// runtime marks a []byte backing array pointer-free at allocation time, so a live Go pointer
// stored inside it is invisible to the garbage collector. A node reachable only through such a
// pointer (every node past the list head, in the earlier design) risked its backing array being
// collected out from under it under GC pressure. memoc's pointer package hit the identical hazard
// with controlBlock and resolved it the same way: keep pointer-bearing bookkeeping on the
// ordinary Go heap (here, the cache slice) and restrict allocator-owned memory to plain bytes
// (here, just the optional debug corruption margin).
type FreeList struct {
	Inner       Allocator
	Min, Max    memutils.Sz
	MaxListSize int

	cache []block.Untyped
	log   *slog.Logger
}

var _ Allocator = (*FreeList)(nil)

// NewFreeList validates its parameters and wraps inner.
func NewFreeList(inner Allocator, min, max memutils.Sz, maxListSize int, opts ...Option) (*FreeList, error) {
	if err := memutils.CheckEven(min, "min"); err != nil {
		return nil, err
	}
	if err := memutils.CheckEven(max, "max"); err != nil {
		return nil, err
	}
	if min > max {
		return nil, invalidSize(min)
	}
	if maxListSize <= 0 {
		return nil, invalidSize(int64(maxListSize))
	}

	fl := &FreeList{Inner: inner, Min: min, Max: max, MaxListSize: maxListSize}
	applyOptions(&fl.log, opts)
	return fl, nil
}

// Len reports how many blocks are currently cached in the free list.
func (fl *FreeList) Len() int {
	return len(fl.cache)
}

func (fl *FreeList) inRange(n memutils.Sz) bool {
	return n >= fl.Min && n <= fl.Max
}

// hasMargin reports whether every cached block (sized at least Min bytes) has room for the debug
// corruption-marker margin (memutils.DebugMargin, zero outside debug_mem_utils builds).
func (fl *FreeList) hasMargin() bool {
	return fl.Min >= int64(memutils.DebugMargin)
}

func clamp(n, lo, hi memutils.Sz) memutils.Sz {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// Allocate pops the most recently cached block when n is in range and the list is non-empty.
// Otherwise it delegates to Inner: in-range requests always ask Inner for a Max-sized block so
// the result can be re-cached later; out-of-range requests pass through at their true size.
func (fl *FreeList) Allocate(n memutils.Sz) (block.Untyped, error) {
	if b, done, err := AllocateEmptyOK(n); done {
		return b, err
	}

	if fl.inRange(n) && len(fl.cache) > 0 {
		last := len(fl.cache) - 1
		b := fl.cache[last]
		fl.cache[last] = block.Untyped{}
		fl.cache = fl.cache[:last]

		if fl.hasMargin() && !memutils.ValidateMagicValue(b.Data, 0) {
			panic("freelist: corruption detected in cached block's debug margin")
		}
		fl.log.Debug("freelist: serving cached block", "size", n, "listSize", len(fl.cache))

		b.Size = n
		return b, nil
	}

	reqSize := n
	if fl.inRange(n) {
		reqSize = fl.Max
	}
	b, err := fl.Inner.Allocate(reqSize)
	if err != nil {
		return block.Untyped{}, err
	}
	if fl.inRange(n) {
		b.Size = n
	}
	return b, nil
}

// Deallocate pushes b onto the free list when its size is in range and the list has room.
// Otherwise it reconstructs a full-Max block using the stored hint and delegates to Inner.
func (fl *FreeList) Deallocate(b *block.Untyped) {
	if b.IsEmpty() {
		return
	}

	if fl.inRange(b.Size) && len(fl.cache) < fl.MaxListSize {
		if fl.hasMargin() {
			memutils.WriteMagicValue(b.Data, 0)
		}
		fl.cache = append(fl.cache, block.New[byte](fl.Max, b.Data, b.Hint))
		b.Reset()
		return
	}

	full := block.New[byte](fl.Max, b.Data, b.Hint)
	fl.Inner.Deallocate(&full)
	b.Reset()
}

// Owns reports whether b sits in the cached free list or is owned by Inner.
func (fl *FreeList) Owns(b block.Untyped) bool {
	if b.IsEmpty() {
		return false
	}
	for _, c := range fl.cache {
		if c.Data == b.Data {
			return true
		}
	}
	return fl.Inner.Owns(b)
}

// Close returns every cached block to Inner as a full-Max block with its stored hint,
// guaranteeing cached blocks are returned to the allocator that produced them.
func (fl *FreeList) Close() {
	for _, b := range fl.cache {
		full := b
		fl.Inner.Deallocate(&full)
	}
	fl.cache = nil
}
