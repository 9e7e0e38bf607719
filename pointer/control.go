// Package pointer implements Unique, Shared, and Weak smart pointers parameterized by an
// allocator.Allocator, per spec §4.7. Go has no destructors, so "drop" in the spec's sense is an
// explicit Reset call here rather than a non-deterministic GC finalizer — the allocator
// interactions the spec describes must happen at a known point, not whenever the garbage
// collector gets around to it.
package pointer

import (
	"sync/atomic"
	"unsafe"

	"github.com/gomemoc/memoc/allocator"
	"github.com/gomemoc/memoc/block"
)

// Destroyable is implemented by pointee types that need explicit teardown before their storage
// is returned to the allocator (spec's "run T's destructor").
type Destroyable interface {
	Destroy()
}

// counts is the pure-bookkeeping half of a control block: two signed counters and nothing
// pointer-shaped, so it is safe to place inside memory sourced from an arbitrary Allocator
// (spec §3.4) — unlike a Go closure, a bare pair of int64s carries no hidden pointers the
// garbage collector would need to trace through that memory to keep alive.
type counts struct {
	useCount  int64
	weakCount int64
}

// controlBlock is the rendezvous shared by every Shared and Weak pointing at the same pointee:
// neither owns the other, and the control block itself is destroyed only once both counts
// reach zero (spec §9 "Cyclic structures"). Its numeric state lives in an Allocator-sourced
// Block (via countsBlk); the two deleters are ordinary Go closures kept in normal
// garbage-collected memory, since Go's type-erased closures cannot be soundly placed inside
// memory a non-GC-aware allocator owns.
type controlBlock struct {
	c         *counts
	countsBlk block.Untyped

	// destroyPointeeFn runs exactly once, when useCount reaches 0: it destroys the pointee and
	// returns its Block to the allocator that produced it.
	destroyPointeeFn func()
	// freeSelfFn runs exactly once, when both useCount and weakCount have reached 0: it returns
	// countsBlk to the allocator.
	freeSelfFn func()
}

// newControlBlock allocates countsBlk from alloc and returns a ready control block with
// useCount == 1. The caller must set destroyPointeeFn and freeSelfFn before releaseUse/
// releaseWeak can reach 0.
func newControlBlock[A allocator.Allocator](alloc A) (*controlBlock, error) {
	raw, err := alloc.Allocate(int64(unsafe.Sizeof(counts{})))
	if err != nil {
		return nil, err
	}

	c := (*counts)(raw.Data)
	*c = counts{useCount: 1, weakCount: 0}

	return &controlBlock{c: c, countsBlk: raw}, nil
}

func (cb *controlBlock) addUse() int64 {
	return atomic.AddInt64(&cb.c.useCount, 1)
}

// tryAddUse increments useCount only if it is currently > 0, returning false if the pointee has
// already expired. It is the compare-and-swap Weak.Lock needs so a racing release() cannot
// resurrect a use_count that has already reached 0.
func (cb *controlBlock) tryAddUse() bool {
	for {
		cur := atomic.LoadInt64(&cb.c.useCount)
		if cur == 0 {
			return false
		}
		if atomic.CompareAndSwapInt64(&cb.c.useCount, cur, cur+1) {
			return true
		}
	}
}

func (cb *controlBlock) releaseUse() int64 {
	return atomic.AddInt64(&cb.c.useCount, -1)
}

func (cb *controlBlock) addWeak() int64 {
	return atomic.AddInt64(&cb.c.weakCount, 1)
}

func (cb *controlBlock) releaseWeak() int64 {
	return atomic.AddInt64(&cb.c.weakCount, -1)
}

func (cb *controlBlock) UseCount() int64 {
	return atomic.LoadInt64(&cb.c.useCount)
}

func (cb *controlBlock) WeakCount() int64 {
	return atomic.LoadInt64(&cb.c.weakCount)
}

// destroyPointee runs ptr's Destroy hook, if any. It is a no-op for plain data types.
func destroyPointee[T any](ptr *T) {
	if d, ok := any(ptr).(Destroyable); ok {
		d.Destroy()
	}
}
