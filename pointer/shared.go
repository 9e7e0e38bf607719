package pointer

import (
	"unsafe"

	"github.com/gomemoc/memoc/allocator"
	"github.com/gomemoc/memoc/block"
)

// Shared is a reference-counted pointer to a T allocated from A. Its control block's use/weak
// counts live in a Block separately allocated from A, per spec §4.7.2; the control block's two
// deleter closures live in ordinary garbage-collected memory.
//
// The deleters are captured once, at the original (non-aliased) construction site, and stored
// on the shared controlBlock rather than re-derived from whichever Shared instance happens to
// be the one that drives a count to zero. That is what makes the aliasing constructor (Alias,
// and the CastXxx helpers built on it) safe: an alias only ever carries a *U view of the
// pointee, never the original Block or allocator, so destruction must be driven by the control
// block, not by the instance.
type Shared[T any, A allocator.Allocator] struct {
	ptr   *T
	ctrl  *controlBlock
	alloc A
}

// MakeShared allocates a pointee and a control block from alloc, constructs value in place, and
// returns a Shared with use_count == 1.
func MakeShared[T any, A allocator.Allocator](alloc A, value T) (Shared[T, A], error) {
	ptr, pointeeBlk, err := placeOne[T](alloc)
	if err != nil {
		return Shared[T, A]{}, err
	}
	*ptr = value

	ctrl, err := newSharedControlBlock(alloc, ptr, pointeeBlk)
	if err != nil {
		untyped := block.AsUntyped(pointeeBlk)
		alloc.Deallocate(&untyped)
		return Shared[T, A]{}, err
	}

	return Shared[T, A]{ptr: ptr, ctrl: ctrl, alloc: alloc}, nil
}

// FromUnique consumes u, creating a fresh control block around its pointee. u is left empty.
func FromUnique[T any, A allocator.Allocator](u *Unique[T, A]) (Shared[T, A], error) {
	if u.ptr == nil {
		return Shared[T, A]{}, nil
	}

	ctrl, err := newSharedControlBlock(u.alloc, u.ptr, u.blk)
	if err != nil {
		return Shared[T, A]{}, err
	}

	sp := Shared[T, A]{ptr: u.ptr, ctrl: ctrl, alloc: u.alloc}
	u.ptr = nil
	u.blk = block.Block[T]{}
	return sp, nil
}

// newSharedControlBlock allocates a controlBlock's counts from alloc and wires its two deleters
// to the pointee ptr/blk captured here: destroyPointeeFn runs once when use_count reaches 0,
// freeSelfFn runs once both counts reach 0. The controlBlock struct itself is ordinary
// garbage-collected Go memory — only its numeric counters live in allocator-owned storage — so
// capturing ptr/pointeeBlk/alloc in these closures never places a hidden pointer where the
// garbage collector cannot see it.
func newSharedControlBlock[T any, A allocator.Allocator](alloc A, ptr *T, pointeeBlk block.Block[T]) (*controlBlock, error) {
	ctrl, err := newControlBlock(alloc)
	if err != nil {
		return nil, err
	}

	ctrl.destroyPointeeFn = func() {
		destroyPointee(ptr)
		b := block.AsUntyped(pointeeBlk)
		alloc.Deallocate(&b)
	}
	ctrl.freeSelfFn = func() {
		alloc.Deallocate(&ctrl.countsBlk)
	}
	return ctrl, nil
}

// IsNil reports whether sp currently points at nothing.
func (sp *Shared[T, A]) IsNil() bool {
	return sp.ptr == nil
}

// Get returns the pointee, or nil if sp is empty.
func (sp *Shared[T, A]) Get() *T {
	return sp.ptr
}

// UseCount returns the number of live owners, or 0 if sp is empty.
func (sp *Shared[T, A]) UseCount() int64 {
	if sp.ctrl == nil {
		return 0
	}
	return sp.ctrl.UseCount()
}

// WeakCount returns the number of live Weak observers, or 0 if sp is empty.
func (sp *Shared[T, A]) WeakCount() int64 {
	if sp.ctrl == nil {
		return 0
	}
	return sp.ctrl.WeakCount()
}

// Clone increments use_count and returns a Shared sharing the same pointee and control block,
// the analog of Shared's copy constructor.
func (sp *Shared[T, A]) Clone() Shared[T, A] {
	if sp.ctrl == nil {
		return Shared[T, A]{}
	}
	sp.ctrl.addUse()
	return *sp
}

// Reset decrements the current pointee's use_count (destroying it at 0), then leaves sp empty.
func (sp *Shared[T, A]) Reset() {
	sp.release()
	*sp = Shared[T, A]{}
}

// ResetWith decrements the current pointee's use_count, then installs a freshly constructed
// value with a brand new control block.
func (sp *Shared[T, A]) ResetWith(value T) error {
	alloc := sp.alloc
	sp.release()

	fresh, err := MakeShared[T, A](alloc, value)
	if err != nil {
		*sp = Shared[T, A]{}
		return err
	}
	*sp = fresh
	return nil
}

// release implements the destruction protocol of spec §4.7.4: on use_count reaching 0, the
// pointee's destructor runs and its Block returns to the allocator; the control block's Block
// is only returned once weak_count has also reached 0, because Weak observers still need it in
// the window where use_count == 0 but weak_count > 0. Because both deleters live on the shared
// controlBlock, this is correct whether sp is the original Shared or an alias of it.
func (sp *Shared[T, A]) release() {
	if sp.ctrl == nil {
		return
	}

	if sp.ctrl.releaseUse() == 0 {
		sp.ctrl.destroyPointeeFn()

		if sp.ctrl.WeakCount() == 0 {
			sp.ctrl.freeSelfFn()
		}
	}
}

// Alias builds a Shared[U, A] that exposes raw while sharing orig's control block and
// destruction fate — spec's aliasing constructor, used to implement pointer casts between
// related types without forging a new control block.
func Alias[T, U any, A allocator.Allocator](orig *Shared[T, A], raw *U) Shared[U, A] {
	if orig.ctrl == nil {
		return Shared[U, A]{}
	}
	orig.ctrl.addUse()
	return Shared[U, A]{ptr: raw, ctrl: orig.ctrl, alloc: orig.alloc}
}

// CastStatic reinterprets sp's pointee as *U, sharing its control block. It is the Go analogue
// of C++'s static_cast between related pointer types.
func CastStatic[T, U any, A allocator.Allocator](sp *Shared[T, A]) Shared[U, A] {
	return Alias(sp, (*U)(unsafe.Pointer(sp.ptr)))
}

// CastReinterpret is identical to CastStatic: Go has no separate reinterpret_cast, since
// unsafe.Pointer conversion already performs an unchecked bit-for-bit reinterpretation.
func CastReinterpret[T, U any, A allocator.Allocator](sp *Shared[T, A]) Shared[U, A] {
	return CastStatic[T, U](sp)
}

// CastConst is identical to CastStatic: Go has no const qualifier on pointer types to strip.
func CastConst[T, U any, A allocator.Allocator](sp *Shared[T, A]) Shared[U, A] {
	return CastStatic[T, U](sp)
}

// CastDynamic performs a checked cast, returning an empty Shared if sp's pointee is not
// addressable as *U. Go has no RTTI over pointer-to-struct the way C++ does for polymorphic
// types, so this only succeeds when U is T itself or sp's pointee is an interface value holding
// a *U.
func CastDynamic[T, U any, A allocator.Allocator](sp *Shared[T, A]) Shared[U, A] {
	if up, ok := any(sp.ptr).(*U); ok {
		return Alias(sp, up)
	}
	if sp.ptr != nil {
		if up, ok := any(*sp.ptr).(*U); ok {
			return Alias(sp, up)
		}
	}
	return Shared[U, A]{}
}
