package pointer

import "github.com/gomemoc/memoc/allocator"

// Weak observes a pointee owned by one or more Shared instances without affecting its lifetime.
// It can be Lock()ed into a Shared only while the pointee is still alive, the Go analogue of
// spec §4.7.3's weak_ptr::lock.
type Weak[T any, A allocator.Allocator] struct {
	ptr   *T
	ctrl  *controlBlock
	alloc A
}

// NewWeak observes sp's pointee, incrementing weak_count.
func NewWeak[T any, A allocator.Allocator](sp *Shared[T, A]) Weak[T, A] {
	if sp.ctrl == nil {
		return Weak[T, A]{}
	}
	sp.ctrl.addWeak()
	return Weak[T, A]{ptr: sp.ptr, ctrl: sp.ctrl, alloc: sp.alloc}
}

// IsNil reports whether wp observes nothing.
func (wp *Weak[T, A]) IsNil() bool {
	return wp.ctrl == nil
}

// Expired reports whether the observed pointee has already been destroyed (use_count == 0).
func (wp *Weak[T, A]) Expired() bool {
	if wp.ctrl == nil {
		return true
	}
	return wp.ctrl.UseCount() == 0
}

// Lock attempts to obtain a Shared over the observed pointee. It returns an empty Shared if the
// pointee has already expired; otherwise it atomically increments use_count and returns a live
// Shared sharing wp's control block.
func (wp *Weak[T, A]) Lock() Shared[T, A] {
	if wp.ctrl == nil {
		return Shared[T, A]{}
	}
	if !wp.ctrl.tryAddUse() {
		return Shared[T, A]{}
	}
	return Shared[T, A]{ptr: wp.ptr, ctrl: wp.ctrl, alloc: wp.alloc}
}

// Reset releases wp's observation, decrementing weak_count. If use_count has already reached 0
// and this is the last weak observer, the control block's own storage returns to the allocator.
func (wp *Weak[T, A]) Reset() {
	if wp.ctrl == nil {
		return
	}

	if wp.ctrl.releaseWeak() == 0 && wp.ctrl.UseCount() == 0 {
		wp.ctrl.freeSelfFn()
	}
	*wp = Weak[T, A]{}
}

// Clone increments weak_count and returns a Weak sharing the same control block, the analog of
// weak_ptr's copy constructor.
func (wp *Weak[T, A]) Clone() Weak[T, A] {
	if wp.ctrl == nil {
		return Weak[T, A]{}
	}
	wp.ctrl.addWeak()
	return *wp
}
