package pointer

import (
	"github.com/gomemoc/memoc/allocator"
	"github.com/gomemoc/memoc/block"
)

// Unique is an exclusively-owned pointer to a T allocated from A. It is move-only: copying a
// Unique by value and using both copies is a programmer error (Go cannot forbid the copy at
// compile time the way C++ can delete its copy constructor, so Unique instead documents the
// requirement the way sync.Mutex documents "must not be copied after first use").
type Unique[T any, A allocator.Allocator] struct {
	ptr   *T
	blk   block.Block[T]
	alloc A
}

// MakeUnique allocates sizeof(T) from alloc, constructs value in place, and returns a Unique
// owning it.
func MakeUnique[T any, A allocator.Allocator](alloc A, value T) (Unique[T, A], error) {
	ptr, blk, err := placeOne[T](alloc)
	if err != nil {
		return Unique[T, A]{}, err
	}
	*ptr = value
	return Unique[T, A]{ptr: ptr, blk: blk, alloc: alloc}, nil
}

// Get returns the underlying pointer, or nil if u is empty.
func (u *Unique[T, A]) Get() *T {
	return u.ptr
}

// IsNil reports whether u currently owns nothing.
func (u *Unique[T, A]) IsNil() bool {
	return u.ptr == nil
}

// Reset destroys the current pointee (if any) and returns its Block to A, leaving u empty.
func (u *Unique[T, A]) Reset() {
	if u.ptr == nil {
		return
	}
	destroyPointee(u.ptr)
	release(u.alloc, &u.blk)
	u.ptr = nil
}

// ResetWith destroys the current pointee (if any) and replaces it with a freshly constructed
// value, reusing the same allocator.
func (u *Unique[T, A]) ResetWith(value T) error {
	u.Reset()
	ptr, blk, err := placeOne[T](u.alloc)
	if err != nil {
		return err
	}
	*ptr = value
	u.ptr = ptr
	u.blk = blk
	return nil
}

// Release transfers ownership of the pointee out of u, leaving u empty without running any
// destructor or returning the Block to A. The caller becomes responsible for both.
func (u *Unique[T, A]) Release() (*T, block.Block[T]) {
	ptr, blk := u.ptr, u.blk
	u.ptr = nil
	u.blk = block.Block[T]{}
	return ptr, blk
}

// MoveFrom transfers ownership from src into u, leaving src empty. Any pointee u previously
// owned is destroyed first.
func (u *Unique[T, A]) MoveFrom(src *Unique[T, A]) {
	if u.ptr != nil {
		u.Reset()
	}
	u.ptr, u.blk, u.alloc = src.ptr, src.blk, src.alloc
	src.ptr = nil
	src.blk = block.Block[T]{}
}
