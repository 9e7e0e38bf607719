// Package sysalloc bridges any allocator.Allocator into the minimal allocate/free pair idiom
// that container types built over a pluggable backing store expect, the same bridge role the
// teacher's memory/allocator mapping hysteresis plays between a device allocator and the raw
// pointers its mapped regions hand out.
package sysalloc

import (
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/gomemoc/memoc/allocator"
	"github.com/gomemoc/memoc/block"
)

// Adapter presents A as a raw-pointer allocate/free pair for elements of type T. It carries no
// state beyond the wrapped allocator.
type Adapter[T any] struct {
	A allocator.Allocator
}

// NewAdapter wraps a as an Adapter for T.
func NewAdapter[T any](a allocator.Allocator) Adapter[T] {
	return Adapter[T]{A: a}
}

// Alloc returns a raw pointer to count*sizeof(T) bytes, or panics if the wrapped allocator
// reports a failure — the panic-on-failure contract the host allocator protocol this bridges
// into expects, since it has no room in its signature for an error return.
func (s Adapter[T]) Alloc(count int) unsafe.Pointer {
	var zero T
	elemSize := int64(unsafe.Sizeof(zero))

	b, err := s.A.Allocate(int64(count) * elemSize)
	if err != nil {
		panic(errors.Wrapf(err, "sysalloc: failed to allocate %d elements", count))
	}
	return b.Data
}

// Free reconstructs a Block describing count elements at p and returns it to the wrapped
// allocator.
func (s Adapter[T]) Free(p unsafe.Pointer, count int) {
	var zero T
	elemSize := int64(unsafe.Sizeof(zero))

	b := block.New[byte](int64(count)*elemSize, p)
	s.A.Deallocate(&b)
}
