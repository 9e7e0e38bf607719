// Package allocator provides the composable allocator building blocks: a single contract every
// allocator satisfies, a handful of leaf allocators, and composing allocators that wrap one or
// more inner allocators to add fallback, caching, statistics, or shared-state behavior.
package allocator

import (
	"github.com/cockroachdb/errors"

	"github.com/gomemoc/memoc/block"
	"github.com/gomemoc/memoc/memutils"
)

// Allocator is the contract every allocator in this module satisfies. Implementations are
// single-thread-per-instance unless documented otherwise (Shared is the one exception).
type Allocator interface {
	// Allocate requests n bytes. n == 0 always succeeds with an empty Block. n < 0 always
	// fails with memutils.ErrInvalidSize. A successful result of n > 0 has Size == n and a
	// non-nil Data.
	Allocate(n memutils.Sz) (block.Untyped, error)
	// Deallocate returns b, which must have been produced by this allocator (or be empty), and
	// resets b to empty. Freeing a block this allocator does not own is undefined behavior.
	Deallocate(b *block.Untyped)
	// Owns reports whether this allocator can correctly deallocate b. It must not mutate
	// allocator state.
	Owns(b block.Untyped) bool
}

// invalidSize returns the standard error for a negative allocation request or an invalid size
// parameter passed to a constructor.
func invalidSize(n memutils.Sz) error {
	return errors.Wrapf(memutils.ErrInvalidSize, "invalid size %d", n)
}

// outOfMemory returns the standard error for a request that exceeds an allocator's remaining
// capacity.
func outOfMemory(requested, remaining memutils.Sz) error {
	return errors.Wrapf(memutils.ErrOutOfMemory, "requested %d bytes but only %d remain", requested, remaining)
}

// AllocateEmptyOK validates the universal n==0/n<0 cases (spec §8.1 properties 1-2), returning
// (block.Empty[byte](), true, nil) when n == 0, (block.Untyped{}, true, err) when n < 0, and
// (_, false, nil) when the caller must perform the real allocation for n > 0.
func AllocateEmptyOK(n memutils.Sz) (block.Untyped, bool, error) {
	if n == 0 {
		return block.Empty[byte](), true, nil
	}
	if n < 0 {
		return block.Untyped{}, true, invalidSize(n)
	}
	return block.Untyped{}, false, nil
}
