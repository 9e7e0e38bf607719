package allocator

import (
	"github.com/gomemoc/memoc/block"
	"github.com/gomemoc/memoc/memutils"
)

// Null returns an empty Block on every request and owns nothing. It is useful as a terminator
// in a Fallback chain when a caller wants the chain to fail gracefully rather than trap.
type Null struct{}

var _ Allocator = Null{}

// Allocate always returns an empty Block. A negative n is still reported as ErrInvalidSize.
func (Null) Allocate(n memutils.Sz) (block.Untyped, error) {
	if n < 0 {
		return block.Untyped{}, invalidSize(n)
	}
	return block.Empty[byte](), nil
}

// Deallocate resets b to empty; Null never produced any memory to reclaim.
func (Null) Deallocate(b *block.Untyped) {
	b.Reset()
}

// Owns always returns false.
func (Null) Owns(block.Untyped) bool {
	return false
}
