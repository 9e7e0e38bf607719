package allocator

import (
	"unsafe"

	"github.com/gomemoc/memoc/block"
	"github.com/gomemoc/memoc/memutils"
)

// mallocHint tags every Block this allocator produces so Owns can distinguish memoc-owned
// memory from a foreign block, the way the teacher's Vulkan allocator tags blocks with a
// per-type heap index. The value is arbitrary but constant across all Malloc instances.
const mallocHint int64 = 0x4d414c4c4f43 // "MALLOC" in hex-ish form

// Malloc wraps the host heap. It holds no state of its own: every instance behaves identically,
// and Owns is a hint check rather than a pointer-range check.
type Malloc struct{}

var _ Allocator = Malloc{}

// Allocate requests n bytes from the host heap.
func (Malloc) Allocate(n memutils.Sz) (block.Untyped, error) {
	if b, done, err := AllocateEmptyOK(n); done {
		return b, err
	}

	buf := make([]byte, n)
	return block.New[byte](n, unsafe.Pointer(&buf[0]), mallocHint), nil
}

// Deallocate resets b to empty. The Go runtime's garbage collector reclaims the backing slice
// once nothing else references it; there is no explicit free to perform.
func (Malloc) Deallocate(b *block.Untyped) {
	b.Reset()
}

// Owns reports whether b was tagged by a Malloc instance.
func (Malloc) Owns(b block.Untyped) bool {
	return b.Hint == mallocHint
}
