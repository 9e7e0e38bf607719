package pointer

import (
	"unsafe"

	"github.com/gomemoc/memoc/allocator"
	"github.com/gomemoc/memoc/block"
)

// placeOne requests sizeof(T) bytes from alloc and returns a pointer into that storage along
// with the Block describing it. The caller is responsible for constructing/destroying the value
// at *ptr and for eventually returning blk to alloc.
//
// The returned storage ultimately traces back to a []byte (Malloc's make([]byte, n), or a Stack's
// or FreeList's slice of one), and the Go runtime records a byte slice's backing array as
// pointer-free at allocation time. Writing a T whose fields hold pointers, strings, slices,
// interfaces, or closures through *ptr does not retroactively make the garbage collector scan
// that memory: anything only reachable through such a field can be collected out from under the
// pointee while Unique/Shared still thinks it's alive. MakeUnique/MakeShared do not currently
// restrict T to pointer-free types, so callers placing a pointer-bearing T must keep an ordinary
// Go-managed reference to whatever those fields point to for as long as the Unique/Shared lives.
func placeOne[T any](alloc allocator.Allocator) (*T, block.Block[T], error) {
	var zero T
	elemSize := int64(unsafe.Sizeof(zero))

	raw, err := alloc.Allocate(elemSize)
	if err != nil {
		return nil, block.Block[T]{}, err
	}

	ptr := (*T)(raw.Data)
	blk := block.New[T](1, raw.Data, raw.Hint)
	return ptr, blk, nil
}

// release returns blk to alloc, resetting it to empty.
func release[T any](alloc allocator.Allocator, blk *block.Block[T]) {
	untyped := block.AsUntyped(*blk)
	alloc.Deallocate(&untyped)
	blk.Reset()
}
