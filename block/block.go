// Package block implements the Block abstraction: a description of a contiguous region of
// memory that some allocator is willing to reclaim. A Block never owns memory; ownership is
// tracked by whichever allocator, buffer, or smart pointer holds it.
package block

import (
	"math"
	"unsafe"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// NoHint is the sentinel hint value for a Block whose producing allocator did not tag it.
const NoHint int64 = math.MinInt64

// Untyped is the byte-indexed flavor of Block, used wherever a caller wants to move, compare,
// or fill memory without regard to element type.
type Untyped = Block[byte]

// Block describes size·sizeof(T) bytes starting at Data. It is either fully empty
// (Size == 0 && Data == nil) or fully populated (Size > 0 && Data != nil); the constructors in
// this package normalize any partial pair to the empty state.
type Block[T any] struct {
	Size int64
	Data unsafe.Pointer
	Hint int64
}

// New constructs a Block, normalizing a partial (size, data) pair to empty. hint defaults to
// NoHint when omitted.
func New[T any](size int64, data unsafe.Pointer, hint ...int64) Block[T] {
	h := NoHint
	if len(hint) > 0 {
		h = hint[0]
	}
	if size <= 0 || data == nil {
		return Block[T]{Hint: h}
	}
	return Block[T]{Size: size, Data: data, Hint: h}
}

// Empty returns the empty Block of the given element type.
func Empty[T any]() Block[T] {
	return Block[T]{Hint: NoHint}
}

// IsEmpty reports whether b carries no memory.
func (b Block[T]) IsEmpty() bool {
	return b.Size == 0 && b.Data == nil
}

// ElemSize is the size in bytes of one T.
func (b Block[T]) ElemSize() int64 {
	var zero T
	return int64(unsafe.Sizeof(zero))
}

// ByteSize is the total footprint of the block in bytes.
func (b Block[T]) ByteSize() int64 {
	return b.Size * b.ElemSize()
}

// At returns a pointer to the i'th element. The caller must ensure 0 <= i < b.Size.
func (b Block[T]) At(i int64) *T {
	return (*T)(unsafe.Add(b.Data, uintptr(i)*uintptr(b.ElemSize())))
}

// Reset clears b to the empty state in place, the operation every allocator's Deallocate
// performs on the caller's Block before returning.
func (b *Block[T]) Reset() {
	b.Size = 0
	b.Data = nil
}

// AsUntyped reinterprets b as a byte-indexed view over the same footprint, with no copy.
func AsUntyped[T any](b Block[T]) Untyped {
	if b.IsEmpty() {
		return Untyped{Hint: b.Hint}
	}
	return Untyped{Size: b.ByteSize(), Data: b.Data, Hint: b.Hint}
}

// Reinterpret reinterprets b, typed as T, as a block of U over the same byte footprint. The
// byte footprint must divide evenly by sizeof(U); a short remainder is truncated, mirroring the
// original memoc library's reinterpret_as<U>() (see original_source/include/memoc/blocks.h).
func Reinterpret[T, U any](b Block[T]) Block[U] {
	if b.IsEmpty() {
		return Block[U]{Hint: b.Hint}
	}
	var zu U
	elemU := int64(unsafe.Sizeof(zu))
	if elemU == 0 {
		return Block[U]{Hint: b.Hint}
	}
	return New[U](b.ByteSize()/elemU, b.Data, b.Hint)
}

// Compare reports whether a and b describe equal content. Whatever the element types, both are
// compared over their byte footprints: they are equal only if both footprints are the same
// length and every byte matches.
func Compare[T, U any](a Block[T], b Block[U]) bool {
	if a.IsEmpty() && b.IsEmpty() {
		return true
	}
	if a.IsEmpty() != b.IsEmpty() {
		return false
	}

	au, bu := AsUntyped(a), AsUntyped(b)
	if au.Size != bu.Size {
		return false
	}

	n := au.Size
	for i := int64(0); i < n; i++ {
		if *au.At(i) != *bu.At(i) {
			return false
		}
	}
	return true
}

// Copy copies up to n elements of src into dst, bounded by both blocks' byte footprints, and
// returns how much it copied. It is a no-op, returning 0, if either block is empty or n <= 0.
// The bytes are always copied directly. When T and U have the same size the result counts
// elements; otherwise it counts bytes.
func Copy[T, U any](src Block[T], dst Block[U], n int64) int64 {
	if src.IsEmpty() || dst.IsEmpty() || n <= 0 {
		return 0
	}

	su, du := AsUntyped(src), AsUntyped(dst)
	byteLimit := n * src.ElemSize()
	if l := su.Size; byteLimit > l {
		byteLimit = l
	}
	if l := du.Size; byteLimit > l {
		byteLimit = l
	}
	if byteLimit <= 0 {
		return 0
	}

	srcSlice := unsafe.Slice((*byte)(su.Data), su.Size)
	dstSlice := unsafe.Slice((*byte)(du.Data), du.Size)
	copy(dstSlice[:byteLimit], srcSlice[:byteLimit])

	elemSize := src.ElemSize()
	if elemSize == dst.ElemSize() {
		return byteLimit / elemSize
	}
	return byteLimit
}

// Fill writes min(n, dst.Size) copies of value into dst and returns the number of copies
// written.
func Fill[T any](dst Block[T], value T, n int64) int64 {
	if dst.IsEmpty() || n <= 0 {
		return 0
	}
	limit := n
	if dst.Size < limit {
		limit = dst.Size
	}
	for i := int64(0); i < limit; i++ {
		*dst.At(i) = value
	}
	return limit
}

// FillUntyped writes as many full copies of value as fit within min(n, dst.Size) bytes,
// returning the number of full copies written. Any trailing partial slot is left untouched, per
// spec §4.2.
func FillUntyped[V any](dst Untyped, value V, n int64) int64 {
	if dst.IsEmpty() || n <= 0 {
		return 0
	}
	elemSize := int64(unsafe.Sizeof(value))
	if elemSize == 0 {
		return 0
	}

	limitBytes := n
	if dst.Size < limitBytes {
		limitBytes = dst.Size
	}
	count := limitBytes / elemSize
	for i := int64(0); i < count; i++ {
		*(*V)(unsafe.Add(dst.Data, uintptr(i)*uintptr(elemSize))) = value
	}
	return count
}

// WriteJSON emits a diagnostic summary of b to an active JSON object, grounded on the teacher's
// BlockMetadataBase.BlockJsonData.
func (b Block[T]) WriteJSON(w jwriter.ObjectState) {
	w.Name("size").Int(int(b.Size))
	w.Name("byteSize").Int(int(b.ByteSize()))
	w.Name("empty").Bool(b.IsEmpty())
	if b.Hint != NoHint {
		w.Name("hint").Int(int(b.Hint))
	}
}
