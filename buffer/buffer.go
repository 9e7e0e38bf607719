// Package buffer implements Buffer, an owning variable-size container over an allocator, per
// spec §4.8. The original's Stack in-place-capacity compile-time parameter becomes an ordinary
// constructor argument here (see SPEC_FULL.md's note on Go's lack of const-generics) — the small
// buffer still lives inline in the Buffer struct, sized at construction time rather than baked
// into the type.
package buffer

import (
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/gomemoc/memoc/allocator"
	"github.com/gomemoc/memoc/block"
	"github.com/gomemoc/memoc/memutils"
)

// destroyable is implemented by element types that need explicit teardown before their slot is
// overwritten or the backing Block returns to the allocator (spec's "if T is non-fundamental,
// each slot's destructor runs").
type destroyable interface {
	Destroy()
}

// Buffer owns n elements of T, either in its own inline storage (when n fits within the small
// buffer reserved at construction) or in a Block allocated from A.
type Buffer[T any, A allocator.Allocator] struct {
	small []T // inline storage, length == cap, reused across constructs while it fits
	blk   block.Block[T]
	n     int64
	alloc A
}

// New returns an empty Buffer whose inline small-buffer capacity is smallCap elements; a
// smallCap of 0 disables small-buffer optimization entirely (every non-empty construct goes
// through alloc).
func New[T any, A allocator.Allocator](alloc A, smallCap int64) Buffer[T, A] {
	var small []T
	if smallCap > 0 {
		small = make([]T, smallCap)
	}
	return Buffer[T, A]{small: small, alloc: alloc}
}

// TryConstruct builds a Buffer with smallCap elements of inline capacity, holding n elements
// optionally copied from src (truncated or zero-padded to n), wrapping any failure as a
// memutils.BufferError per spec §4.8/§7.3. Requests with n <= smallCap never touch alloc.
func TryConstruct[T any, A allocator.Allocator](alloc A, smallCap, n int64, src []T) (Buffer[T, A], error) {
	if n < 0 {
		return Buffer[T, A]{}, errors.Wrapf(memutils.ErrBufferInvalidSize, "requested size %d is negative", n)
	}

	b := New[T](alloc, smallCap)
	if err := b.construct(n, src); err != nil {
		return Buffer[T, A]{}, err
	}
	return b, nil
}

// construct allocates (or reuses inline storage for) n elements and copies up to len(src) of
// them in, leaving any remaining slots zero-valued.
func (b *Buffer[T, A]) construct(n int64, src []T) error {
	if n < 0 {
		return errors.Wrap(memutils.ErrBufferInvalidSize, "negative size")
	}

	b.destructElements()
	b.releaseBacking()

	if n == 0 {
		b.n = 0
		return nil
	}

	if int64(len(b.small)) >= n {
		b.blk = block.Block[T]{}
	} else {
		raw, err := b.alloc.Allocate(n * int64(elemSize[T]()))
		if err != nil {
			return errors.Wrap(memutils.ErrAllocatorFailure, err.Error())
		}
		b.blk = block.New[T](n, raw.Data, raw.Hint)
	}
	b.n = n

	copyLen := int64(len(src))
	if copyLen > n {
		copyLen = n
	}
	for i := int64(0); i < copyLen; i++ {
		b.set(i, src[i])
	}
	// Slots past src are default-constructed rather than left holding whatever the backing
	// happened to contain: a fresh Malloc allocation is zeroed by make([]byte, n), but a
	// Stack's bump-allocated storage reuses a previously freed (and not re-zeroed) range
	// verbatim.
	var zero T
	for i := copyLen; i < n; i++ {
		b.set(i, zero)
	}
	return nil
}

// Copy returns an independent Buffer holding the same n elements as b, always backed by a fresh
// allocation (or the destination's own inline storage) — it never aliases b's backing.
func (b *Buffer[T, A]) Copy() (Buffer[T, A], error) {
	out := New[T](b.alloc, int64(len(b.small)))
	if err := out.construct(b.n, b.Elements()); err != nil {
		return Buffer[T, A]{}, err
	}
	return out, nil
}

// Move transfers src's backing into a fresh Buffer, leaving src empty. If src's content lives in
// its own inline storage, the "move" is actually an element-wise copy, because inline storage
// cannot be re-pointed (spec §4.8).
func Move[T any, A allocator.Allocator](src *Buffer[T, A]) Buffer[T, A] {
	if src.usingSmall() {
		out := New[T](src.alloc, int64(len(src.small)))
		out.n = src.n
		copy(out.small, src.small[:src.n])
		src.n = 0
		return out
	}

	out := Buffer[T, A]{blk: src.blk, n: src.n, alloc: src.alloc, small: src.small}
	src.blk = block.Block[T]{}
	src.n = 0
	return out
}

// Destruct runs T's Destroy hook (if any) over every live element, then returns any
// allocator-owned backing to A. The Buffer is empty afterward.
func (b *Buffer[T, A]) Destruct() {
	b.destructElements()
	b.releaseBacking()
	b.n = 0
}

func (b *Buffer[T, A]) destructElements() {
	for i := int64(0); i < b.n; i++ {
		v := b.get(i)
		if d, ok := any(v).(destroyable); ok {
			d.Destroy()
		}
	}
}

func (b *Buffer[T, A]) releaseBacking() {
	if b.blk.IsEmpty() {
		return
	}
	untyped := block.AsUntyped(b.blk)
	b.alloc.Deallocate(&untyped)
	b.blk = block.Block[T]{}
}

// Empty reports whether b currently holds zero elements.
func (b *Buffer[T, A]) Empty() bool {
	return b.n == 0
}

// Size returns the number of live elements.
func (b *Buffer[T, A]) Size() int64 {
	return b.n
}

// Data returns a pointer to the first element, or nil if b is empty.
func (b *Buffer[T, A]) Data() *T {
	if b.n == 0 {
		return nil
	}
	if b.usingSmall() {
		return &b.small[0]
	}
	return b.blk.At(0)
}

// Block returns the typed Block view of b's current backing. It is empty when b uses inline
// storage or holds no elements.
func (b *Buffer[T, A]) Block() block.Block[T] {
	return b.blk
}

// Elements returns a slice view over b's live elements, valid only until the next mutating call.
func (b *Buffer[T, A]) Elements() []T {
	if b.n == 0 {
		return nil
	}
	if b.usingSmall() {
		return b.small[:b.n]
	}
	return unsafe.Slice(b.blk.At(0), b.n)
}

func (b *Buffer[T, A]) usingSmall() bool {
	return b.blk.IsEmpty() && b.n > 0 && int64(len(b.small)) >= b.n
}

func (b *Buffer[T, A]) get(i int64) T {
	if b.usingSmall() {
		return b.small[i]
	}
	return *b.blk.At(i)
}

func (b *Buffer[T, A]) set(i int64, v T) {
	if b.usingSmall() {
		b.small[i] = v
		return
	}
	*b.blk.At(i) = v
}

func elemSize[T any]() int64 {
	var zero T
	return int64(unsafe.Sizeof(zero))
}
