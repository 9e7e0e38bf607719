package allocator

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"

	"github.com/gomemoc/memoc/block"
	"github.com/gomemoc/memoc/memutils"
)

// stackHint tags every block a Stack produces. Owns does not consult it: the tag is the same for
// every Stack, so ownership is decided by a pointer-range check against this Stack's buffer.
const stackHint int64 = 0x5354_4143_4b00

// Stack is a bump (arena) allocator over a fixed-capacity byte buffer with a single bump
// pointer. Deallocation is LIFO-only: freeing anything but the most recently allocated block is
// a silent no-op, per spec §4.4.2.
//
// Unlike the teacher's LinearBlockMetadata, which aligns only to 2 bytes, Stack aligns each
// allocation up to a fixed 8 bytes, the widest common scalar alignment. The alignment is not
// derived from the element type and cannot be changed by the caller.
type Stack struct {
	buf       []byte
	bump      int64
	alignment int64
	log       *slog.Logger
}

var _ Allocator = (*Stack)(nil)
var _ memutils.Validatable = (*Stack)(nil)

// Validate checks the bump pointer is still within bounds. DebugValidate panics if this ever
// fails, which would mean a bug in Allocate/Deallocate's bookkeeping rather than caller misuse.
func (s *Stack) Validate() error {
	if s.bump < 0 || s.bump > int64(len(s.buf)) {
		return errors.Newf("stack allocator bump pointer %d out of range [0, %d]", s.bump, len(s.buf))
	}
	return nil
}

// NewStack creates a Stack with the given byte capacity, which must be even and greater than 1.
func NewStack(capacity memutils.Sz, opts ...Option) (*Stack, error) {
	if err := memutils.CheckEven(capacity, "capacity"); err != nil {
		return nil, err
	}
	s := &Stack{buf: make([]byte, capacity), alignment: 8}
	applyOptions(&s.log, opts)
	return s, nil
}

// Capacity returns the total number of bytes the Stack was constructed with.
func (s *Stack) Capacity() memutils.Sz {
	return int64(len(s.buf))
}

// Remaining returns the number of unused bytes left in the backing buffer.
func (s *Stack) Remaining() memutils.Sz {
	return int64(len(s.buf)) - s.bump
}

func (s *Stack) base() unsafe.Pointer {
	return unsafe.Pointer(&s.buf[0])
}

// Allocate bumps the stack pointer by n aligned up to s.alignment, returning a Block of the
// exact requested size (the alignment slack is implicit, never exposed to the caller).
func (s *Stack) Allocate(n memutils.Sz) (block.Untyped, error) {
	if b, done, err := AllocateEmptyOK(n); done {
		return b, err
	}
	memutils.DebugCheckPow2(s.alignment, "alignment")
	memutils.DebugValidate(s)

	aligned := memutils.AlignUp(n, s.alignment)
	if aligned > s.Remaining() {
		s.log.Debug("stack allocator out of memory", "requested", n, "remaining", s.Remaining())
		return block.Untyped{}, outOfMemory(n, s.Remaining())
	}

	data := unsafe.Add(s.base(), uintptr(s.bump))
	s.bump += aligned
	return block.New[byte](n, data, stackHint), nil
}

// Deallocate retreats the bump pointer iff b is the most recently allocated block (LIFO
// discipline). Any other deallocation is a silent no-op.
func (s *Stack) Deallocate(b *block.Untyped) {
	if b.IsEmpty() {
		return
	}
	memutils.DebugValidate(s)

	aligned := memutils.AlignUp(b.Size, s.alignment)
	expected := unsafe.Add(s.base(), uintptr(s.bump-aligned))
	if b.Data == expected {
		s.bump -= aligned
	}
	b.Reset()
}

// Owns reports whether b's address range falls within this Stack's backing buffer.
func (s *Stack) Owns(b block.Untyped) bool {
	if b.IsEmpty() {
		return false
	}
	start := uintptr(s.base())
	end := start + uintptr(len(s.buf))
	p := uintptr(b.Data)
	return p >= start && p < end
}

// MultiStack holds several independent Stack buffers and services each allocation from the
// first buffer with room, a simple thread- or context-local partitioning scheme (spec §4.4.2).
type MultiStack struct {
	stacks []*Stack
}

var _ Allocator = (*MultiStack)(nil)

// NewMultiStack creates count independent Stack buffers, each sized perStackCapacity bytes.
func NewMultiStack(count int, perStackCapacity memutils.Sz, opts ...Option) (*MultiStack, error) {
	if count <= 0 {
		return nil, invalidSize(int64(count))
	}
	ms := &MultiStack{stacks: make([]*Stack, count)}
	for i := range ms.stacks {
		s, err := NewStack(perStackCapacity, opts...)
		if err != nil {
			return nil, err
		}
		ms.stacks[i] = s
	}
	return ms, nil
}

// Allocate tries each backing Stack in order, returning the first successful allocation.
func (ms *MultiStack) Allocate(n memutils.Sz) (block.Untyped, error) {
	if b, done, err := AllocateEmptyOK(n); done {
		return b, err
	}

	var lastErr error
	for _, s := range ms.stacks {
		b, err := s.Allocate(n)
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return block.Untyped{}, lastErr
}

// Deallocate routes b to whichever backing Stack owns it.
func (ms *MultiStack) Deallocate(b *block.Untyped) {
	for _, s := range ms.stacks {
		if s.Owns(*b) {
			s.Deallocate(b)
			return
		}
	}
	b.Reset()
}

// Owns reports whether any backing Stack owns b.
func (ms *MultiStack) Owns(b block.Untyped) bool {
	for _, s := range ms.stacks {
		if s.Owns(b) {
			return true
		}
	}
	return false
}
