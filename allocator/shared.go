package allocator

import (
	"github.com/gomemoc/memoc/block"
	"github.com/gomemoc/memoc/memutils"
)

// sharedState holds the process-wide backing allocator instance for one (Inner, Id) pairing.
// Go has no partial specialization of package-level vars by type, so the registry is keyed at
// runtime by a sharedKey built from a caller-supplied inner-type tag and the Id value, and every
// Shared value only ever touches the single sharedState its key maps to.
type sharedState struct {
	inner Allocator
}

var sharedRegistry = map[sharedKey]*sharedState{}

type sharedKey struct {
	innerType any
	id        any
}

// Shared is a single allocator type with process-wide state: two Shared values refer to the
// same backing allocator iff they were created with equal (innerTypeTag, id) pairs (spec
// §4.5.4). The Inner allocator is built by a factory on first use of a key, since Go generics
// cannot parameterize a type by another generic type's identity alone; id distinguishes
// independent instances under the same tag, e.g. NewShared("stack", 0, f) and
// NewShared("stack", 1, f) are distinct bumps.
//
// This mirrors the teacher's process-wide Vulkan device budget singleton (memory/allocator's
// CurrentBudgetData), generalized to an arbitrary wrapped Allocator rather than one fixed struct.
type Shared[Id comparable] struct {
	key sharedKey
}

// NewShared looks up (or lazily creates, via newInner) the process-wide instance keyed by
// (innerTypeTag, id). innerTypeTag should be a stable value identifying the Inner allocator type
// (e.g. a string or an Id const), since Go cannot derive a map key from a generic type parameter
// directly.
func NewShared[Id comparable](innerTypeTag any, id Id, newInner func() Allocator) *Shared[Id] {
	key := sharedKey{innerType: innerTypeTag, id: id}
	if _, ok := sharedRegistry[key]; !ok {
		sharedRegistry[key] = &sharedState{inner: newInner()}
	}
	return &Shared[Id]{key: key}
}

func (s *Shared[Id]) state() *sharedState {
	return sharedRegistry[s.key]
}

var _ Allocator = (*Shared[int])(nil)

// Allocate delegates to the process-wide backing instance. Concurrent calls from multiple
// goroutines are a documented precondition violation (spec §5): Shared does not synchronize.
func (s *Shared[Id]) Allocate(n memutils.Sz) (block.Untyped, error) {
	return s.state().inner.Allocate(n)
}

// Deallocate delegates to the process-wide backing instance.
func (s *Shared[Id]) Deallocate(b *block.Untyped) {
	s.state().inner.Deallocate(b)
}

// Owns delegates to the process-wide backing instance.
func (s *Shared[Id]) Owns(b block.Untyped) bool {
	return s.state().inner.Owns(b)
}
