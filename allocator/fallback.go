package allocator

import (
	"golang.org/x/exp/slog"

	"github.com/gomemoc/memoc/block"
	"github.com/gomemoc/memoc/memutils"
)

// Fallback delegates allocation to Primary and retries against Secondary on any error. On
// deallocation it asks Primary first, then Secondary, which owns the block; a block owned by
// neither is dropped silently (spec §4.5.1 — this is explicit policy, not a bug: callers are
// expected to route foreign blocks through an owning-aware composite like this one).
type Fallback struct {
	Primary   Allocator
	Secondary Allocator
	log       *slog.Logger
}

var _ Allocator = (*Fallback)(nil)

// NewFallback composes primary and secondary into a single Allocator.
func NewFallback(primary, secondary Allocator, opts ...Option) *Fallback {
	f := &Fallback{Primary: primary, Secondary: secondary}
	applyOptions(&f.log, opts)
	return f
}

// Allocate tries Primary first; if it errors, Secondary is tried instead.
func (f *Fallback) Allocate(n memutils.Sz) (block.Untyped, error) {
	b, err := f.Primary.Allocate(n)
	if err == nil {
		return b, nil
	}

	f.log.Debug("fallback: primary allocation failed, retrying secondary", "size", n, "err", err)
	return f.Secondary.Allocate(n)
}

// Deallocate routes b to whichever of Primary/Secondary owns it.
func (f *Fallback) Deallocate(b *block.Untyped) {
	if f.Primary.Owns(*b) {
		f.Primary.Deallocate(b)
		return
	}
	if f.Secondary.Owns(*b) {
		f.Secondary.Deallocate(b)
		return
	}
	f.log.Warn("fallback: deallocate called on a block owned by neither allocator")
	b.Reset()
}

// Owns is the disjunction of Primary.Owns and Secondary.Owns.
func (f *Fallback) Owns(b block.Untyped) bool {
	return f.Primary.Owns(b) || f.Secondary.Owns(b)
}
