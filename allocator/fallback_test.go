package allocator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gomemoc/memoc/allocator"
)

func TestFallbackUniversalProperties(t *testing.T) {
	s, err := allocator.NewStack(64)
	require.NoError(t, err)
	fb := allocator.NewFallback(s, allocator.Malloc{})
	universalProperties(t, "fallback", fb)
}

func TestFallbackFallsThroughToSecondary(t *testing.T) {
	require := require.New(t)
	s, err := allocator.NewStack(16)
	require.NoError(err)
	m := allocator.Malloc{}
	fb := allocator.NewFallback(s, m)

	b, err := fb.Allocate(17)
	require.NoError(err)
	require.False(b.IsEmpty())
	require.False(s.Owns(b))
	require.True(m.Owns(b))
	require.True(fb.Owns(b))
}
