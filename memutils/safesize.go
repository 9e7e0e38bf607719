package memutils

import (
	"math"

	cerrors "github.com/cockroachdb/errors"
)

// Sz is the signed 64-bit size type used for every Block, allocator request, and buffer
// length in this module. Signed sizes let negative values signal "invalid request" and let
// subtractions fail loudly in debug builds instead of silently wrapping around.
type Sz = int64

// ToSize maps an unsigned width to Sz, returning an error wrapping ErrUnknown if the value
// cannot be represented without overflowing a signed 64-bit integer.
func ToSize(n uint64) (Sz, error) {
	if n > uint64(math.MaxInt64) {
		return 0, cerrors.Wrapf(ErrUnknown, "size %d overflows a signed 64-bit size", n)
	}
	return Sz(n), nil
}

// AlignUp rounds value up to the next multiple of alignment. alignment must be a power of two.
func AlignUp(value Sz, alignment Sz) Sz {
	return (value + alignment - 1) &^ (alignment - 1)
}

// AlignUpEven rounds value up to the next even number. The Stack allocator does not use it; it
// aligns with AlignUp instead.
func AlignUpEven(value Sz) Sz {
	return (value + 1) &^ 1
}

// Number is the set of integer types CheckPow2 and DebugCheckPow2 accept.
type Number interface {
	~int | ~int64 | ~uint | ~uint64
}

// CheckPow2 returns PowerOfTwoError wrapped with context if number is not a power of two.
func CheckPow2[T Number](number T, name string) error {
	if number <= 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// CheckEven returns NotEvenError wrapped with context if number is not an even, positive value.
func CheckEven(number Sz, name string) error {
	if number <= 1 || number%2 != 0 {
		return cerrors.Wrapf(NotEvenError, "%s is %d", name, number)
	}
	return nil
}
