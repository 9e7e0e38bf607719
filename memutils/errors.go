package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is returned by CheckPow2 when the number being tested is not a power of two.
var PowerOfTwoError error = errors.New("number must be a power of two")

// NotEvenError is returned when a capacity or size that must be an even number of bytes isn't one.
var NotEvenError error = errors.New("value must be an even number of bytes")

// AllocError is the error kind produced by every Allocator implementation in this module.
type AllocError uint32

const (
	// ErrInvalidSize means a negative size was requested, or a constructor was given an invalid
	// size parameter.
	ErrInvalidSize AllocError = iota
	// ErrOutOfMemory means the allocator's backing storage has been exhausted.
	ErrOutOfMemory
	// ErrUnknown means the underlying system allocation failed for an unspecified reason.
	ErrUnknown
)

var allocErrorNames = map[AllocError]string{
	ErrInvalidSize: "InvalidSize",
	ErrOutOfMemory: "OutOfMemory",
	ErrUnknown:     "Unknown",
}

func (e AllocError) String() string {
	if name, ok := allocErrorNames[e]; ok {
		return name
	}
	return "Unknown"
}

func (e AllocError) Error() string {
	return "memoc: allocator error: " + e.String()
}

// BufferError is the error kind produced by Buffer's fallible construction surface.
type BufferError uint32

const (
	// ErrBufferInvalidSize means a negative size was requested for a Buffer.
	ErrBufferInvalidSize BufferError = iota
	// ErrAllocatorFailure means the Buffer's allocator reported an AllocError.
	ErrAllocatorFailure
	// ErrBufferUnknown means construction failed for a reason other than size or allocator failure.
	ErrBufferUnknown
)

var bufferErrorNames = map[BufferError]string{
	ErrBufferInvalidSize: "InvalidSize",
	ErrAllocatorFailure:  "AllocatorFailure",
	ErrBufferUnknown:     "Unknown",
}

func (e BufferError) String() string {
	if name, ok := bufferErrorNames[e]; ok {
		return name
	}
	return "Unknown"
}

func (e BufferError) Error() string {
	return "memoc: buffer error: " + e.String()
}
