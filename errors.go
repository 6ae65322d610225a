package glyphpoly

import (
	"errors"
	"fmt"

	"github.com/gogpu/glyphpoly/abi"
)

// Sentinel errors for glyphpoly.
var (
	// ErrBufferTooSmall is returned when an encode buffer cannot hold the
	// command sequence. Retrying with a larger buffer is the remedy.
	ErrBufferTooSmall = errors.New("glyphpoly: buffer too small")

	// ErrBufferTooLarge is returned when growing the encode buffer would
	// exceed the configured maximum.
	ErrBufferTooLarge = errors.New("glyphpoly: buffer would exceed maximum size")

	// ErrCompileFailure is returned when the compiler unit rejects its input.
	ErrCompileFailure = errors.New("glyphpoly: compile failure")

	// ErrInvalidCommand is returned when a command has an unknown op.
	ErrInvalidCommand = errors.New("glyphpoly: invalid command")

	// ErrCorruptResult is returned when a unit result cannot be decoded.
	ErrCorruptResult = errors.New("glyphpoly: corrupt result")

	// ErrClosed is returned by a closed Compiler or Pool.
	ErrClosed = errors.New("glyphpoly: closed")
)

// BufferTooSmallError reports the capacity an encode call needed.
type BufferTooSmallError struct {
	Required int
	Capacity int
}

func (e *BufferTooSmallError) Error() string {
	return fmt.Sprintf("glyphpoly: buffer too small: need %d bytes, have %d", e.Required, e.Capacity)
}

// Unwrap returns ErrBufferTooSmall.
func (e *BufferTooSmallError) Unwrap() error {
	return ErrBufferTooSmall
}

// CompileError is returned when the compiler unit rejects a command buffer.
// No shapes are returned alongside it.
type CompileError struct {
	Status abi.Status

	// Command is the index of the offending command, when Status refers to one.
	Command int
}

func (e *CompileError) Error() string {
	switch e.Status {
	case abi.StatusMalformed, abi.StatusUnsupportedCurve:
		return fmt.Sprintf("glyphpoly: compile failure: %s at command %d", e.Status, e.Command)
	default:
		return "glyphpoly: compile failure: " + e.Status.String()
	}
}

// Unwrap returns ErrCompileFailure.
func (e *CompileError) Unwrap() error {
	return ErrCompileFailure
}
