// Package abi defines the protocol spoken across the compiler boundary.
//
// The host and an isolated compiler unit share nothing but a linear memory.
// The host writes an encoded command buffer into a region the unit reserves
// for it, passes the byte count and the scalar parameters by value, and reads
// back a result the unit materialized in the same memory.
//
// # Command buffer
//
// All values are little endian.
//
//	count  u32
//	repeat count times:
//	    tag    u8
//	    coords f32 × 2·k   (k = Tag.Points, 0..3)
//
// # Result
//
//	status     u32
//	index      u32   (failing command index, 0 on success)
//	capped     u32   (curve segments stopped by the ppc ceiling)
//	maxDev     f32   (largest deviation bound left on a capped segment)
//	payloadLen u32
//	payload:
//	    shapeCount u32
//	    repeat shapeCount times:
//	        holeCount u32
//	        polygon × (1 + holeCount)   (fill first)
//	polygon:
//	    n u32, then n × (x f32, y f32)
//
// An empty payload encodes zero shapes.
package abi

import (
	"context"
	"errors"
	"fmt"
)

// Format is the outline curve kind of a font.
type Format uint32

const (
	// FormatUnknown is the zero value and is rejected by units.
	FormatUnknown Format = iota

	// FormatTrueType outlines contain quadratic curves only.
	FormatTrueType

	// FormatCFF outlines are cubic-capable.
	FormatCFF
)

// String returns the outline format name used by font loaders.
func (f Format) String() string {
	switch f {
	case FormatTrueType:
		return "truetype"
	case FormatCFF:
		return "cff"
	default:
		return "unknown"
	}
}

// Valid reports whether f names a known format.
func (f Format) Valid() bool {
	return f == FormatTrueType || f == FormatCFF
}

// ParseFormat parses "truetype" or "cff".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "truetype", "quadratic":
		return FormatTrueType, nil
	case "cff", "cubic":
		return FormatCFF, nil
	}
	return FormatUnknown, fmt.Errorf("abi: unknown outline format %q", s)
}

// Tag identifies a command record in the command buffer.
type Tag uint8

const (
	TagMoveTo Tag = iota
	TagLineTo
	TagQuadTo
	TagCubicTo
	TagClose
)

// Points returns the number of (x, y) pairs carried by the tag,
// or -1 if the tag is unknown.
func (t Tag) Points() int {
	switch t {
	case TagMoveTo, TagLineTo:
		return 1
	case TagQuadTo:
		return 2
	case TagCubicTo:
		return 3
	case TagClose:
		return 0
	default:
		return -1
	}
}

// Status is the outcome code a unit writes into the result header.
type Status uint32

const (
	StatusOK Status = iota

	// StatusMalformed: truncated buffer, unknown tag, trailing bytes,
	// non-finite coordinate or a drawing command with no current point.
	StatusMalformed

	// StatusUnsupportedCurve: a cubic curve under FormatTrueType.
	StatusUnsupportedCurve

	// StatusBadParameters: unknown format, ppc out of range, eps not positive.
	StatusBadParameters

	// StatusToleranceExceeded: strict tolerance was requested and a curve
	// hit the ppc ceiling before meeting eps.
	StatusToleranceExceeded
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMalformed:
		return "malformed command buffer"
	case StatusUnsupportedCurve:
		return "curve not supported by outline format"
	case StatusBadParameters:
		return "bad parameters"
	case StatusToleranceExceeded:
		return "tolerance exceeded"
	default:
		return fmt.Sprintf("status(%d)", uint32(s))
	}
}

// Flags modify a single compile call.
type Flags uint32

const (
	// FlagStrictTolerance turns a ppc-capped curve into StatusToleranceExceeded.
	FlagStrictTolerance Flags = 1 << iota
)

// MaxPPC is the largest points-per-curve value a unit accepts.
const MaxPPC = 1 << 16

// Params are the scalar compile parameters passed by value.
type Params struct {
	Format Format
	PPC    uint32
	Eps    float32
	Flags  Flags
}

// Memory is a view of the linear memory shared by host and unit.
// The method set matches wazero's api.Memory.
type Memory interface {
	// Size returns the size in bytes.
	Size() uint32

	// Read returns a view of byteCount bytes at offset, or false if out of range.
	Read(offset, byteCount uint32) ([]byte, bool)

	// Write copies v to offset, or returns false if out of range.
	Write(offset uint32, v []byte) bool
}

// Unit is an isolated compiler reachable only through its memory.
//
// A Unit handles at most one call at a time.
type Unit interface {
	// Memory returns the memory shared with the host.
	Memory() Memory

	// Reserve returns the offset of an input region of at least size bytes.
	Reserve(ctx context.Context, size uint32) (uint32, error)

	// Compile compiles the command buffer at [offset, offset+bytesUsed) and
	// returns the offset of the result header. Input errors are reported
	// through the result status; a non-nil error means the unit itself failed.
	Compile(ctx context.Context, offset, bytesUsed uint32, p Params) (uint32, error)

	// Close releases the unit and its memory.
	Close(ctx context.Context) error
}

// Errors shared by codecs and units.
var (
	// ErrTruncated is returned when a buffer ends inside a record.
	ErrTruncated = errors.New("abi: truncated buffer")

	// ErrUnknownTag is returned for a command tag outside the known set.
	ErrUnknownTag = errors.New("abi: unknown command tag")

	// ErrTrailingBytes is returned when bytes follow the last record.
	ErrTrailingBytes = errors.New("abi: trailing bytes after last command")

	// ErrOutOfMemory is returned when a unit cannot provide the memory requested.
	ErrOutOfMemory = errors.New("abi: out of memory")
)
