package abi

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chewxy/math32"
)

// CountSize is the size of the command count header.
const CountSize = 4

// RecordSize returns the encoded size of a command with tag t,
// or -1 for an unknown tag.
func RecordSize(t Tag) int {
	k := t.Points()
	if k < 0 {
		return -1
	}
	return 1 + 8*k
}

// PutCount writes the command count header.
func PutCount(buf []byte, count uint32) {
	binary.LittleEndian.PutUint32(buf, count)
}

// PutCommand writes one command record at the start of buf and returns the
// number of bytes written. coords holds 2·t.Points() values; buf must have
// room for RecordSize(t) bytes.
func PutCommand(buf []byte, t Tag, coords []float32) int {
	buf[0] = byte(t)
	n := 1
	for _, c := range coords[:2*t.Points()] {
		binary.LittleEndian.PutUint32(buf[n:], math.Float32bits(c))
		n += 4
	}
	return n
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

// CommandReader iterates over the records of a command buffer.
//
//	r := abi.NewCommandReader(buf)
//	for r.Next() {
//		use(r.Tag(), r.Coords())
//	}
//	if err := r.Err(); err != nil { ... }
type CommandReader struct {
	buf       []byte
	off       int
	count     uint32
	index     int
	tag       Tag
	coords    [6]float32
	err       error
	started   bool
	exhausted bool
}

// NewCommandReader returns a reader over buf.
func NewCommandReader(buf []byte) *CommandReader {
	return &CommandReader{buf: buf}
}

// Count returns the number of records announced by the header.
// It is valid after the first call to Next.
func (r *CommandReader) Count() int {
	return int(r.count)
}

// Next advances to the next record. It returns false at the end of the
// buffer or on error.
func (r *CommandReader) Next() bool {
	if r.err != nil || r.exhausted {
		return false
	}
	if !r.started {
		r.started = true
		r.index = -1
		if len(r.buf) < CountSize {
			r.err = ErrTruncated
			return false
		}
		r.count = binary.LittleEndian.Uint32(r.buf)
		r.off = CountSize
	}
	if uint32(r.index+1) == r.count {
		r.exhausted = true
		if r.off != len(r.buf) {
			r.err = fmt.Errorf("%w: %d bytes", ErrTrailingBytes, len(r.buf)-r.off)
		}
		return false
	}
	r.index++
	if r.off >= len(r.buf) {
		r.err = ErrTruncated
		return false
	}
	t := Tag(r.buf[r.off])
	size := RecordSize(t)
	if size < 0 {
		r.err = fmt.Errorf("%w %d", ErrUnknownTag, t)
		return false
	}
	if r.off+size > len(r.buf) {
		r.err = ErrTruncated
		return false
	}
	p := r.off + 1
	for i := range 2 * t.Points() {
		r.coords[i] = math.Float32frombits(binary.LittleEndian.Uint32(r.buf[p:]))
		p += 4
	}
	r.tag = t
	r.off += size
	return true
}

// Index returns the position of the current record.
func (r *CommandReader) Index() int {
	return r.index
}

// Tag returns the tag of the current record.
func (r *CommandReader) Tag() Tag {
	return r.tag
}

// Coords returns the coordinates of the current record.
// The slice is only valid until the next call to Next.
func (r *CommandReader) Coords() []float32 {
	return r.coords[:2*r.tag.Points()]
}

// Err returns the first error encountered.
func (r *CommandReader) Err() error {
	return r.err
}
