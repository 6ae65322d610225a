// Package native implements the compiler unit in process.
//
// The unit owns a LinearMemory and touches nothing else: the command buffer
// is read from that memory and the result is written back into it, exactly
// as a sandboxed module would do.
package native

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/glyphpoly/abi"
	"github.com/gogpu/glyphpoly/internal/contour"
	"github.com/gogpu/glyphpoly/internal/nest"
	"github.com/gogpu/glyphpoly/internal/path"
)

// Default memory limits, in pages.
const (
	DefaultPages    = 1
	DefaultMaxPages = 1024
)

// inputOffset leaves the first bytes of memory unused so that offset 0
// never names a valid region.
const inputOffset = 16

// ErrClosed is returned by a unit after Close.
var ErrClosed = errors.New("native: unit closed")

// Unit is an in-process compiler unit.
type Unit struct {
	mem    *abi.LinearMemory
	closed bool

	flat    path.Flattener
	payload []byte
	pending []path.Point
}

// New returns a unit with a memory of pages pages that may grow to maxPages.
func New(pages, maxPages uint32) *Unit {
	return &Unit{mem: abi.NewLinearMemory(pages, maxPages)}
}

// Memory implements abi.Unit.
func (u *Unit) Memory() abi.Memory {
	return u.mem
}

// Reserve implements abi.Unit. The input region always starts at the same
// offset; reserving invalidates any previous result.
func (u *Unit) Reserve(ctx context.Context, size uint32) (uint32, error) {
	if u.closed {
		return 0, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !u.mem.EnsureSize(uint64(inputOffset) + uint64(size)) {
		return 0, fmt.Errorf("%w: input of %d bytes", abi.ErrOutOfMemory, size)
	}
	return inputOffset, nil
}

// Compile implements abi.Unit.
func (u *Unit) Compile(ctx context.Context, offset, bytesUsed uint32, p abi.Params) (uint32, error) {
	if u.closed {
		return 0, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	hdr := abi.ResultHeader{}
	input, ok := u.mem.Read(offset, bytesUsed)
	if !ok {
		hdr.Status = abi.StatusMalformed
	} else {
		hdr = u.run(input, p)
	}

	resultOff := align8(uint64(offset) + uint64(bytesUsed))
	if !ok {
		resultOff = align8(inputOffset)
	}
	if hdr.Status != abi.StatusOK {
		u.payload = u.payload[:0]
	}
	hdr.PayloadLen = uint32(len(u.payload))

	end := resultOff + abi.ResultHeaderSize + uint64(len(u.payload))
	if end > math.MaxUint32 || !u.mem.EnsureSize(end) {
		return 0, fmt.Errorf("%w: result of %d bytes", abi.ErrOutOfMemory, len(u.payload))
	}
	var buf [abi.ResultHeaderSize]byte
	hdr.Put(buf[:])
	u.mem.Write(uint32(resultOff), buf[:])
	u.mem.Write(uint32(resultOff)+abi.ResultHeaderSize, u.payload)
	return uint32(resultOff), nil
}

// Close implements abi.Unit.
func (u *Unit) Close(context.Context) error {
	u.closed = true
	u.mem = abi.NewLinearMemory(0, 1)
	return nil
}

// run executes the pipeline and leaves the payload in u.payload.
func (u *Unit) run(input []byte, p abi.Params) abi.ResultHeader {
	if !p.Format.Valid() || p.PPC == 0 || p.PPC > abi.MaxPPC ||
		!abi.Finite(p.Eps) || p.Eps <= 0 {
		return abi.ResultHeader{Status: abi.StatusBadParameters}
	}

	u.flat = path.Flattener{
		Eps:     float64(p.Eps),
		PPC:     int(p.PPC),
		Elevate: p.Format == abi.FormatCFF,
	}
	var asm contour.Assembler

	r := abi.NewCommandReader(input)
	for r.Next() {
		if status := u.apply(&asm, r.Tag(), r.Coords(), p.Format); status != abi.StatusOK {
			return abi.ResultHeader{Status: status, Index: uint32(r.Index())}
		}
	}
	if err := r.Err(); err != nil {
		return abi.ResultHeader{Status: abi.StatusMalformed, Index: uint32(max(r.Index(), 0))}
	}

	hdr := abi.ResultHeader{
		Capped:       uint32(u.flat.Capped()),
		MaxDeviation: float32(u.flat.MaxDeviation()),
	}
	if hdr.Capped > 0 && p.Flags&abi.FlagStrictTolerance != 0 {
		hdr.Status = abi.StatusToleranceExceeded
		return hdr
	}

	contours := asm.Contours()
	u.payload = encodeGroups(u.payload[:0], contours, nest.Classify(contours))
	return hdr
}

func (u *Unit) apply(asm *contour.Assembler, t abi.Tag, c []float32, f abi.Format) abi.Status {
	for _, v := range c {
		if !abi.Finite(v) {
			return abi.StatusMalformed
		}
	}
	pt := func(i int) path.Point {
		return path.Point{X: float64(c[2*i]), Y: float64(c[2*i+1])}
	}

	if t == abi.TagMoveTo {
		asm.MoveTo(pt(0))
		return abi.StatusOK
	}
	if t == abi.TagClose {
		asm.Close()
		return abi.StatusOK
	}
	cur, ok := asm.Current()
	if !ok {
		return abi.StatusMalformed
	}

	switch t {
	case abi.TagLineTo:
		asm.LineTo(pt(0))
	case abi.TagQuadTo:
		u.pending = u.flat.Quad(u.pending[:0], cur, pt(0), pt(1))
		asm.LineTo(round32(u.pending)...)
	case abi.TagCubicTo:
		if f != abi.FormatCFF {
			return abi.StatusUnsupportedCurve
		}
		u.pending = u.flat.Cubic(u.pending[:0], cur, pt(0), pt(1), pt(2))
		asm.LineTo(round32(u.pending)...)
	}
	return abi.StatusOK
}

func encodeGroups(dst []byte, contours [][]path.Point, groups []nest.Group) []byte {
	dst = abi.AppendU32(dst, uint32(len(groups)))
	var xy []float32
	poly := func(i int) {
		xy = xy[:0]
		for _, p := range contours[i] {
			xy = append(xy, float32(p.X), float32(p.Y))
		}
		dst = abi.AppendPolygon(dst, xy)
	}
	for _, g := range groups {
		dst = abi.AppendU32(dst, uint32(len(g.Holes)))
		poly(g.Fill)
		for _, h := range g.Holes {
			poly(h)
		}
	}
	return dst
}

// round32 snaps points to the float32 grid of the result so that the
// assembler judges degeneracy on the values it will emit.
func round32(pts []path.Point) []path.Point {
	for i, p := range pts {
		pts[i] = path.Point{X: float64(float32(p.X)), Y: float64(float32(p.Y))}
	}
	return pts
}

func align8(v uint64) uint64 {
	return (v + 7) &^ 7
}
