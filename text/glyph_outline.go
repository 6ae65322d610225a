package text

import (
	"github.com/gogpu/glyphpoly"
)

// OutlinePoint represents a point in a glyph outline.
type OutlinePoint struct {
	X, Y float32
}

// OutlineSegment represents a segment of a glyph outline.
type OutlineSegment struct {
	// Op is the segment operation type.
	Op OutlineOp

	// Points contains the control and end points for this segment.
	// - MoveTo: Points[0] is the target point
	// - LineTo: Points[0] is the target point
	// - QuadTo: Points[0] is control, Points[1] is target
	// - CubicTo: Points[0], Points[1] are controls, Points[2] is target
	Points [3]OutlinePoint
}

// OutlineOp is the type of path operation.
type OutlineOp uint8

const (
	// OutlineOpMoveTo starts a new contour.
	OutlineOpMoveTo OutlineOp = iota

	// OutlineOpLineTo draws a line to the target point.
	OutlineOpLineTo

	// OutlineOpQuadTo draws a quadratic bezier curve.
	OutlineOpQuadTo

	// OutlineOpCubicTo draws a cubic bezier curve.
	OutlineOpCubicTo
)

// String returns a string representation of the operation.
func (op OutlineOp) String() string {
	switch op {
	case OutlineOpMoveTo:
		return "MoveTo"
	case OutlineOpLineTo:
		return "LineTo"
	case OutlineOpQuadTo:
		return "QuadTo"
	case OutlineOpCubicTo:
		return "CubicTo"
	default:
		return "Unknown"
	}
}

// points returns the number of points used by the operation.
func (op OutlineOp) points() int {
	switch op {
	case OutlineOpQuadTo:
		return 2
	case OutlineOpCubicTo:
		return 3
	default:
		return 1
	}
}

// GlyphOutline represents the vector outline of a glyph.
// The outline consists of zero or more contours, each starting with a MoveTo.
// Contours are implicitly closed.
type GlyphOutline struct {
	// Segments is the list of path segments that make up the outline.
	Segments []OutlineSegment

	// Advance is the horizontal advance width of the glyph.
	Advance float32

	// GID is the glyph ID this outline represents.
	GID GlyphID
}

// IsEmpty returns true if the outline has no segments.
func (o *GlyphOutline) IsEmpty() bool {
	return len(o.Segments) == 0
}

// Bounds returns the bounding box of all segment points, control points included.
func (o *GlyphOutline) Bounds() (lo, hi OutlinePoint) {
	first := true
	for _, seg := range o.Segments {
		for _, p := range seg.Points[:seg.Op.points()] {
			if first {
				lo, hi = p, p
				first = false
				continue
			}
			lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
			hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
		}
	}
	return lo, hi
}

// AppendCommands appends the outline as path commands with the glyph
// origin at (x, y). Every contour is terminated by a Close command.
func (o *GlyphOutline) AppendCommands(dst []glyphpoly.Command, x, y float64) []glyphpoly.Command {
	at := func(p OutlinePoint) (float32, float32) {
		return float32(float64(p.X) + x), float32(float64(p.Y) + y)
	}

	open := false
	for _, seg := range o.Segments {
		switch seg.Op {
		case OutlineOpMoveTo:
			if open {
				dst = append(dst, glyphpoly.Close())
			}
			dst = append(dst, glyphpoly.MoveTo(at(seg.Points[0])))
			open = true
		case OutlineOpLineTo:
			dst = append(dst, glyphpoly.LineTo(at(seg.Points[0])))
		case OutlineOpQuadTo:
			cx, cy := at(seg.Points[0])
			px, py := at(seg.Points[1])
			dst = append(dst, glyphpoly.QuadTo(cx, cy, px, py))
		case OutlineOpCubicTo:
			c1x, c1y := at(seg.Points[0])
			c2x, c2y := at(seg.Points[1])
			px, py := at(seg.Points[2])
			dst = append(dst, glyphpoly.CubicTo(c1x, c1y, c2x, c2y, px, py))
		}
	}
	if open {
		dst = append(dst, glyphpoly.Close())
	}
	return dst
}
