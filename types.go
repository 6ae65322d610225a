package glyphpoly

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/glyphpoly/abi"
)

// Vertex is a point in the output coordinate frame:
// +X is the advance direction and +Y the ascent direction.
type Vertex struct {
	X, Y float32
}

// Polygon is a closed vertex sequence. The first vertex is not repeated at
// the end. Winding direction is meaningful.
type Polygon []Vertex

// Area returns the signed shoelace area; positive means counter-clockwise.
func (p Polygon) Area() float32 {
	n := len(p)
	if n < 3 {
		return 0
	}
	var sum float64
	prev := p[n-1]
	for _, v := range p {
		sum += float64(prev.X)*float64(v.Y) - float64(prev.Y)*float64(v.X)
		prev = v
	}
	return float32(sum / 2)
}

// Clockwise reports whether the polygon winds clockwise.
func (p Polygon) Clockwise() bool {
	return p.Area() < 0
}

// Centroid returns the area centroid of the polygon.
func (p Polygon) Centroid() Vertex {
	var cx, cy, a2 float64
	n := len(p)
	if n == 0 {
		return Vertex{}
	}
	prev := p[n-1]
	for _, v := range p {
		c := float64(prev.X)*float64(v.Y) - float64(prev.Y)*float64(v.X)
		a2 += c
		cx += float64(prev.X+v.X) * c
		cy += float64(prev.Y+v.Y) * c
		prev = v
	}
	if a2 == 0 {
		return p[0]
	}
	return Vertex{X: float32(cx / (3 * a2)), Y: float32(cy / (3 * a2))}
}

// Contains reports whether v lies inside the polygon under the even-odd rule.
func (p Polygon) Contains(v Vertex) bool {
	in := false
	n := len(p)
	if n < 3 {
		return false
	}
	prev := p[n-1]
	for _, q := range p {
		if (q.Y > v.Y) != (prev.Y > v.Y) {
			x := q.X + (v.Y-q.Y)*(prev.X-q.X)/(prev.Y-q.Y)
			if v.X < x {
				in = !in
			}
		}
		prev = q
	}
	return in
}

// Bounds returns the minimum and maximum corners of the polygon.
func (p Polygon) Bounds() (lo, hi Vertex) {
	lo = Vertex{math32.Inf(1), math32.Inf(1)}
	hi = Vertex{math32.Inf(-1), math32.Inf(-1)}
	for _, v := range p {
		lo.X = math32.Min(lo.X, v.X)
		lo.Y = math32.Min(lo.Y, v.Y)
		hi.X = math32.Max(hi.X, v.X)
		hi.Y = math32.Max(hi.Y, v.Y)
	}
	return lo, hi
}

// Shape is one filled region: an outer boundary and the holes cut into it.
// Holes wind opposite to the fill and lie inside it.
type Shape struct {
	Fill  Polygon
	Holes []Polygon
}

// VertexCount returns the number of vertices in the fill and all holes.
func (s Shape) VertexCount() int {
	n := len(s.Fill)
	for _, h := range s.Holes {
		n += len(h)
	}
	return n
}

// Op is the kind of a path command.
type Op uint8

const (
	// OpMoveTo starts a new subpath.
	OpMoveTo Op = Op(abi.TagMoveTo)

	// OpLineTo draws a line to the target point.
	OpLineTo Op = Op(abi.TagLineTo)

	// OpQuadTo draws a quadratic Bezier curve.
	OpQuadTo Op = Op(abi.TagQuadTo)

	// OpCubicTo draws a cubic Bezier curve.
	OpCubicTo Op = Op(abi.TagCubicTo)

	// OpClose ends the current subpath.
	OpClose Op = Op(abi.TagClose)
)

// String returns a string representation of the operation.
func (op Op) String() string {
	switch op {
	case OpMoveTo:
		return "MoveTo"
	case OpLineTo:
		return "LineTo"
	case OpQuadTo:
		return "QuadTo"
	case OpCubicTo:
		return "CubicTo"
	case OpClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// Points returns the number of points used by the op, or -1 if unknown.
func (op Op) Points() int {
	return abi.Tag(op).Points()
}

// Command is one path drawing command.
type Command struct {
	// Op is the command kind.
	Op Op

	// Points holds the control and end points:
	//   - MoveTo, LineTo: Points[0] is the target point
	//   - QuadTo: Points[0] is control, Points[1] is target
	//   - CubicTo: Points[0], Points[1] are controls, Points[2] is target
	//   - Close: unused
	Points [3]Vertex
}

// MoveTo returns a command starting a subpath at (x, y).
func MoveTo(x, y float32) Command {
	return Command{Op: OpMoveTo, Points: [3]Vertex{{x, y}}}
}

// LineTo returns a line command to (x, y).
func LineTo(x, y float32) Command {
	return Command{Op: OpLineTo, Points: [3]Vertex{{x, y}}}
}

// QuadTo returns a quadratic curve command.
func QuadTo(cx, cy, x, y float32) Command {
	return Command{Op: OpQuadTo, Points: [3]Vertex{{cx, cy}, {x, y}}}
}

// CubicTo returns a cubic curve command.
func CubicTo(c1x, c1y, c2x, c2y, x, y float32) Command {
	return Command{Op: OpCubicTo, Points: [3]Vertex{{c1x, c1y}, {c2x, c2y}, {x, y}}}
}

// Close returns a command ending the current subpath.
func Close() Command {
	return Command{Op: OpClose}
}

// Format is the outline curve kind of a font.
type Format = abi.Format

const (
	// FormatTrueType outlines are quadratic-only.
	FormatTrueType = abi.FormatTrueType

	// FormatCFF outlines are cubic-capable.
	FormatCFF = abi.FormatCFF
)

// ParseFormat parses an outline format name such as "truetype" or "cff".
func ParseFormat(s string) (Format, error) {
	return abi.ParseFormat(s)
}

// Stats describes how a compile call met its tolerance.
type Stats struct {
	// CappedSegments counts curve segments where the points-per-curve
	// ceiling stopped refinement before the deviation target was met.
	CappedSegments uint32

	// MaxDeviation is the largest deviation bound left on a capped segment.
	MaxDeviation float32
}

// Result is the outcome of one compile call.
type Result struct {
	Shapes []Shape
	Stats  Stats
}
