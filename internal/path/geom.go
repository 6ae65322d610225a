package path

import "math"

// SignedArea returns the shoelace area of the closed polygon pts.
// It is positive for counter-clockwise order in a y-up frame.
func SignedArea(pts []Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	prev := pts[n-1]
	for _, p := range pts {
		sum += prev.Cross(p)
		prev = p
	}
	return sum / 2
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Min, Max Point
}

// Bounds returns the bounding box of pts.
func Bounds(pts []Point) Rect {
	r := Rect{
		Min: Point{math.Inf(1), math.Inf(1)},
		Max: Point{math.Inf(-1), math.Inf(-1)},
	}
	for _, p := range pts {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// ContainsRect reports whether o lies within r, edges included.
func (r Rect) ContainsRect(o Rect) bool {
	return o.Min.X >= r.Min.X && o.Max.X <= r.Max.X &&
		o.Min.Y >= r.Min.Y && o.Max.Y <= r.Max.Y
}

// Centroid returns the area centroid of a polygon with non-zero area.
func Centroid(pts []Point) Point {
	var cx, cy, a2 float64
	n := len(pts)
	prev := pts[n-1]
	for _, p := range pts {
		c := prev.Cross(p)
		a2 += c
		cx += (prev.X + p.X) * c
		cy += (prev.Y + p.Y) * c
		prev = p
	}
	if a2 == 0 {
		return pts[0]
	}
	return Point{X: cx / (3 * a2), Y: cy / (3 * a2)}
}

// Inside reports whether p lies strictly inside the polygon pts under the
// even-odd rule. Points on an edge may report either way.
func Inside(p Point, pts []Point) bool {
	in := false
	n := len(pts)
	prev := pts[n-1]
	for _, q := range pts {
		if (q.Y > p.Y) != (prev.Y > p.Y) {
			x := q.X + (p.Y-q.Y)*(prev.X-q.X)/(prev.Y-q.Y)
			if p.X < x {
				in = !in
			}
		}
		prev = q
	}
	return in
}

// OnBoundary reports whether p lies within tol of an edge of pts.
func OnBoundary(p Point, pts []Point, tol float64) bool {
	prev := pts[len(pts)-1]
	for _, q := range pts {
		if distanceToLine(p, prev, q) <= tol {
			return true
		}
		prev = q
	}
	return false
}

// Crossings appends to dst the x coordinates where the horizontal line at y
// crosses the edges of pts.
func Crossings(dst []float64, y float64, pts []Point) []float64 {
	prev := pts[len(pts)-1]
	for _, q := range pts {
		if (q.Y > y) != (prev.Y > y) {
			dst = append(dst, q.X+(y-q.Y)*(prev.X-q.X)/(prev.Y-q.Y))
		}
		prev = q
	}
	return dst
}
