// Package contour assembles flattened vertices into closed contours.
//
// A contour is closed implicitly: the edge from its last vertex back to its
// first is never stored. Contours that collapse to fewer than three distinct
// vertices or to zero area are dropped. Dropping is the defined handling of
// degenerate input, not an error, and it never affects sibling contours.
package contour

import (
	"math"

	"github.com/gogpu/glyphpoly/internal/path"
)

// zeroAreaRatio is the area, relative to the bounding box, below which a
// contour counts as having zero area.
const zeroAreaRatio = 1e-9

// Assembler accumulates vertices into contours, one per subpath.
//
// The zero value is ready to use. An Assembler is not safe for concurrent use.
type Assembler struct {
	contours [][]path.Point
	cur      []path.Point
	start    path.Point
	open     bool
	started  bool
	dropped  int
}

// MoveTo closes the current contour and starts a new one at p.
func (a *Assembler) MoveTo(p path.Point) {
	a.finish()
	a.start = p
	a.started = true
	a.open = true
	a.cur = append(a.cur[:0], p)
}

// Current returns the current point. It reports false if no subpath has
// been started yet.
func (a *Assembler) Current() (path.Point, bool) {
	if !a.started {
		return path.Point{}, false
	}
	if !a.open {
		return a.start, true
	}
	return a.cur[len(a.cur)-1], true
}

// LineTo appends vertices to the current contour. After Close, the first
// call reopens a contour at the previous start point.
func (a *Assembler) LineTo(pts ...path.Point) {
	if !a.open {
		a.open = true
		a.cur = append(a.cur[:0], a.start)
	}
	a.cur = append(a.cur, pts...)
}

// Close ends the current contour.
func (a *Assembler) Close() {
	a.finish()
}

// Contours closes any open contour and returns every contour kept so far.
func (a *Assembler) Contours() [][]path.Point {
	a.finish()
	return a.contours
}

// Dropped returns the number of degenerate contours discarded.
func (a *Assembler) Dropped() int {
	return a.dropped
}

func (a *Assembler) finish() {
	if !a.open {
		return
	}
	a.open = false
	pts := dedupe(a.cur)
	if Degenerate(pts) {
		a.dropped++
		return
	}
	a.contours = append(a.contours, pts)
}

// dedupe returns a copy of pts without consecutive repeats and without a
// closing vertex equal to the first.
func dedupe(pts []path.Point) []path.Point {
	out := make([]path.Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[len(out)-1] == out[0] {
		out = out[:len(out)-1]
	}
	return out
}

// Degenerate reports whether pts has fewer than three vertices or zero area.
func Degenerate(pts []path.Point) bool {
	if len(pts) < 3 {
		return true
	}
	b := path.Bounds(pts)
	area := math.Abs(path.SignedArea(pts))
	return area == 0 || area <= zeroAreaRatio*b.Width()*b.Height()
}
