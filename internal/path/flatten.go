// Package path provides curve flattening for the compiler unit.
package path

import (
	"container/heap"
	"math"
	"slices"
)

// Point represents a 2D point (internal copy to avoid import cycle).
type Point struct {
	X, Y float64
}

// Helper methods for Point
func (p Point) Lerp(q Point, t float64) Point {
	return Point{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
	}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

func (p Point) Cross(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

func (p Point) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y)
}

func (p Point) Distance(q Point) float64 {
	return p.Sub(q).Length()
}

// Flattener converts Bezier segments into polylines.
//
// Every segment is split into at most PPC pieces. Within that ceiling the
// piece with the largest deviation bound is bisected until all bounds are
// within Eps. The bound of a piece is the largest distance of its control
// points from its chord, which by the convex hull property is never below
// the true distance of the curve from the chord.
//
// A Flattener is not safe for concurrent use.
type Flattener struct {
	// Eps is the deviation target.
	Eps float64

	// PPC is the maximum number of vertices emitted per segment.
	PPC int

	// Elevate flattens quadratic segments as their exact cubic equivalent.
	Elevate bool

	capped int
	maxDev float64
	work   workList
}

// Capped returns the number of segments for which the PPC ceiling was
// reached before the Eps target.
func (f *Flattener) Capped() int {
	return f.capped
}

// MaxDeviation returns the largest bound left on a capped segment.
func (f *Flattener) MaxDeviation() float64 {
	return f.maxDev
}

// Reset clears the counters.
func (f *Flattener) Reset() {
	f.capped = 0
	f.maxDev = 0
}

// Quad appends the flattened quadratic p0-p1-p2 to dst, excluding p0.
func (f *Flattener) Quad(dst []Point, p0, p1, p2 Point) []Point {
	if f.Elevate {
		c1 := p0.Add(p1.Sub(p0).Mul(2.0 / 3.0))
		c2 := p2.Add(p1.Sub(p2).Mul(2.0 / 3.0))
		return f.Cubic(dst, p0, c1, c2, p2)
	}
	return f.flatten(dst, newPiece(0, 1, 3, p0, p1, p2, Point{}))
}

// Cubic appends the flattened cubic p0-p1-p2-p3 to dst, excluding p0.
func (f *Flattener) Cubic(dst []Point, p0, p1, p2, p3 Point) []Point {
	return f.flatten(dst, newPiece(0, 1, 4, p0, p1, p2, p3))
}

func (f *Flattener) flatten(dst []Point, first piece) []Point {
	ppc := max(f.PPC, 1)
	f.work = append(f.work[:0], first)
	for len(f.work) < ppc && f.work[0].bound > f.Eps {
		worst := heap.Pop(&f.work).(piece)
		a, b := worst.split()
		heap.Push(&f.work, a)
		heap.Push(&f.work, b)
	}

	dev := 0.0
	for _, pc := range f.work {
		dev = max(dev, pc.bound)
	}
	if dev > f.Eps {
		f.capped++
		f.maxDev = max(f.maxDev, dev)
	}

	slices.SortFunc(f.work, func(a, b piece) int {
		switch {
		case a.t0 < b.t0:
			return -1
		case a.t0 > b.t0:
			return 1
		}
		return 0
	})
	for _, pc := range f.work {
		dst = append(dst, pc.end())
	}
	return dst
}

// piece is the curve restricted to [t0, t1], as n control points.
type piece struct {
	t0, t1 float64
	n      int
	p      [4]Point
	bound  float64
}

func newPiece(t0, t1 float64, n int, p0, p1, p2, p3 Point) piece {
	pc := piece{t0: t0, t1: t1, n: n, p: [4]Point{p0, p1, p2, p3}}
	last := pc.p[n-1]
	for _, c := range pc.p[1 : n-1] {
		pc.bound = max(pc.bound, distanceToLine(c, p0, last))
	}
	return pc
}

func (pc piece) end() Point {
	return pc.p[pc.n-1]
}

// split bisects the piece with de Casteljau's algorithm.
func (pc piece) split() (piece, piece) {
	tm := (pc.t0 + pc.t1) / 2
	p := pc.p
	if pc.n == 3 {
		q0 := p[0].Lerp(p[1], 0.5)
		q1 := p[1].Lerp(p[2], 0.5)
		m := q0.Lerp(q1, 0.5)
		return newPiece(pc.t0, tm, 3, p[0], q0, m, Point{}),
			newPiece(tm, pc.t1, 3, m, q1, p[2], Point{})
	}
	q0 := p[0].Lerp(p[1], 0.5)
	q1 := p[1].Lerp(p[2], 0.5)
	q2 := p[2].Lerp(p[3], 0.5)
	r0 := q0.Lerp(q1, 0.5)
	r1 := q1.Lerp(q2, 0.5)
	s := r0.Lerp(r1, 0.5)
	return newPiece(pc.t0, tm, 4, p[0], q0, r0, s),
		newPiece(tm, pc.t1, 4, s, r1, q2, p[3])
}

// workList is a max-heap of pieces by bound; ties pop the earliest piece.
type workList []piece

func (w workList) Len() int { return len(w) }
func (w workList) Less(i, j int) bool {
	if w[i].bound != w[j].bound {
		return w[i].bound > w[j].bound
	}
	return w[i].t0 < w[j].t0
}
func (w workList) Swap(i, j int) { w[i], w[j] = w[j], w[i] }
func (w *workList) Push(x any)   { *w = append(*w, x.(piece)) }
func (w *workList) Pop() any {
	old := *w
	n := len(old)
	x := old[n-1]
	*w = old[:n-1]
	return x
}

// distanceToLine calculates the perpendicular distance from point p to line segment (a, b).
func distanceToLine(p, a, b Point) float64 {
	// Vector from a to b
	ab := b.Sub(a)
	abLen := ab.Length()

	if abLen < 1e-12 {
		// Line segment is a point
		return p.Distance(a)
	}

	// Project p onto the line
	ap := p.Sub(a)
	t := ap.Dot(ab) / (abLen * abLen)

	if t < 0 {
		// Closest point is a
		return p.Distance(a)
	}
	if t > 1 {
		// Closest point is b
		return p.Distance(b)
	}

	// Closest point is on the line segment
	closest := a.Add(ab.Mul(t))
	return p.Distance(closest)
}
