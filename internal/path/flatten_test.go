package path

import (
	"math"
	"testing"
)

func evalQuad(p0, p1, p2 Point, t float64) Point {
	return p0.Lerp(p1, t).Lerp(p1.Lerp(p2, t), t)
}

func evalCubic(p0, p1, p2, p3 Point, t float64) Point {
	a := p0.Lerp(p1, t)
	b := p1.Lerp(p2, t)
	c := p2.Lerp(p3, t)
	return a.Lerp(b, t).Lerp(b.Lerp(c, t), t)
}

// maxDeviation samples the curve and measures the distance to the polyline.
func maxDeviation(eval func(t float64) Point, poly []Point) float64 {
	worst := 0.0
	for i := 0; i <= 1000; i++ {
		p := eval(float64(i) / 1000)
		best := math.Inf(1)
		for k := 1; k < len(poly); k++ {
			best = math.Min(best, distanceToLine(p, poly[k-1], poly[k]))
		}
		worst = math.Max(worst, best)
	}
	return worst
}

func TestFlattenQuadWithinEps(t *testing.T) {
	p0, p1, p2 := Point{0, 0}, Point{50, 100}, Point{100, 0}
	for _, eps := range []float64{10, 1, 0.1, 0.01} {
		f := Flattener{Eps: eps, PPC: 1 << 16}
		pts := f.Quad(nil, p0, p1, p2)
		poly := append([]Point{p0}, pts...)

		if f.Capped() != 0 {
			t.Fatalf("eps %g: capped = %d, want 0", eps, f.Capped())
		}
		if got := maxDeviation(func(t float64) Point { return evalQuad(p0, p1, p2, t) }, poly); got > eps {
			t.Errorf("eps %g: deviation %g exceeds eps", eps, got)
		}
		if pts[len(pts)-1] != p2 {
			t.Errorf("eps %g: last point %v, want %v", eps, pts[len(pts)-1], p2)
		}
	}
}

func TestFlattenCubicWithinEps(t *testing.T) {
	p0, p1, p2, p3 := Point{0, 0}, Point{0, 100}, Point{100, 100}, Point{100, 0}
	f := Flattener{Eps: 0.05, PPC: 1 << 16}
	pts := f.Cubic(nil, p0, p1, p2, p3)
	poly := append([]Point{p0}, pts...)
	if got := maxDeviation(func(t float64) Point { return evalCubic(p0, p1, p2, p3, t) }, poly); got > 0.05 {
		t.Errorf("deviation %g exceeds eps", got)
	}
}

func TestFlattenPPCCeiling(t *testing.T) {
	p0, p1, p2 := Point{0, 0}, Point{50, 100}, Point{100, 0}
	for _, ppc := range []int{1, 2, 3, 7} {
		f := Flattener{Eps: 1e-9, PPC: ppc}
		pts := f.Quad(nil, p0, p1, p2)
		if len(pts) != ppc {
			t.Errorf("ppc %d: got %d points", ppc, len(pts))
		}
		if f.Capped() != 1 {
			t.Errorf("ppc %d: capped = %d, want 1", ppc, f.Capped())
		}
		if f.MaxDeviation() <= 0 {
			t.Errorf("ppc %d: max deviation not recorded", ppc)
		}
	}
}

func TestFlattenZeroPPCEmitsEndpoint(t *testing.T) {
	f := Flattener{Eps: 1, PPC: 0}
	pts := f.Quad(nil, Point{0, 0}, Point{1, 1}, Point{2, 0})
	if len(pts) != 1 || pts[0] != (Point{2, 0}) {
		t.Errorf("got %v, want just the endpoint", pts)
	}
}

func TestFlattenMonotoneInEps(t *testing.T) {
	p0, p1, p2, p3 := Point{0, 0}, Point{10, 80}, Point{90, -60}, Point{100, 10}
	prev := 0
	for _, eps := range []float64{5, 1, 0.5, 0.1, 0.01} {
		f := Flattener{Eps: eps, PPC: 1 << 16}
		n := len(f.Cubic(nil, p0, p1, p2, p3))
		if n < prev {
			t.Errorf("eps %g: %d points, fewer than %d at larger eps", eps, n, prev)
		}
		prev = n
	}
}

func TestFlattenStraightCurve(t *testing.T) {
	f := Flattener{Eps: 0.1, PPC: 16}
	pts := f.Quad(nil, Point{0, 0}, Point{5, 0}, Point{10, 0})
	if len(pts) != 1 {
		t.Errorf("collinear quad: got %d points, want 1", len(pts))
	}
}

func TestFlattenElevate(t *testing.T) {
	p0, p1, p2 := Point{0, 0}, Point{50, 100}, Point{100, 0}
	f := Flattener{Eps: 0.01, PPC: 1 << 16, Elevate: true}
	pts := f.Quad(nil, p0, p1, p2)
	poly := append([]Point{p0}, pts...)
	if got := maxDeviation(func(t float64) Point { return evalQuad(p0, p1, p2, t) }, poly); got > 0.01 {
		t.Errorf("elevated quad deviation %g exceeds eps", got)
	}
}

func TestFlattenPointsInOrder(t *testing.T) {
	f := Flattener{Eps: 0.01, PPC: 64}
	pts := f.Quad(nil, Point{0, 0}, Point{50, 100}, Point{100, 0})
	for i := 1; i < len(pts); i++ {
		if pts[i].X <= pts[i-1].X {
			t.Fatalf("points out of order at %d: %v then %v", i, pts[i-1], pts[i])
		}
	}
}

func TestFlattenerReset(t *testing.T) {
	f := Flattener{Eps: 1e-9, PPC: 1}
	f.Quad(nil, Point{0, 0}, Point{1, 1}, Point{2, 0})
	f.Reset()
	if f.Capped() != 0 || f.MaxDeviation() != 0 {
		t.Errorf("Reset left capped=%d maxDev=%g", f.Capped(), f.MaxDeviation())
	}
}

func TestDistanceToLine(t *testing.T) {
	tests := []struct {
		p, a, b Point
		want    float64
	}{
		{Point{5, 3}, Point{0, 0}, Point{10, 0}, 3},
		{Point{-3, 4}, Point{0, 0}, Point{10, 0}, 5},
		{Point{13, 4}, Point{0, 0}, Point{10, 0}, 5},
		{Point{3, 4}, Point{0, 0}, Point{0, 0}, 5},
	}
	for _, tt := range tests {
		if got := distanceToLine(tt.p, tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("distanceToLine(%v, %v, %v) = %g, want %g", tt.p, tt.a, tt.b, got, tt.want)
		}
	}
}
