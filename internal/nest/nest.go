// Package nest partitions closed contours into fills and holes.
//
// The parent of a contour is the smallest contour that geometrically
// encloses it, whatever its winding. Contours without a parent are fills.
// A child of a fill with the opposite winding is a hole of that fill; any
// other child starts a fill of its own, so a contour nested inside a hole
// is a fill again and roles alternate with nesting depth.
package nest

import (
	"math"
	"slices"

	"github.com/gogpu/glyphpoly/internal/path"
)

// Group is one fill with its holes, as indexes into the classified contours.
type Group struct {
	Fill  int
	Holes []int
}

type contourInfo struct {
	pts    []path.Point
	area   float64
	abs    float64
	bounds path.Rect
	sample path.Point
}

// Classify groups contours into fills and holes. Groups are ordered by the
// index of their fill and holes by their own index. The result depends
// only on the input geometry and order.
func Classify(contours [][]path.Point) []Group {
	infos := make([]contourInfo, len(contours))
	for i, pts := range contours {
		a := path.SignedArea(pts)
		infos[i] = contourInfo{
			pts:    pts,
			area:   a,
			abs:    math.Abs(a),
			bounds: path.Bounds(pts),
			sample: SamplePoint(pts),
		}
	}

	parent := make([]int, len(infos))
	for i := range infos {
		parent[i] = -1
		for j := range infos {
			if i == j || !encloses(infos, j, i) {
				continue
			}
			if parent[i] < 0 || larger(infos, parent[i], j) {
				parent[i] = j
			}
		}
	}

	// 0 unknown, 1 fill, 2 hole
	role := make([]int8, len(infos))
	var resolve func(i int) int8
	resolve = func(i int) int8 {
		if role[i] != 0 {
			return role[i]
		}
		// Parent chains strictly decrease in rank, so they are acyclic.
		r := int8(1)
		if p := parent[i]; p >= 0 && resolve(p) == 1 && opposite(infos, p, i) {
			r = 2
		}
		role[i] = r
		return r
	}

	groups := make([]Group, 0, len(infos))
	groupOf := make(map[int]int)
	for i := range infos {
		if resolve(i) == 1 {
			groupOf[i] = len(groups)
			groups = append(groups, Group{Fill: i})
		}
	}
	for i := range infos {
		if role[i] == 2 {
			g := groupOf[parent[i]]
			groups[g].Holes = append(groups[g].Holes, i)
		}
	}
	return groups
}

// larger reports whether contour j ranks above contour i in area.
// Equal areas fall back to input order so that the outcome is stable.
func larger(infos []contourInfo, j, i int) bool {
	if infos[j].abs != infos[i].abs {
		return infos[j].abs > infos[i].abs
	}
	return j < i
}

// opposite reports whether contours j and i wind in opposite directions.
func opposite(infos []contourInfo, j, i int) bool {
	return (infos[j].area > 0) != (infos[i].area > 0)
}

// encloses reports whether contour j is a candidate parent of contour i.
func encloses(infos []contourInfo, j, i int) bool {
	oj, oi := infos[j], infos[i]
	if !larger(infos, j, i) {
		return false
	}
	if !oj.bounds.ContainsRect(oi.bounds) {
		return false
	}
	return path.Inside(oi.sample, oj.pts)
}

// SamplePoint returns a point strictly inside the polygon pts. It prefers
// the centroid and otherwise takes the middle of the widest interior span
// on a horizontal line that avoids every vertex.
func SamplePoint(pts []path.Point) path.Point {
	c := path.Centroid(pts)
	b := path.Bounds(pts)
	tol := 1e-9 * max(b.Width(), b.Height())
	if path.Inside(c, pts) && !path.OnBoundary(c, pts, tol) {
		return c
	}

	ys := make([]float64, 0, len(pts))
	for _, p := range pts {
		ys = append(ys, p.Y)
	}
	slices.Sort(ys)
	ys = slices.Compact(ys)

	best, bestW := pts[0], -1.0
	var xs []float64
	for k := 1; k < len(ys); k++ {
		y := (ys[k-1] + ys[k]) / 2
		xs = path.Crossings(xs[:0], y, pts)
		slices.Sort(xs)
		for m := 0; m+1 < len(xs); m += 2 {
			if w := xs[m+1] - xs[m]; w > bestW {
				bestW = w
				best = path.Point{X: (xs[m] + xs[m+1]) / 2, Y: y}
			}
		}
	}
	return best
}
