package nest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/glyphpoly/internal/path"
)

// rect returns an axis-aligned rectangle, counter-clockwise unless cw is set.
func rect(x0, y0, x1, y1 float64, cw bool) []path.Point {
	pts := []path.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
	if cw {
		pts[1], pts[3] = pts[3], pts[1]
	}
	return pts
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		contours [][]path.Point
		want     []Group
	}{
		{
			name:     "square",
			contours: [][]path.Point{rect(0, 0, 10, 10, false)},
			want:     []Group{{Fill: 0}},
		},
		{
			name:     "ring",
			contours: [][]path.Point{rect(0, 0, 10, 10, false), rect(3, 3, 7, 7, true)},
			want:     []Group{{Fill: 0, Holes: []int{1}}},
		},
		{
			name:     "ring hole first",
			contours: [][]path.Point{rect(3, 3, 7, 7, true), rect(0, 0, 10, 10, false)},
			want:     []Group{{Fill: 1, Holes: []int{0}}},
		},
		{
			name: "island in hole",
			contours: [][]path.Point{
				rect(0, 0, 10, 10, false),
				rect(2, 2, 8, 8, true),
				rect(4, 4, 6, 6, false),
			},
			want: []Group{{Fill: 0, Holes: []int{1}}, {Fill: 2}},
		},
		{
			name: "dotted i",
			contours: [][]path.Point{
				rect(0, 0, 2, 10, false),
				rect(0, 12, 2, 14, false),
			},
			want: []Group{{Fill: 0}, {Fill: 1}},
		},
		{
			name: "two holes",
			contours: [][]path.Point{
				rect(0, 0, 10, 20, false),
				rect(2, 2, 8, 8, true),
				rect(2, 12, 8, 18, true),
			},
			want: []Group{{Fill: 0, Holes: []int{1, 2}}},
		},
		{
			name: "hole in hole",
			contours: [][]path.Point{
				rect(0, 0, 30, 30, false),
				rect(5, 5, 25, 25, true),
				rect(10, 10, 20, 20, true),
			},
			want: []Group{{Fill: 0, Holes: []int{1}}, {Fill: 2}},
		},
		{
			name: "hole in hole in hole",
			contours: [][]path.Point{
				rect(0, 0, 40, 40, false),
				rect(5, 5, 35, 35, true),
				rect(10, 10, 30, 30, true),
				rect(15, 15, 25, 25, false),
			},
			want: []Group{{Fill: 0, Holes: []int{1}}, {Fill: 2, Holes: []int{3}}},
		},
		{
			name: "same winding child is its own fill",
			contours: [][]path.Point{
				rect(0, 0, 10, 10, false),
				rect(3, 3, 7, 7, false),
			},
			want: []Group{{Fill: 0}, {Fill: 1}},
		},
		{
			name: "lone clockwise contour is a fill",
			contours: [][]path.Point{
				rect(0, 0, 10, 10, true),
			},
			want: []Group{{Fill: 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.contours))
		})
	}
}

func TestClassifyEmpty(t *testing.T) {
	assert.Empty(t, Classify(nil))
}

func TestClassifyPicksSmallestEncloser(t *testing.T) {
	// Two clockwise frames around one counter-clockwise square: the inner
	// frame is the parent even though both enclose it.
	contours := [][]path.Point{
		rect(0, 0, 100, 100, false),
		rect(10, 10, 90, 90, true),
		rect(20, 20, 80, 80, false),
		rect(30, 30, 70, 70, true),
		rect(40, 40, 60, 60, false),
	}
	got := Classify(contours)
	assert.Equal(t, []Group{
		{Fill: 0, Holes: []int{1}},
		{Fill: 2, Holes: []int{3}},
		{Fill: 4},
	}, got)
}

func TestClassifyEqualAreaTieBreak(t *testing.T) {
	for _, firstCW := range []bool{false, true} {
		contours := [][]path.Point{
			rect(0, 0, 10, 10, firstCW),
			rect(0, 0, 10, 10, !firstCW),
		}
		got := Classify(contours)
		assert.Equal(t, []Group{{Fill: 0, Holes: []int{1}}}, got, "firstCW=%v", firstCW)
	}
}

func TestClassifyOrderInvariant(t *testing.T) {
	base := [][]path.Point{
		rect(0, 0, 10, 10, false),
		rect(2, 2, 8, 8, true),
		rect(4, 4, 6, 6, false),
		rect(20, 0, 30, 10, false),
	}
	perms := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{2, 0, 3, 1},
		{1, 3, 0, 2},
	}

	// describe maps groups back to base indexes so permutations compare equal.
	describe := func(perm []int, groups []Group) map[int][]int {
		out := make(map[int][]int)
		for _, g := range groups {
			holes := []int{}
			for _, h := range g.Holes {
				holes = append(holes, perm[h])
			}
			out[perm[g.Fill]] = holes
		}
		return out
	}

	want := map[int][]int{0: {1}, 2: {}, 3: {}}
	for _, perm := range perms {
		contours := make([][]path.Point, len(perm))
		for i, p := range perm {
			contours[i] = base[p]
		}
		assert.Equal(t, want, describe(perm, Classify(contours)), "perm %v", perm)
	}
}

func TestSamplePointConcave(t *testing.T) {
	// A U shape whose centroid falls in the notch.
	u := []path.Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 8, Y: 10},
		{X: 8, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 10}, {X: 0, Y: 10},
	}
	require.False(t, path.Inside(path.Centroid(u), u))

	p := SamplePoint(u)
	assert.True(t, path.Inside(p, u), "sample %v outside", p)
	assert.False(t, path.OnBoundary(p, u, 1e-9), "sample %v on boundary", p)
}

func TestSamplePointConvex(t *testing.T) {
	p := SamplePoint(rect(0, 0, 4, 2, false))
	assert.InDelta(t, 2, p.X, 1e-12)
	assert.InDelta(t, 1, p.Y, 1e-12)
}

func TestClassifyNotchedHole(t *testing.T) {
	// The hole is a U and the island sits in its notch, outside the hole.
	outer := rect(-10, -10, 20, 20, false)
	hole := []path.Point{
		{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 2, Y: 10}, {X: 2, Y: 2},
		{X: 8, Y: 2}, {X: 8, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0},
	}
	island := rect(4, 4, 6, 8, false)
	got := Classify([][]path.Point{outer, hole, island})
	assert.Equal(t, []Group{{Fill: 0, Holes: []int{1}}, {Fill: 2}}, got)
}
