// Package tsp_test provides lightweight testing helpers shared across *_test.go
// files in this package. Helpers are stdlib-only.
package tsp_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/lvroute/geom"
	"github.com/katalvlaran/lvroute/matrix"
	"github.com/katalvlaran/lvroute/tsp"
)

const (
	// epsTiny is the strict tolerance used to compare stabilized lengths.
	epsTiny = 1e-9

	// seedDet is a deterministic seed for point generation.
	seedDet = int64(42)
)

// randomPoints returns n points drawn uniformly from the unit square.
func randomPoints(n int, seed int64) []geom.Point {
	r := rand.New(rand.NewSource(seed))
	pts := make([]geom.Point, n)
	for i := range pts {
		pts[i] = geom.Pt(r.Float64(), r.Float64())
	}

	return pts
}

// unitSquare returns the corners of the unit square in perimeter order.
func unitSquare() []geom.Point {
	return []geom.Point{geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(1, 1), geom.Pt(0, 1)}
}

// circlePoints returns n points on a circle of radius 0.4 around (0.5, 0.5),
// shuffled with seed so the input order is not the optimal order.
func circlePoints(n int, seed int64) []geom.Point {
	pts := make([]geom.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = geom.Pt(0.5+0.4*math.Cos(a), 0.5+0.4*math.Sin(a))
	}
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(n, func(i, j int) { pts[i], pts[j] = pts[j], pts[i] })

	return pts
}

// bruteForceLength returns the optimal closed-tour length by enumerating all
// permutations that fix vertex 0. Intended for n ≤ 8.
func bruteForceLength(t *testing.T, pts []geom.Point) float64 {
	t.Helper()
	n := len(pts)
	if n < 2 {
		return 0
	}
	dist, err := matrix.Euclidean(pts)
	if err != nil {
		t.Fatalf("Euclidean: %v", err)
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	best := math.Inf(1)
	var rec func(k int)
	rec = func(k int) {
		if k == n {
			l, lerr := tsp.TourLength(dist, perm)
			if lerr != nil {
				t.Fatalf("TourLength: %v", lerr)
			}
			if l < best {
				best = l
			}
			return
		}
		for i := k; i < n; i++ {
			perm[k], perm[i] = perm[i], perm[k]
			rec(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	rec(1)

	return best
}

// mustSolve runs tsp.Solve and fails the test on error.
func mustSolve(t *testing.T, pts []geom.Point, opts tsp.Options) tsp.Result {
	t.Helper()
	res, err := tsp.Solve(pts, opts)
	if err != nil {
		t.Fatalf("Solve(n=%d): %v", len(pts), err)
	}

	return res
}

// recomputeLength measures res.Tour over pts independently of the solver.
func recomputeLength(t *testing.T, pts []geom.Point, tour []int) float64 {
	t.Helper()
	if len(pts) < 2 {
		return 0
	}
	dist, err := matrix.Euclidean(pts)
	if err != nil {
		t.Fatalf("Euclidean: %v", err)
	}
	l, err := tsp.TourLength(dist, tour)
	if err != nil {
		t.Fatalf("TourLength(%v): %v", tour, err)
	}

	return l
}
