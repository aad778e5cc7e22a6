package geom

import "math"

// roundScale controls final length stabilization precision (1e-9).
const roundScale = 1e9

// Point is a location in normalized map space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// InUnit reports whether p lies inside the closed unit square.
func (p Point) InUnit() bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Sub returns p−q as a vector.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Scale returns p·s.
func (p Point) Scale(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }

// Dist returns the Euclidean distance between a and b.
//
// Complexity: O(1).
func Dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Dist2 returns the squared Euclidean distance between a and b.
func Dist2(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// projectParam returns the unclamped parameter t of the orthogonal projection
// of p onto the line a→b, and false when the segment is degenerate.
func projectParam(p, a, b Point) (float64, bool) {
	ab := b.Sub(a)
	den := ab.X*ab.X + ab.Y*ab.Y
	if den == 0 {
		return 0, false
	}
	ap := p.Sub(a)

	return (ap.X*ab.X + ap.Y*ab.Y) / den, true
}

// NearestOnSegment returns the point of the closed segment [a,b] closest to p
// together with its parameter t ∈ [0,1] (q = a + t·(b−a)).
// A degenerate segment (a==b) yields (a, 0).
//
// Complexity: O(1).
func NearestOnSegment(p, a, b Point) (Point, float64) {
	t, ok := projectParam(p, a, b)
	if !ok {
		return a, 0
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return a.Add(b.Sub(a).Scale(t)), t
}

// NearestOnLine returns the orthogonal projection of p onto the infinite line
// through a and b, with its unclamped parameter t. A degenerate line yields (a, 0).
func NearestOnLine(p, a, b Point) (Point, float64) {
	t, ok := projectParam(p, a, b)
	if !ok {
		return a, 0
	}

	return a.Add(b.Sub(a).Scale(t)), t
}

// DistToSegment returns the distance from p to the closed segment [a,b].
func DistToSegment(p, a, b Point) float64 {
	q, _ := NearestOnSegment(p, a, b)
	return Dist(p, q)
}

// Round1e9 stabilizes a length to 1e-9 to avoid tiny FP drifts across
// platforms without affecting comparisons that matter.
func Round1e9(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return math.Round(x*roundScale) / roundScale
}
