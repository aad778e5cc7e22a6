package route

import "github.com/katalvlaran/lvroute/geom"

// Route is an ordered waypoint sequence. Direction (±1) affects traversal
// only, never geometry.
type Route struct {
	Waypoints []Waypoint
	Loop      bool
	Direction int
	Length    float64
}

// Segment is the edge between two consecutive waypoints. Index is the
// position of From in the route; the closing segment of a loop has
// Index == len(Waypoints)-1 and To == Waypoints[0].
type Segment struct {
	Index    int
	From, To geom.Point
}

// New returns an empty route.
func New(loop bool) Route {
	return Route{Loop: loop, Direction: 1}
}

// Measure returns the length of wps, adding the closing edge when loop is set.
//
// Complexity: O(n).
func Measure(wps []Waypoint, loop bool) float64 {
	n := len(wps)
	if n < 2 {
		return 0
	}
	var sum float64
	for i := 0; i+1 < n; i++ {
		sum += geom.Dist(wps[i].Pos(), wps[i+1].Pos())
	}
	if loop {
		sum += geom.Dist(wps[n-1].Pos(), wps[0].Pos())
	}

	return sum
}

// Segments enumerates r's segments in route order, closing segment last.
// Routes with fewer than two waypoints have no segments.
func Segments(r Route) []Segment {
	n := len(r.Waypoints)
	if n < 2 {
		return nil
	}
	out := make([]Segment, 0, n)
	for i := 0; i+1 < n; i++ {
		out = append(out, Segment{Index: i, From: r.Waypoints[i].Pos(), To: r.Waypoints[i+1].Pos()})
	}
	if r.Loop {
		out = append(out, Segment{Index: n - 1, From: r.Waypoints[n-1].Pos(), To: r.Waypoints[0].Pos()})
	}

	return out
}

// Clone returns a copy of r with its own waypoint slice.
func (r Route) Clone() Route {
	out := r
	if r.Waypoints != nil {
		out.Waypoints = append([]Waypoint(nil), r.Waypoints...)
	}
	return out
}

// Points returns the waypoint positions in order.
func (r Route) Points() []geom.Point {
	out := make([]geom.Point, len(r.Waypoints))
	for i, w := range r.Waypoints {
		out[i] = w.Pos()
	}
	return out
}

// BoundIDs returns the set of marker ids bound in r.
func (r Route) BoundIDs() map[string]bool {
	out := make(map[string]bool, len(r.Waypoints))
	for _, w := range r.Waypoints {
		if id, ok := MarkerID(w); ok {
			out[id] = true
		}
	}
	return out
}

// checkWaypoints verifies invariant 2 and the committed-point bounds.
func checkWaypoints(wps []Waypoint) error {
	seen := make(map[string]bool, len(wps))
	for _, w := range wps {
		if w == nil {
			return ErrNilWaypoint
		}
		if err := checkOne(w); err != nil {
			return err
		}
		if id, ok := MarkerID(w); ok {
			if seen[id] {
				return ErrDuplicateMarker
			}
			seen[id] = true
		}
	}
	return nil
}

// checkOne validates a single waypoint for commit.
func checkOne(w Waypoint) error {
	if w == nil {
		return ErrNilWaypoint
	}
	p := w.Pos()
	if !p.Finite() || !p.InUnit() {
		return ErrOutOfBounds
	}
	return nil
}
