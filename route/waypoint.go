package route

import "github.com/katalvlaran/lvroute/geom"

// Waypoint is an ordered element of a Route. The interface is sealed: the
// only implementations are MarkerStop and FreeStop.
type Waypoint interface {
	// Pos returns the waypoint location.
	Pos() geom.Point
	isWaypoint()
}

// MarkerStop is a waypoint bound to a marker identity.
type MarkerStop struct {
	ID string
	At geom.Point
}

// FreeStop is a waypoint at a free position.
type FreeStop struct {
	At geom.Point
}

func (m MarkerStop) Pos() geom.Point { return m.At }
func (MarkerStop) isWaypoint()         {}

func (f FreeStop) Pos() geom.Point { return f.At }
func (FreeStop) isWaypoint()         {}

// Bound returns a MarkerStop for the marker id located at p.
func Bound(id string, p geom.Point) Waypoint { return MarkerStop{ID: id, At: p} }

// Free returns a FreeStop at p.
func Free(p geom.Point) Waypoint { return FreeStop{At: p} }

// MarkerID reports the bound marker id of w, if any.
func MarkerID(w Waypoint) (string, bool) {
	if m, ok := w.(MarkerStop); ok {
		return m.ID, true
	}
	return "", false
}
