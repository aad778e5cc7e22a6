package edit

import (
	"github.com/katalvlaran/lvroute/geom"
	"github.com/katalvlaran/lvroute/markers"
	"github.com/katalvlaran/lvroute/route"
)

// Kind names a session state for display.
type Kind int

const (
	KindIdle Kind = iota
	KindDragging
	KindInserting
	KindLocked
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindDragging:
		return "dragging"
	case KindInserting:
		return "inserting"
	case KindLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// State is the session state. The interface is sealed: the only
// implementations are Idle, DraggingWaypoint, InsertingOnSegment and Locked.
type State interface {
	Kind() Kind
	isState()
}

// Idle accepts new gestures.
type Idle struct{}

// DraggingWaypoint moves an existing waypoint. Original is the binding
// captured at pointer-down and is restored on rollback.
type DraggingWaypoint struct {
	OriginalIndex int
	Original      route.Waypoint
	Preview       geom.Point
	Snap          markers.Marker // zero when no snap target is active
}

// InsertingOnSegment places a new waypoint after segment SegmentIndex's start.
type InsertingOnSegment struct {
	SegmentIndex int
	Preview      geom.Point
	Snap         markers.Marker
}

// Locked rejects pointer input while a computation runs.
type Locked struct {
	Reason string
}

func (Idle) Kind() Kind               { return KindIdle }
func (DraggingWaypoint) Kind() Kind   { return KindDragging }
func (InsertingOnSegment) Kind() Kind { return KindInserting }
func (Locked) Kind() Kind             { return KindLocked }

func (Idle) isState()               {}
func (DraggingWaypoint) isState()   {}
func (InsertingOnSegment) isState() {}
func (Locked) isState()             {}

// Snapped reports whether a snap target is active.
func (d DraggingWaypoint) Snapped() bool { return d.Snap.ID != "" }

// Snapped reports whether a snap target is active.
func (s InsertingOnSegment) Snapped() bool { return s.Snap.ID != "" }

// candidate returns the waypoint a commit would write.
func (d DraggingWaypoint) candidate() route.Waypoint {
	if d.Snapped() {
		return route.Bound(d.Snap.ID, d.Snap.Pos)
	}
	return route.Free(d.Preview)
}

func (s InsertingOnSegment) candidate() route.Waypoint {
	if s.Snapped() {
		return route.Bound(s.Snap.ID, s.Snap.Pos)
	}
	return route.Free(s.Preview)
}
