// Package edit turns pointer input into route mutations.
//
// A Session is a small state machine over route.State. Gestures build a
// transient preview that never touches the route; only a successful
// pointer-up commits, through a single Replace or InsertAt. Cancelling a
// gesture therefore leaves the route exactly as it was.
//
// Invalid or out-of-sequence events are ignored. Only one pointer drives a
// gesture at a time, and while the compute gate is busy the session is
// Locked and ignores pointer input entirely.
package edit

import (
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/lvroute/geom"
	"github.com/katalvlaran/lvroute/markers"
	"github.com/katalvlaran/lvroute/route"
)

const (
	DefaultPickRadius    = 0.015
	DefaultSegmentRadius = 0.010
	DefaultSnapRadius    = 0.015

	lockedReason = "computation in progress"
)

// Options holds hit-test radii in normalised map units. Zero fields take
// their defaults.
type Options struct {
	PickRadius    float64 // pointer-down distance to grab a waypoint
	SegmentRadius float64 // pointer-down distance to start an insertion
	SnapRadius    float64 // distance at which a marker becomes the snap target
}

// DefaultOptions returns the recommended radii.
func DefaultOptions() Options {
	return Options{
		PickRadius:    DefaultPickRadius,
		SegmentRadius: DefaultSegmentRadius,
		SnapRadius:    DefaultSnapRadius,
	}
}

func (o Options) withDefaults() Options {
	if o.PickRadius <= 0 {
		o.PickRadius = DefaultPickRadius
	}
	if o.SegmentRadius <= 0 {
		o.SegmentRadius = DefaultSegmentRadius
	}
	if o.SnapRadius <= 0 {
		o.SnapRadius = DefaultSnapRadius
	}
	return o
}

// MarkerSource lists the markers currently eligible for display.
type MarkerSource interface {
	Visible() []markers.Marker
}

// BusyReporter reports whether a heavy computation is in flight.
type BusyReporter interface {
	Busy() bool
}

// Session is the edit state machine. It is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	route   *route.State
	markers MarkerSource
	busy    BusyReporter
	opts    Options
	log     zerolog.Logger

	cur     State
	pointer int
	// base is the route the active gesture started from; version is the
	// route version at that moment.
	base    route.Route
	version uint64
}

// NewSession returns an Idle session editing state. busy may be nil.
func NewSession(state *route.State, src MarkerSource, busy BusyReporter, opts Options, log zerolog.Logger) *Session {
	return &Session{
		route:   state,
		markers: src,
		busy:    busy,
		opts:    opts.withDefaults(),
		log:     log.With().Str("component", "edit").Logger(),
		cur:     Idle{},
	}
}

// Mode returns the kind of the current state.
func (s *Session) Mode() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.Kind()
}

// Current returns a copy of the current state.
func (s *Session) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Sync re-evaluates the busy lock. Idle becomes Locked while busy and
// Locked returns to Idle once the gate is idle. An active gesture caught by
// a busy gate is discarded.
func (s *Session) Sync() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()
}

func (s *Session) syncLocked() {
	busy := s.busy != nil && s.busy.Busy()
	switch s.cur.(type) {
	case Locked:
		if !busy {
			s.transition(Idle{})
		}
	default:
		if busy {
			s.transition(Locked{Reason: lockedReason})
		}
	}
}

func (s *Session) transition(next State) {
	if s.cur.Kind() != next.Kind() {
		s.log.Debug().Stringer("from", s.cur.Kind()).Stringer("to", next.Kind()).Msg("transition")
	}
	s.cur = next
}

func (s *Session) active() bool {
	switch s.cur.(type) {
	case DraggingWaypoint, InsertingOnSegment:
		return true
	}
	return false
}

// PointerDown starts a drag when p is within PickRadius of a waypoint, or an
// insertion when p is within SegmentRadius of a segment. It is ignored while
// a gesture is active or the session is locked.
func (s *Session) PointerDown(pointerID int, p geom.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncLocked()
	if _, ok := s.cur.(Idle); !ok || !p.Finite() {
		return
	}

	r := s.route.Snapshot()
	if i := nearestWaypoint(r, p, s.opts.PickRadius); i >= 0 {
		s.begin(pointerID, r)
		wp := r.Waypoints[i]
		s.transition(DraggingWaypoint{OriginalIndex: i, Original: wp, Preview: wp.Pos()})
		return
	}
	if seg, ok := nearestSegment(r, p, s.opts.SegmentRadius); ok {
		s.begin(pointerID, r)
		preview, _ := geom.NearestOnSegment(p, seg.From, seg.To)
		s.transition(InsertingOnSegment{
			SegmentIndex: seg.Index,
			Preview:      preview,
			Snap:         s.snapTarget(p, ""),
		})
	}
}

func (s *Session) begin(pointerID int, r route.Route) {
	s.pointer = pointerID
	s.base = r
	s.version = s.route.Version()
}

// PointerMove updates the preview of the active gesture.
func (s *Session) PointerMove(pointerID int, p geom.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncLocked()
	if !s.active() || pointerID != s.pointer || !p.Finite() {
		return
	}
	s.move(p)
}

func (s *Session) move(p geom.Point) {
	switch st := s.cur.(type) {
	case DraggingWaypoint:
		own, _ := route.MarkerID(st.Original)
		st.Preview = p
		st.Snap = s.snapTarget(p, own)
		s.cur = st
	case InsertingOnSegment:
		seg, ok := segmentAt(s.base, st.SegmentIndex)
		if !ok {
			return
		}
		st.Preview, _ = geom.NearestOnLine(p, seg.From, seg.To)
		st.Snap = s.snapTarget(p, "")
		s.cur = st
	}
}

// PointerUp ends the active gesture at p and reports whether the route was
// changed. A drag of a marker-bound waypoint released away from any snap
// target, a free point outside the map, or a gesture whose base route was
// replaced meanwhile are all rolled back.
func (s *Session) PointerUp(pointerID int, p geom.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncLocked()
	if !s.active() || pointerID != s.pointer {
		return false
	}
	if p.Finite() {
		s.move(p)
	}
	committed := s.commit()
	s.transition(Idle{})

	return committed
}

func (s *Session) commit() bool {
	if v := s.route.Version(); v != s.version {
		s.log.Debug().Uint64("began", s.version).Uint64("now", v).Msg("route changed during gesture; discarded")
		return false
	}

	var err error
	switch st := s.cur.(type) {
	case DraggingWaypoint:
		if !st.Snapped() {
			if _, bound := route.MarkerID(st.Original); bound {
				return false
			}
			if !st.Preview.InUnit() {
				return false
			}
		}
		err = s.route.Replace(st.OriginalIndex, st.candidate())
	case InsertingOnSegment:
		if !st.Snapped() && !st.Preview.InUnit() {
			return false
		}
		err = s.route.InsertAt(st.SegmentIndex+1, st.candidate())
	default:
		return false
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("commit rejected")
		return false
	}
	return true
}

// PointerCancel aborts the active gesture without touching the route.
func (s *Session) PointerCancel(pointerID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active() || pointerID != s.pointer {
		return
	}
	s.transition(Idle{})
	s.syncLocked()
}

// ExitMode discards any active gesture. A Locked session stays locked
// until the gate is idle.
func (s *Session) ExitMode() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active() {
		s.transition(Idle{})
	}
	s.syncLocked()
}

// Preview returns the route with the active gesture applied. Without an
// active gesture it equals the route's snapshot.
func (s *Session) Preview() route.Route {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.route.Snapshot()
	if s.route.Version() != s.version {
		return r
	}
	switch st := s.cur.(type) {
	case DraggingWaypoint:
		if st.OriginalIndex < len(r.Waypoints) {
			r.Waypoints[st.OriginalIndex] = st.candidate()
		}
	case InsertingOnSegment:
		at := st.SegmentIndex + 1
		if at <= len(r.Waypoints) {
			r.Waypoints = append(r.Waypoints, nil)
			copy(r.Waypoints[at+1:], r.Waypoints[at:])
			r.Waypoints[at] = st.candidate()
		}
	default:
		return r
	}
	r.Length = route.Measure(r.Waypoints, r.Loop)

	return r
}

// snapTarget returns the closest visible marker within SnapRadius of p that
// is not bound in the gesture's base route. own is also eligible.
func (s *Session) snapTarget(p geom.Point, own string) markers.Marker {
	if s.markers == nil {
		return markers.Marker{}
	}
	bound := s.base.BoundIDs()
	best, bestD := markers.Marker{}, math.Inf(1)
	for _, m := range s.markers.Visible() {
		if bound[m.ID] && m.ID != own {
			continue
		}
		if d := geom.Dist(p, m.Pos); d <= s.opts.SnapRadius && d < bestD {
			best, bestD = m, d
		}
	}
	return best
}

// nearestWaypoint returns the index of the closest waypoint within radius,
// or -1. Ties go to the lowest index.
func nearestWaypoint(r route.Route, p geom.Point, radius float64) int {
	best, bestD := -1, math.Inf(1)
	for i, w := range r.Waypoints {
		if d := geom.Dist(p, w.Pos()); d <= radius && d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

func nearestSegment(r route.Route, p geom.Point, radius float64) (route.Segment, bool) {
	var best route.Segment
	bestD, found := math.Inf(1), false
	for _, seg := range route.Segments(r) {
		if d := geom.DistToSegment(p, seg.From, seg.To); d <= radius && d < bestD {
			best, bestD, found = seg, d, true
		}
	}
	return best, found
}

func segmentAt(r route.Route, index int) (route.Segment, bool) {
	for _, seg := range route.Segments(r) {
		if seg.Index == index {
			return seg, true
		}
	}
	return route.Segment{}, false
}
