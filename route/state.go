package route

import (
	"errors"
	"math"
	"slices"
	"sync"

	"github.com/katalvlaran/lvroute/geom"
	"github.com/rs/zerolog"
)

var (
	// ErrIndexOutOfRange is returned for an index outside the valid range.
	ErrIndexOutOfRange = errors.New("route: index out of range")

	// ErrDuplicateMarker is returned when a marker would be bound twice.
	ErrDuplicateMarker = errors.New("route: marker already in route")

	// ErrUnknownMarker is returned when a marker id does not resolve.
	ErrUnknownMarker = errors.New("route: unknown marker")

	// ErrOutOfBounds is returned when committing a point outside the unit square.
	ErrOutOfBounds = errors.New("route: point outside unit square")

	// ErrNilWaypoint is returned for a nil Waypoint.
	ErrNilWaypoint = errors.New("route: nil waypoint")
)

// lengthTolerance is the accepted drift between a caller-supplied length and
// the recomputed one before SetRoute logs a mismatch.
const lengthTolerance = 1e-9

// Resolver resolves live marker positions.
type Resolver interface {
	Lookup(id string) (geom.Point, bool)
}

// State owns the canonical Route. All methods are safe for concurrent use.
type State struct {
	mu       sync.RWMutex
	r        Route
	version  uint64
	resolver Resolver
	subs     []func(Route)
	log      zerolog.Logger
}

// NewState returns an empty, closed-loop route state.
func NewState(resolver Resolver, log zerolog.Logger) *State {
	return &State{
		r:        New(true),
		resolver: resolver,
		log:      log.With().Str("component", "route").Logger(),
	}
}

// Subscribe registers fn to receive a snapshot after every mutation.
func (s *State) Subscribe(fn func(Route)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// commit recomputes the length, bumps the version and returns the
// notification closure. Caller holds the write lock.
func (s *State) commit() func() {
	if len(s.r.Waypoints) == 0 {
		s.r.Waypoints = nil
		s.r.Direction = 1
	}
	s.r.Length = Measure(s.r.Waypoints, s.r.Loop)
	s.version++

	if len(s.subs) == 0 {
		return func() {}
	}
	snap := s.r.Clone()
	subs := slices.Clone(s.subs)
	return func() {
		for _, fn := range subs {
			fn(snap)
		}
	}
}

// Snapshot returns a deep copy of the current route.
func (s *State) Snapshot() Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r.Clone()
}

// Version returns a counter incremented by every mutation.
func (s *State) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len returns the number of waypoints.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.r.Waypoints)
}

// Length returns the cached route length.
func (s *State) Length() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r.Length
}

// IndexOf returns the index of the waypoint bound to markerID, or -1.
func (s *State) IndexOf(markerID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.r.Waypoints, markerID)
}

func indexOf(wps []Waypoint, markerID string) int {
	for i, w := range wps {
		if id, ok := MarkerID(w); ok && id == markerID {
			return i
		}
	}
	return -1
}

// rebind refreshes a marker waypoint from the resolver and reports whether
// its marker is still live. Caller holds the write lock.
func (s *State) rebind(w Waypoint) (Waypoint, bool) {
	id, ok := MarkerID(w)
	if !ok || s.resolver == nil {
		return w, true
	}
	p, live := s.resolver.Lookup(id)
	if !live {
		return nil, false
	}
	return MarkerStop{ID: id, At: p}, true
}

// resolve rebinds every marker waypoint to the live marker position and drops
// waypoints whose marker no longer resolves. Caller holds the write lock, so
// a deletion either lands before resolve sees it or reaches OnMarkerDeleted
// after the commit.
func (s *State) resolve(wps []Waypoint) ([]Waypoint, int) {
	out := make([]Waypoint, 0, len(wps))
	for _, w := range wps {
		if w, live := s.rebind(w); live {
			out = append(out, w)
		}
	}
	return out, len(wps) - len(out)
}

// lookup resolves a single marker id. Caller holds the write lock.
func (s *State) lookup(id string) (geom.Point, bool) {
	if s.resolver == nil {
		return geom.Point{}, false
	}
	return s.resolver.Lookup(id)
}

// SetRoute replaces the waypoints. The supplied length is advisory: the
// stored length is always recomputed. Waypoints bound to markers deleted
// since wps was computed are dropped.
func (s *State) SetRoute(wps []Waypoint, length float64) error {
	if err := checkWaypoints(wps); err != nil {
		return err
	}

	s.mu.Lock()
	var dropped int
	s.r.Waypoints, dropped = s.resolve(wps)
	notify := s.commit()
	got := s.r.Length
	s.mu.Unlock()

	if dropped > 0 {
		s.log.Debug().Int("dropped", dropped).Msg("stale marker waypoints dropped")
	} else if math.Abs(got-length) > lengthTolerance {
		s.log.Debug().Float64("supplied", length).Float64("recomputed", got).Msg("route length mismatch")
	}
	notify()

	return nil
}

// Restore replaces the whole route, including loop and direction flags.
func (s *State) Restore(r Route) error {
	if err := checkWaypoints(r.Waypoints); err != nil {
		return err
	}

	s.mu.Lock()
	wps, dropped := s.resolve(r.Waypoints)
	s.r = Route{
		Waypoints: wps,
		Loop:      r.Loop,
		Direction: 1,
	}
	if r.Direction < 0 {
		s.r.Direction = -1
	}
	notify := s.commit()
	s.mu.Unlock()

	if dropped > 0 {
		s.log.Debug().Int("dropped", dropped).Msg("stale marker waypoints dropped")
	}
	notify()

	return nil
}

// Toggle removes the waypoint bound to markerID if present; otherwise it
// appends a new bound waypoint at the end of the route (just before the
// closing edge of a loop). It reports whether a waypoint was added.
func (s *State) Toggle(markerID string) (bool, error) {
	s.mu.Lock()
	if i := indexOf(s.r.Waypoints, markerID); i >= 0 {
		s.r.Waypoints = append(s.r.Waypoints[:i:i], s.r.Waypoints[i+1:]...)
		notify := s.commit()
		s.mu.Unlock()
		notify()
		return false, nil
	}

	p, ok := s.lookup(markerID)
	if !ok {
		s.mu.Unlock()
		return false, ErrUnknownMarker
	}
	s.r.Waypoints = append(s.r.Waypoints, MarkerStop{ID: markerID, At: p})
	notify := s.commit()
	s.mu.Unlock()
	notify()

	return true, nil
}

// InsertAt inserts wp before position index; index == Len() appends.
func (s *State) InsertAt(index int, wp Waypoint) error {
	if err := checkOne(wp); err != nil {
		return err
	}

	s.mu.Lock()
	n := len(s.r.Waypoints)
	if index < 0 || index > n {
		s.mu.Unlock()
		return ErrIndexOutOfRange
	}
	if id, ok := MarkerID(wp); ok {
		if indexOf(s.r.Waypoints, id) >= 0 {
			s.mu.Unlock()
			return ErrDuplicateMarker
		}
		var live bool
		if wp, live = s.rebind(wp); !live {
			s.mu.Unlock()
			return ErrUnknownMarker
		}
	}
	wps := make([]Waypoint, 0, n+1)
	wps = append(wps, s.r.Waypoints[:index]...)
	wps = append(wps, wp)
	wps = append(wps, s.r.Waypoints[index:]...)
	s.r.Waypoints = wps
	notify := s.commit()
	s.mu.Unlock()
	notify()

	return nil
}

// Replace rebinds the waypoint at index.
func (s *State) Replace(index int, wp Waypoint) error {
	if err := checkOne(wp); err != nil {
		return err
	}

	s.mu.Lock()
	if index < 0 || index >= len(s.r.Waypoints) {
		s.mu.Unlock()
		return ErrIndexOutOfRange
	}
	if id, ok := MarkerID(wp); ok {
		if j := indexOf(s.r.Waypoints, id); j >= 0 && j != index {
			s.mu.Unlock()
			return ErrDuplicateMarker
		}
		var live bool
		if wp, live = s.rebind(wp); !live {
			s.mu.Unlock()
			return ErrUnknownMarker
		}
	}
	wps := append([]Waypoint(nil), s.r.Waypoints...)
	wps[index] = wp
	s.r.Waypoints = wps
	notify := s.commit()
	s.mu.Unlock()
	notify()

	return nil
}

// RemoveWaypoint removes the waypoint at index. Removing the last waypoint
// clears the route.
func (s *State) RemoveWaypoint(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.r.Waypoints) {
		s.mu.Unlock()
		return ErrIndexOutOfRange
	}
	s.r.Waypoints = append(s.r.Waypoints[:index:index], s.r.Waypoints[index+1:]...)
	notify := s.commit()
	s.mu.Unlock()
	notify()

	return nil
}

// Reverse reverses waypoint order and flips the direction flag. Reversing an
// empty route is a no-op.
func (s *State) Reverse() {
	s.mu.Lock()
	n := len(s.r.Waypoints)
	if n == 0 {
		s.mu.Unlock()
		return
	}
	wps := make([]Waypoint, n)
	for i, w := range s.r.Waypoints {
		wps[n-1-i] = w
	}
	s.r.Waypoints = wps
	s.r.Direction = -s.r.Direction
	notify := s.commit()
	s.mu.Unlock()
	notify()
}

// SetLoop switches between a closed loop and an open path.
func (s *State) SetLoop(loop bool) {
	s.mu.Lock()
	if s.r.Loop == loop {
		s.mu.Unlock()
		return
	}
	s.r.Loop = loop
	notify := s.commit()
	s.mu.Unlock()
	notify()
}

// Clear empties the route, keeping the loop flag.
func (s *State) Clear() {
	s.mu.Lock()
	s.r.Waypoints = nil
	notify := s.commit()
	s.mu.Unlock()
	notify()
}

// OnMarkerDeleted removes the waypoint bound to markerID and reports whether
// the route changed. Calling it again for the same id is a no-op.
func (s *State) OnMarkerDeleted(markerID string) bool {
	s.mu.Lock()
	i := indexOf(s.r.Waypoints, markerID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.r.Waypoints = append(s.r.Waypoints[:i:i], s.r.Waypoints[i+1:]...)
	notify := s.commit()
	left := len(s.r.Waypoints)
	s.mu.Unlock()

	s.log.Debug().Str("marker", markerID).Int("waypoints", left).Msg("waypoint dropped for deleted marker")
	notify()

	return true
}

// OnMarkerMoved refreshes the cached position of the waypoint bound to markerID.
func (s *State) OnMarkerMoved(markerID string, p geom.Point) {
	s.mu.Lock()
	i := indexOf(s.r.Waypoints, markerID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	wps := append([]Waypoint(nil), s.r.Waypoints...)
	wps[i] = MarkerStop{ID: markerID, At: p}
	s.r.Waypoints = wps
	notify := s.commit()
	s.mu.Unlock()
	notify()
}
