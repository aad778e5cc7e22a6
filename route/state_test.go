package route_test

import (
	"testing"

	"github.com/katalvlaran/lvroute/geom"
	"github.com/katalvlaran/lvroute/route"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResolver is a fixed marker table.
type fakeResolver map[string]geom.Point

func (f fakeResolver) Lookup(id string) (geom.Point, bool) {
	p, ok := f[id]
	return p, ok
}

var testMarkers = fakeResolver{
	"a": geom.Pt(0.1, 0.1),
	"b": geom.Pt(0.5, 0.9),
	"c": geom.Pt(0.9, 0.1),
	"d": geom.Pt(0.5, 0.5),
}

func newState(t *testing.T, ids ...string) *route.State {
	t.Helper()
	s := route.NewState(testMarkers, zerolog.Nop())
	for _, id := range ids {
		added, err := s.Toggle(id)
		require.NoError(t, err)
		require.True(t, added)
	}
	return s
}

func TestMeasure(t *testing.T) {
	wps := []route.Waypoint{
		route.Free(geom.Pt(0, 0)), route.Free(geom.Pt(1, 0)),
		route.Free(geom.Pt(1, 1)), route.Free(geom.Pt(0, 1)),
	}
	assert.InDelta(t, 3.0, route.Measure(wps, false), 1e-12)
	assert.InDelta(t, 4.0, route.Measure(wps, true), 1e-12)
	assert.Zero(t, route.Measure(wps[:1], true))
	assert.Zero(t, route.Measure(nil, true))
}

func TestSegments(t *testing.T) {
	r := route.Route{Waypoints: []route.Waypoint{
		route.Free(geom.Pt(0, 0)), route.Free(geom.Pt(1, 0)), route.Free(geom.Pt(1, 1)),
	}, Loop: true}

	segs := route.Segments(r)
	require.Len(t, segs, 3)
	assert.Equal(t, 2, segs[2].Index)
	assert.Equal(t, geom.Pt(1, 1), segs[2].From)
	assert.Equal(t, geom.Pt(0, 0), segs[2].To)

	r.Loop = false
	assert.Len(t, route.Segments(r), 2)
	assert.Nil(t, route.Segments(route.Route{Waypoints: r.Waypoints[:1]}))
}

func TestMarkerID(t *testing.T) {
	id, ok := route.MarkerID(route.Bound("x", geom.Pt(0, 0)))
	assert.True(t, ok)
	assert.Equal(t, "x", id)

	_, ok = route.MarkerID(route.Free(geom.Pt(0, 0)))
	assert.False(t, ok)
}

func TestState_ToggleAppendsAndRemoves(t *testing.T) {
	s := newState(t, "a", "b", "c")
	r := s.Snapshot()
	require.Len(t, r.Waypoints, 3)
	assert.Equal(t, route.MarkerStop{ID: "c", At: testMarkers["c"]}, r.Waypoints[2])
	assert.InDelta(t, route.Measure(r.Waypoints, true), r.Length, 1e-12)

	added, err := s.Toggle("b")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, -1, s.IndexOf("b"))
	assert.Equal(t, 1, s.IndexOf("c"), "subsequent indices shift")

	_, err = s.Toggle("nope")
	assert.ErrorIs(t, err, route.ErrUnknownMarker)
}

func TestState_InsertAt(t *testing.T) {
	s := newState(t, "a", "c")

	require.NoError(t, s.InsertAt(1, route.Free(geom.Pt(0.5, 0))))
	require.NoError(t, s.InsertAt(3, route.Bound("d", testMarkers["d"])))
	assert.Equal(t, 4, s.Len())

	assert.ErrorIs(t, s.InsertAt(5, route.Free(geom.Pt(0.2, 0.2))), route.ErrIndexOutOfRange)
	assert.ErrorIs(t, s.InsertAt(-1, route.Free(geom.Pt(0.2, 0.2))), route.ErrIndexOutOfRange)
	assert.ErrorIs(t, s.InsertAt(0, route.Bound("a", testMarkers["a"])), route.ErrDuplicateMarker)
	assert.ErrorIs(t, s.InsertAt(0, route.Free(geom.Pt(1.2, 0.2))), route.ErrOutOfBounds)
	assert.ErrorIs(t, s.InsertAt(0, nil), route.ErrNilWaypoint)
	assert.Equal(t, 4, s.Len(), "failed inserts must not mutate")
}

func TestState_RemoveWaypointClears(t *testing.T) {
	s := newState(t, "a", "b")
	s.Reverse()

	require.NoError(t, s.RemoveWaypoint(0))
	require.NoError(t, s.RemoveWaypoint(0))
	assert.ErrorIs(t, s.RemoveWaypoint(0), route.ErrIndexOutOfRange)

	r := s.Snapshot()
	assert.Nil(t, r.Waypoints)
	assert.Zero(t, r.Length)
	assert.Equal(t, 1, r.Direction)
	assert.True(t, r.Loop)
}

func TestState_Reverse(t *testing.T) {
	s := newState(t, "a", "b", "c")
	before := s.Snapshot()

	s.Reverse()
	r := s.Snapshot()
	assert.Equal(t, -1, r.Direction)
	assert.Equal(t, before.Waypoints[0], r.Waypoints[2])
	assert.InDelta(t, before.Length, r.Length, 1e-12)

	s.Reverse()
	assert.Equal(t, before, s.Snapshot())
}

func TestState_OnMarkerDeleted_LoopAndOpen(t *testing.T) {
	for _, loop := range []bool{true, false} {
		s := newState(t, "a", "b", "c")
		s.SetLoop(loop)

		assert.True(t, s.OnMarkerDeleted("b"))
		r := s.Snapshot()
		require.Len(t, r.Waypoints, 2)

		d := geom.Dist(testMarkers["a"], testMarkers["c"])
		want := d
		if loop {
			want = 2 * d
		}
		assert.InDelta(t, want, r.Length, 1e-12, "loop=%v", loop)
	}
}

func TestState_OnMarkerDeleted_Idempotent(t *testing.T) {
	s := newState(t, "a", "b", "c")

	assert.True(t, s.OnMarkerDeleted("b"))
	once := s.Snapshot()
	v := s.Version()

	assert.False(t, s.OnMarkerDeleted("b"))
	assert.Equal(t, once, s.Snapshot())
	assert.Equal(t, v, s.Version(), "no-op must not bump version")
}

func TestState_OnMarkerDeleted_LastWaypointClears(t *testing.T) {
	s := newState(t, "a")
	s.Reverse()
	assert.True(t, s.OnMarkerDeleted("a"))

	r := s.Snapshot()
	assert.Nil(t, r.Waypoints)
	assert.Zero(t, r.Length)
	assert.Equal(t, 1, r.Direction)
}

func TestState_OnMarkerMoved(t *testing.T) {
	s := newState(t, "a", "b")
	s.OnMarkerMoved("a", geom.Pt(0.5, 0.1))

	r := s.Snapshot()
	assert.Equal(t, route.MarkerStop{ID: "a", At: geom.Pt(0.5, 0.1)}, r.Waypoints[0])
	assert.InDelta(t, 2*0.8, r.Length, 1e-12)

	v := s.Version()
	s.OnMarkerMoved("zzz", geom.Pt(0, 0))
	assert.Equal(t, v, s.Version())
}

func TestState_SetRouteAndRestore(t *testing.T) {
	s := newState(t)
	wps := []route.Waypoint{route.Bound("a", testMarkers["a"]), route.Free(geom.Pt(0.3, 0.3))}

	require.NoError(t, s.SetRoute(wps, 123)) // bogus length is recomputed
	assert.InDelta(t, route.Measure(wps, true), s.Length(), 1e-12)

	dup := []route.Waypoint{route.Bound("a", testMarkers["a"]), route.Bound("a", testMarkers["a"])}
	assert.ErrorIs(t, s.SetRoute(dup, 0), route.ErrDuplicateMarker)

	require.NoError(t, s.Restore(route.Route{Waypoints: wps, Loop: false, Direction: -1}))
	r := s.Snapshot()
	assert.False(t, r.Loop)
	assert.Equal(t, -1, r.Direction)
	assert.InDelta(t, route.Measure(wps, false), r.Length, 1e-12)
}

func TestState_ReplaceChecksDuplicates(t *testing.T) {
	s := newState(t, "a", "b")

	require.NoError(t, s.Replace(1, route.Bound("b", testMarkers["b"])), "rebinding in place is fine")
	assert.ErrorIs(t, s.Replace(1, route.Bound("a", testMarkers["a"])), route.ErrDuplicateMarker)
	assert.ErrorIs(t, s.Replace(2, route.Free(geom.Pt(0, 0))), route.ErrIndexOutOfRange)

	require.NoError(t, s.Replace(0, route.Bound("c", testMarkers["c"])))
	assert.Equal(t, 0, s.IndexOf("c"))
}

func TestState_SnapshotIsIsolated(t *testing.T) {
	s := newState(t, "a", "b")
	snap := s.Snapshot()
	snap.Waypoints[0] = route.Free(geom.Pt(0, 0))

	assert.Equal(t, 0, s.IndexOf("a"))
}

func TestState_SubscribersSeeEveryMutation(t *testing.T) {
	s := newState(t)
	var lengths []float64
	s.Subscribe(func(r route.Route) { lengths = append(lengths, r.Length) })

	_, _ = s.Toggle("a")
	_, _ = s.Toggle("c")
	s.Clear()

	require.Len(t, lengths, 3)
	assert.InDelta(t, 1.6, lengths[1], 1e-12)
	assert.Zero(t, lengths[2])
}

func TestState_StaleMarkersNeverCommit(t *testing.T) {
	live := fakeResolver{}
	for id, p := range testMarkers {
		live[id] = p
	}
	s := route.NewState(live, zerolog.Nop())
	_, err := s.Toggle("a")
	require.NoError(t, err)

	// A result computed while "b" was live, committed after its deletion.
	computed := []route.Waypoint{
		route.Bound("a", live["a"]), route.Bound("b", live["b"]), route.Bound("c", live["c"]),
	}
	delete(live, "b")
	assert.False(t, s.OnMarkerDeleted("b"))

	require.NoError(t, s.SetRoute(computed, 0))
	assert.Equal(t, -1, s.IndexOf("b"))
	assert.Equal(t, 2, s.Len())
	assert.InDelta(t, 2*geom.Dist(live["a"], live["c"]), s.Length(), 1e-12)

	require.NoError(t, s.Restore(route.Route{Waypoints: computed, Loop: true}))
	assert.Equal(t, -1, s.IndexOf("b"))

	_, err = s.Toggle("b")
	assert.ErrorIs(t, err, route.ErrUnknownMarker)
	assert.ErrorIs(t, s.InsertAt(0, route.Bound("b", testMarkers["b"])), route.ErrUnknownMarker)
	assert.ErrorIs(t, s.Replace(0, route.Bound("b", testMarkers["b"])), route.ErrUnknownMarker)
	assert.Equal(t, 2, s.Len())
}

func TestState_CommitUsesLivePosition(t *testing.T) {
	live := fakeResolver{"a": geom.Pt(0.1, 0.1), "c": geom.Pt(0.9, 0.1)}
	s := route.NewState(live, zerolog.Nop())

	wps := []route.Waypoint{route.Bound("a", live["a"]), route.Bound("c", live["c"])}
	live["c"] = geom.Pt(0.5, 0.1)
	require.NoError(t, s.SetRoute(wps, 0))

	r := s.Snapshot()
	assert.Equal(t, route.MarkerStop{ID: "c", At: geom.Pt(0.5, 0.1)}, r.Waypoints[1])
	assert.InDelta(t, 0.8, r.Length, 1e-12)
}
