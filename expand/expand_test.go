package expand_test

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvroute/expand"
	"github.com/katalvlaran/lvroute/geom"
	"github.com/katalvlaran/lvroute/markers"
	"github.com/katalvlaran/lvroute/route"
)

func mk(id string, x, y float64) markers.Marker {
	return markers.Marker{ID: id, Pos: geom.Pt(x, y)}
}

func boundRoute(loop bool, ms ...markers.Marker) route.Route {
	r := route.New(loop)
	for _, m := range ms {
		r.Waypoints = append(r.Waypoints, route.Bound(m.ID, m.Pos))
	}
	r.Length = route.Measure(r.Waypoints, loop)
	return r
}

func ids(r route.Route) []string {
	out := make([]string, 0, len(r.Waypoints))
	for _, w := range r.Waypoints {
		if id, ok := route.MarkerID(w); ok {
			out = append(out, id)
		} else {
			out = append(out, "*")
		}
	}
	return out
}

func TestExpand_InsertsNearbyInBestOrder(t *testing.T) {
	a, b := mk("a", 0.1, 0.5), mk("b", 0.9, 0.5)
	r := boundRoute(false, a, b)
	// Near a, out of order by id but collinear along the segment.
	cands := []markers.Marker{mk("x2", 0.3, 0.5), mk("x1", 0.2, 0.5), mk("far", 0.5, 0.95)}

	out, st, err := expand.Expand(r, 0.25, cands, expand.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "x1", "x2", "b"}, ids(out))
	assert.InDelta(t, 0.8, out.Length, 1e-12)
	assert.Equal(t, 3, st.Candidates)
	assert.Equal(t, 2, st.Assigned)
	assert.Equal(t, 2, st.Inserted)
	assert.Equal(t, 1, st.ExactSegments)
	assert.Equal(t, 0, st.GreedySegments)
	// Input untouched.
	assert.Equal(t, []string{"a", "b"}, ids(r))
}

func TestExpand_FirstMatchingSegmentWins(t *testing.T) {
	a, b, c := mk("a", 0.2, 0.2), mk("b", 0.8, 0.2), mk("c", 0.5, 0.8)
	r := boundRoute(true, a, b, c)
	// Within threshold of b, which ends segment 0 and starts segment 1.
	out, st, err := expand.Expand(r, 0.1, []markers.Marker{mk("m", 0.8, 0.25)}, expand.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "m", "b", "c"}, ids(out))
	assert.Equal(t, 1, st.Inserted)
}

func TestExpand_LoopClosingSegmentNeverClaimsFirst(t *testing.T) {
	a, b, c := mk("a", 0.2, 0.2), mk("b", 0.8, 0.2), mk("c", 0.8, 0.8)
	// Every loop vertex is also an endpoint of an earlier segment, so a
	// marker near c goes to segment 1 (b → c), not the closing one.
	loop := boundRoute(true, a, b, c)
	out, _, err := expand.Expand(loop, 0.06, []markers.Marker{mk("m", 0.75, 0.8)}, expand.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "m", "c"}, ids(out))

	open := boundRoute(false, a, b, c)
	out, st, err := expand.Expand(open, 0.06, []markers.Marker{mk("m", 0.75, 0.8)}, expand.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "m", "c"}, ids(out))
	assert.Equal(t, 1, st.Inserted)
}

func TestExpand_SkipsBoundDuplicateAndNonFinite(t *testing.T) {
	a, b := mk("a", 0.1, 0.1), mk("b", 0.3, 0.1)
	r := boundRoute(false, a, b)
	cands := []markers.Marker{
		a,                         // already bound
		mk("n", 0.2, 0.12),        // eligible
		mk("n", 0.2, 0.14),        // duplicate id
		mk("nan", math.NaN(), .1), // non-finite
	}
	out, st, err := expand.Expand(r, 0.5, cands, expand.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "n", "b"}, ids(out))
	assert.Equal(t, 1, st.Candidates)
	assertUniqueIDs(t, out)
}

func TestExpand_ShortRoutesUnchanged(t *testing.T) {
	for _, r := range []route.Route{route.New(true), boundRoute(true, mk("a", 0.5, 0.5))} {
		out, st, err := expand.Expand(r, 1, []markers.Marker{mk("z", 0.5, 0.5)}, expand.Options{})
		require.NoError(t, err)
		assert.Equal(t, ids(r), ids(out))
		assert.Zero(t, st.Inserted)
		assert.Zero(t, out.Length)
	}
}

func TestExpand_Errors(t *testing.T) {
	r := boundRoute(false, mk("a", 0.1, 0.1), mk("b", 0.2, 0.2))
	_, _, err := expand.Expand(r, -1, nil, expand.Options{})
	assert.ErrorIs(t, err, expand.ErrNegativeThreshold)
	_, _, err = expand.Expand(r, math.NaN(), nil, expand.Options{})
	assert.ErrorIs(t, err, expand.ErrNegativeThreshold)
	_, _, err = expand.Expand(r, 0.1, nil, expand.Options{ExactCutoff: -1})
	assert.ErrorIs(t, err, expand.ErrInvalidOptions)
	_, _, err = expand.Expand(r, 0.1, nil, expand.Options{ExactCutoff: expand.MaxExactCutoff + 1})
	assert.ErrorIs(t, err, expand.ErrInvalidOptions)
}

func TestExpand_ZeroThresholdOnlyCoincident(t *testing.T) {
	a, b := mk("a", 0.1, 0.1), mk("b", 0.9, 0.9)
	r := boundRoute(false, a, b)
	out, st, err := expand.Expand(r, 0, []markers.Marker{mk("same", 0.1, 0.1), mk("near", 0.1, 0.11)}, expand.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "same", "b"}, ids(out))
	assert.Equal(t, 1, st.Inserted)
}

func TestExpand_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := boundRoute(true, mk("a", 0.1, 0.1), mk("b", 0.9, 0.1), mk("c", 0.9, 0.9), mk("d", 0.1, 0.9))
	var cands []markers.Marker
	for i := 0; i < 40; i++ {
		cands = append(cands, mk(fmt.Sprintf("m%02d", i), rng.Float64(), rng.Float64()))
	}
	first, st1, err := expand.Expand(r, 0.3, cands, expand.Options{})
	require.NoError(t, err)

	// Shuffled input order must not matter.
	shuffled := append([]markers.Marker(nil), cands...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	second, st2, err := expand.Expand(r, 0.3, shuffled, expand.Options{})
	require.NoError(t, err)

	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, first.Length, second.Length)
	assert.Equal(t, st1, st2)
	assertUniqueIDs(t, first)
	assert.InDelta(t, route.Measure(first.Waypoints, true), first.Length, 1e-12)
}

func TestExpand_ExactMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 20; trial++ {
		a, b := mk("a", 0.05, 0.5), mk("b", 0.95, 0.5)
		r := boundRoute(false, a, b)
		k := 2 + trial%5
		var cands []markers.Marker
		for i := 0; i < k; i++ {
			cands = append(cands, mk(fmt.Sprintf("c%d", i), rng.Float64(), rng.Float64()))
		}
		out, st, err := expand.Expand(r, 2, cands, expand.Options{})
		require.NoError(t, err)
		require.Equal(t, k, st.Inserted)
		assert.InDelta(t, bruteForcePath(a.Pos, b.Pos, cands), out.Length, 1e-9, "trial %d", trial)
	}
}

func TestExpand_GreedyAboveCutoff(t *testing.T) {
	a, b := mk("a", 0.0, 0.5), mk("b", 1.0, 0.5)
	r := boundRoute(false, a, b)
	var cands []markers.Marker
	for i := 1; i <= 6; i++ {
		cands = append(cands, mk(fmt.Sprintf("c%d", 7-i), float64(i)/7, 0.5))
	}
	out, st, err := expand.Expand(r, 2, cands, expand.Options{ExactCutoff: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, st.GreedySegments)
	assert.Equal(t, 0, st.ExactSegments)
	// Collinear points: cheapest insertion recovers the straight line.
	assert.Equal(t, []string{"a", "c6", "c5", "c4", "c3", "c2", "c1", "b"}, ids(out))
	assert.InDelta(t, 1.0, out.Length, 1e-12)
}

func TestExpand_FreeEndpointsPreserved(t *testing.T) {
	r := route.New(false)
	r.Waypoints = []route.Waypoint{route.Free(geom.Pt(0.1, 0.1)), route.Free(geom.Pt(0.5, 0.1))}
	out, _, err := expand.Expand(r, 0.1, []markers.Marker{mk("m", 0.15, 0.1)}, expand.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"*", "m", "*"}, ids(out))
	assert.InDelta(t, 0.4, out.Length, 1e-12)
}

func assertUniqueIDs(t *testing.T, r route.Route) {
	t.Helper()
	seen := map[string]bool{}
	for _, w := range r.Waypoints {
		if id, ok := route.MarkerID(w); ok {
			assert.False(t, seen[id], "duplicate marker %q", id)
			seen[id] = true
		}
	}
}

func bruteForcePath(from, to geom.Point, cands []markers.Marker) float64 {
	idx := make([]int, len(cands))
	for i := range idx {
		idx[i] = i
	}
	best := math.Inf(1)
	var perm func(int)
	perm = func(i int) {
		if i == len(idx) {
			prev, sum := from, 0.0
			for _, j := range idx {
				sum += geom.Dist(prev, cands[j].Pos)
				prev = cands[j].Pos
			}
			sum += geom.Dist(prev, to)
			if sum < best {
				best = sum
			}
			return
		}
		for j := i; j < len(idx); j++ {
			idx[i], idx[j] = idx[j], idx[i]
			perm(i + 1)
			idx[i], idx[j] = idx[j], idx[i]
		}
	}
	perm(0)
	return best
}
