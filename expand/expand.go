package expand

import (
	"errors"
	"math"
	"sort"

	"github.com/katalvlaran/lvroute/geom"
	"github.com/katalvlaran/lvroute/markers"
	"github.com/katalvlaran/lvroute/route"
)

var (
	// ErrNegativeThreshold is returned for a negative or NaN threshold.
	ErrNegativeThreshold = errors.New("expand: threshold must be a non-negative number")

	// ErrInvalidOptions is returned when ExactCutoff is outside [0, MaxExactCutoff].
	ErrInvalidOptions = errors.New("expand: invalid options")
)

const (
	// DefaultExactCutoff is the largest per-segment candidate count solved exactly.
	DefaultExactCutoff = 14

	// MaxExactCutoff bounds the DP table (2^18·18 entries) regardless of configuration.
	MaxExactCutoff = 18
)

// Options configures Expand.
type Options struct {
	// ExactCutoff: segments with k ≤ ExactCutoff candidates use the exact DP.
	// 0 ⇒ DefaultExactCutoff.
	ExactCutoff int
}

// DefaultOptions returns the recommended configuration.
func DefaultOptions() Options {
	return Options{ExactCutoff: DefaultExactCutoff}
}

// Stats summarises one Expand run.
type Stats struct {
	Candidates     int // eligible candidates after filtering
	Assigned       int // candidates claimed by some segment
	Inserted       int // candidates spliced into the route
	ExactSegments  int // segments ordered by the DP
	GreedySegments int // segments ordered by cheapest insertion
}

// Expand returns a copy of r with nearby candidates inserted into its segments.
// Candidates already bound in r, duplicated, or with non-finite positions are
// ignored. Routes with fewer than two waypoints are returned unchanged.
func Expand(r route.Route, threshold float64, candidates []markers.Marker, opts Options) (route.Route, Stats, error) {
	if threshold < 0 || math.IsNaN(threshold) {
		return route.Route{}, Stats{}, ErrNegativeThreshold
	}
	if opts.ExactCutoff < 0 || opts.ExactCutoff > MaxExactCutoff {
		return route.Route{}, Stats{}, ErrInvalidOptions
	}
	if opts.ExactCutoff == 0 {
		opts.ExactCutoff = DefaultExactCutoff
	}

	out := r.Clone()
	segs := route.Segments(r)
	if len(segs) == 0 {
		out.Length = route.Measure(out.Waypoints, out.Loop)
		return out, Stats{}, nil
	}

	eligible := eligibleCandidates(r, candidates)
	stats := Stats{Candidates: len(eligible)}

	// First-match assignment in route order.
	claimed := make([][]markers.Marker, len(segs))
	for _, c := range eligible {
		for si, seg := range segs {
			if geom.Dist(c.Pos, seg.From) <= threshold || geom.Dist(c.Pos, seg.To) <= threshold {
				claimed[si] = append(claimed[si], c)
				stats.Assigned++
				break
			}
		}
	}

	// Resolve each segment's intermediate order, keyed by the segment start index.
	inserts := make(map[int][]route.Waypoint, len(segs))
	for si, seg := range segs {
		cs := claimed[si]
		if len(cs) == 0 {
			continue
		}
		pts := make([]geom.Point, len(cs))
		for i, c := range cs {
			pts[i] = c.Pos
		}

		var order []int
		if len(cs) <= opts.ExactCutoff {
			order = exactOrder(seg.From, seg.To, pts)
			stats.ExactSegments++
		} else {
			order = greedyOrder(seg.From, seg.To, pts)
			stats.GreedySegments++
		}

		wps := make([]route.Waypoint, len(order))
		for i, ci := range order {
			wps[i] = route.MarkerStop{ID: cs[ci].ID, At: cs[ci].Pos}
		}
		inserts[seg.Index] = wps
		stats.Inserted += len(wps)
	}

	// Splice after each segment start.
	spliced := make([]route.Waypoint, 0, len(r.Waypoints)+stats.Inserted)
	for i, w := range r.Waypoints {
		spliced = append(spliced, w)
		spliced = append(spliced, inserts[i]...)
	}
	out.Waypoints = spliced
	out.Length = route.Measure(spliced, out.Loop)

	return out, stats, nil
}

// eligibleCandidates drops bound, duplicate and non-finite candidates and
// sorts the rest by id.
func eligibleCandidates(r route.Route, candidates []markers.Marker) []markers.Marker {
	bound := r.BoundIDs()
	seen := make(map[string]bool, len(candidates))
	out := make([]markers.Marker, 0, len(candidates))
	for _, c := range candidates {
		if bound[c.ID] || seen[c.ID] || !c.Pos.Finite() {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}
