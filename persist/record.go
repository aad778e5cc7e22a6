package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/lvroute/geom"
	"github.com/katalvlaran/lvroute/markers"
	"github.com/katalvlaran/lvroute/route"
)

// ErrMalformed reports a structural fault; nothing is loaded.
var ErrMalformed = errors.New("persist: malformed record")

// LegacyTolerance is the per-axis tolerance used to recover marker identity
// for points stored without an id.
const LegacyTolerance = 1e-7

// FormatVersion is written by Encode. Records without it predate stored
// marker ids and are eligible for the positional upgrade.
const FormatVersion = 1

// Point is one stored waypoint. ID is empty for free waypoints.
type Point struct {
	ID string  `json:"id,omitempty"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Record is the serialised form of a route.
type Record struct {
	Format    int     `json:"format,omitempty"`
	Points    []Point `json:"points"`
	Length    float64 `json:"length"`
	Loop      bool    `json:"loop"`
	Direction int     `json:"direction"`
}

// Report counts how the points of a record were resolved.
type Report struct {
	Resolved int // ids found among live markers
	Upgraded int // id-less points matched to a live marker by position
	Degraded int // ids that no longer resolve, or repeat an earlier one
}

// Markers gives Decode access to live markers. *markers.Store satisfies it.
type Markers interface {
	Lookup(id string) (geom.Point, bool)
	All() []markers.Marker
}

// Encode converts r to its record form.
func Encode(r route.Route) Record {
	rec := Record{
		Format:    FormatVersion,
		Points:    make([]Point, len(r.Waypoints)),
		Length:    r.Length,
		Loop:      r.Loop,
		Direction: r.Direction,
	}
	for i, w := range r.Waypoints {
		p := w.Pos()
		rec.Points[i] = Point{X: p.X, Y: p.Y}
		if id, ok := route.MarkerID(w); ok {
			rec.Points[i].ID = id
		}
	}
	return rec
}

// Marshal returns the JSON encoding of r.
func Marshal(r route.Route) ([]byte, error) {
	return json.Marshal(Encode(r))
}

// Validate reports structural faults in rec.
func Validate(rec Record) error {
	if rec.Points == nil {
		return fmt.Errorf("%w: missing points", ErrMalformed)
	}
	if rec.Format < 0 || rec.Format > FormatVersion {
		return fmt.Errorf("%w: format %d", ErrMalformed, rec.Format)
	}
	if rec.Direction < -1 || rec.Direction > 1 {
		return fmt.Errorf("%w: direction %d", ErrMalformed, rec.Direction)
	}
	if math.IsNaN(rec.Length) || math.IsInf(rec.Length, 0) {
		return fmt.Errorf("%w: length %v", ErrMalformed, rec.Length)
	}
	for i, p := range rec.Points {
		pt := geom.Pt(p.X, p.Y)
		if !pt.Finite() || !pt.InUnit() {
			return fmt.Errorf("%w: point %d at (%v, %v)", ErrMalformed, i, p.X, p.Y)
		}
	}
	return nil
}

// Decode rebuilds a route from rec against the live markers. live may be
// nil, in which case every id degrades and nothing is upgraded. Stored
// lengths are not trusted; the result's length is recomputed.
//
// Id-less points are matched by position only in legacy records: no format
// version and no point carrying an id. Elsewhere an id-less point is a free
// waypoint, even one that sits on a marker.
func Decode(rec Record, live Markers) (route.Route, Report, error) {
	if err := Validate(rec); err != nil {
		return route.Route{}, Report{}, err
	}

	var all []markers.Marker
	if live != nil && isLegacy(rec) {
		all = live.All()
	}

	r := route.New(rec.Loop)
	if rec.Direction == -1 {
		r.Direction = -1
	}
	var rep Report
	used := make(map[string]bool, len(rec.Points))
	wps := make([]route.Waypoint, 0, len(rec.Points))
	for _, p := range rec.Points {
		at := geom.Pt(p.X, p.Y)
		switch {
		case p.ID != "":
			pos, ok := lookup(live, p.ID)
			if !ok || used[p.ID] {
				rep.Degraded++
				wps = append(wps, route.Free(at))
				continue
			}
			used[p.ID] = true
			rep.Resolved++
			wps = append(wps, route.Bound(p.ID, pos))
		default:
			m, ok := MatchLegacy(at, all, LegacyTolerance)
			if !ok || used[m.ID] {
				wps = append(wps, route.Free(at))
				continue
			}
			used[m.ID] = true
			rep.Upgraded++
			wps = append(wps, route.Bound(m.ID, m.Pos))
		}
	}
	if len(wps) > 0 {
		r.Waypoints = wps
	}
	r.Length = route.Measure(r.Waypoints, r.Loop)

	return r, rep, nil
}

func isLegacy(rec Record) bool {
	if rec.Format != 0 {
		return false
	}
	for _, p := range rec.Points {
		if p.ID != "" {
			return false
		}
	}
	return true
}

func lookup(live Markers, id string) (geom.Point, bool) {
	if live == nil {
		return geom.Point{}, false
	}
	return live.Lookup(id)
}

// Unmarshal parses data, accepting both the record object and the legacy
// bare array of points, and decodes it against live.
func Unmarshal(data []byte, live Markers) (route.Route, Report, error) {
	rec, err := parse(data)
	if err != nil {
		return route.Route{}, Report{}, err
	}
	return Decode(rec, live)
}

// wireRecord distinguishes an absent points key from an empty array.
type wireRecord struct {
	Format    int          `json:"format"`
	Points    *[]wirePoint `json:"points"`
	Length    float64      `json:"length"`
	Loop      *bool        `json:"loop"`
	Direction int          `json:"direction"`
}

type wirePoint struct {
	ID string   `json:"id"`
	X  *float64 `json:"x"`
	Y  *float64 `json:"y"`
}

func parse(data []byte) (Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Record{}, fmt.Errorf("%w: empty input", ErrMalformed)
	}

	var w wireRecord
	if data[0] == '[' {
		var pts []wirePoint
		if err := json.Unmarshal(data, &pts); err != nil {
			return Record{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		w.Points = &pts
	} else if err := json.Unmarshal(data, &w); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if w.Points == nil {
		return Record{}, fmt.Errorf("%w: missing points", ErrMalformed)
	}

	rec := Record{
		Format:    w.Format,
		Points:    make([]Point, len(*w.Points)),
		Length:    w.Length,
		Loop:      true,
		Direction: w.Direction,
	}
	if w.Loop != nil {
		rec.Loop = *w.Loop
	}
	for i, p := range *w.Points {
		if p.X == nil || p.Y == nil {
			return Record{}, fmt.Errorf("%w: point %d lacks coordinates", ErrMalformed, i)
		}
		rec.Points[i] = Point{ID: p.ID, X: *p.X, Y: *p.Y}
	}
	return rec, nil
}

// MatchLegacy returns the live marker whose position equals p within tol on
// both axes. When several qualify, the closest wins, then the earliest in
// live. It does not mutate anything.
func MatchLegacy(p geom.Point, live []markers.Marker, tol float64) (markers.Marker, bool) {
	best, bestD, found := markers.Marker{}, math.Inf(1), false
	for _, m := range live {
		if math.Abs(m.Pos.X-p.X) > tol || math.Abs(m.Pos.Y-p.Y) > tol {
			continue
		}
		if d := geom.Dist2(m.Pos, p); d < bestD {
			best, bestD, found = m, d, true
		}
	}
	return best, found
}
