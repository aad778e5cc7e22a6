// Package planner wires the marker store, route state, solvers, compute
// gate, edit session and repository into one object a host UI can drive.
package planner

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/katalvlaran/lvroute/config"
	"github.com/katalvlaran/lvroute/edit"
	"github.com/katalvlaran/lvroute/expand"
	"github.com/katalvlaran/lvroute/gate"
	"github.com/katalvlaran/lvroute/geom"
	"github.com/katalvlaran/lvroute/markers"
	"github.com/katalvlaran/lvroute/persist"
	"github.com/katalvlaran/lvroute/route"
	"github.com/katalvlaran/lvroute/tsp"
)

// ErrNoRepository is returned by Save and Load when no repository is attached.
var ErrNoRepository = errors.New("planner: no repository configured")

const (
	labelSolve  = "solve"
	labelExpand = "expand"
)

// Options configures a Planner.
type Options struct {
	Solver tsp.Options
	Expand expand.Options
	Edit   edit.Options

	// Loop starts the route as a closed loop.
	Loop bool

	// RouteName is the repository key used by autosave.
	RouteName string

	// Autosave writes the route to the repository after every change.
	Autosave bool
}

// DefaultOptions returns a looped planner without autosave.
func DefaultOptions() Options {
	return Options{
		Solver:    tsp.DefaultOptions(),
		Expand:    expand.DefaultOptions(),
		Edit:      edit.DefaultOptions(),
		Loop:      true,
		RouteName: "default",
	}
}

// OptionsFrom converts a loaded configuration.
func OptionsFrom(c config.Config) Options {
	return Options{
		Solver:    c.TSP(),
		Expand:    c.ExpandOptions(),
		Edit:      c.EditOptions(),
		Loop:      c.Loop,
		RouteName: c.Storage.RouteName,
		Autosave:  c.Storage.Autosave,
	}
}

// Planner owns one route over one marker store.
type Planner struct {
	store   *markers.Store
	state   *route.State
	gate    *gate.Gate
	session *edit.Session
	repo    *persist.Repository
	opts    Options
	log     zerolog.Logger
}

// New builds a planner. repo may be nil; reg may be nil to skip metrics.
func New(store *markers.Store, repo *persist.Repository, opts Options, reg prometheus.Registerer, log zerolog.Logger) *Planner {
	state := route.NewState(store, log)
	if !opts.Loop {
		state.SetLoop(false)
	}
	g := gate.New("compute", reg, log)
	session := edit.NewSession(state, store, g, opts.Edit, log)

	p := &Planner{
		store:   store,
		state:   state,
		gate:    g,
		session: session,
		repo:    repo,
		opts:    opts,
		log:     log.With().Str("component", "planner").Logger(),
	}

	store.OnDelete(func(id string) { state.OnMarkerDeleted(id) })
	store.OnMove(state.OnMarkerMoved)
	g.OnChange(func(bool) { session.Sync() })

	if opts.Autosave && repo != nil {
		state.Subscribe(p.autosave)
	}
	return p
}

func (p *Planner) autosave(r route.Route) {
	if err := p.repo.Save(p.opts.RouteName, r); err != nil {
		p.log.Error().Err(err).Str("name", p.opts.RouteName).Msg("autosave failed")
	}
}

// Store returns the marker store.
func (p *Planner) Store() *markers.Store { return p.store }

// State returns the route state.
func (p *Planner) State() *route.State { return p.state }

// Route returns a snapshot of the current route.
func (p *Planner) Route() route.Route { return p.state.Snapshot() }

// Length returns the current route length in map widths.
func (p *Planner) Length() float64 { return p.state.Length() }

// Busy reports whether a solve or expand is running.
func (p *Planner) Busy() bool { return p.gate.Busy() }

// OnBusyChange registers fn for gate transitions.
func (p *Planner) OnBusyChange(fn func(busy bool)) { p.gate.OnChange(fn) }

// SolveTour replaces the route with a short tour over every visible marker.
// It reports ran=false when another computation is in progress.
func (p *Planner) SolveTour() (bool, tsp.Result, error) {
	var res tsp.Result
	ran, err := p.gate.Run(labelSolve, func() error {
		visible := p.store.Visible()
		pts := make([]geom.Point, len(visible))
		for i, m := range visible {
			pts[i] = m.Pos
		}

		var err error
		res, err = tsp.Solve(pts, p.opts.Solver)
		if err != nil {
			return fmt.Errorf("planner: solve: %w", err)
		}

		wps := make([]route.Waypoint, len(res.Tour))
		for i, idx := range res.Tour {
			wps[i] = route.Bound(visible[idx].ID, visible[idx].Pos)
		}
		length := res.Length
		if !p.state.Snapshot().Loop {
			length = route.Measure(wps, false)
		}
		return p.state.SetRoute(wps, length)
	})
	if ran && err == nil {
		p.log.Info().Int("markers", len(res.Tour)).Float64("length", res.Length).
			Float64("lowerBound", res.LowerBound).Int("restart", res.Restart).Msg("tour solved")
	}
	return ran, res, err
}

// ExpandRoute splices visible markers within threshold of the route into it.
// It reports ran=false when another computation is in progress.
func (p *Planner) ExpandRoute(threshold float64) (bool, expand.Stats, error) {
	var stats expand.Stats
	ran, err := p.gate.Run(labelExpand, func() error {
		out, st, err := expand.Expand(p.state.Snapshot(), threshold, p.store.Visible(), p.opts.Expand)
		if err != nil {
			return fmt.Errorf("planner: expand: %w", err)
		}
		stats = st
		if st.Inserted == 0 {
			return nil
		}
		return p.state.SetRoute(out.Waypoints, out.Length)
	})
	if ran && err == nil {
		p.log.Info().Int("inserted", stats.Inserted).Int("exact", stats.ExactSegments).
			Int("greedy", stats.GreedySegments).Msg("route expanded")
	}
	return ran, stats, err
}

// Toggle adds or removes the marker from the route.
func (p *Planner) Toggle(markerID string) (bool, error) { return p.state.Toggle(markerID) }

// Reverse reverses the traversal direction.
func (p *Planner) Reverse() { p.state.Reverse() }

// SetLoop switches between loop and open path.
func (p *Planner) SetLoop(loop bool) { p.state.SetLoop(loop) }

// Clear empties the route.
func (p *Planner) Clear() { p.state.Clear() }

// EditMode returns the edit session state kind.
func (p *Planner) EditMode() edit.Kind { return p.session.Mode() }

// EditState returns the full edit session state.
func (p *Planner) EditState() edit.State { return p.session.Current() }

// Preview returns the route with any in-progress edit applied.
func (p *Planner) Preview() route.Route { return p.session.Preview() }

func (p *Planner) PointerDown(pointerID int, at geom.Point) { p.session.PointerDown(pointerID, at) }
func (p *Planner) PointerMove(pointerID int, at geom.Point) { p.session.PointerMove(pointerID, at) }
func (p *Planner) PointerUp(pointerID int, at geom.Point) bool {
	return p.session.PointerUp(pointerID, at)
}
func (p *Planner) PointerCancel(pointerID int) { p.session.PointerCancel(pointerID) }
func (p *Planner) ExitEditMode()               { p.session.ExitMode() }

// Save stores the current route under name.
func (p *Planner) Save(name string) error {
	if p.repo == nil {
		return ErrNoRepository
	}
	return p.repo.Save(name, p.state.Snapshot())
}

// Load replaces the current route with the one stored under name.
func (p *Planner) Load(name string) (persist.Report, error) {
	if p.repo == nil {
		return persist.Report{}, ErrNoRepository
	}
	r, rep, err := p.repo.Load(name, p.store)
	if err != nil {
		return persist.Report{}, err
	}
	if err = p.state.Restore(r); err != nil {
		return persist.Report{}, fmt.Errorf("planner: restore %q: %w", name, err)
	}
	p.log.Info().Str("name", name).Int("resolved", rep.Resolved).Int("upgraded", rep.Upgraded).
		Int("degraded", rep.Degraded).Msg("route loaded")
	return rep, nil
}
