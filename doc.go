// Package lvroute is an interactive route-planning engine for points on a
// normalised 2D map (map width = 1).
//
// It turns a set of markers into a short closed tour, grows an existing
// route by splicing in nearby markers, and lets a user reshape the route
// with pointer gestures that can always be cancelled.
//
// Everything lives in subpackages, leaves first:
//
//	geom/        points, distances, nearest point on a segment or line
//	matrix/      dense row-major distance matrices
//	tsp/         multi-start nearest-neighbour + 2-opt + bounded 3-opt tour solver
//	markers/     live marker store with category filtering and change hooks
//	route/       Waypoint sum type, Route, and the mutex-guarded route State
//	expand/      segment expander: Held–Karp per segment, greedy above a cutoff
//	gate/        non-queueing busy gate for heavy computations, with metrics
//	edit/        pointer-driven edit state machine with preview and rollback
//	persist/     JSON route records, legacy upgrade, gorm-backed repository
//	config/      viper configuration
//	logging/     zerolog setup
//	planner/     facade wiring all of the above for a host UI
//	cmd/lvroute  command-line front end
//
// Quick example:
//
//	store := markers.NewStore(log)
//	store.Put(markers.Marker{ID: "a", Pos: geom.Pt(0.1, 0.2)})
//	...
//	p := planner.New(store, nil, planner.DefaultOptions(), nil, log)
//	ran, res, err := p.SolveTour()
//	fmt.Println(ran, res.Length, err)
package lvroute
