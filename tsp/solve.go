// Package tsp - multi-start dispatcher.
//
// Solve validates inputs, builds the shared distance matrix once, runs every
// restart (optionally in parallel) and keeps the best tour. Restart results
// are collected by index and compared in restart order afterwards, so the
// parallel and sequential paths select the same tour.
package tsp

import (
	"runtime"

	"github.com/katalvlaran/lvroute/geom"
	"github.com/katalvlaran/lvroute/matrix"
	"golang.org/x/sync/errgroup"
)

// restartResult is the outcome of a single restart.
type restartResult struct {
	tour   []int // closed
	length float64
}

// Solve computes a near-optimal closed tour visiting every point once.
//
// Contracts:
//   - points may be empty; coordinates must be finite.
//   - The returned Tour is a permutation of 0..len(points)-1.
//
// Errors: ErrInvalidOptions, ErrNonFinitePoint. Never fails otherwise.
func Solve(points []geom.Point, opts Options) (Result, error) {
	n := len(points)
	o, err := normalize(opts, n)
	if err != nil {
		return Result{}, err
	}
	if err = validatePoints(points); err != nil {
		return Result{}, err
	}

	switch n {
	case 0:
		return Result{Tour: []int{}}, nil
	case 1:
		return Result{Tour: []int{0}}, nil
	}

	dist, err := matrix.Euclidean(points)
	if err != nil {
		return Result{}, ErrNonFinitePoint
	}
	w := dist.Flat()

	results := make([]restartResult, o.Restarts)
	if o.Parallel && o.Restarts > 1 {
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for r := 0; r < o.Restarts; r++ {
			g.Go(func() error {
				results[r] = runRestart(w, n, r, o)
				return nil
			})
		}
		_ = g.Wait() // restarts never fail
	} else {
		for r := 0; r < o.Restarts; r++ {
			results[r] = runRestart(w, n, r, o)
		}
	}

	// Monotonic best-of: strictly shorter wins, ties keep the earlier restart.
	best := 0
	for r := 1; r < len(results); r++ {
		if results[r].length < results[best].length {
			best = r
		}
	}

	return Result{
		Tour:       CanonicalizeOrientation(results[best].tour),
		Length:     geom.Round1e9(results[best].length),
		Restart:    best,
		LowerBound: geom.Round1e9(mstWeight(w, n)),
	}, nil
}

// runRestart executes construction → 2-opt → bounded 3-opt for restart r.
func runRestart(w []float64, n, r int, o Options) restartResult {
	rng := restartRNG(o.Seed, r)
	tour := nearestNeighbor(w, n, startVertex(r, n, rng))

	twoOpt(w, n, tour, o.TwoOptMaxIters, o.Eps)
	if n > o.SmallCutoff {
		tour, _ = threeOpt(w, n, tour, o.ThreeOptIterBudget, o.Eps, rng)
	}

	return restartResult{tour: tour, length: closedLength(w, n, tour)}
}
