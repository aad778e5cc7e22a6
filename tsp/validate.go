// Package tsp - option and input validation.
//
// Validation is side-effect free and returns sentinels from types.go only.
package tsp

import (
	"math"

	"github.com/katalvlaran/lvroute/geom"
)

// normalize validates opts and fills zero-valued knobs for an instance of size n.
//
// Complexity: O(1).
func normalize(opts Options, n int) (Options, error) {
	if opts.Restarts < 0 || opts.ThreeOptIterBudget < 0 || opts.ThreeOptFactor < 0 ||
		opts.SmallCutoff < 0 || opts.TwoOptMaxIters < 0 {
		return Options{}, ErrInvalidOptions
	}
	// A negative epsilon would invert the acceptance rule Δ < −eps.
	if opts.Eps < 0 || math.IsNaN(opts.Eps) || math.IsInf(opts.Eps, 0) {
		return Options{}, ErrInvalidOptions
	}

	if opts.Restarts == 0 {
		opts.Restarts = 1
	}
	if opts.ThreeOptFactor == 0 {
		opts.ThreeOptFactor = DefaultThreeOptFactor
	}
	if opts.ThreeOptIterBudget == 0 {
		opts.ThreeOptIterBudget = opts.ThreeOptFactor * n
	}
	if opts.TwoOptMaxIters == 0 {
		opts.TwoOptMaxIters = DefaultTwoOptMaxIters
	}
	if opts.Eps == 0 {
		opts.Eps = DefaultEps
	}

	return opts, nil
}

// validatePoints rejects NaN/±Inf coordinates.
//
// Complexity: O(n).
func validatePoints(pts []geom.Point) error {
	var i int
	for i = range pts {
		if !pts[i].Finite() {
			return ErrNonFinitePoint
		}
	}

	return nil
}
