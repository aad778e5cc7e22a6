package tsp

import "errors"

// Sentinel errors. Callers match with errors.Is.
var (
	// ErrInvalidOptions is returned when a knob is negative or Eps is not finite.
	ErrInvalidOptions = errors.New("tsp: invalid options")

	// ErrNonFinitePoint is returned when an input coordinate is NaN or ±Inf.
	ErrNonFinitePoint = errors.New("tsp: non-finite point coordinate")

	// ErrDimensionMismatch signals a tour whose shape does not match the instance.
	ErrDimensionMismatch = errors.New("tsp: dimension mismatch")
)

// Defaults used by DefaultOptions and by zero-valued knobs.
const (
	DefaultRestarts       = 8
	DefaultThreeOptFactor = 30
	DefaultSmallCutoff    = 7
	DefaultTwoOptMaxIters = 10_000
	DefaultEps            = 1e-12
)

// Options configures Solve.
type Options struct {
	// Restarts is the number of nearest-neighbour seeds explored. 0 ⇒ 1.
	Restarts int

	// ThreeOptIterBudget caps the number of 3-opt triples examined per restart.
	// 0 ⇒ ThreeOptFactor×N.
	ThreeOptIterBudget int

	// ThreeOptFactor scales the derived 3-opt budget. 0 ⇒ DefaultThreeOptFactor.
	ThreeOptFactor int

	// SmallCutoff disables the 3-opt pass for N ≤ SmallCutoff.
	SmallCutoff int

	// TwoOptMaxIters caps accepted 2-opt moves per restart. 0 ⇒ DefaultTwoOptMaxIters.
	TwoOptMaxIters int

	// Seed selects the RNG streams; 0 ⇒ fixed default stream.
	Seed int64

	// Eps is the acceptance tolerance: a move is applied only if Δ < −Eps.
	// 0 ⇒ DefaultEps.
	Eps float64

	// Parallel runs restarts concurrently. Results are identical to sequential runs.
	Parallel bool
}

// DefaultOptions returns the recommended solver configuration.
func DefaultOptions() Options {
	return Options{
		Restarts:       DefaultRestarts,
		ThreeOptFactor: DefaultThreeOptFactor,
		SmallCutoff:    DefaultSmallCutoff,
		TwoOptMaxIters: DefaultTwoOptMaxIters,
		Eps:            DefaultEps,
	}
}

// Result holds the outcome of Solve.
type Result struct {
	// Tour is an open cyclic permutation of 0..N-1 starting at 0.
	Tour []int

	// Length is the closed-tour length including the Tour[N-1]→Tour[0] edge.
	Length float64

	// Restart is the index of the restart that produced Tour.
	Restart int

	// LowerBound is the minimum spanning tree weight of the point set;
	// no closed tour can be shorter.
	LowerBound float64
}
