// Package tsp computes near-optimal closed tours over a 2D point set.
//
// Solve runs a bounded multi-start heuristic:
//
//   - Nearest-neighbour construction from a distinct seed per restart
//     (restart r starts at point r while r < N, afterwards at a point drawn
//     from a deterministic per-restart RNG stream).
//   - Best-improvement 2-opt until no strictly improving exchange remains or
//     Options.TwoOptMaxIters moves were applied.
//   - For N > Options.SmallCutoff, first-improvement 3-opt bounded by
//     Options.ThreeOptIterBudget examined triples (default 30×N).
//   - Best-of tracking across restarts: strictly shorter wins, ties keep the
//     earlier restart, so adding restarts or budget never lengthens the result.
//
// Every loop is budget-bounded; Solve always terminates and never fails on
// finite input. Degenerate sizes have defined results:
//
//	N=0 → empty tour, length 0
//	N=1 → [0], length 0
//	N=2 → [0 1], length 2·d(0,1)
//
// Tours are returned open (the closing edge Tour[N-1]→Tour[0] is implicit),
// rotated to start at index 0 and oriented canonically (Tour[1] < Tour[N-1]).
// Lengths are stabilized to 1e-9.
//
// Complexity per restart: O(N²) construction, O(iter·N²) 2-opt,
// O(budget) 3-opt; memory O(N²) for the shared distance matrix.
package tsp
