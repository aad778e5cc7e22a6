// Package tsp - 2-opt local search.
//
// twoOpt performs best-improvement 2-opt on a closed tour with a fixed start:
// every sweep scans all candidate pairs (i,k), 1 ≤ i < k ≤ n−1, and applies the
// exchange with the most negative
//
//	Δ = w(a,c) + w(b,d) − w(a,b) − w(c,d),  a=T[i−1], b=T[i], c=T[k], d=T[k+1]
//
// by reversing T[i..k]. Sweeps stop when no Δ < −eps exists or maxMoves moves
// were applied.
//
// Complexity: O(n²) per sweep, O(n) per applied move; O(maxMoves·n²) worst case.
package tsp

// twoOpt improves cur in place and returns the number of applied moves.
func twoOpt(w []float64, n int, cur []int, maxMoves int, eps float64) int {
	if n < 4 {
		// Every 2-exchange on a triangle or smaller is the identity.
		return 0
	}
	at := func(u, v int) float64 { return w[u*n+v] }

	var (
		moves            int
		i, k             int
		a, b, c, d       int
		wab, delta, best float64
		bestI, bestK     int
	)
	for moves < maxMoves {
		best = -eps
		bestI, bestK = -1, -1

		for i = 1; i <= n-2; i++ {
			a, b = cur[i-1], cur[i]
			wab = at(a, b)
			for k = i + 1; k <= n-1; k++ {
				if i == 1 && k == n-1 {
					// Reverses the whole interior: same cycle, Δ is pure FP noise.
					continue
				}
				c, d = cur[k], cur[k+1]
				delta = at(a, c) + at(b, d) - wab - at(c, d)
				if delta < best {
					best, bestI, bestK = delta, i, k
				}
			}
		}
		if bestI < 0 {
			// Local optimum under the 2-opt neighbourhood.
			break
		}
		reverseArcInPlace(cur, bestI, bestK)
		moves++
	}

	return moves
}
