// Package tsp - bounded 3-opt local search.
//
// threeOpt escapes 2-opt local optima with segment-reconnection moves over
// S1=T[i..j-1] and S2=T[j..k-1] while the tail S3=T[k..n-1] stays fixed. For a
// triple (i,j,k) the 7 reconnections in {S1,rev(S1)}×{S2,rev(S2)} \ {identity}
// (placed in either order) are evaluated with
//
//	Δ = (a→first(X)) + (last(X)→first(Y)) + (last(Y)→f) − [(a→b)+(c→d)+(e→f)]
//
// where a=T[i−1], b=T[i], c=T[j−1], d=T[j], e=T[k−1], f=T[k]. The first
// strictly improving reconnection is applied and the sweep restarts.
//
// Triples are scanned in a cyclically offset order drawn from the restart's
// RNG. The pass stops after `budget` examined triples or when a full sweep
// finds nothing; the trajectory does not depend on the budget, so a larger
// budget only continues it.
//
// Complexity: O(budget) Δ evaluations plus O(n) per applied move.
package tsp

import "math/rand"

// segKind enumerates segment variants for 3-opt reconnection.
type segKind uint8

const (
	segS1  segKind = iota // segment S1 = T[i..j-1] in forward order
	segS1R                // reversed S1
	segS2                 // segment S2 = T[j..k-1] in forward order
	segS2R                // reversed S2
)

// The 7 distinct reconnections (X,Y).
var (
	tryX = [...]segKind{segS1R, segS1, segS2R, segS1R, segS2, segS2R, segS2}
	tryY = [...]segKind{segS2, segS2R, segS1R, segS2R, segS1R, segS1, segS1}
)

// threeOpt improves cur and returns the resulting closed tour with the number
// of examined triples.
func threeOpt(w []float64, n int, cur []int, budget int, eps float64, rng *rand.Rand) ([]int, int) {
	if n < 6 || budget <= 0 {
		return cur, 0
	}
	at := func(u, v int) float64 { return w[u*n+v] }

	var (
		examined                     int
		found                        bool
		i, j, k                      int
		ii, jj, kk, m                int
		offI, offJ, offK             int
		spanJ, spanK                 int
		a, b, c, d, e, f             int
		xFirst, xLast, yFirst, yLast int
		removed, delta               float64
	)
	for {
		found = false
		offI = rng.Intn(n - 3)

	sweep:
		for ii = 0; ii < n-3; ii++ {
			i = 1 + ((ii + offI) % (n - 3)) // i ∈ [1..n-3]

			spanJ = (n - 2) - i
			if spanJ <= 0 {
				continue
			}
			offJ = rng.Intn(spanJ)

			for jj = 0; jj < spanJ; jj++ {
				j = i + 1 + ((jj + offJ) % spanJ) // j ∈ [i+1..n-2]

				spanK = (n - 1) - j
				if spanK <= 0 {
					continue
				}
				offK = rng.Intn(spanK)

				for kk = 0; kk < spanK; kk++ {
					if examined >= budget {
						return cur, examined
					}
					examined++
					k = j + 1 + ((kk + offK) % spanK) // k ∈ [j+1..n-1]

					a, b = cur[i-1], cur[i]
					c, d = cur[j-1], cur[j]
					e, f = cur[k-1], cur[k]
					removed = at(a, b) + at(c, d) + at(e, f)

					for m = 0; m < len(tryX); m++ {
						xFirst, xLast = segFirstLast(tryX[m], b, c, d, e)
						yFirst, yLast = segFirstLast(tryY[m], b, c, d, e)
						delta = at(a, xFirst) + at(xLast, yFirst) + at(yLast, f) - removed
						if delta < -eps {
							cur = apply3Opt(cur, i, j, k, tryX[m], tryY[m])
							found = true
							break sweep
						}
					}
				}
			}
		}

		if !found {
			// Full sweep without improvement: 3-opt local optimum.
			return cur, examined
		}
	}
}

// segFirstLast maps a segment kind to its first/last vertex endpoints
// given boundary markers: b=T[i], c=T[j-1], d=T[j], e=T[k-1].
func segFirstLast(kind segKind, b, c, d, e int) (first, last int) {
	switch kind {
	case segS1:
		return b, c
	case segS1R:
		return c, b
	case segS2:
		return d, e
	default: // segS2R
		return e, d
	}
}

// apply3Opt assembles out = P + X + Y + S3 and closes with the start.
// P=T[:i], S1=T[i:j], S2=T[j:k], S3=T[k:n].
func apply3Opt(tour []int, i, j, k int, x, y segKind) []int {
	n := len(tour) - 1
	p, s1, s2, s3 := tour[:i], tour[i:j], tour[j:k], tour[k:n]

	out := make([]int, 0, n+1)
	out = append(out, p...)

	emit := func(kind segKind) {
		var seg []int
		reverse := kind == segS1R || kind == segS2R
		if kind == segS1 || kind == segS1R {
			seg = s1
		} else {
			seg = s2
		}
		if !reverse {
			out = append(out, seg...)
			return
		}
		for t := len(seg) - 1; t >= 0; t-- {
			out = append(out, seg[t])
		}
	}
	emit(x)
	emit(y)

	out = append(out, s3...)
	return append(out, tour[0])
}
