package expand

import (
	"math"

	"github.com/katalvlaran/lvroute/geom"
	"github.com/katalvlaran/lvroute/matrix"
)

// localWeights builds the (k+2)×(k+2) distance table over [from, pts..., to]
// and returns it flattened row-major. Vertex 0 is from, vertex k+1 is to.
func localWeights(from, to geom.Point, pts []geom.Point) ([]float64, int) {
	all := make([]geom.Point, 0, len(pts)+2)
	all = append(all, from)
	all = append(all, pts...)
	all = append(all, to)

	d, err := matrix.Euclidean(all)
	if err != nil {
		// Inputs are filtered to finite points before reaching here.
		panic(err)
	}

	return d.Flat(), len(all)
}

// exactOrder returns the permutation of pts minimising
// from → pts[order[0]] → … → pts[order[k-1]] → to.
//
// dp[mask*k + j] is the cheapest path that starts at from, visits exactly the
// candidates in mask and ends at candidate j. Ties keep the first (lowest
// index) predecessor found, so the result is deterministic.
//
// Time: O(2^k · k²). Memory: O(2^k · k).
func exactOrder(from, to geom.Point, pts []geom.Point) []int {
	k := len(pts)
	if k == 0 {
		return nil
	}
	if k == 1 {
		return []int{0}
	}
	w, n := localWeights(from, to, pts)
	// candidate c is vertex c+1 in w
	dist := func(a, b int) float64 { return w[a*n+b] }

	full := 1<<k - 1
	dp := make([]float64, (full+1)*k)
	parent := make([]int8, (full+1)*k)
	for i := range dp {
		dp[i] = math.Inf(1)
		parent[i] = -1
	}
	for j := 0; j < k; j++ {
		dp[(1<<j)*k+j] = dist(0, j+1)
	}

	for mask := 1; mask <= full; mask++ {
		for j := 0; j < k; j++ {
			if mask&(1<<j) == 0 {
				continue
			}
			cur := dp[mask*k+j]
			if math.IsInf(cur, 1) {
				continue
			}
			for nxt := 0; nxt < k; nxt++ {
				if mask&(1<<nxt) != 0 {
					continue
				}
				nm := mask | 1<<nxt
				cand := cur + dist(j+1, nxt+1)
				if cand < dp[nm*k+nxt] {
					dp[nm*k+nxt] = cand
					parent[nm*k+nxt] = int8(j)
				}
			}
		}
	}

	// Close to the fixed end.
	best, last := math.Inf(1), -1
	for j := 0; j < k; j++ {
		c := dp[full*k+j] + dist(j+1, n-1)
		if c < best {
			best, last = c, j
		}
	}

	order := make([]int, k)
	mask := full
	for pos := k - 1; pos >= 0; pos-- {
		order[pos] = last
		prev := int(parent[mask*k+last])
		mask ^= 1 << last
		last = prev
	}

	return order
}

// greedyOrder grows the chain from → to by repeatedly inserting the remaining
// candidate whose cheapest insertion adds the least length. Ties go to the
// lowest candidate index, then the earliest position.
//
// Time: O(k³).
func greedyOrder(from, to geom.Point, pts []geom.Point) []int {
	k := len(pts)
	if k == 0 {
		return nil
	}
	w, n := localWeights(from, to, pts)
	dist := func(a, b int) float64 { return w[a*n+b] }

	// chain holds vertex ids in w (0 = from, n-1 = to).
	chain := make([]int, 0, k+2)
	chain = append(chain, 0, n-1)
	used := make([]bool, k)

	for added := 0; added < k; added++ {
		bestDelta := math.Inf(1)
		bestC, bestPos := -1, -1
		for c := 0; c < k; c++ {
			if used[c] {
				continue
			}
			v := c + 1
			for p := 0; p+1 < len(chain); p++ {
				a, b := chain[p], chain[p+1]
				delta := dist(a, v) + dist(v, b) - dist(a, b)
				if delta < bestDelta {
					bestDelta, bestC, bestPos = delta, c, p
				}
			}
		}
		used[bestC] = true
		chain = append(chain, 0)
		copy(chain[bestPos+2:], chain[bestPos+1:])
		chain[bestPos+1] = bestC + 1
	}

	order := make([]int, k)
	for i := 0; i < k; i++ {
		order[i] = chain[i+1] - 1
	}

	return order
}
