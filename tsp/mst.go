package tsp

import "math"

// mstWeight returns the weight of a minimum spanning tree of the complete
// graph encoded by w (Prim's algorithm). Removing any edge from a closed tour
// leaves a spanning path, so the MST weight bounds every tour from below.
//
// Time:  O(n²). Space: O(n).
func mstWeight(w []float64, n int) float64 {
	if n < 2 {
		return 0
	}
	inTree := make([]bool, n)
	bestCost := make([]float64, n)
	for v := range bestCost {
		bestCost[v] = math.Inf(1)
	}
	bestCost[0] = 0

	var (
		total float64
		it, u int
		v     int
		minW  float64
	)
	for it = 0; it < n; it++ {
		// (a) closest vertex outside the tree
		u, minW = -1, math.Inf(1)
		for v = 0; v < n; v++ {
			if !inTree[v] && bestCost[v] < minW {
				minW, u = bestCost[v], v
			}
		}
		// (b) attach it
		inTree[u] = true
		total += minW
		// (c) relax the frontier
		for v = 0; v < n; v++ {
			if !inTree[v] && w[u*n+v] < bestCost[v] {
				bestCost[v] = w[u*n+v]
			}
		}
	}

	return total
}
