package tsp

// nearestNeighbor builds a closed tour by always moving to the closest
// unvisited vertex, starting from start. Ties go to the smallest index.
//
// Complexity: O(n²) time, O(n) space.
func nearestNeighbor(w []float64, n, start int) []int {
	tour := make([]int, 0, n+1)
	visited := make([]bool, n)

	cur := start
	visited[cur] = true
	tour = append(tour, cur)

	var (
		step, v, next int
		best, d       float64
	)
	for step = 1; step < n; step++ {
		next = -1
		for v = 0; v < n; v++ {
			if visited[v] {
				continue
			}
			d = w[cur*n+v]
			if next < 0 || d < best {
				next, best = v, d
			}
		}
		visited[next] = true
		tour = append(tour, next)
		cur = next
	}

	return append(tour, start)
}
