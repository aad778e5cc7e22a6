// Package tsp - tour utilities.
//
// Internally a tour is *closed*: len(tour)==n+1 and tour[0]==tour[n]. The
// public Result exposes the open prefix tour[:n].
package tsp

import "github.com/katalvlaran/lvroute/matrix"

// ValidatePermutation checks that perm is a permutation of {0..n-1}.
//
// Complexity: O(n) time, O(n) space.
func ValidatePermutation(perm []int, n int) error {
	if len(perm) != n {
		return ErrDimensionMismatch
	}
	seen := make([]bool, n)

	var i, v int
	for i = 0; i < n; i++ {
		v = perm[i]
		if v < 0 || v >= n || seen[v] {
			return ErrDimensionMismatch
		}
		seen[v] = true
	}

	return nil
}

// TourLength returns the closed length of the open permutation tour over dist,
// including the edge from the last vertex back to the first.
//
// Complexity: O(n).
func TourLength(dist *matrix.Dense, tour []int) (float64, error) {
	if dist == nil {
		return 0, ErrDimensionMismatch
	}
	n := dist.Rows()
	if err := ValidatePermutation(tour, n); err != nil {
		return 0, err
	}

	return closedLength(dist.Flat(), n, tour), nil
}

// closedLength sums w along tour[i]→tour[i+1] and closes back to tour[0].
// Accepts both open and closed representations.
func closedLength(w []float64, n int, tour []int) float64 {
	m := len(tour)
	if m < 2 {
		return 0
	}
	if tour[0] == tour[m-1] {
		m--
	}
	var (
		sum float64
		i   int
	)
	for i = 0; i < m; i++ {
		sum += w[tour[i]*n+tour[(i+1)%m]]
	}

	return sum
}

// reverseArcInPlace reverses the inclusive segment tour[i..k] in place,
// keeping the closing vertex intact. This is the primitive used by 2-opt.
//
// Contracts: closed tour, 1 ≤ i < k ≤ n-1.
//
// Complexity: O(k-i) time, O(1) space.
func reverseArcInPlace(tour []int, i, k int) {
	for i < k {
		tour[i], tour[k] = tour[k], tour[i]
		i++
		k--
	}
}

// CanonicalizeOrientation returns the open form of the closed tour, rotated
// to start at vertex 0 and oriented so that out[1] < out[n-1]. Two closed
// tours that differ only by rotation or direction canonicalize identically.
//
// Complexity: O(n).
func CanonicalizeOrientation(closed []int) []int {
	n := len(closed) - 1
	if n <= 0 {
		return []int{}
	}
	out := make([]int, n)

	var i, pivot int
	for i = 0; i < n; i++ {
		if closed[i] == 0 {
			pivot = i
			break
		}
	}
	for i = 0; i < n; i++ {
		out[i] = closed[(pivot+i)%n]
	}
	if n > 2 && out[1] > out[n-1] {
		for i, k := 1, n-1; i < k; i, k = i+1, k-1 {
			out[i], out[k] = out[k], out[i]
		}
	}

	return out
}
