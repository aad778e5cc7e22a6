// SPDX-License-Identifier: MIT

package matrix

import "github.com/katalvlaran/lvroute/geom"

// Euclidean builds the complete symmetric n×n distance matrix over pts.
// The diagonal is zero. Non-finite coordinates yield ErrNaNInf.
//
// Complexity: O(n²) time and memory.
func Euclidean(pts []geom.Point) (*Dense, error) {
	n := len(pts)
	if n == 0 {
		return nil, ErrBadShape
	}
	var i, j int
	for i = 0; i < n; i++ {
		if !pts[i].Finite() {
			return nil, denseErrorf("Euclidean", i, i, ErrNaNInf)
		}
	}
	m, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}

	var d float64
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			d = geom.Dist(pts[i], pts[j])
			m.data[i*n+j] = d
			m.data[j*n+i] = d
		}
	}

	return m, nil
}
