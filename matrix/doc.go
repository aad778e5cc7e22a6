// SPDX-License-Identifier: MIT

// Package matrix provides the dense, row-major distance matrix that the tour
// solver reads in its hot loops.
//
// A Dense keeps r*c float64 values in one flat slice (index i*cols + j) so
// that the solvers can read weights through Flat without interface
// indirection. Constructors return sentinel errors instead of panicking;
// Euclidean builds the complete symmetric matrix over a point set in O(n²).
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init.
//   - Euclidean: O(n²) time and memory.
package matrix
