// Package tsp - RNG utilities shared by the heuristic passes.
//
// Determinism: same seed ⇒ identical results across platforms. Each restart
// owns an independent stream derived from (seed, restart) so that a restart's
// behaviour never depends on how many other restarts run or in which order.
//
// math/rand.Rand is NOT goroutine-safe; parallel restarts never share one.
package tsp

import "math/rand"

// defaultRNGSeed is the fixed "zero" seed used when callers pass seed==0.
const defaultRNGSeed int64 = 1

// deriveSeed mixes a parent seed and a stream identifier into a new 64-bit seed
// with a SplitMix64-style finalizer.
//
// Complexity: O(1).
func deriveSeed(parent int64, stream uint64) int64 {
	var x uint64
	x = uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// restartRNG returns the deterministic stream for restart r.
// Policy: seed==0 ⇒ defaultRNGSeed.
//
// Complexity: O(1).
func restartRNG(seed int64, r int) *rand.Rand {
	s := seed
	if s == 0 {
		s = defaultRNGSeed
	}
	return rand.New(rand.NewSource(deriveSeed(s, uint64(r))))
}

// startVertex picks the nearest-neighbour seed for restart r: restarts cycle
// through input order first, then draw from the restart's own stream.
func startVertex(r, n int, rng *rand.Rand) int {
	if r < n {
		return r
	}
	return rng.Intn(n)
}
