// Package geom provides the stateless 2D primitives shared by the route
// solvers and the edit session.
//
// All coordinates live in normalized map space: the map width equals 1 and
// committed points satisfy 0 ≤ x,y ≤ 1. Functions here never validate that
// range; transient edit previews are allowed to leave the unit square.
//
// Provided helpers:
//   - Dist / Dist2: Euclidean distance and its square.
//   - NearestOnSegment: closest point on a closed segment (clamped projection).
//   - NearestOnLine: closest point on the infinite carrier line.
//   - DistToSegment: point-to-segment distance.
//   - Round1e9: cost stabilization used by every reported length.
package geom
