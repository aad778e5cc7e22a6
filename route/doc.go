// Package route holds the ordered-waypoint data model and the canonical,
// mutex-guarded RouteState.
//
// A Waypoint is a sealed sum type with exactly two variants:
//
//	MarkerStop  bound to a marker identity (with the marker position cached)
//	FreeStop    a free-floating point not bound to any marker
//
// Invariants maintained by State:
//  1. Length == Measure(Waypoints, Loop) after every mutation.
//  2. No two waypoints bind the same marker id.
//  3. OnMarkerDeleted removes the waypoint bound to a deleted marker; an
//     empty route collapses to the cleared state (nil waypoints, length 0,
//     direction +1, loop flag preserved).
//
// Committed free points always lie inside the unit square.
package route
