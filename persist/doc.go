// Package persist stores routes as JSON records and keeps them in a named
// repository.
//
// A record looks like
//
//	{"points":[{"id":"m1","x":0.1,"y":0.2},{"x":0.5,"y":0.5}],
//	 "length":1.23,"loop":true,"direction":1}
//
// Loading separates two kinds of fault. Structural faults (invalid JSON, a
// missing points array, coordinates that are not finite or leave the unit
// square, a direction outside {-1,0,1}) reject the whole record with
// ErrMalformed. Semantic faults degrade one point at a time: an id that no
// longer resolves, or one already used earlier in the record, becomes a free
// waypoint at the stored coordinates.
//
// Points without an id are matched to live markers by coordinate equality
// within LegacyTolerance (see MatchLegacy). Older files that hold a bare
// JSON array of points instead of an object are accepted too.
package persist
