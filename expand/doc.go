// Package expand grows an existing route by splicing nearby, not yet visited
// markers into its segments.
//
// Expand works segment by segment:
//
//  1. Segments are enumerated in route order (closing segment last for loops).
//  2. Each candidate marker (processed in ascending id order) is claimed by the
//     first segment whose start or end lies within the distance threshold.
//     A marker near several segments goes to the earliest one; this mirrors
//     observed behaviour and is not a closest-segment policy.
//  3. The k claimed markers of a segment are ordered to minimise the path
//     start → … → end: exactly by a Held–Karp bitmask DP when
//     k ≤ Options.ExactCutoff (O(2^k·k²) time, O(2^k·k) memory), otherwise by
//     greedy cheapest insertion (O(k³)).
//  4. Orderings are spliced between the original endpoints, whose relative
//     order is preserved, and the length is recomputed.
//
// Expand is pure and deterministic: identical inputs give identical output.
package expand
