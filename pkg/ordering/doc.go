// Package ordering arranges the nodes inside each row of a layered family
// graph so that parent, union and child edges cross as little as possible.
//
// # The Ordering Problem
//
// Minimising crossings in a layered drawing is NP-hard. Family graphs are
// small and nearly tree shaped, so a good heuristic gets close to zero
// crossings in a few sweeps.
//
// # Barycentric Heuristic
//
// [Barycentric] sorts every row by the average position of each node's
// neighbours in the adjacent row, sweeping down then up, and swaps adjacent
// nodes whenever that reduces crossings. It keeps the best ordering seen.
//
// # Usage
//
//	orders := ordering.Barycentric{Passes: 24}.OrderRows(g)
//	ordering.Apply(g, orders)
package ordering
