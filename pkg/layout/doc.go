// Package layout turns a family snapshot into a positioned node-and-edge
// diagram.
//
// # Overview
//
// [Engine.Compute] is a pure function of its input: it never stores state
// between calls and performs no I/O, so callers recompute on every data
// change and keep the newest result. The work happens in five steps:
//
//  1. [IndexParents] maps each child to the parents recorded for it.
//  2. [DetectUnions] finds couples with shared children: the child must
//     have exactly two parents and those parents must share a spouse
//     relationship.
//  3. [BuildGraph] emits one node per person, one small node per union and
//     the edges between them.
//  4. A [Ranker] assigns layered (Sugiyama) centre coordinates.
//  5. [Translate] converts centres to top-left positions and derives each
//     node's rank and order from the coordinates.
//
// # Unions
//
// A union's ID is "union-<p1>-<p2>" with the parent IDs sorted, so it is
// reproducible from the couple alone. Parents connect to the union and the
// union connects to each shared child; the parents' own direct edges to
// those children are suppressed. Spouse edges are always emitted, even
// when a union exists for the couple.
//
// # Rankers
//
// Ranker implementations live in the rank package: Graphviz dot (the
// default) and a native layered engine. Tests can supply any Ranker.
package layout
