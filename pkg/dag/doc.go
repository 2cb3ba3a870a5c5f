// Package dag provides a row-layered directed graph used to compute
// family tree layouts.
//
// # Overview
//
// A family tree is drawn top to bottom: ancestors above descendants, with
// union points between a couple and their shared children. The layered
// (Sugiyama) approach assigns every node to a row, orders each row to keep
// edge crossings low, then assigns coordinates. This package holds the
// graph those steps operate on.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "ann", Width: 250, Height: 100})
//	g.AddNode(dag.Node{ID: "carl", Width: 250, Height: 100})
//	g.AddEdge(dag.Edge{From: "ann", To: "carl"})
//
// Iteration order is insertion order everywhere, so the same input always
// produces the same layout.
//
// # Node Types
//
//   - [NodeKindRegular]: nodes supplied by the caller
//   - [NodeKindSubdivider]: dummy nodes that split edges spanning several
//     rows, created by the transform package
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count inversions with a
// Fenwick tree in O(E log V); [CountPairCrossings] supports local
// transposition of adjacent nodes.
//
// # Related Packages
//
// The [transform] subpackage breaks cycles, assigns rows and subdivides
// long edges.
//
// [transform]: github.com/firemesscode/drevorod/pkg/dag/transform
package dag
