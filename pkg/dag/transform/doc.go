// Package transform prepares a family graph for layered drawing.
//
// # Overview
//
// Layered drawing needs an acyclic graph whose edges all join consecutive
// rows. [Normalize] produces that form in three steps:
//
//   - [BreakCycles] reverses back edges (and drops self-loops)
//   - [AssignLayers] places each node one row below its deepest parent
//   - [Subdivide] splits edges that span several rows with dummy nodes
//
// For example a spouse edge from a parent to a partner who is also a
// grandparent's child spans two rows after layering; subdivision gives it
// a waypoint in the row between:
//
//	Before: ann (row 0) → eve (row 2)
//	After:  ann → ann_sub_1 → eve
//
// # Usage
//
//	res := transform.Normalize(g)
//	log.Debug("normalized", "reversed", res.BackEdges, "dummies", res.Subdividers)
package transform
