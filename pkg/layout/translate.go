package layout

import (
	"cmp"
	"fmt"
	"slices"
)

// rankTolerance is how far below the first centre y of a rank a node may
// sit and still belong to it.
const rankTolerance = 0.5

// Translate combines a graph with its placement into a [Layout]. Each
// node's top-left corner is its centre minus half its footprint. Rank is
// the index of the node's centre y among the distinct y values; Order is
// its index by x within the rank.
//
// It fails if the placement is missing a node.
func Translate(g *Graph, p Placement) (*Layout, error) {
	out := &Layout{
		Nodes:  make([]Node, 0, len(g.Nodes)),
		Edges:  make([]Edge, 0, len(g.Edges)),
		Width:  p.Width,
		Height: p.Height,
	}

	for _, gn := range g.Nodes {
		c, ok := p.Centers[gn.ID]
		if !ok {
			return nil, fmt.Errorf("placement has no position for node %q", gn.ID)
		}
		out.Nodes = append(out.Nodes, Node{
			ID:        gn.ID,
			Type:      gn.Type,
			Position:  Position{X: c.X - gn.Width/2, Y: c.Y - gn.Height/2},
			Width:     gn.Width,
			Height:    gn.Height,
			Person:    gn.Person,
			ParentIDs: gn.ParentIDs,
		})
	}
	for _, ge := range g.Edges {
		out.Edges = append(out.Edges, Edge{
			ID:     ge.ID,
			Source: ge.Source,
			Target: ge.Target,
			Label:  ge.Label,
			Style:  ge.Style,
		})
	}
	out.Diagnostics = slices.Clone(g.Dropped)

	assignRanks(out.Nodes)
	return out, nil
}

// assignRanks groups nodes into ranks by centre y. A rank starts at the
// smallest remaining y and takes every node within rankTolerance of it.
func assignRanks(nodes []Node) {
	byY := make([]int, len(nodes))
	for i := range byY {
		byY[i] = i
	}
	slices.SortStableFunc(byY, func(a, b int) int {
		return cmp.Compare(nodes[a].Center().Y, nodes[b].Center().Y)
	})

	var ranks [][]int
	var start float64
	for _, i := range byY {
		y := nodes[i].Center().Y
		if len(ranks) == 0 || y-start > rankTolerance {
			ranks = append(ranks, nil)
			start = y
		}
		r := len(ranks) - 1
		nodes[i].Rank = r
		ranks[r] = append(ranks[r], i)
	}

	for _, idx := range ranks {
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Compare(nodes[a].Center().X, nodes[b].Center().X)
		})
		for order, i := range idx {
			nodes[i].Order = order
		}
	}
}
