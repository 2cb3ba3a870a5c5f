package ordering

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"github.com/firemesscode/drevorod/pkg/dag"
)

const maxTransposeRounds = 8

// Barycentric is the classic Sugiyama crossing-reduction heuristic.
//
// Rows start in depth-first order from the sources, so siblings and
// spouses begin next to each other. Each pass then sorts one row after
// another by the mean position of each node's neighbours in the row just
// fixed, alternating top-down and bottom-up sweeps, and finishes with a
// transposition step that swaps adjacent nodes while that removes
// crossings. The ordering with the fewest crossings seen is returned.
//
// Ties keep the current relative order, so the result is fully
// deterministic for a given graph.
type Barycentric struct {
	// Passes is the number of sweeps. Zero means DefaultPasses.
	Passes int
}

// OrderRows implements [Orderer].
func (b Barycentric) OrderRows(g *dag.DAG) map[int][]string {
	return b.OrderRowsContext(context.Background(), g)
}

// OrderRowsContext implements [ContextOrderer].
func (b Barycentric) OrderRowsContext(ctx context.Context, g *dag.DAG) map[int][]string {
	passes := b.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}

	rows := g.RowIDs()
	orders := initialOrders(g)
	best := cloneOrders(orders)
	bestCrossings := dag.CountCrossings(g, orders)

	for pass := 0; pass < passes && bestCrossings > 0; pass++ {
		if ctx.Err() != nil {
			break
		}
		if pass%2 == 0 {
			for i := 1; i < len(rows); i++ {
				orders[rows[i]] = sortByBarycenter(g, orders[rows[i]], orders[rows[i-1]], true)
			}
		} else {
			for i := len(rows) - 2; i >= 0; i-- {
				orders[rows[i]] = sortByBarycenter(g, orders[rows[i]], orders[rows[i+1]], false)
			}
		}
		transpose(g, orders, rows)

		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			best = cloneOrders(orders)
			bestCrossings = c
		}
	}
	return best
}

// initialOrders walks the graph depth first from the sources and appends
// each node to its row the first time it is reached.
func initialOrders(g *dag.DAG) map[int][]string {
	orders := make(map[int][]string, g.RowCount())
	for _, row := range g.RowIDs() {
		orders[row] = nil
	}
	visited := make(map[string]bool, g.NodeCount())

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		n, _ := g.Node(id)
		orders[n.Row] = append(orders[n.Row], id)
		for _, child := range g.Children(id) {
			visit(child)
		}
	}

	for _, n := range g.Sources() {
		visit(n.ID)
	}
	for _, n := range g.Nodes() {
		visit(n.ID)
	}
	return orders
}

func sortByBarycenter(g *dag.DAG, row, adj []string, useParents bool) []string {
	adjPos := dag.PosMap(adj)
	type entry struct {
		id   string
		bary float64
		idx  int
	}
	entries := make([]entry, len(row))
	for i, id := range row {
		neighbours := g.Children(id)
		if useParents {
			neighbours = g.Parents(id)
		}
		sum, count := 0.0, 0
		for _, nb := range neighbours {
			if p, ok := adjPos[nb]; ok {
				sum += float64(p)
				count++
			}
		}
		bary := float64(i)
		if count > 0 {
			// Scale into the current row's index space so nodes without
			// neighbours keep roughly their place.
			bary = sum / float64(count) * float64(max(len(row)-1, 1)) / float64(max(len(adj)-1, 1))
		}
		entries[i] = entry{id: id, bary: bary, idx: i}
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.bary, b.bary); c != 0 {
			return c
		}
		return a.idx - b.idx
	})

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.id
	}
	return out
}

func transpose(g *dag.DAG, orders map[int][]string, rows []int) {
	for round := 0; round < maxTransposeRounds; round++ {
		improved := false
		for _, r := range rows {
			row := orders[r]
			above, hasAbove := orders[r-1]
			below, hasBelow := orders[r+1]
			abovePos, belowPos := dag.PosMap(above), dag.PosMap(below)

			for i := 0; i+1 < len(row); i++ {
				v, w := row[i], row[i+1]
				before, after := 0, 0
				if hasAbove {
					before += dag.CountPairCrossingsWithPos(g, v, w, abovePos, true)
					after += dag.CountPairCrossingsWithPos(g, w, v, abovePos, true)
				}
				if hasBelow {
					before += dag.CountPairCrossingsWithPos(g, v, w, belowPos, false)
					after += dag.CountPairCrossingsWithPos(g, w, v, belowPos, false)
				}
				if after < before {
					row[i], row[i+1] = w, v
					improved = true
				}
			}
		}
		if !improved {
			return
		}
	}
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := maps.Clone(orders)
	for k, v := range out {
		out[k] = slices.Clone(v)
	}
	return out
}
