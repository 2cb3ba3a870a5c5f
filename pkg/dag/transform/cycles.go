package transform

import "github.com/firemesscode/drevorod/pkg/dag"

// BreakCycles makes g acyclic and returns the number of back edges it
// handled.
//
// A depth-first search started from the sources (then from any node still
// unvisited, in insertion order) classifies edges. Each back edge is
// reversed so the two endpoints stay connected and still influence ranking;
// self-loops are removed since reversing them cannot help. Family data can
// contain such loops when a record lists someone as their own parent or
// when a spouse relationship is stored child-first against a parent edge.
func BreakCycles(g *dag.DAG) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var backEdges [][2]string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]string{node, child})
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, e := range backEdges {
		if e[0] == e[1] {
			g.RemoveEdge(e[0], e[1])
			continue
		}
		g.ReverseEdge(e[0], e[1])
	}
	return len(backEdges)
}
