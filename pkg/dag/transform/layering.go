package transform

import "github.com/firemesscode/drevorod/pkg/dag"

// AssignLayers assigns every node to a row by longest path from the
// sources, so each node sits one row below its deepest parent.
//
// The traversal is Kahn's topological sort over the nodes in insertion
// order. Existing rows are overwritten. AssignLayers assumes an acyclic
// graph; nodes on a cycle stay at row 0, so run [BreakCycles] first.
func AssignLayers(g *dag.DAG) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		rows[n.ID] = 0
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRows(rows)
}
