package transform

import "github.com/firemesscode/drevorod/pkg/dag"

// Result summarises what [Normalize] changed.
type Result struct {
	BackEdges   int
	Subdividers int
}

// Normalize prepares g for ordering: cycles are broken, rows assigned and
// long edges subdivided. g is modified in place.
func Normalize(g *dag.DAG) Result {
	var r Result
	r.BackEdges = BreakCycles(g)
	AssignLayers(g)
	r.Subdividers = Subdivide(g)
	return r
}
