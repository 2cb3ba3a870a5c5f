package ordering

import (
	"context"

	"github.com/firemesscode/drevorod/pkg/dag"
)

// Orderer decides the left-to-right sequence of nodes in every row of a
// normalized graph. The result maps row index to node IDs.
type Orderer interface {
	OrderRows(g *dag.DAG) map[int][]string
}

// ContextOrderer is an Orderer that stops early when ctx is done and
// returns the best ordering found so far.
type ContextOrderer interface {
	Orderer
	OrderRowsContext(ctx context.Context, g *dag.DAG) map[int][]string
}

// DefaultPasses is the number of sweeps [Barycentric] runs when Passes is
// zero.
const DefaultPasses = 24

// Apply writes orders back into g's row index.
func Apply(g *dag.DAG, orders map[int][]string) {
	for row, ids := range orders {
		g.SetRowOrder(row, ids)
	}
}
