package rank

import (
	"context"
	"fmt"

	"github.com/firemesscode/drevorod/pkg/dag"
	"github.com/firemesscode/drevorod/pkg/dag/transform"
	"github.com/firemesscode/drevorod/pkg/layout"
	"github.com/firemesscode/drevorod/pkg/ordering"
)

// DefaultIterations is the number of coordinate passes [Layered] runs when
// Iterations is zero.
const DefaultIterations = 8

// Layered is a Sugiyama ranker written in Go with no external
// dependencies. It breaks cycles, assigns rows by longest path, subdivides
// long edges, orders rows with [ordering.Barycentric] and finally assigns
// coordinates (see [Coordinates]).
type Layered struct {
	// Passes is the number of crossing-reduction sweeps. Zero means
	// ordering.DefaultPasses.
	Passes int
	// Iterations is the number of coordinate passes. Zero means
	// DefaultIterations.
	Iterations int
}

// Name implements [layout.Ranker].
func (Layered) Name() string { return EngineLayered }

// Rank implements [layout.Ranker].
func (l Layered) Rank(ctx context.Context, g *layout.Graph, opts layout.Options) (layout.Placement, error) {
	opts = opts.WithDefaults()
	d, err := toDAG(g)
	if err != nil {
		return layout.Placement{}, err
	}

	transform.Normalize(d)
	orders := ordering.Barycentric{Passes: l.Passes}.OrderRowsContext(ctx, d)
	if err := ctx.Err(); err != nil {
		return layout.Placement{}, err
	}
	ordering.Apply(d, orders)

	iterations := l.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return Coordinates(d, opts.RankSep, opts.NodeSep, iterations), nil
}

func toDAG(g *layout.Graph) (*dag.DAG, error) {
	d := dag.New()
	for _, n := range g.Nodes {
		if err := d.AddNode(dag.Node{ID: n.ID, Width: n.Width, Height: n.Height}); err != nil {
			return nil, fmt.Errorf("add node %q: %w", n.ID, err)
		}
	}
	for _, e := range g.Edges {
		if err := d.AddEdge(dag.Edge{From: e.Source, To: e.Target, Meta: dag.Metadata{"id": e.ID}}); err != nil {
			return nil, fmt.Errorf("add edge %q: %w", e.ID, err)
		}
	}
	return d, nil
}
