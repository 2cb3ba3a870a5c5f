package layout

import "context"

// Placement is a ranker's output: the centre of every graph node and the
// size of the drawing. y grows downward.
type Placement struct {
	Centers map[string]Position
	Width   float64
	Height  float64
}

// Ranker assigns layered top-to-bottom centre coordinates to every node of
// a graph, using each node's footprint and the rank and node separation in
// opts. Identical input must produce identical output.
type Ranker interface {
	Name() string
	Rank(ctx context.Context, g *Graph, opts Options) (Placement, error)
}

// RankerFunc adapts a function to the [Ranker] interface.
type RankerFunc func(ctx context.Context, g *Graph, opts Options) (Placement, error)

// Name implements [Ranker].
func (RankerFunc) Name() string { return "func" }

// Rank implements [Ranker].
func (f RankerFunc) Rank(ctx context.Context, g *Graph, opts Options) (Placement, error) {
	return f(ctx, g, opts)
}
