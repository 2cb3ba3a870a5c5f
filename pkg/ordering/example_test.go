package ordering_test

import (
	"fmt"

	"github.com/firemesscode/drevorod/pkg/dag"
	"github.com/firemesscode/drevorod/pkg/ordering"
)

func ExampleBarycentric() {
	// Two couples whose children were recorded in the opposite order.
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "u1", Row: 0})
	_ = g.AddNode(dag.Node{ID: "u2", Row: 0})
	_ = g.AddNode(dag.Node{ID: "kid2", Row: 1})
	_ = g.AddNode(dag.Node{ID: "kid1", Row: 1})
	_ = g.AddEdge(dag.Edge{From: "u1", To: "kid1"})
	_ = g.AddEdge(dag.Edge{From: "u2", To: "kid2"})

	before := dag.CountLayerCrossings(g, []string{"u1", "u2"}, []string{"kid2", "kid1"})
	orders := ordering.Barycentric{Passes: 24}.OrderRows(g)
	after := dag.CountCrossings(g, orders)

	fmt.Println("Before:", before)
	fmt.Println("After:", after)
	fmt.Println("Row 1:", orders[1])
	// Output:
	// Before: 1
	// After: 0
	// Row 1: [kid1 kid2]
}

func ExampleApply() {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "a", Row: 0})
	_ = g.AddNode(dag.Node{ID: "b", Row: 0})

	ordering.Apply(g, map[int][]string{0: {"b", "a"}})

	fmt.Println(dag.NodeIDs(g.NodesInRow(0)))
	// Output:
	// [b a]
}
