package transform

import (
	"fmt"

	"github.com/firemesscode/drevorod/pkg/dag"
)

// Subdivide replaces every edge spanning more than one row with a chain of
// [dag.NodeKindSubdivider] nodes, one per intermediate row:
//
//	Before: ann (row 0) → carl (row 3)
//	After:  ann → ann_sub_1 → ann_sub_2 → carl
//
// Subdividers get a zero footprint and MasterID set to the edge's source.
// The original edge's metadata moves to the last edge of the chain. IDs are
// of the form "master_sub_row" with a numeric suffix on collision.
//
// It returns the number of subdividers created.
func Subdivide(g *dag.DAG) int {
	gen := newIDGen(g.Nodes())
	var toRemove []dag.Edge
	for _, e := range g.Edges() {
		src, srcOK := g.Node(e.From)
		dst, dstOK := g.Node(e.To)
		if !srcOK || !dstOK || dst.Row <= src.Row+1 {
			continue
		}

		toRemove = append(toRemove, e)
		prevID := src.ID
		for row := src.Row + 1; row < dst.Row; row++ {
			prevID = addSubdivider(g, gen, prevID, src.ID, row)
		}
		if err := g.AddEdge(dag.Edge{From: prevID, To: dst.ID, Meta: e.Meta}); err != nil {
			panic(err)
		}
	}

	for _, e := range toRemove {
		g.RemoveEdge(e.From, e.To)
	}
	return len(gen.created)
}

func addSubdivider(g *dag.DAG, gen *idGen, from, master string, row int) string {
	id := gen.next(master, row)
	if err := g.AddNode(dag.Node{
		ID:       id,
		Row:      row,
		Kind:     dag.NodeKindSubdivider,
		MasterID: master,
	}); err != nil {
		panic(err)
	}
	if err := g.AddEdge(dag.Edge{From: from, To: id}); err != nil {
		panic(err)
	}
	return id
}

type idGen struct {
	used    map[string]struct{}
	created []string
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string, row int) string {
	prefix := fmt.Sprintf("%s_sub_%d", base, row)
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			gen.created = append(gen.created, id)
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
