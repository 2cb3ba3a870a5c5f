package layout

import (
	"fmt"

	"github.com/firemesscode/drevorod/pkg/family"
)

// GraphNode is a node of the logical layout graph, before placement.
type GraphNode struct {
	ID        string
	Type      NodeType
	Width     float64
	Height    float64
	Person    *family.Person
	ParentIDs []string
}

// GraphEdge is a directed edge of the logical layout graph. Spouse edges
// run from person1 to person2 and take part in ranking like any other.
type GraphEdge struct {
	ID     string
	Source string
	Target string
	Label  string
	Style  EdgeStyle
}

// Graph is the logical layout graph handed to a [Ranker].
type Graph struct {
	Nodes  []GraphNode
	Edges  []GraphEdge
	Unions []Union

	// Dropped lists relationships that referenced unknown people and
	// unions whose ID clashed with another node.
	Dropped []Diagnostic
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (GraphNode, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return GraphNode{}, false
}

// BuildGraph derives the layout graph from a snapshot.
//
// People become nodes in input order, followed by unions. Union edges
// (parent→union for both parents, then union→child per child) come first,
// then one edge per remaining relationship in input order: every spouse
// relationship, and every parent_child relationship whose child is not
// attached to a union. Relationships referencing people missing from the
// snapshot are left out and reported in Graph.Dropped. Relationships are
// never deduplicated: a relationship stored twice yields two edges.
func BuildGraph(s family.Snapshot, opts Options) *Graph {
	opts = opts.WithDefaults()
	g := &Graph{}

	known := make(map[string]bool, len(s.People))
	for i := range s.People {
		p := s.People[i]
		known[p.ID] = true
		g.Nodes = append(g.Nodes, GraphNode{
			ID:     p.ID,
			Type:   NodePerson,
			Width:  opts.NodeWidth,
			Height: opts.NodeHeight,
			Person: &p,
		})
	}

	rels := make([]family.Relationship, 0, len(s.Relationships))
	for _, r := range s.Relationships {
		switch {
		case !known[r.Person1ID]:
			g.Dropped = append(g.Dropped, Diagnostic{RelationshipID: r.ID, Reason: fmt.Sprintf("unknown person %q", r.Person1ID)})
		case !known[r.Person2ID]:
			g.Dropped = append(g.Dropped, Diagnostic{RelationshipID: r.ID, Reason: fmt.Sprintf("unknown person %q", r.Person2ID)})
		case !r.Kind.Valid():
			g.Dropped = append(g.Dropped, Diagnostic{RelationshipID: r.ID, Reason: fmt.Sprintf("unknown type %q", r.Kind)})
		default:
			rels = append(rels, r)
		}
	}

	covered := make(map[string]string)
	for _, u := range DetectUnions(IndexParents(rels), rels) {
		// IDs with '-' can make two couples, or a couple and a person,
		// share a union ID. The later union is skipped and its children
		// keep direct edges.
		if known[u.ID] {
			g.Dropped = append(g.Dropped, Diagnostic{
				NodeID: u.ID,
				Reason: fmt.Sprintf("union of %q and %q clashes with an existing node; parents linked directly", u.Parents[0], u.Parents[1]),
			})
			continue
		}
		known[u.ID] = true
		g.Unions = append(g.Unions, u)
		g.Nodes = append(g.Nodes, GraphNode{
			ID:        u.ID,
			Type:      NodeUnion,
			Width:     opts.UnionSize,
			Height:    opts.UnionSize,
			ParentIDs: []string{u.Parents[0], u.Parents[1]},
		})
		for _, p := range u.Parents {
			g.Edges = append(g.Edges, GraphEdge{
				ID:     "e-" + p + "-" + u.ID,
				Source: p,
				Target: u.ID,
				Style:  EdgeParentChild,
			})
		}
		for _, child := range u.Children {
			covered[child] = u.ID
			g.Edges = append(g.Edges, GraphEdge{
				ID:     "e-" + u.ID + "-" + child,
				Source: u.ID,
				Target: child,
				Style:  EdgeParentChild,
			})
		}
	}

	for _, r := range rels {
		switch r.Kind {
		case family.KindSpouse:
			g.Edges = append(g.Edges, GraphEdge{
				ID:     r.ID,
				Source: r.Person1ID,
				Target: r.Person2ID,
				Label:  r.Label,
				Style:  EdgeSpouse,
			})
		case family.KindParentChild:
			// A child attached to a union has exactly the union's two
			// parents, so every parent_child relationship into it is covered.
			if _, ok := covered[r.Person2ID]; ok {
				continue
			}
			g.Edges = append(g.Edges, GraphEdge{
				ID:     r.ID,
				Source: r.Person1ID,
				Target: r.Person2ID,
				Label:  r.Label,
				Style:  EdgeParentChild,
			})
		}
	}
	return g
}
