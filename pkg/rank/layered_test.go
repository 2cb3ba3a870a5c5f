package rank

import (
	"cmp"
	"context"
	"math"
	"slices"
	"testing"

	"github.com/firemesscode/drevorod/pkg/dag"
	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/family"
	"github.com/firemesscode/drevorod/pkg/layout"
)

const eps = 1e-6

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", EngineDot},
		{"dot", EngineDot},
		{" Layered ", EngineLayered},
	}
	for _, tt := range tests {
		r, err := New(tt.name)
		if err != nil {
			t.Fatalf("New(%q) error: %v", tt.name, err)
		}
		if r.Name() != tt.want {
			t.Errorf("New(%q).Name() = %q, want %q", tt.name, r.Name(), tt.want)
		}
	}

	if _, err := New("elk"); !errors.Is(err, errors.ErrCodeInvalidEngine) {
		t.Errorf("New(elk) error = %v, want INVALID_ENGINE", err)
	}
	if Valid("elk") || !Valid("layered") {
		t.Error("Valid() disagrees with New()")
	}
}

func TestIsotonic(t *testing.T) {
	tests := []struct {
		in, want []float64
	}{
		{nil, []float64{}},
		{[]float64{1, 2, 3}, []float64{1, 2, 3}},
		{[]float64{3, 1}, []float64{2, 2}},
		{[]float64{1, 5, 3, 3}, []float64{1, 11.0 / 3, 11.0 / 3, 11.0 / 3}},
		{[]float64{4, 3, 2, 1}, []float64{2.5, 2.5, 2.5, 2.5}},
	}
	for _, tt := range tests {
		got := isotonic(tt.in)
		if len(got) != len(tt.want) {
			t.Fatalf("isotonic(%v) = %v, want %v", tt.in, got, tt.want)
		}
		for i := range got {
			if math.Abs(got[i]-tt.want[i]) > eps {
				t.Errorf("isotonic(%v) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}

func TestCoordinates_CentresChildUnderParents(t *testing.T) {
	d := dag.New()
	_ = d.AddNode(dag.Node{ID: "ann", Row: 0, Width: 100, Height: 50})
	_ = d.AddNode(dag.Node{ID: "bob", Row: 0, Width: 100, Height: 50})
	_ = d.AddNode(dag.Node{ID: "carl", Row: 1, Width: 100, Height: 30})
	_ = d.AddEdge(dag.Edge{From: "ann", To: "carl"})
	_ = d.AddEdge(dag.Edge{From: "bob", To: "carl"})

	p := Coordinates(d, 40, 20, DefaultIterations)

	ann, bob, carl := p.Centers["ann"], p.Centers["bob"], p.Centers["carl"]
	if math.Abs(bob.X-ann.X-120) > eps {
		t.Errorf("ann/bob distance = %v, want 120", bob.X-ann.X)
	}
	if math.Abs(carl.X-(ann.X+bob.X)/2) > eps {
		t.Errorf("carl.X = %v, want midway between %v and %v", carl.X, ann.X, bob.X)
	}
	if ann.Y != 25 || carl.Y != 50+40+15 {
		t.Errorf("y = %v / %v, want 25 / 105", ann.Y, carl.Y)
	}
	if p.Width != 220 || p.Height != 120 {
		t.Errorf("size = %vx%v, want 220x120", p.Width, p.Height)
	}
	if math.Abs(ann.X-50) > eps {
		t.Errorf("leftmost card should start at 0, ann.X = %v", ann.X)
	}
}

func TestLayered_RankDemo(t *testing.T) {
	g := layout.BuildGraph(family.Demo(), layout.Options{})
	p, err := Layered{}.Rank(context.Background(), g, layout.Options{})
	if err != nil {
		t.Fatalf("Rank() error: %v", err)
	}
	checkPlacement(t, g, p)
	if len(p.Centers) != len(g.Nodes) {
		t.Errorf("got %d centres, want %d (subdividers must be dropped)", len(p.Centers), len(g.Nodes))
	}
}

func TestLayered_Deterministic(t *testing.T) {
	g := layout.BuildGraph(family.Demo(), layout.Options{})
	first, err := Layered{}.Rank(context.Background(), g, layout.Options{})
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		p, err := Layered{}.Rank(context.Background(), g, layout.Options{})
		if err != nil {
			t.Fatal(err)
		}
		for id, c := range first.Centers {
			if p.Centers[id] != c {
				t.Fatalf("%s: %+v then %+v", id, c, p.Centers[id])
			}
		}
	}
}

func TestLayered_Cycle(t *testing.T) {
	s := family.Snapshot{
		People: []family.Person{{ID: "a"}, {ID: "b"}},
		Relationships: []family.Relationship{
			{ID: "r1", Person1ID: "a", Person2ID: "b", Kind: family.KindParentChild},
			{ID: "r2", Person1ID: "b", Person2ID: "a", Kind: family.KindParentChild},
		},
	}
	g := layout.BuildGraph(s, layout.Options{})
	p, err := Layered{}.Rank(context.Background(), g, layout.Options{})
	if err != nil {
		t.Fatalf("Rank() error: %v", err)
	}
	if len(p.Centers) != 2 {
		t.Fatalf("got %d centres, want 2", len(p.Centers))
	}
}

func TestLayered_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := layout.BuildGraph(family.Demo(), layout.Options{})
	if _, err := (Layered{}).Rank(ctx, g, layout.Options{}); err == nil {
		t.Fatal("Rank() with a cancelled context should fail")
	}
}

// checkPlacement verifies the layered drawing contract: every node has a
// centre, every edge points downward and nodes sharing a rank do not
// overlap.
func checkPlacement(t *testing.T, g *layout.Graph, p layout.Placement) {
	t.Helper()
	sizes := make(map[string]layout.GraphNode, len(g.Nodes))
	for _, n := range g.Nodes {
		sizes[n.ID] = n
		c, ok := p.Centers[n.ID]
		if !ok {
			t.Fatalf("no centre for %s", n.ID)
		}
		if c.X-n.Width/2 < -eps || c.Y-n.Height/2 < -eps {
			t.Errorf("%s sticks out of the drawing: %+v", n.ID, c)
		}
		if c.X+n.Width/2 > p.Width+eps || c.Y+n.Height/2 > p.Height+eps {
			t.Errorf("%s exceeds %vx%v: %+v", n.ID, p.Width, p.Height, c)
		}
	}
	for _, e := range g.Edges {
		if p.Centers[e.Source].Y >= p.Centers[e.Target].Y {
			t.Errorf("edge %s does not point down: %v → %v", e.ID, p.Centers[e.Source], p.Centers[e.Target])
		}
	}

	byY := make(map[float64][]layout.GraphNode)
	for _, n := range g.Nodes {
		y := math.Round(p.Centers[n.ID].Y)
		byY[y] = append(byY[y], n)
	}
	for _, row := range byY {
		slices.SortFunc(row, func(a, b layout.GraphNode) int {
			return cmp.Compare(p.Centers[a.ID].X, p.Centers[b.ID].X)
		})
		for i := 1; i < len(row); i++ {
			l, r := row[i-1], row[i]
			if p.Centers[l.ID].X+l.Width/2 > p.Centers[r.ID].X-r.Width/2+eps {
				t.Errorf("%s overlaps %s", l.ID, r.ID)
			}
		}
	}
}
