package rank

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-graphviz"

	"github.com/firemesscode/drevorod/pkg/layout"
)

// pointsPerInch converts pixel footprints to the inches Graphviz expects.
// Graphviz reports positions in points, so one pixel maps to one point.
const pointsPerInch = 72.0

// Dot ranks graphs with the Graphviz dot algorithm through the embedded
// WebAssembly build of Graphviz. The Graphviz instance is created on first
// use and reused; call [Dot.Close] to release it.
//
// A Dot is safe for concurrent use. Calls are serialised.
type Dot struct {
	mu sync.Mutex
	gv *graphviz.Graphviz
}

// NewDot returns a dot ranker.
func NewDot() *Dot { return &Dot{} }

// Name implements [layout.Ranker].
func (*Dot) Name() string { return EngineDot }

// Close releases the Graphviz instance.
func (d *Dot) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gv == nil {
		return nil
	}
	err := d.gv.Close()
	d.gv = nil
	return err
}

// Rank implements [layout.Ranker].
func (d *Dot) Rank(ctx context.Context, g *layout.Graph, opts layout.Options) (layout.Placement, error) {
	opts = opts.WithDefaults()
	src, ids := ToDOT(g, opts)

	out, err := d.render(ctx, src)
	if err != nil {
		return layout.Placement{}, err
	}
	return parsePlacement(out, ids)
}

func (d *Dot) render(ctx context.Context, src []byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.gv == nil {
		gv, err := graphviz.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("init graphviz: %w", err)
		}
		d.gv = gv
	}

	graph, err := graphviz.ParseBytes(src)
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := d.gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return buf.Bytes(), nil
}

// ToDOT writes the graph as a DOT document with fixed-size, unlabelled
// boxes. Node IDs are replaced by n0, n1, ... in graph order so arbitrary
// person IDs never need quoting; the returned slice maps each synthetic
// index back to the graph node ID.
func ToDOT(g *layout.Graph, opts layout.Options) ([]byte, []string) {
	opts = opts.WithDefaults()
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(opts.RankSep))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(opts.NodeSep))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	ids := make([]string, len(g.Nodes))
	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
		index[n.ID] = i
		fmt.Fprintf(&buf, "  n%d [width=%s, height=%s];\n", i, inches(n.Width), inches(n.Height))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		from, okF := index[e.Source]
		to, okT := index[e.Target]
		if !okF || !okT {
			continue
		}
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", from, to)
	}

	buf.WriteString("}\n")
	return buf.Bytes(), ids
}

func inches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 4, 64)
}

var (
	nodeStmtRe = regexp.MustCompile(`(?m)^\s*n(\d+)\s+\[([^\]]*)\]`)
	posRe      = regexp.MustCompile(`\bpos="\s*([-0-9.e+]+)\s*,\s*([-0-9.e+]+)`)
	bbRe       = regexp.MustCompile(`\bbb="\s*([-0-9.e+]+)\s*,\s*([-0-9.e+]+)\s*,\s*([-0-9.e+]+)\s*,\s*([-0-9.e+]+)\s*"`)
)

// parsePlacement reads node centres and the bounding box from laid-out
// DOT. Graphviz puts the origin at the bottom left, so y is flipped.
func parsePlacement(out []byte, ids []string) (layout.Placement, error) {
	bb := bbRe.FindSubmatch(out)
	if bb == nil {
		return layout.Placement{}, fmt.Errorf("layout output has no bounding box")
	}
	var box [4]float64
	for i := range box {
		v, err := strconv.ParseFloat(string(bb[i+1]), 64)
		if err != nil {
			return layout.Placement{}, fmt.Errorf("parse bounding box: %w", err)
		}
		box[i] = v
	}

	p := layout.Placement{
		Centers: make(map[string]layout.Position, len(ids)),
		Width:   box[2] - box[0],
		Height:  box[3] - box[1],
	}
	for _, m := range nodeStmtRe.FindAllSubmatch(out, -1) {
		i, err := strconv.Atoi(string(m[1]))
		if err != nil || i < 0 || i >= len(ids) {
			continue
		}
		attrs := strings.ReplaceAll(string(m[2]), "\\\n", "")
		pos := posRe.FindStringSubmatch(attrs)
		if pos == nil {
			continue
		}
		x, errX := strconv.ParseFloat(pos[1], 64)
		y, errY := strconv.ParseFloat(pos[2], 64)
		if errX != nil || errY != nil {
			return layout.Placement{}, fmt.Errorf("parse position of %q: %q", ids[i], pos[0])
		}
		p.Centers[ids[i]] = layout.Position{X: x - box[0], Y: box[3] - y}
	}

	for _, id := range ids {
		if _, ok := p.Centers[id]; !ok {
			return layout.Placement{}, fmt.Errorf("layout output has no position for %q", id)
		}
	}
	return p, nil
}
