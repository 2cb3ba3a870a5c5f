package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/firemesscode/drevorod/pkg/layout"
)

const svgCSS = `
    .card { fill: #ffffff; stroke: #2c3e50; stroke-width: 1.5; }
    .card.deceased { fill: #f2f2f2; }
    .union { fill: #2c3e50; }
    .edge { fill: none; stroke: #555555; stroke-width: 1.5; }
    .edge.spouse { stroke: #e67e22; stroke-dasharray: 6 4; }
    .name { font: bold 14px sans-serif; fill: #2c3e50; }
    .detail { font: 12px sans-serif; fill: #7f8c8d; }`

// SVGOption configures [WriteSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	now      time.Time
	padding  float64
	straight bool
}

// WithNow sets the date used to compute the age of living people.
func WithNow(t time.Time) SVGOption { return func(r *svgRenderer) { r.now = t } }

// WithPadding adds a margin around the drawing.
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }

// WithStraightEdges draws parent edges as straight lines instead of elbows.
func WithStraightEdges() SVGOption { return func(r *svgRenderer) { r.straight = true } }

// WriteSVG draws the layout at its computed coordinates: a rounded card per
// person, a dot per union, elbow lines for parent edges and dashed lines
// between spouses.
func WriteSVG(w io.Writer, l *layout.Layout, opts ...SVGOption) error {
	r := svgRenderer{now: time.Now(), padding: 20}
	for _, opt := range opts {
		opt(&r)
	}

	nodes := make(map[string]layout.Node, len(l.Nodes))
	for _, n := range l.Nodes {
		nodes[n.ID] = n
	}

	width, height := l.Width+2*r.padding, l.Height+2*r.padding
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", svgCSS)
	fmt.Fprintf(&buf, "  <g transform=\"translate(%.1f %.1f)\">\n", r.padding, r.padding)

	for _, e := range l.Edges {
		src, okS := nodes[e.Source]
		dst, okD := nodes[e.Target]
		if !okS || !okD {
			continue
		}
		r.edge(&buf, e, src, dst)
	}
	for _, n := range l.Nodes {
		if n.Type == layout.NodeUnion {
			c := n.Center()
			fmt.Fprintf(&buf, "    <circle id=\"%s\" class=\"union\" cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
				esc(n.ID), c.X, c.Y, n.Width/2)
			continue
		}
		r.card(&buf, n)
	}

	buf.WriteString("  </g>\n</svg>\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func (r svgRenderer) edge(buf *bytes.Buffer, e layout.Edge, src, dst layout.Node) {
	s, d := src.Center(), dst.Center()
	if e.Style == layout.EdgeSpouse {
		fmt.Fprintf(buf, "    <line id=\"%s\" class=\"edge spouse\" x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n",
			esc(e.ID), s.X, s.Y, d.X, d.Y)
		return
	}

	// Parent edges leave the bottom of the source and enter the top of the
	// target.
	y1 := src.Position.Y + src.Height
	y2 := dst.Position.Y
	if r.straight || s.X == d.X {
		fmt.Fprintf(buf, "    <line id=\"%s\" class=\"edge\" x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n",
			esc(e.ID), s.X, y1, d.X, y2)
		return
	}
	mid := (y1 + y2) / 2
	fmt.Fprintf(buf, "    <path id=\"%s\" class=\"edge\" d=\"M %.1f %.1f V %.1f H %.1f V %.1f\"/>\n",
		esc(e.ID), s.X, y1, mid, d.X, y2)
}

func (r svgRenderer) card(buf *bytes.Buffer, n layout.Node) {
	class := "card"
	if n.Person != nil && n.Person.Deceased() {
		class += " deceased"
	}
	fmt.Fprintf(buf, "    <g id=\"%s\">\n", esc(n.ID))
	fmt.Fprintf(buf, "      <rect class=\"%s\" x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" rx=\"8\"/>\n",
		class, n.Position.X, n.Position.Y, n.Width, n.Height)

	lines := CardFor(n.Person, r.now).Lines()
	if len(lines) == 0 {
		lines = []string{n.ID}
	}
	const lineHeight = 18.0
	c := n.Center()
	y := c.Y - lineHeight*float64(len(lines)-1)/2
	for i, text := range lines {
		cls := "detail"
		if i == 0 {
			cls = "name"
		}
		fmt.Fprintf(buf, "      <text class=\"%s\" x=\"%.1f\" y=\"%.1f\" text-anchor=\"middle\" dominant-baseline=\"middle\">%s</text>\n",
			cls, c.X, y, esc(truncate(text, n.Width)))
		y += lineHeight
	}
	buf.WriteString("    </g>\n")
}

func esc(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
