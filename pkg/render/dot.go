package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/firemesscode/drevorod/pkg/layout"
)

const (
	pointsPerInch = 72.0
	spouseColor   = "#e67e22"
	edgeColor     = "#555555"
)

// ToDOT converts a layout to a Graphviz DOT document. Every node is pinned
// at its computed centre (Graphviz y grows upward, so y is flipped), which
// lets [SVG] draw the diagram with neato without moving anything.
//
// Person cards are labelled with name and years; unions are drawn as
// points; spouse edges are dashed.
func ToDOT(l *layout.Layout) string {
	return toDOT(l, time.Now())
}

func toDOT(l *layout.Layout, now time.Time) string {
	var buf bytes.Buffer
	buf.WriteString("digraph family {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, fixedsize=true];\n")
	fmt.Fprintf(&buf, "  edge [arrowhead=none, color=%q];\n", edgeColor)
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		c := n.Center()
		attrs := []string{
			fmt.Sprintf("pos=\"%s,%s!\"", num(c.X), num(l.Height-c.Y)),
			fmt.Sprintf("width=%s", num(n.Width/pointsPerInch)),
			fmt.Sprintf("height=%s", num(n.Height/pointsPerInch)),
		}
		if n.Type == layout.NodeUnion {
			attrs = append(attrs, "shape=point", fmt.Sprintf("color=%q", edgeColor), "label=\"\"")
		} else {
			label := strings.Join(CardFor(n.Person, now).Lines(), "\n")
			if label == "" {
				label = n.ID
			}
			attrs = append(attrs, fmt.Sprintf("label=%q", label))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		attrs := []string{fmt.Sprintf("id=%q", e.ID)}
		if e.Style == layout.EdgeSpouse {
			attrs = append(attrs, "style=dashed", fmt.Sprintf("color=%q", spouseColor))
			if e.Label != "" {
				attrs = append(attrs, fmt.Sprintf("xlabel=%q", e.Label))
			}
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// SVG renders the layout through Graphviz. The neato engine keeps the
// pinned positions from [ToDOT].
func SVG(ctx context.Context, l *layout.Layout) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(ToDOT(l)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's <svg> tag, which carries pt units
// and a transform-dependent viewBox, with a plain pixel-sized one.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
