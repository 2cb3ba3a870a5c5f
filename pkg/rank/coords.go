package rank

import (
	"math"

	"github.com/firemesscode/drevorod/pkg/dag"
	"github.com/firemesscode/drevorod/pkg/layout"
)

// Coordinates assigns centre coordinates to the nodes of a normalized,
// ordered graph.
//
// Rows are stacked top to bottom, each as tall as its tallest node and
// separated by rankSep; nodes are centred vertically within their row.
//
// Horizontally, every row starts tightly packed with nodeSep between
// neighbouring footprints. Passes then alternate between sweeping down
// (pulling each node towards the mean x of its parents) and sweeping up
// (towards its children). Each row is placed as the least-squares fit to
// those targets that keeps the row order and the minimum gaps.
//
// Subdividers take part in placement but are left out of the result.
// The drawing is shifted so the leftmost card starts at x = 0.
func Coordinates(d *dag.DAG, rankSep, nodeSep float64, iterations int) layout.Placement {
	rowIDs := d.RowIDs()
	rows := make([][]*dag.Node, len(rowIDs))
	for i, r := range rowIDs {
		rows[i] = d.NodesInRow(r)
	}

	ys := make(map[string]float64, d.NodeCount())
	top := 0.0
	for i, row := range rows {
		h := 0.0
		for _, n := range row {
			h = math.Max(h, n.Height)
		}
		for _, n := range row {
			ys[n.ID] = top + h/2
		}
		top += h
		if i < len(rows)-1 {
			top += rankSep
		}
	}

	xs := make(map[string]float64, d.NodeCount())
	for _, row := range rows {
		x := 0.0
		for i, n := range row {
			if i > 0 {
				x += gap(row[i-1], n, nodeSep)
			} else {
				x = n.Width / 2
			}
			xs[n.ID] = x
		}
	}

	for it := 0; it < iterations; it++ {
		if it%2 == 0 {
			for i := 1; i < len(rows); i++ {
				placeRow(rows[i], xs, nodeSep, d.Parents)
			}
		} else {
			for i := len(rows) - 2; i >= 0; i-- {
				placeRow(rows[i], xs, nodeSep, d.Children)
			}
		}
	}

	return collect(d, xs, ys)
}

func gap(left, right *dag.Node, nodeSep float64) float64 {
	return left.Width/2 + nodeSep + right.Width/2
}

// placeRow moves a row towards the mean x of each node's neighbours.
// Nodes without neighbours stay where they are.
//
// With offsets o_i (the packed positions) the constraint x_i - x_{i-1} >=
// gap_i becomes y_i >= y_{i-1} for y_i = x_i - o_i, so the best placement
// is the isotonic regression of target_i - o_i.
func placeRow(row []*dag.Node, xs map[string]float64, nodeSep float64, neighbours func(string) []string) {
	if len(row) == 0 {
		return
	}
	targets := make([]float64, len(row))
	offsets := make([]float64, len(row))
	for i, n := range row {
		if i > 0 {
			offsets[i] = offsets[i-1] + gap(row[i-1], n, nodeSep)
		}
		targets[i] = xs[n.ID]
		if adj := neighbours(n.ID); len(adj) > 0 {
			sum := 0.0
			for _, id := range adj {
				sum += xs[id]
			}
			targets[i] = sum / float64(len(adj))
		}
		targets[i] -= offsets[i]
	}

	for i, y := range isotonic(targets) {
		xs[row[i].ID] = y + offsets[i]
	}
}

// isotonic returns the non-decreasing sequence closest to v in the least
// squares sense (pool adjacent violators).
func isotonic(v []float64) []float64 {
	type block struct {
		sum float64
		n   int
	}
	mean := func(b block) float64 { return b.sum / float64(b.n) }

	blocks := make([]block, 0, len(v))
	for _, x := range v {
		blocks = append(blocks, block{sum: x, n: 1})
		for len(blocks) > 1 {
			a, b := blocks[len(blocks)-2], blocks[len(blocks)-1]
			if mean(a) <= mean(b) {
				break
			}
			blocks = append(blocks[:len(blocks)-2], block{sum: a.sum + b.sum, n: a.n + b.n})
		}
	}

	out := make([]float64, 0, len(v))
	for _, b := range blocks {
		m := mean(b)
		for range b.n {
			out = append(out, m)
		}
	}
	return out
}

func collect(d *dag.DAG, xs, ys map[string]float64) layout.Placement {
	minX, maxX := math.Inf(1), math.Inf(-1)
	maxY := 0.0
	for _, n := range d.Nodes() {
		if n.IsSubdivider() {
			continue
		}
		minX = math.Min(minX, xs[n.ID]-n.Width/2)
		maxX = math.Max(maxX, xs[n.ID]+n.Width/2)
		maxY = math.Max(maxY, ys[n.ID]+n.Height/2)
	}
	if math.IsInf(minX, 1) {
		return layout.Placement{Centers: map[string]layout.Position{}}
	}

	p := layout.Placement{
		Centers: make(map[string]layout.Position, d.NodeCount()),
		Width:   maxX - minX,
		Height:  maxY,
	}
	for _, n := range d.Nodes() {
		if n.IsSubdivider() {
			continue
		}
		p.Centers[n.ID] = layout.Position{X: xs[n.ID] - minX, Y: ys[n.ID]}
	}
	return p
}
