package layout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/firemesscode/drevorod/pkg/family"
	"github.com/firemesscode/drevorod/pkg/observability"
)

// ErrNoRanker is returned by [Engine.Compute] when the engine has no
// ranker.
var ErrNoRanker = errors.New("layout: no ranker configured")

// Engine computes layouts with a fixed ranker and options. It holds no
// per-call state and is safe for concurrent use if its ranker is.
type Engine struct {
	ranker  Ranker
	options Options
	logger  *log.Logger
}

// New creates an engine. A nil logger discards output.
func New(r Ranker, opts Options, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{ranker: r, options: opts.WithDefaults(), logger: logger}
}

// Options returns the engine's effective options.
func (e *Engine) Options() Options { return e.options }

// RankerName returns the name of the engine's ranker.
func (e *Engine) RankerName() string {
	if e.ranker == nil {
		return ""
	}
	return e.ranker.Name()
}

// Compute lays out a snapshot. Relationships pointing at unknown people
// are skipped, logged at warn level and listed in Layout.Diagnostics.
func (e *Engine) Compute(ctx context.Context, s family.Snapshot) (*Layout, error) {
	if e.ranker == nil {
		return nil, ErrNoRanker
	}
	name := e.ranker.Name()
	start := time.Now()

	g := BuildGraph(s, e.options)
	for _, d := range g.Dropped {
		e.logger.Warn("skipping input", "what", d.Subject(), "reason", d.Reason)
	}
	observability.Layout().OnLayoutStart(ctx, name, len(g.Nodes))

	out, err := e.place(ctx, g)
	stats := observability.LayoutStats{
		People:  len(s.People),
		Unions:  len(g.Unions),
		Edges:   len(g.Edges),
		Dropped: len(g.Dropped),
	}
	observability.Layout().OnLayoutComplete(ctx, name, stats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("layout computed", "engine", name, "nodes", len(out.Nodes), "edges", len(out.Edges),
		"unions", stats.Unions, "took", time.Since(start).Round(time.Microsecond))
	return out, nil
}

func (e *Engine) place(ctx context.Context, g *Graph) (*Layout, error) {
	if len(g.Nodes) == 0 {
		return &Layout{Nodes: []Node{}, Edges: []Edge{}, Engine: e.ranker.Name(), Diagnostics: g.Dropped}, nil
	}
	p, err := e.ranker.Rank(ctx, g, e.options)
	if err != nil {
		return nil, fmt.Errorf("rank with %s: %w", e.ranker.Name(), err)
	}
	out, err := Translate(g, p)
	if err != nil {
		return nil, err
	}
	out.Engine = e.ranker.Name()
	return out, nil
}

// Compute is a convenience for New(r, Options{}, nil).Compute(ctx, s).
func Compute(ctx context.Context, s family.Snapshot, r Ranker) (*Layout, error) {
	return New(r, Options{}, nil).Compute(ctx, s)
}
