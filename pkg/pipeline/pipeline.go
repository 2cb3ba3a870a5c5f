// Package pipeline runs the snapshot → layout → render pipeline shared by
// the CLI and the HTTP server.
//
// # Stages
//
//  1. Snapshot: read people and relationships from a store.
//  2. Layout: synthesize unions and place every node with a ranker.
//  3. Render: encode the layout (JSON, TOML, DOT, SVG, PDF, PNG).
//
// Layouts and artifacts are cached by content hash, so an unchanged family
// is laid out once:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	defer runner.Close()
//	result, err := runner.Execute(ctx, snap, pipeline.Options{
//		Engine:  rank.EngineDot,
//		Formats: []render.Format{render.FormatSVG},
//	})
//	svg := result.Artifacts[render.FormatSVG]
//
// [Live] keeps a layout current for a changing store: it recomputes once
// per change notification and serves the last good layout when the store
// fails.
package pipeline

import (
	"fmt"
	"time"

	"github.com/firemesscode/drevorod/pkg/cache"
	"github.com/firemesscode/drevorod/pkg/layout"
	"github.com/firemesscode/drevorod/pkg/rank"
	"github.com/firemesscode/drevorod/pkg/render"
)

// DefaultScale is the PNG scale factor used when Options.Scale is zero.
const DefaultScale = 2.0

// Options configures a pipeline run.
type Options struct {
	// Engine names the ranker (rank.EngineDot or rank.EngineLayered).
	Engine string `json:"engine,omitempty"`
	// Layout sets node footprints and spacing.
	Layout layout.Options `json:"layout,omitempty"`

	// Formats lists the artifacts to render. Execute renders none when
	// empty.
	Formats []render.Format `json:"formats,omitempty"`
	// Scale is the PNG scale factor.
	Scale float64 `json:"scale,omitempty"`

	// Refresh bypasses cached layouts and artifacts; fresh results are
	// still written back.
	Refresh bool `json:"refresh,omitempty"`
}

// ValidateAndSetDefaults fills defaults and rejects unknown engines and
// formats. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Engine == "" {
		o.Engine = rank.DefaultEngine
	}
	if !rank.Valid(o.Engine) {
		_, err := rank.New(o.Engine)
		return err
	}
	o.Layout = o.Layout.WithDefaults()
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	for _, f := range o.Formats {
		if _, err := render.ParseFormat(string(f)); err != nil {
			return err
		}
	}
	return nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Engine:     o.Engine,
		NodeWidth:  o.Layout.NodeWidth,
		NodeHeight: o.Layout.NodeHeight,
		UnionSize:  o.Layout.UnionSize,
		RankSep:    o.Layout.RankSep,
		NodeSep:    o.Layout.NodeSep,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(f render.Format, now time.Time) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: string(f), Day: now.Format("2006-01-02")}
	if f == render.FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// SnapshotHash is the content hash of the input snapshot.
	SnapshotHash string
	Layout       *layout.Layout
	// Artifacts holds rendered outputs keyed by format.
	Artifacts map[render.Format][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	People        int
	Relationships int
	Nodes         int
	Edges         int
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks which stages were served from the cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // every requested artifact came from the cache
}

func (s Stats) String() string {
	return fmt.Sprintf("%d people, %d relationships → %d nodes, %d edges", s.People, s.Relationships, s.Nodes, s.Edges)
}
