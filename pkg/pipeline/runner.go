package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/firemesscode/drevorod/pkg/cache"
	"github.com/firemesscode/drevorod/pkg/family"
	"github.com/firemesscode/drevorod/pkg/layout"
	"github.com/firemesscode/drevorod/pkg/observability"
	"github.com/firemesscode/drevorod/pkg/rank"
	"github.com/firemesscode/drevorod/pkg/render"
)

// Runner executes the pipeline with caching. Both the CLI and the server
// use it so caching behaves the same everywhere.
//
// A Runner keeps one ranker per engine name and is otherwise stateless;
// it is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	now     func() time.Time
	mu      sync.Mutex
	rankers map[string]layout.Ranker
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means [cache.DefaultKeyer] and a nil logger discards output.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		now:     time.Now,
		rankers: map[string]layout.Ranker{},
	}
}

// Execute lays out snap and renders opts.Formats.
func (r *Runner) Execute(ctx context.Context, snap family.Snapshot, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{
		Artifacts: map[render.Format][]byte{},
		Stats: Stats{
			People:        len(snap.People),
			Relationships: len(snap.Relationships),
		},
	}

	hash, err := cache.HashJSON(snap)
	if err != nil {
		return nil, err
	}
	result.SnapshotHash = hash

	layoutStart := time.Now()
	l, hit, err := r.layout(ctx, snap, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.Nodes = len(l.Nodes)
	result.Stats.Edges = len(l.Edges)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout",
		"engine", opts.Engine,
		"nodes", len(l.Nodes),
		"edges", len(l.Edges),
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	if len(opts.Formats) == 0 {
		return result, nil
	}

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// LayoutWithCacheInfo lays out snap and reports whether the layout came
// from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, snap family.Snapshot, opts Options) (*layout.Layout, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hash, err := cache.HashJSON(snap)
	if err != nil {
		return nil, false, err
	}
	return r.layout(ctx, snap, hash, opts)
}

// Layout is LayoutWithCacheInfo without the cache hit flag.
func (r *Runner) Layout(ctx context.Context, snap family.Snapshot, opts Options) (*layout.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, snap, opts)
	return l, err
}

func (r *Runner) layout(ctx context.Context, snap family.Snapshot, hash string, opts Options) (*layout.Layout, bool, error) {
	key := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached layout.Layout
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return &cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	ranker, err := r.ranker(opts.Engine)
	if err != nil {
		return nil, false, err
	}
	l, err := layout.New(ranker, opts.Layout, r.Logger).Compute(ctx, snap)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(l); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache layout", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return l, false, nil
}

// RenderWithCacheInfo renders opts.Formats and reports whether every
// artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *layout.Layout, opts Options) (map[render.Format][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	layoutData, err := json.Marshal(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)
	now := r.now()

	artifacts := make(map[render.Format][]byte, len(opts.Formats))
	allCached := true
	for _, f := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(f, now))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[f] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		allCached = false

		start := time.Now()
		observability.Layout().OnRenderStart(ctx, string(f))
		data, err := render.Render(ctx, l, f, render.Options{
			Scale: opts.Scale,
			SVG:   []render.SVGOption{render.WithNow(now)},
		})
		observability.Layout().OnRenderComplete(ctx, string(f), len(data), time.Since(start), err)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", f, err)
		}
		artifacts[f] = data

		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache artifact", "format", f, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, allCached, nil
}

// Render is RenderWithCacheInfo without the cache hit flag.
func (r *Runner) Render(ctx context.Context, l *layout.Layout, opts Options) (map[render.Format][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// ranker returns the shared ranker for an engine name.
func (r *Runner) ranker(name string) (layout.Ranker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rk, ok := r.rankers[name]; ok {
		return rk, nil
	}
	rk, err := rank.New(name)
	if err != nil {
		return nil, err
	}
	r.rankers[name] = rk
	return rk, nil
}

// Close releases the rankers and the cache.
func (r *Runner) Close() error {
	r.mu.Lock()
	for name, rk := range r.rankers {
		if c, ok := rk.(io.Closer); ok {
			if err := c.Close(); err != nil {
				r.Logger.Warn("close ranker", "engine", name, "error", err)
			}
		}
		delete(r.rankers, name)
	}
	r.mu.Unlock()

	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
