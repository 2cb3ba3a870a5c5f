package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/firemesscode/drevorod/pkg/family"
	"github.com/firemesscode/drevorod/pkg/layout"
	"github.com/firemesscode/drevorod/pkg/store"
)

// Source is a store that announces its mutations.
type Source interface {
	Snapshot(ctx context.Context) (family.Snapshot, error)
	Subscribe(fn func(store.Event)) (unsubscribe func())
}

// State is what [Live] currently serves.
type State struct {
	// Layout is the last successfully computed layout. It survives
	// failed refreshes.
	Layout *layout.Layout
	// SnapshotHash identifies the snapshot Layout was computed from.
	SnapshotHash string
	// Err is the error of the most recent refresh, nil if it succeeded.
	Err error
	// Version counts successful refreshes.
	Version   uint64
	UpdatedAt time.Time
}

// Live keeps a layout in step with a store. Each change notification
// triggers exactly one synchronous recomputation on the notifying
// goroutine. Notifications that arrive while a recomputation is running
// are folded into one follow-up pass instead of recursing, and mutations
// made inside [Live.Batch] produce a single pass at the end.
type Live struct {
	runner *Runner
	src    Source
	opts   Options

	mu         sync.Mutex
	state      State
	refreshing bool
	dirty      bool
	batching   int
	onUpdate   []func(State)

	unsubscribe func()
}

// NewLive creates a live layout over src. Call [Live.Start] to compute the
// first layout and begin listening.
func NewLive(r *Runner, src Source, opts Options) *Live {
	return &Live{runner: r, src: src, opts: opts}
}

// Start computes the initial layout and subscribes to src. A failed first
// refresh is returned but the subscription stays active, so the next
// change retries.
func (l *Live) Start(ctx context.Context) error {
	if err := l.opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	l.mu.Lock()
	if l.unsubscribe == nil {
		l.unsubscribe = l.src.Subscribe(func(store.Event) { l.changed() })
	}
	l.mu.Unlock()
	return l.Refresh(ctx)
}

// Stop unsubscribes from the source.
func (l *Live) Stop() {
	l.mu.Lock()
	unsubscribe := l.unsubscribe
	l.unsubscribe = nil
	l.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// OnUpdate registers fn to run after every refresh, successful or not.
func (l *Live) OnUpdate(fn func(State)) {
	l.mu.Lock()
	l.onUpdate = append(l.onUpdate, fn)
	l.mu.Unlock()
}

// State returns the current state.
func (l *Live) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Batch runs fn with change notifications deferred, then refreshes once if
// anything changed.
func (l *Live) Batch(ctx context.Context, fn func() error) error {
	l.mu.Lock()
	l.batching++
	l.mu.Unlock()

	err := fn()

	l.mu.Lock()
	l.batching--
	run := l.batching == 0 && l.dirty && !l.refreshing
	l.mu.Unlock()
	if run {
		if rerr := l.Refresh(ctx); err == nil {
			err = rerr
		}
	}
	return err
}

func (l *Live) changed() {
	l.mu.Lock()
	if l.batching > 0 || l.refreshing {
		l.dirty = true
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()
	_ = l.Refresh(context.Background())
}

// Refresh recomputes the layout from a fresh snapshot. When a refresh is
// already running it marks the state dirty and returns nil; the running
// refresh then makes one more pass.
func (l *Live) Refresh(ctx context.Context) error {
	l.mu.Lock()
	if l.refreshing {
		l.dirty = true
		l.mu.Unlock()
		return nil
	}
	l.refreshing = true
	l.mu.Unlock()

	var err error
	for {
		l.mu.Lock()
		l.dirty = false
		l.mu.Unlock()

		err = l.recompute(ctx)

		l.mu.Lock()
		again := l.dirty && l.batching == 0
		if !again {
			l.refreshing = false
		}
		l.mu.Unlock()
		if !again {
			break
		}
	}
	return err
}

func (l *Live) recompute(ctx context.Context) error {
	snap, err := l.src.Snapshot(ctx)
	var (
		lay  *layout.Layout
		hash string
	)
	if err == nil {
		var res *Result
		res, err = l.runner.Execute(ctx, snap, Options{
			Engine: l.opts.Engine,
			Layout: l.opts.Layout,
		})
		if err == nil {
			lay, hash = res.Layout, res.SnapshotHash
		}
	}

	l.mu.Lock()
	if err != nil {
		l.state.Err = err
	} else {
		l.state = State{
			Layout:       lay,
			SnapshotHash: hash,
			Version:      l.state.Version + 1,
			UpdatedAt:    time.Now(),
		}
	}
	state := l.state
	callbacks := append([]func(State){}, l.onUpdate...)
	l.mu.Unlock()

	if err != nil {
		l.runner.Logger.Warn("layout refresh failed; serving last good layout", "error", err, "version", state.Version)
	}
	for _, fn := range callbacks {
		fn(state)
	}
	return err
}
