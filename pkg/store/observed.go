package store

import (
	"context"
	"sync"
	"time"

	"github.com/firemesscode/drevorod/pkg/family"
	"github.com/firemesscode/drevorod/pkg/observability"
)

// EventKind names a store mutation.
type EventKind string

const (
	PersonCreated       EventKind = "person.created"
	PersonUpdated       EventKind = "person.updated"
	PersonDeleted       EventKind = "person.deleted"
	RelationshipCreated EventKind = "relationship.created"
	RelationshipUpdated EventKind = "relationship.updated"
	RelationshipDeleted EventKind = "relationship.deleted"
)

// Event describes one successful mutation.
type Event struct {
	Kind EventKind `json:"kind"`
	ID   string    `json:"id"`
}

// Observed notifies subscribers after each successful mutation, exactly
// once per mutation, and reports loads and mutations to the store hooks.
// Subscribers run synchronously on the mutating goroutine, after the
// change is committed.
type Observed struct {
	Store
	backend string

	mu   sync.Mutex
	subs map[uint64]func(Event)
	next uint64
}

// NewObserved wraps s. backend labels hook calls.
func NewObserved(s Store, backend string) *Observed {
	return &Observed{Store: s, backend: backend, subs: map[uint64]func(Event){}}
}

// Backend returns the backend name given to [NewObserved].
func (o *Observed) Backend() string { return o.backend }

// Subscribe registers fn and returns a function that removes it.
func (o *Observed) Subscribe(fn func(Event)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.next
	o.next++
	o.subs[id] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
		})
	}
}

func (o *Observed) publish(ev Event) {
	o.mu.Lock()
	subs := make([]func(Event), 0, len(o.subs))
	for _, fn := range o.subs {
		subs = append(subs, fn)
	}
	o.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

func (o *Observed) done(ctx context.Context, kind EventKind, id string, start time.Time, err error) {
	observability.Store().OnMutation(ctx, o.backend, string(kind), id, time.Since(start), err)
	if err == nil {
		o.publish(Event{Kind: kind, ID: id})
	}
}

func (o *Observed) Snapshot(ctx context.Context) (family.Snapshot, error) {
	start := time.Now()
	snap, err := o.Store.Snapshot(ctx)
	observability.Store().OnLoad(ctx, o.backend, len(snap.People), len(snap.Relationships), time.Since(start), err)
	return snap, err
}

func (o *Observed) CreatePerson(ctx context.Context, p family.Person) (family.Person, error) {
	start := time.Now()
	out, err := o.Store.CreatePerson(ctx, p)
	o.done(ctx, PersonCreated, out.ID, start, err)
	return out, err
}

func (o *Observed) UpdatePerson(ctx context.Context, id string, patch family.PersonPatch) (family.Person, error) {
	start := time.Now()
	out, err := o.Store.UpdatePerson(ctx, id, patch)
	o.done(ctx, PersonUpdated, id, start, err)
	return out, err
}

func (o *Observed) DeletePerson(ctx context.Context, id string) error {
	start := time.Now()
	err := o.Store.DeletePerson(ctx, id)
	o.done(ctx, PersonDeleted, id, start, err)
	return err
}

func (o *Observed) CreateRelationship(ctx context.Context, r family.Relationship) (family.Relationship, error) {
	start := time.Now()
	out, err := o.Store.CreateRelationship(ctx, r)
	o.done(ctx, RelationshipCreated, out.ID, start, err)
	return out, err
}

func (o *Observed) UpdateRelationship(ctx context.Context, id string, patch family.RelationshipPatch) (family.Relationship, error) {
	start := time.Now()
	out, err := o.Store.UpdateRelationship(ctx, id, patch)
	o.done(ctx, RelationshipUpdated, id, start, err)
	return out, err
}

func (o *Observed) DeleteRelationship(ctx context.Context, id string) error {
	start := time.Now()
	err := o.Store.DeleteRelationship(ctx, id)
	o.done(ctx, RelationshipDeleted, id, start, err)
	return err
}
