// Package memory implements an in-process family store. With
// [WithPersist] it doubles as the base of the file-backed store.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/family"
)

// Option configures a [Store].
type Option func(*Store)

// WithPersist registers fn to be called with the next snapshot before each
// mutation is committed. If fn fails the mutation is abandoned.
func WithPersist(fn func(family.Snapshot) error) Option {
	return func(s *Store) { s.persist = fn }
}

// Store keeps a snapshot in memory behind a read/write lock.
type Store struct {
	mu      sync.RWMutex
	snap    family.Snapshot
	persist func(family.Snapshot) error
}

// New creates a store holding a copy of seed.
func New(seed family.Snapshot, opts ...Option) *Store {
	s := &Store{snap: seed.Clone()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDemo creates a store seeded with the demo family.
func NewDemo() *Store { return New(family.Demo()) }

func (s *Store) Snapshot(context.Context) (family.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone(), nil
}

func (s *Store) Person(_ context.Context, id string) (family.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.snap.Person(id)
	if !ok {
		return family.Person{}, errors.PersonNotFound(id)
	}
	return p, nil
}

func (s *Store) CreatePerson(_ context.Context, p family.Person) (family.Person, error) {
	err := s.mutate(func(next *family.Snapshot) error {
		if _, ok := next.Person(p.ID); ok {
			return errors.New(errors.ErrCodeInvalidPerson, "person %q already exists", p.ID)
		}
		next.People = append(next.People, p)
		return nil
	})
	if err != nil {
		return family.Person{}, err
	}
	return p, nil
}

func (s *Store) UpdatePerson(_ context.Context, id string, patch family.PersonPatch) (family.Person, error) {
	var out family.Person
	err := s.mutate(func(next *family.Snapshot) error {
		i := slices.IndexFunc(next.People, func(p family.Person) bool { return p.ID == id })
		if i < 0 {
			return errors.PersonNotFound(id)
		}
		next.People[i] = patch.Apply(next.People[i])
		out = next.People[i]
		return nil
	})
	return out, err
}

func (s *Store) DeletePerson(_ context.Context, id string) error {
	return s.mutate(func(next *family.Snapshot) error {
		if _, ok := next.Person(id); !ok {
			return errors.PersonNotFound(id)
		}
		*next = next.WithoutPerson(id)
		return nil
	})
}

func (s *Store) CreateRelationship(_ context.Context, r family.Relationship) (family.Relationship, error) {
	err := s.mutate(func(next *family.Snapshot) error {
		if _, ok := next.Relationship(r.ID); ok {
			return errors.New(errors.ErrCodeInvalidRelationship, "relationship %q already exists", r.ID)
		}
		next.Relationships = append(next.Relationships, r)
		return nil
	})
	if err != nil {
		return family.Relationship{}, err
	}
	return r, nil
}

func (s *Store) UpdateRelationship(_ context.Context, id string, patch family.RelationshipPatch) (family.Relationship, error) {
	var out family.Relationship
	err := s.mutate(func(next *family.Snapshot) error {
		i := slices.IndexFunc(next.Relationships, func(r family.Relationship) bool { return r.ID == id })
		if i < 0 {
			return errors.RelationshipNotFound(id)
		}
		next.Relationships[i] = patch.Apply(next.Relationships[i])
		out = next.Relationships[i]
		return nil
	})
	return out, err
}

func (s *Store) DeleteRelationship(_ context.Context, id string) error {
	return s.mutate(func(next *family.Snapshot) error {
		n := len(next.Relationships)
		next.Relationships = slices.DeleteFunc(next.Relationships, func(r family.Relationship) bool { return r.ID == id })
		if len(next.Relationships) == n {
			return errors.RelationshipNotFound(id)
		}
		return nil
	})
}

// Close does nothing.
func (s *Store) Close() error { return nil }

// mutate applies fn to a copy of the snapshot and commits it once fn and
// the persist hook both succeed.
func (s *Store) mutate(fn func(*family.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if s.persist != nil {
		if err := s.persist(next); err != nil {
			return err
		}
	}
	s.snap = next
	return nil
}
