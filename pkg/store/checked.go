package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/family"
)

// Checked enforces the rules every backend shares: field validation, id
// assignment, no relationships to unknown people or to oneself, and no
// duplicate relationship of the same kind between the same pair.
//
// Writes through one Checked are serialised, so a check and the write it
// guards cannot interleave with another write. Separate processes sharing
// a database are not coordinated.
type Checked struct {
	Store
	newID func() string
	mu    sync.Mutex
}

// NewChecked wraps s.
func NewChecked(s Store) *Checked {
	return &Checked{Store: s, newID: uuid.NewString}
}

// CreatePerson assigns an id when p has none.
func (c *Checked) CreatePerson(ctx context.Context, p family.Person) (family.Person, error) {
	if p.ID == "" {
		p.ID = c.newID()
	} else if err := errors.ValidateID(p.ID); err != nil {
		return family.Person{}, errors.Wrap(errors.ErrCodeInvalidPerson, err, "id")
	}
	if err := family.ValidatePerson(p); err != nil {
		return family.Person{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Store.CreatePerson(ctx, p)
}

// UpdatePerson validates the person as it would look after the patch.
func (c *Checked) UpdatePerson(ctx context.Context, id string, patch family.PersonPatch) (family.Person, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, err := c.Store.Person(ctx, id)
	if err != nil {
		return family.Person{}, err
	}
	if err := family.ValidatePerson(patch.Apply(current)); err != nil {
		return family.Person{}, err
	}
	return c.Store.UpdatePerson(ctx, id, patch)
}

// DeletePerson removes the person and their relationships.
func (c *Checked) DeletePerson(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Store.DeletePerson(ctx, id)
}

// CreateRelationship assigns an id when r has none.
func (c *Checked) CreateRelationship(ctx context.Context, r family.Relationship) (family.Relationship, error) {
	if r.ID == "" {
		r.ID = c.newID()
	} else if err := errors.ValidateID(r.ID); err != nil {
		return family.Relationship{}, errors.Wrap(errors.ErrCodeInvalidRelationship, err, "id")
	}
	if err := family.ValidateRelationship(r); err != nil {
		return family.Relationship{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	snap, err := c.Store.Snapshot(ctx)
	if err != nil {
		return family.Relationship{}, err
	}
	for _, id := range []string{r.Person1ID, r.Person2ID} {
		if _, ok := snap.Person(id); !ok {
			return family.Relationship{}, errors.Wrap(errors.ErrCodeInvalidRelationship, errors.PersonNotFound(id), "unknown person")
		}
	}
	for _, existing := range snap.Relationships {
		if duplicate(existing, r) {
			return family.Relationship{}, errors.New(errors.ErrCodeInvalidRelationship,
				"%s relationship between %s and %s already exists (%s)", r.Kind, r.Person1ID, r.Person2ID, existing.ID)
		}
	}
	return c.Store.CreateRelationship(ctx, r)
}

// UpdateRelationship validates the relationship as it would look after
// the patch.
func (c *Checked) UpdateRelationship(ctx context.Context, id string, patch family.RelationshipPatch) (family.Relationship, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, err := c.Store.Snapshot(ctx)
	if err != nil {
		return family.Relationship{}, err
	}
	current, ok := snap.Relationship(id)
	if !ok {
		return family.Relationship{}, errors.RelationshipNotFound(id)
	}
	next := patch.Apply(current)
	if err := family.ValidateRelationship(next); err != nil {
		return family.Relationship{}, err
	}
	for _, existing := range snap.Relationships {
		if existing.ID != id && duplicate(existing, next) {
			return family.Relationship{}, errors.New(errors.ErrCodeInvalidRelationship,
				"%s relationship between %s and %s already exists (%s)", next.Kind, next.Person1ID, next.Person2ID, existing.ID)
		}
	}
	return c.Store.UpdateRelationship(ctx, id, patch)
}

// DeleteRelationship removes one relationship.
func (c *Checked) DeleteRelationship(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Store.DeleteRelationship(ctx, id)
}

// duplicate reports whether a and b are the same link. Spouse links are
// symmetric; parent links are directed.
func duplicate(a, b family.Relationship) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == family.KindSpouse {
		return a.Joins(b.Person1ID, b.Person2ID)
	}
	return a.Person1ID == b.Person1ID && a.Person2ID == b.Person2ID
}
