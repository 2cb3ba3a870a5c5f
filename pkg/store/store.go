package store

import (
	"context"

	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/family"
)

// Store persists people and relationships.
//
// Implementations must be safe for concurrent use. Snapshot returns people
// and relationships in insertion order so layouts are reproducible.
// DeletePerson removes every relationship referencing the person as well.
// Lookups and mutations of unknown ids fail with an error for which
// [IsNotFound] reports true.
type Store interface {
	Snapshot(ctx context.Context) (family.Snapshot, error)
	Person(ctx context.Context, id string) (family.Person, error)

	CreatePerson(ctx context.Context, p family.Person) (family.Person, error)
	UpdatePerson(ctx context.Context, id string, patch family.PersonPatch) (family.Person, error)
	DeletePerson(ctx context.Context, id string) error

	CreateRelationship(ctx context.Context, r family.Relationship) (family.Relationship, error)
	UpdateRelationship(ctx context.Context, id string, patch family.RelationshipPatch) (family.Relationship, error)
	DeleteRelationship(ctx context.Context, id string) error

	Close() error
}

// ErrNotFound is the generic not-found error. Backends report the more
// specific person and relationship codes, which [IsNotFound] also accepts.
var ErrNotFound = errors.New(errors.ErrCodeNotFound, "not found")

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, errors.ErrCodeNotFound) ||
		errors.Is(err, errors.ErrCodePersonNotFound) ||
		errors.Is(err, errors.ErrCodeRelationshipNotFound)
}
