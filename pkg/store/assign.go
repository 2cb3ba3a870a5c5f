package store

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/family"
)

// AssignChildToUnion makes childID a child of the couple parent1 and
// parent2 by adding whichever parent_child relationships are missing. The
// two parents must be joined by a spouse relationship, and the child may
// not already have a parent outside the couple. It returns the
// relationships it created, which is empty when the child was already
// assigned. If a create fails, the links already added by this call are
// removed again before the error is returned.
func AssignChildToUnion(ctx context.Context, s Store, parent1, parent2, childID string) ([]family.Relationship, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range []string{parent1, parent2, childID} {
		if _, ok := snap.Person(id); !ok {
			return nil, errors.PersonNotFound(id)
		}
	}
	if childID == parent1 || childID == parent2 || parent1 == parent2 {
		return nil, errors.New(errors.ErrCodeInvalidRelationship, "child and parents must be three different people")
	}
	couple := slices.ContainsFunc(snap.Spouses(parent1), func(r family.Relationship) bool {
		return r.Joins(parent1, parent2)
	})
	if !couple {
		return nil, errors.New(errors.ErrCodeInvalidRelationship, "%s and %s are not spouses", parent1, parent2)
	}

	existing := snap.Parents(childID)
	for _, p := range existing {
		if p != parent1 && p != parent2 {
			return nil, errors.New(errors.ErrCodeInvalidRelationship, "%s already has parent %s outside this couple", childID, p)
		}
	}

	var created []family.Relationship
	for _, parent := range []string{parent1, parent2} {
		if slices.Contains(existing, parent) {
			continue
		}
		r, err := s.CreateRelationship(ctx, family.Relationship{
			ID:        uuid.NewString(),
			Person1ID: parent,
			Person2ID: childID,
			Kind:      family.KindParentChild,
		})
		if err != nil {
			for _, done := range created {
				_ = s.DeleteRelationship(context.WithoutCancel(ctx), done.ID)
			}
			return nil, err
		}
		created = append(created, r)
	}
	return created, nil
}
