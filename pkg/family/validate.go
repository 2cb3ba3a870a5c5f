package family

import (
	"github.com/firemesscode/drevorod/pkg/errors"
)

// ValidatePerson checks a person before it is stored. The ID is not
// checked here because stores assign it on create.
func ValidatePerson(p Person) error {
	if err := errors.ValidateName("last name", p.LastName); err != nil {
		return err
	}
	if err := errors.ValidateName("first name", p.FirstName); err != nil {
		return err
	}
	if p.MiddleName != "" {
		if err := errors.ValidateName("middle name", p.MiddleName); err != nil {
			return err
		}
	}
	if err := errors.ValidateDate("birth date", p.BirthDate); err != nil {
		return err
	}
	if err := errors.ValidateDate("death date", p.DeathDate); err != nil {
		return err
	}
	if p.BirthDate != "" && p.DeathDate != "" && p.DeathDate < p.BirthDate {
		return errors.New(errors.ErrCodeInvalidPerson, "death date %s is before birth date %s", p.DeathDate, p.BirthDate)
	}
	if p.PhotoURL != "" {
		if err := errors.ValidateURL(p.PhotoURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPerson, err, "photo URL")
		}
	}
	return nil
}

// ValidateRelationship checks a relationship's own fields. Whether the
// referenced people exist is the store's concern.
func ValidateRelationship(r Relationship) error {
	if !r.Kind.Valid() {
		return errors.New(errors.ErrCodeInvalidRelationship, "unknown relationship type %q", r.Kind)
	}
	if err := errors.ValidateID(r.Person1ID); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRelationship, err, "person1_id")
	}
	if err := errors.ValidateID(r.Person2ID); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRelationship, err, "person2_id")
	}
	if r.Person1ID == r.Person2ID {
		return errors.New(errors.ErrCodeInvalidRelationship, "a person cannot be related to themselves")
	}
	return errors.ValidateLabel(r.Label)
}
