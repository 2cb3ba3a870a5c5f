package family

import "slices"

// Snapshot is a complete, consistent view of the family data: the input
// the layout engine consumes and the unit stores load and files persist.
type Snapshot struct {
	People        []Person       `json:"people" toml:"people"`
	Relationships []Relationship `json:"relationships" toml:"relationships"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		People:        slices.Clone(s.People),
		Relationships: slices.Clone(s.Relationships),
	}
}

// Person returns the person with the given ID.
func (s Snapshot) Person(id string) (Person, bool) {
	i := slices.IndexFunc(s.People, func(p Person) bool { return p.ID == id })
	if i < 0 {
		return Person{}, false
	}
	return s.People[i], true
}

// Relationship returns the relationship with the given ID.
func (s Snapshot) Relationship(id string) (Relationship, bool) {
	i := slices.IndexFunc(s.Relationships, func(r Relationship) bool { return r.ID == id })
	if i < 0 {
		return Relationship{}, false
	}
	return s.Relationships[i], true
}

// WithoutPerson returns a copy of s with the person removed together with
// every relationship that references them.
func (s Snapshot) WithoutPerson(id string) Snapshot {
	out := s.Clone()
	out.People = slices.DeleteFunc(out.People, func(p Person) bool { return p.ID == id })
	out.Relationships = slices.DeleteFunc(out.Relationships, func(r Relationship) bool { return r.Involves(id) })
	return out
}

// RelationshipsOf returns the relationships mentioning personID, in order.
func (s Snapshot) RelationshipsOf(personID string) []Relationship {
	var out []Relationship
	for _, r := range s.Relationships {
		if r.Involves(personID) {
			out = append(out, r)
		}
	}
	return out
}

// Parents returns the IDs of personID's recorded parents, in relationship
// order.
func (s Snapshot) Parents(personID string) []string {
	var out []string
	for _, r := range s.Relationships {
		if r.Kind == KindParentChild && r.Person2ID == personID {
			out = append(out, r.Person1ID)
		}
	}
	return out
}

// Children returns the IDs of personID's recorded children.
func (s Snapshot) Children(personID string) []string {
	var out []string
	for _, r := range s.Relationships {
		if r.Kind == KindParentChild && r.Person1ID == personID {
			out = append(out, r.Person2ID)
		}
	}
	return out
}

// Spouses returns the spouse relationships of personID, in order.
func (s Snapshot) Spouses(personID string) []Relationship {
	var out []Relationship
	for _, r := range s.Relationships {
		if r.Kind == KindSpouse && r.Involves(personID) {
			out = append(out, r)
		}
	}
	return out
}
