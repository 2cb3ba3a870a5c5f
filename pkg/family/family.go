package family

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the type of a relationship.
type Kind string

const (
	KindParentChild Kind = "parent_child"
	KindSpouse      Kind = "spouse"
)

// Valid reports whether k is a known relationship kind.
func (k Kind) Valid() bool {
	return k == KindParentChild || k == KindSpouse
}

// ParseKind converts user input such as "spouse" or "parent-child".
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !k.Valid() {
		return "", fmt.Errorf("unknown relationship kind %q (want parent_child or spouse)", s)
	}
	return k, nil
}

// Person is one member of the family tree.
type Person struct {
	ID          string `json:"id" toml:"id" bson:"_id" gorm:"primaryKey;type:varchar(128)"`
	LastName    string `json:"last_name" toml:"last_name" bson:"last_name" gorm:"not null"`
	FirstName   string `json:"first_name" toml:"first_name" bson:"first_name" gorm:"not null"`
	MiddleName  string `json:"middle_name,omitempty" toml:"middle_name,omitempty" bson:"middle_name,omitempty"`
	BirthDate   string `json:"birth_date,omitempty" toml:"birth_date,omitempty" bson:"birth_date,omitempty"`
	DeathDate   string `json:"death_date,omitempty" toml:"death_date,omitempty" bson:"death_date,omitempty"`
	BirthPlace  string `json:"birth_place,omitempty" toml:"birth_place,omitempty" bson:"birth_place,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty" toml:"photo_url,omitempty" bson:"photo_url,omitempty"`
	Description string `json:"description,omitempty" toml:"description,omitempty" bson:"description,omitempty"`
}

// TableName sets the SQL table name used by gorm.
func (Person) TableName() string { return "people" }

// FullName returns "Last First Middle", skipping empty parts.
func (p Person) FullName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.LastName, p.FirstName, p.MiddleName} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Lifespan returns "1950", "1950 - 2020" or "?" from the recorded dates.
func (p Person) Lifespan() string {
	birth := year(p.BirthDate)
	if birth == "" {
		birth = "?"
	}
	if death := year(p.DeathDate); death != "" {
		return birth + " - " + death
	}
	return birth
}

// Age returns the person's age in whole years at now, or at their death
// date if one is recorded. ok is false when the birth date is unknown or
// unparseable.
func (p Person) Age(now time.Time) (age int, ok bool) {
	birth, err := time.Parse(dateLayout, p.BirthDate)
	if err != nil {
		return 0, false
	}
	end := now
	if p.DeathDate != "" {
		if d, err := time.Parse(dateLayout, p.DeathDate); err == nil {
			end = d
		}
	}
	age = end.Year() - birth.Year()
	if end.Month() < birth.Month() || (end.Month() == birth.Month() && end.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}

// Deceased reports whether a death date is recorded.
func (p Person) Deceased() bool { return p.DeathDate != "" }

// Relationship links two people.
type Relationship struct {
	ID        string `json:"id" toml:"id" bson:"_id" gorm:"primaryKey;type:varchar(128)"`
	Person1ID string `json:"person1_id" toml:"person1_id" bson:"person1_id" gorm:"index;not null"`
	Person2ID string `json:"person2_id" toml:"person2_id" bson:"person2_id" gorm:"index;not null"`
	Kind      Kind   `json:"type" toml:"type" bson:"type" gorm:"column:type;not null"`
	Label     string `json:"meta,omitempty" toml:"meta,omitempty" bson:"meta,omitempty" gorm:"column:meta"`
}

// TableName sets the SQL table name used by gorm.
func (Relationship) TableName() string { return "relationships" }

// Involves reports whether personID is either end of the relationship.
func (r Relationship) Involves(personID string) bool {
	return r.Person1ID == personID || r.Person2ID == personID
}

// Joins reports whether r connects a and b, in either stored order.
func (r Relationship) Joins(a, b string) bool {
	return (r.Person1ID == a && r.Person2ID == b) || (r.Person1ID == b && r.Person2ID == a)
}

// PersonPatch is a partial update; nil fields are left unchanged.
type PersonPatch struct {
	LastName    *string `json:"last_name,omitempty"`
	FirstName   *string `json:"first_name,omitempty"`
	MiddleName  *string `json:"middle_name,omitempty"`
	BirthDate   *string `json:"birth_date,omitempty"`
	DeathDate   *string `json:"death_date,omitempty"`
	BirthPlace  *string `json:"birth_place,omitempty"`
	PhotoURL    *string `json:"photo_url,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Apply returns p with the patch's non-nil fields copied over.
func (pp PersonPatch) Apply(p Person) Person {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.LastName, pp.LastName)
	set(&p.FirstName, pp.FirstName)
	set(&p.MiddleName, pp.MiddleName)
	set(&p.BirthDate, pp.BirthDate)
	set(&p.DeathDate, pp.DeathDate)
	set(&p.BirthPlace, pp.BirthPlace)
	set(&p.PhotoURL, pp.PhotoURL)
	set(&p.Description, pp.Description)
	return p
}

// Fields returns the patch as a column-name map for stores that update
// documents or rows in place.
func (pp PersonPatch) Fields() map[string]any {
	out := map[string]any{}
	add := func(name string, v *string) {
		if v != nil {
			out[name] = *v
		}
	}
	add("last_name", pp.LastName)
	add("first_name", pp.FirstName)
	add("middle_name", pp.MiddleName)
	add("birth_date", pp.BirthDate)
	add("death_date", pp.DeathDate)
	add("birth_place", pp.BirthPlace)
	add("photo_url", pp.PhotoURL)
	add("description", pp.Description)
	return out
}

// RelationshipPatch updates the mutable parts of a relationship. The
// endpoints of a relationship cannot be changed; delete and recreate it.
type RelationshipPatch struct {
	Kind  *Kind   `json:"type,omitempty"`
	Label *string `json:"meta,omitempty"`
}

// Apply returns r with the patch applied.
func (rp RelationshipPatch) Apply(r Relationship) Relationship {
	if rp.Kind != nil {
		r.Kind = *rp.Kind
	}
	if rp.Label != nil {
		r.Label = *rp.Label
	}
	return r
}

// Fields returns the patch as a column-name map.
func (rp RelationshipPatch) Fields() map[string]any {
	out := map[string]any{}
	if rp.Kind != nil {
		out["type"] = string(*rp.Kind)
	}
	if rp.Label != nil {
		out["meta"] = *rp.Label
	}
	return out
}

const dateLayout = "2006-01-02"

func year(date string) string {
	if len(date) < 4 {
		return ""
	}
	if t, err := time.Parse(dateLayout, date); err == nil {
		return fmt.Sprint(t.Year())
	}
	return ""
}
