// Package family defines the genealogical records a tree is built from:
// people, the relationships between them, and a snapshot holding both.
//
// Relationships come in two kinds. A [KindParentChild] relationship is
// directed: Person1ID is the parent, Person2ID the child. A [KindSpouse]
// relationship is semantically undirected but stored with a fixed order.
// Deleting a person always cascades to every relationship that mentions
// them; [Snapshot.WithoutPerson] implements that rule for in-memory data.
//
// Dates are kept as the YYYY-MM-DD strings they are entered as. Optional
// fields use the empty string for "unknown".
package family
