package layout

import "github.com/firemesscode/drevorod/pkg/family"

// ParentIndex maps each child to the parents recorded for it through
// parent_child relationships. Duplicate relationships produce duplicate
// entries; a child with no, one, or three or more parents is simply
// ineligible for a union.
type ParentIndex struct {
	children []string
	parents  map[string][]string
}

// IndexParents builds the index in relationship order. Children are
// remembered in the order of their first parent_child relationship.
func IndexParents(rels []family.Relationship) ParentIndex {
	ix := ParentIndex{parents: make(map[string][]string)}
	for _, r := range rels {
		if r.Kind != family.KindParentChild {
			continue
		}
		if _, seen := ix.parents[r.Person2ID]; !seen {
			ix.children = append(ix.children, r.Person2ID)
		}
		ix.parents[r.Person2ID] = append(ix.parents[r.Person2ID], r.Person1ID)
	}
	return ix
}

// Parents returns the parent IDs recorded for child, in relationship order.
func (ix ParentIndex) Parents(child string) []string { return ix.parents[child] }

// Children returns every child with at least one recorded parent.
func (ix ParentIndex) Children() []string { return ix.children }
