package layout

import "github.com/firemesscode/drevorod/pkg/family"

// pair is an unordered couple in canonical (sorted) form. Using a struct
// rather than a joined string keeps IDs containing '-' intact.
type pair struct{ a, b string }

func newPair(x, y string) pair {
	if y < x {
		x, y = y, x
	}
	return pair{x, y}
}

// UnionID returns the node ID of the union between two parents. The result
// does not depend on argument order.
func UnionID(p1, p2 string) string {
	p := newPair(p1, p2)
	return "union-" + p.a + "-" + p.b
}

// Union is a couple with at least one shared child.
type Union struct {
	ID       string
	Parents  [2]string // sorted
	Children []string  // in order of first appearance
}

// DetectUnions groups children with exactly two distinct parents by their
// parent pair and keeps the pairs joined by a spouse relationship, in
// either stored order. Unions are returned in the order their first child
// appears in the index.
func DetectUnions(ix ParentIndex, rels []family.Relationship) []Union {
	spouses := make(map[pair]bool)
	for _, r := range rels {
		if r.Kind == family.KindSpouse {
			spouses[newPair(r.Person1ID, r.Person2ID)] = true
		}
	}

	var unions []Union
	byPair := make(map[pair]int)
	for _, child := range ix.Children() {
		parents := ix.Parents(child)
		if len(parents) != 2 || parents[0] == parents[1] {
			continue
		}
		key := newPair(parents[0], parents[1])
		if !spouses[key] {
			continue
		}
		i, ok := byPair[key]
		if !ok {
			i = len(unions)
			byPair[key] = i
			unions = append(unions, Union{
				ID:      UnionID(key.a, key.b),
				Parents: [2]string{key.a, key.b},
			})
		}
		unions[i].Children = append(unions[i].Children, child)
	}
	return unions
}
