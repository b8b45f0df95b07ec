package entities

// Category is a node in the item classification hierarchy. The hierarchy is
// a DAG: a node may have several direct parents, and items declare
// membership in leaf nodes.
type Category struct {
	ID      int32
	Name    string
	Parents []*Category
}

// NewCategory creates a category with the given direct parents
func NewCategory(id int32, name string, parents ...*Category) *Category {
	return &Category{
		ID:      id,
		Name:    name,
		Parents: parents,
	}
}

// MergeCategories synthesizes a transient node whose direct parents are the
// given categories. Used at load time for items that declare more than one
// membership, so a single node can stand in for all of them. The synthetic
// node carries a negative ID to keep it out of configured ID space.
func MergeCategories(id int32, name string, parents []*Category) *Category {
	if id > 0 {
		id = -id
	}
	return &Category{
		ID:      id,
		Name:    name,
		Parents: parents,
	}
}

// Contains reports whether other is classified under c.
//
// The test resolves from the argument's side: other is contained if its
// ancestor chain reaches c. The self-check honors includeSelf only at the
// top level; ancestor hops always count a reached node as a match. This
// asymmetry is load-bearing for matching semantics and is locked in by the
// containment tests.
func (c *Category) Contains(other *Category, includeSelf bool) bool {
	if c == nil || other == nil {
		return false
	}
	if includeSelf && c == other {
		return true
	}
	for _, parent := range other.Parents {
		if c.Contains(parent, true) {
			return true
		}
	}
	return false
}
