package entities

// Item is the immutable definition of a kind of item. The *Item pointer
// doubles as the runtime identifier: two identifiers are equal iff they are
// the same definition.
type Item struct {
	ID   int32
	Name string

	// Capacity bounds the carried quantity. Zero or negative means unbounded.
	Capacity int

	// Categories lists the leaf categories this item belongs to
	Categories []*Category
}

// NewItem creates an item definition
func NewItem(id int32, name string, capacity int, categories ...*Category) *Item {
	return &Item{
		ID:         id,
		Name:       name,
		Capacity:   capacity,
		Categories: categories,
	}
}

// Unbounded reports whether the item has no capacity limit
func (i *Item) Unbounded() bool {
	return i.Capacity <= 0
}

// InCategory reports whether any of the item's memberships falls under cat
func (i *Item) InCategory(cat *Category) bool {
	if i == nil || cat == nil {
		return false
	}
	for _, membership := range i.Categories {
		if cat.Contains(membership, true) {
			return true
		}
	}
	return false
}

// Instance is a physical item occupying an inventory slot. Instances exist
// only while the item is carried; quantity bookkeeping lives in the store.
type Instance struct {
	ID   string
	Item *Item
	Slot int
}
