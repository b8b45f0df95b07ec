package equipment

import "time"

// AddItemInput defines the input for adding an item to the inventory
type AddItemInput struct {
	ItemName string
	Slot     int
	Quantity int
}

// AddItemOutput defines the output for adding an item
type AddItemOutput struct {
	// Quantity is the total carried quantity after the add
	Quantity int
}

// RemoveItemInput defines the input for removing carried quantity
type RemoveItemInput struct {
	ItemName string
	Quantity int
}

// RemoveItemOutput defines the output for removing carried quantity
type RemoveItemOutput struct {
	// Removed is the quantity actually removed
	Removed int
	// Remaining is the carried quantity after the removal
	Remaining int
}

// EquipByLabelInput defines the input for equipping by state label
type EquipByLabelInput struct {
	Label string
	// Force skips the can-switch-to check
	Force bool
	// Immediate completes the transition synchronously instead of parking it
	Immediate bool
}

// EquipByLabelOutput defines the output for equipping by state label
type EquipByLabelOutput struct {
	GroupIndex int
	SetIndex   int
	// Pending is true when the transition parked and needs CompleteTransition
	Pending bool
}

// EquipItemSetInput defines the input for equipping by position
type EquipItemSetInput struct {
	GroupIndex int
	SetIndex   int
	Force      bool
	Immediate  bool
}

// EquipItemSetOutput defines the output for equipping by position
type EquipItemSetOutput struct {
	Pending bool
}

// UnequipAllInput defines the input for unequipping every group
type UnequipAllInput struct {
	Immediate bool
}

// UnequipAllOutput defines the output for unequipping every group
type UnequipAllOutput struct{}

// CompleteTransitionInput defines the input for completing a parked transition
type CompleteTransitionInput struct {
	GroupIndex int
}

// CompleteTransitionOutput defines the output for completing a transition
type CompleteTransitionOutput struct {
	ActiveIndex int
}

// GetActiveItemSetInput defines the input for reading a group's active set
type GetActiveItemSetInput struct {
	GroupIndex int
}

// GetActiveItemSetOutput defines the output for reading a group's active set
type GetActiveItemSetOutput struct {
	ItemSet *ItemSetView
}

// GetNextItemSetInput defines the input for reading a group's pending target
type GetNextItemSetInput struct {
	GroupIndex int
}

// GetNextItemSetOutput defines the output for reading a group's pending target
type GetNextItemSetOutput struct {
	ItemSet *ItemSetView
}

// ListItemSetsInput defines the input for listing every group's item sets
type ListItemSetsInput struct{}

// ListItemSetsOutput defines the output for listing every group's item sets
type ListItemSetsOutput struct {
	Groups []GroupView
}

// SaveLoadoutInput defines the input for persisting the current state
type SaveLoadoutInput struct{}

// SaveLoadoutOutput defines the output for persisting the current state
type SaveLoadoutOutput struct {
	UpdatedAt time.Time
}

// RestoreLoadoutInput defines the input for restoring persisted state
type RestoreLoadoutInput struct{}

// RestoreLoadoutOutput defines the output for restoring persisted state
type RestoreLoadoutOutput struct {
	// Equipped lists the state labels re-equipped during the restore
	Equipped []string
}

// ItemSetView is a read-only projection of one item set
type ItemSetView struct {
	GroupIndex int
	Index      int
	ID         string
	Label      string
	// Items holds one name per slot, empty string for an empty slot
	Items   []string
	Active  bool
	Default bool
	Enabled bool
}

// GroupView is a read-only projection of one group
type GroupView struct {
	Index        int
	Category     string
	ActiveIndex  int
	NextIndex    int
	DefaultIndex int
	ItemSets     []ItemSetView
}
