// Package resolution implements the equip-set resolution engine: rules turn
// slot-keyed inventory contents into candidate item sets, groups reconcile
// each generation against the previous one, and the manager owns the groups,
// the item-set pool, and update scheduling.
package resolution

import (
	"strings"

	"github.com/KirkDiggler/equipset/internal/entities"
)

// StatePlaceholder is substituted in a rule's state template with the
// slot-ordered item names of the generated set.
const StatePlaceholder = "{0}"

// ItemSet is one concrete combination of items (or empty) across all slots.
// Instances are pooled per owning rule and reused across resolution passes;
// a set that survives a pass unchanged keeps its identity, which is what
// lets in-flight equip transitions outlive inventory churn.
type ItemSet struct {
	id          string
	items       []*entities.Item
	state       string
	enabled     bool
	canSwitchTo bool
	active      bool
	isDefault   bool

	// groupIndex is a non-owning handle into the manager's group list;
	// -1 while the set sits in the pool
	groupIndex int
	rule       *Rule
}

func newItemSet(id string, rule *Rule) *ItemSet {
	return &ItemSet{
		id:         id,
		items:      make([]*entities.Item, rule.slotCount),
		groupIndex: -1,
		rule:       rule,
	}
}

// reset rehydrates a pooled instance with the rule's configuration and the
// generated slot assignment
func (is *ItemSet) reset(items []*entities.Item, state string) {
	copy(is.items, items)
	is.state = state
	is.enabled = is.rule.enabled
	is.canSwitchTo = true
	is.active = false
	is.isDefault = is.rule.isDefault
	is.groupIndex = -1
}

// retire clears slot references before the set returns to the pool
func (is *ItemSet) retire() {
	for i := range is.items {
		is.items[i] = nil
	}
	is.active = false
	is.groupIndex = -1
}

// ID returns the pooled instance identifier
func (is *ItemSet) ID() string {
	return is.id
}

// Items returns the slot assignment. The slice is owned by the set; callers
// must not mutate it.
func (is *ItemSet) Items() []*entities.Item {
	return is.items
}

// ItemAt returns the item in the given slot, nil for empty or out of range
func (is *ItemSet) ItemAt(slot int) *entities.Item {
	if slot < 0 || slot >= len(is.items) {
		return nil
	}
	return is.items[slot]
}

// State returns the item set's state label
func (is *ItemSet) State() string {
	return is.state
}

// Enabled reports whether the set can be activated
func (is *ItemSet) Enabled() bool {
	return is.enabled
}

// SetEnabled toggles the enabled flag
func (is *ItemSet) SetEnabled(enabled bool) {
	is.enabled = enabled
}

// CanSwitchTo reports whether the set may be the target of a switch
func (is *ItemSet) CanSwitchTo() bool {
	return is.canSwitchTo
}

// SetCanSwitchTo toggles the can-switch-to flag
func (is *ItemSet) SetCanSwitchTo(canSwitch bool) {
	is.canSwitchTo = canSwitch
}

// Active reports whether this is its group's active set
func (is *ItemSet) Active() bool {
	return is.active
}

// Default reports whether the set was produced by a default rule
func (is *ItemSet) Default() bool {
	return is.isDefault
}

// GroupIndex returns the owning group's position in the manager's list, -1
// when pooled
func (is *ItemSet) GroupIndex() int {
	return is.groupIndex
}

// Rule returns the rule that generated this set
func (is *ItemSet) Rule() *Rule {
	return is.rule
}

// Matches reports whether every slot entry matches by identity
func (is *ItemSet) Matches(items []*entities.Item) bool {
	if len(items) != len(is.items) {
		return false
	}
	for i, item := range is.items {
		if items[i] != item {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no slot holds an item
func (is *ItemSet) IsEmpty() bool {
	for _, item := range is.items {
		if item != nil {
			return false
		}
	}
	return true
}

// formatState renders a rule's state template for a slot assignment,
// substituting the placeholder with the slot-ordered item names. Empty slots
// contribute nothing.
func formatState(template string, items []*entities.Item) string {
	if !strings.Contains(template, StatePlaceholder) {
		return template
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		names = append(names, item.Name)
	}
	return strings.ReplaceAll(template, StatePlaceholder, strings.Join(names, " "))
}
