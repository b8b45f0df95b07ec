package resolution

import (
	"log/slog"

	"github.com/KirkDiggler/equipset/internal/entities"
)

// Group owns one category's ordered rule list and the live, diffed list of
// item sets those rules generate. At most one set is active at a time; the
// next index tracks a transition that is still in flight.
type Group struct {
	category *entities.Category
	index    int
	rules    []*Rule
	itemSets []*ItemSet

	defaultIndex int
	activeIndex  int
	nextIndex    int

	manager *Manager
}

func newGroup(category *entities.Category, index int, manager *Manager, rules []*Rule) *Group {
	return &Group{
		category:     category,
		index:        index,
		rules:        rules,
		manager:      manager,
		defaultIndex: -1,
		activeIndex:  -1,
		nextIndex:    -1,
	}
}

// Category returns the group's category
func (g *Group) Category() *entities.Category {
	return g.category
}

// CategoryName returns the category name, empty for an uncategorized group
func (g *Group) CategoryName() string {
	if g.category == nil {
		return ""
	}
	return g.category.Name
}

// Index returns the group's position in the manager's list
func (g *Group) Index() int {
	return g.index
}

// Rules returns the ordered rule list
func (g *Group) Rules() []*Rule {
	return g.rules
}

// AddRule appends a rule. Declaration order is a contract: earlier rules'
// sets precede later rules' sets in the live list and win first-match
// queries.
func (g *Group) AddRule(rule *Rule) {
	g.rules = append(g.rules, rule)
	g.manager.registerRule(rule)
}

// InsertRule inserts a rule at the given position in the declaration order
func (g *Group) InsertRule(pos int, rule *Rule) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(g.rules) {
		pos = len(g.rules)
	}
	g.rules = append(g.rules, nil)
	copy(g.rules[pos+1:], g.rules[pos:])
	g.rules[pos] = rule
	g.manager.registerRule(rule)
}

// ItemSets returns the live list from the most recent resolution pass
func (g *Group) ItemSets() []*ItemSet {
	return g.itemSets
}

// ItemSetAt returns the set at index, nil when out of range
func (g *Group) ItemSetAt(index int) *ItemSet {
	if index < 0 || index >= len(g.itemSets) {
		return nil
	}
	return g.itemSets[index]
}

// DefaultIndex returns the default set's index, -1 if none
func (g *Group) DefaultIndex() int {
	return g.defaultIndex
}

// ActiveIndex returns the active set's index, -1 if none
func (g *Group) ActiveIndex() int {
	return g.activeIndex
}

// NextIndex returns the pending transition target, -1 if none
func (g *Group) NextIndex() int {
	return g.nextIndex
}

// ActiveItemSet returns the active set, nil if none
func (g *Group) ActiveItemSet() *ItemSet {
	return g.ItemSetAt(g.activeIndex)
}

// NextItemSet returns the pending transition target, nil if none
func (g *Group) NextItemSet() *ItemSet {
	return g.ItemSetAt(g.nextIndex)
}

// DefaultItemSet returns the default set, nil if none
func (g *Group) DefaultItemSet() *ItemSet {
	return g.ItemSetAt(g.defaultIndex)
}

// IsItemSetValid reports whether the set can currently be equipped: it
// belongs to this group, is enabled, optionally can be switched to, its
// rule's own validity predicate passes, and the store physically backs it:
// every non-empty slot holds a matching instance and the aggregate carried
// quantity covers every slot that references the same identifier.
func (g *Group) IsItemSetValid(set *ItemSet, checkCanSwitch bool) bool {
	if set == nil || set.groupIndex != g.index {
		return false
	}
	if !set.enabled {
		return false
	}
	if checkCanSwitch && !set.canSwitchTo {
		return false
	}
	if !set.rule.isValid(set, g.manager.store) {
		return false
	}

	referenced := make(map[*entities.Item]int, len(set.items))
	for slot, item := range set.items {
		if item == nil {
			continue
		}
		if g.manager.store.InstanceInSlot(item, slot) == nil {
			return false
		}
		referenced[item]++
	}
	for item, count := range referenced {
		if g.manager.store.Quantity(item) < count {
			return false
		}
	}
	return true
}

// SetActiveIndex activates the set at index (-1 deactivates). The next
// index is cleared atomically. State labels move with the activation: the
// new set's label is applied only if it differs from the previous one, and
// the old label is removed only if it differs from the new one.
func (g *Group) SetActiveIndex(index int) {
	old := g.activeIndex
	oldSet := g.ItemSetAt(old)
	newSet := g.ItemSetAt(index)
	if newSet == nil {
		index = -1
	}

	if newSet != nil && !newSet.enabled {
		slog.Debug("refusing to activate disabled item set",
			"category", g.CategoryName(),
			"index", index,
		)
		return
	}

	g.activeIndex = index
	g.nextIndex = -1

	oldState := ""
	if oldSet != nil {
		oldSet.active = false
		oldState = oldSet.state
	}
	newState := ""
	if newSet != nil {
		newSet.active = true
		newState = newSet.state
	}
	if oldSet != nil && oldState != newState {
		g.manager.stateRemoved(g, oldState)
	}
	if newSet != nil && newState != oldState {
		g.manager.stateApplied(g, newState)
	}

	if old != index {
		g.manager.activeIndexChanged(g, old, index)
	}
}

// SetNextIndex parks a pending transition target (-1 clears it). A newer
// target replaces an older one; the reconciliation pass keeps the parked
// set's identity across store churn until the transition completes.
func (g *Group) SetNextIndex(index int) {
	if g.ItemSetAt(index) == nil {
		index = -1
	}
	g.nextIndex = index
}

// setsOwnedBy collects the live sets generated by rule, in live order
func (g *Group) setsOwnedBy(rule *Rule) []*ItemSet {
	owned := make([]*ItemSet, 0, len(g.itemSets))
	for _, set := range g.itemSets {
		if set.rule == rule {
			owned = append(owned, set)
		}
	}
	return owned
}

// update runs one reconciliation pass against the slot snapshot.
//
// Each rule classifies its sets as kept, added, or removed; the combined
// walk rebuilds the live list in rule-append order, remembering where the
// previously active and next sets landed. Removed sets clear active state
// and return to the pool. The default index is the last default-tagged
// entry in walk order. Finally the remembered positions are re-validated:
// a surviving active set stays active at its new index, an invalidated one
// promotes a still-valid next set, and a group left with neither equips the
// default through the coordinator.
func (g *Group) update(slotItems [][]*entities.Item) {
	oldActive := g.activeIndex
	prevActive := g.ActiveItemSet()
	prevNext := g.NextItemSet()

	newActive := -1
	newNext := -1
	defaultIndex := -1

	live := make([]*ItemSet, 0, len(g.itemSets))
	for _, rule := range g.rules {
		owned := g.setsOwnedBy(rule)
		for _, ch := range rule.resolve(slotItems, owned, g.manager) {
			switch ch.op {
			case opKeep, opAdd:
				ch.set.groupIndex = g.index
				idx := len(live)
				live = append(live, ch.set)
				if ch.set == prevActive {
					newActive = idx
				}
				if ch.set == prevNext {
					newNext = idx
				}
				if ch.set.isDefault {
					defaultIndex = idx
				}
			case opRemove:
				if ch.set == prevActive {
					ch.set.active = false
					g.manager.stateRemoved(g, ch.set.state)
					prevActive = nil
				}
				if ch.set == prevNext {
					prevNext = nil
				}
				g.manager.ReturnToPool(ch.set)
			}
		}
	}

	g.itemSets = live
	g.defaultIndex = defaultIndex

	g.applyIndices(oldActive, prevActive, newActive, newNext)

	if g.activeIndex == -1 && g.nextIndex == -1 && g.defaultIndex != -1 {
		if def := g.DefaultItemSet(); g.IsItemSetValid(def, false) {
			g.manager.startTransition(g, g.defaultIndex, true, !g.manager.ownerActive)
		}
	}
}

// applyIndices re-validates the remembered positions. prevActive is nil when
// the formerly active set was removed during the walk (its state label was
// already torn down there).
func (g *Group) applyIndices(oldActive int, prevActive *ItemSet, newActive, newNext int) {
	stillActive := newActive != -1 && g.IsItemSetValid(g.ItemSetAt(newActive), false)
	nextValid := newNext != -1 && g.IsItemSetValid(g.ItemSetAt(newNext), true)

	if stillActive {
		g.activeIndex = newActive
		g.nextIndex = -1
		if nextValid {
			g.nextIndex = newNext
		}
		if oldActive != newActive {
			g.manager.activeIndexChanged(g, oldActive, newActive)
		}
		return
	}

	// the active set fell out (removed or no longer valid)
	if prevActive != nil {
		prevActive.active = false
		g.manager.stateRemoved(g, prevActive.state)
	}
	g.activeIndex = -1
	g.nextIndex = -1

	if oldActive == -1 {
		// nothing was active; an in-flight target stays parked for its
		// coordinator instead of completing on inventory churn
		if nextValid {
			g.nextIndex = newNext
		}
		return
	}

	if nextValid {
		// promote the in-flight target
		g.SetActiveIndex(newNext)
		return
	}
	g.manager.activeIndexChanged(g, oldActive, -1)
}
