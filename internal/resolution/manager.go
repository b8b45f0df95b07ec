package resolution

import (
	"log/slog"

	"github.com/KirkDiggler/equipset/internal/entities"
	"github.com/KirkDiggler/equipset/internal/errors"
	"github.com/KirkDiggler/equipset/internal/inventory"
	"github.com/KirkDiggler/equipset/internal/pkg/idgen"
)

// UpdateMode controls when store mutations trigger a resolution pass
type UpdateMode int

const (
	// UpdateImmediate recomputes on every store change
	UpdateImmediate UpdateMode = iota
	// UpdateScheduled coalesces changes into one recompute per tick
	UpdateScheduled
	// UpdateManual leaves recomputation to explicit UpdateItemSets calls
	UpdateManual
)

// TransitionCoordinator is the external equip/unequip state machine the
// engine signals into. Registration is typed and explicit; there is no
// string-keyed dispatch.
type TransitionCoordinator interface {
	// StartTransition asks the coordinator to begin equipping the set at
	// index in the group (-1 means unequip). Immediate transitions must
	// complete synchronously; non-immediate ones park in the group's next
	// index until completed or preempted.
	StartTransition(group *Group, index int, force, immediate bool)

	// ActiveIndexChanged reports every active index movement
	ActiveIndexChanged(group *Group, oldIndex, newIndex int)

	// StateApplied and StateRemoved report state label changes that
	// accompany activation switches
	StateApplied(group *Group, state string)
	StateRemoved(group *Group, state string)
}

// Config holds the dependencies for a Manager
type Config struct {
	Store *inventory.Store

	// Coordinator is optional; without one, transitions complete
	// synchronously inside the manager
	Coordinator TransitionCoordinator

	// IDGenerator mints item set IDs
	IDGenerator idgen.Generator

	UpdateMode UpdateMode
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Store == nil {
		vb.RequiredField("Store")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

// rulePool is one rule's partition of the retired item-set pool
type rulePool struct {
	free  []*ItemSet
	owned map[*ItemSet]struct{}
}

// Manager is the top-level orchestrator of the resolution engine: it owns
// the groups, the per-rule item-set pool, and recomputation scheduling, and
// it observes the store for inventory changes.
type Manager struct {
	store         *inventory.Store
	groups        []*Group
	categoryIndex map[int32]int
	pools         map[*Rule]*rulePool
	coordinator   TransitionCoordinator
	idGen         idgen.Generator
	mode          UpdateMode
	dirty         bool
	ownerActive   bool
}

// NewManager creates a manager and subscribes it to the store
func NewManager(cfg *Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	m := &Manager{
		store:         cfg.Store,
		categoryIndex: make(map[int32]int),
		pools:         make(map[*Rule]*rulePool),
		coordinator:   cfg.Coordinator,
		idGen:         cfg.IDGenerator,
		mode:          cfg.UpdateMode,
		ownerActive:   true,
	}
	cfg.Store.Subscribe(m)
	return m, nil
}

// Store returns the slot-keyed store this manager resolves against
func (m *Manager) Store() *inventory.Store {
	return m.store
}

// AddGroup creates a group for a category with the given starting rules.
// Rules are resolved in the order given.
func (m *Manager) AddGroup(category *entities.Category, rules ...*Rule) *Group {
	g := newGroup(category, len(m.groups), m, rules)
	m.groups = append(m.groups, g)
	if category != nil {
		m.categoryIndex[category.ID] = g.index
	}
	for _, rule := range rules {
		m.registerRule(rule)
	}
	return g
}

// Groups returns the ordered group list
func (m *Manager) Groups() []*Group {
	return m.groups
}

// GroupAt returns the group at index, nil when out of range
func (m *Manager) GroupAt(index int) *Group {
	if index < 0 || index >= len(m.groups) {
		return nil
	}
	return m.groups[index]
}

// GroupForCategory returns the group owning the category, nil on a miss
func (m *Manager) GroupForCategory(category *entities.Category) *Group {
	if category == nil {
		return nil
	}
	idx, ok := m.categoryIndex[category.ID]
	if !ok {
		return nil
	}
	return m.groups[idx]
}

// SetOwnerActive records whether the owning object is currently active.
// Default equips on an inactive owner complete immediately instead of
// animating.
func (m *Manager) SetOwnerActive(active bool) {
	m.ownerActive = active
}

// InventoryChanged implements inventory.Observer. Depending on the update
// mode the change recomputes immediately, marks the manager dirty for the
// next tick, or is left for a manual pass.
func (m *Manager) InventoryChanged(item *entities.Item, quantity int) {
	switch m.mode {
	case UpdateImmediate:
		m.UpdateItemSets()
	case UpdateScheduled:
		m.ScheduleUpdate()
	case UpdateManual:
	}
}

// ScheduleUpdate marks the manager dirty for a deferred recompute. Repeated
// calls within one tick coalesce into a single pass.
func (m *Manager) ScheduleUpdate() {
	m.dirty = true
}

// Tick runs a scheduled recompute if one is pending
func (m *Manager) Tick() {
	if !m.dirty {
		return
	}
	m.dirty = false
	m.UpdateItemSets()
}

// UpdateItemSets recomputes every group from the current store contents.
// The store is snapshotted by slot once for the whole pass.
func (m *Manager) UpdateItemSets() {
	m.dirty = false
	slotItems := m.store.ItemsBySlot()
	for _, g := range m.groups {
		g.update(slotItems)
	}
}

// registerRule creates the rule's pool partition
func (m *Manager) registerRule(rule *Rule) {
	if rule == nil {
		return
	}
	if _, ok := m.pools[rule]; !ok {
		m.pools[rule] = &rulePool{owned: make(map[*ItemSet]struct{})}
	}
}

// acquire implements setFactory: pop a pooled instance for the rule or
// construct a fresh one registered against it
func (m *Manager) acquire(rule *Rule) *ItemSet {
	return m.PopFromPool(rule)
}

// PopFromPool checks out an item set for the rule, reusing a retired
// instance when one is available
func (m *Manager) PopFromPool(rule *Rule) *ItemSet {
	m.registerRule(rule)
	pool := m.pools[rule]

	if n := len(pool.free); n > 0 {
		set := pool.free[n-1]
		pool.free = pool.free[:n-1]
		return set
	}

	set := newItemSet(m.idGen.Generate(), rule)
	pool.owned[set] = struct{}{}
	return set
}

// ReturnToPool retires an item set for later reuse. Sets whose rule is not
// registered with this manager are ignored; a mismatched pool during
// hot-reload must not grow into a fault.
func (m *Manager) ReturnToPool(set *ItemSet) {
	if set == nil {
		return
	}
	pool, ok := m.pools[set.rule]
	if !ok {
		return
	}
	if _, ok := pool.owned[set]; !ok {
		return
	}
	for _, pooled := range pool.free {
		if pooled == set {
			return
		}
	}
	set.retire()
	pool.free = append(pool.free, set)
}

// ItemSetByLabel returns the first enabled item set carrying the state
// label, searching groups and their live lists in order. Nil on a miss.
func (m *Manager) ItemSetByLabel(label string) *ItemSet {
	for _, g := range m.groups {
		for _, set := range g.itemSets {
			if set.enabled && set.state == label {
				return set
			}
		}
	}
	return nil
}

// ItemSetByItems returns the first item set whose slot assignment matches
// items exactly, nil on a miss
func (m *Manager) ItemSetByItems(items []*entities.Item) *ItemSet {
	for _, g := range m.groups {
		for _, set := range g.itemSets {
			if set.Matches(items) {
				return set
			}
		}
	}
	return nil
}

// ItemSetAt returns the set at (group, index), nil on any miss
func (m *Manager) ItemSetAt(groupIndex, setIndex int) *ItemSet {
	g := m.GroupAt(groupIndex)
	if g == nil {
		return nil
	}
	return g.ItemSetAt(setIndex)
}

// EquipByLabel starts equipping the first enabled set with the label.
// Returns false when no such set exists or it is not currently valid.
func (m *Manager) EquipByLabel(label string, force, immediate bool) bool {
	set := m.ItemSetByLabel(label)
	if set == nil {
		return false
	}
	g := m.GroupAt(set.groupIndex)
	if g == nil || !g.IsItemSetValid(set, !force) {
		return false
	}
	for idx, candidate := range g.itemSets {
		if candidate == set {
			m.startTransition(g, idx, force, immediate)
			return true
		}
	}
	return false
}

// UnequipAll starts an unequip for every group with an active set
func (m *Manager) UnequipAll(immediate bool) {
	for _, g := range m.groups {
		if g.activeIndex == -1 && g.nextIndex == -1 {
			continue
		}
		m.startTransition(g, -1, true, immediate)
	}
}

// startTransition routes an equip request through the coordinator when one
// is registered; otherwise transitions complete synchronously.
func (m *Manager) startTransition(g *Group, index int, force, immediate bool) {
	if m.coordinator != nil {
		m.coordinator.StartTransition(g, index, force, immediate)
		return
	}
	slog.Debug("no coordinator registered, completing transition synchronously",
		"category", g.CategoryName(),
		"index", index,
	)
	g.SetActiveIndex(index)
}

func (m *Manager) activeIndexChanged(g *Group, oldIndex, newIndex int) {
	if m.coordinator != nil {
		m.coordinator.ActiveIndexChanged(g, oldIndex, newIndex)
	}
}

func (m *Manager) stateApplied(g *Group, state string) {
	if state == "" {
		return
	}
	if m.coordinator != nil {
		m.coordinator.StateApplied(g, state)
	}
}

func (m *Manager) stateRemoved(g *Group, state string) {
	if state == "" {
		return
	}
	if m.coordinator != nil {
		m.coordinator.StateRemoved(g, state)
	}
}
