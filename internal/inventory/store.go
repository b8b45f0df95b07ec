// Package inventory implements the slot-keyed item store: per-slot item
// instances plus per-identifier quantity counters, with typed change
// notifications for the resolution engine.
package inventory

import (
	"log/slog"
	"sort"

	"github.com/KirkDiggler/equipset/internal/entities"
	"github.com/KirkDiggler/equipset/internal/errors"
	"github.com/KirkDiggler/equipset/internal/pkg/idgen"
)

// Observer receives a notification after every effective quantity change.
// quantity is the post-change value; zero means the entry was removed.
type Observer interface {
	InventoryChanged(item *entities.Item, quantity int)
}

// Config holds the dependencies for a store
type Config struct {
	// SlotCount is the fixed number of equipment slots. Immutable once the
	// store is constructed.
	SlotCount int

	// IDGenerator mints instance IDs
	IDGenerator idgen.Generator
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.SlotCount <= 0 {
		vb.InvalidField("SlotCount", "must be positive")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

// Store holds the carried items for one character. Instances are kept in
// slot order of arrival so snapshot iteration is deterministic.
type Store struct {
	slotCount  int
	slots      [][]*entities.Instance
	quantities map[*entities.Item]int
	observers  []Observer
	idGen      idgen.Generator
}

// NewStore creates a store with the configured slot count
func NewStore(cfg *Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Store{
		slotCount:  cfg.SlotCount,
		slots:      make([][]*entities.Instance, cfg.SlotCount),
		quantities: make(map[*entities.Item]int),
		idGen:      cfg.IDGenerator,
	}, nil
}

// SlotCount returns the fixed slot count
func (s *Store) SlotCount() int {
	return s.slotCount
}

// Subscribe registers an observer for quantity change notifications
func (s *Store) Subscribe(o Observer) {
	if o == nil {
		return
	}
	s.observers = append(s.observers, o)
}

// Quantity returns the carried quantity for an identifier, zero if absent
func (s *Store) Quantity(item *entities.Item) int {
	return s.quantities[item]
}

// AddQuantity increases the carried quantity, clamping at the item's
// capacity. Returns the amount actually added; observers are notified only
// when that amount is non-zero.
func (s *Store) AddQuantity(item *entities.Item, amount int) int {
	if item == nil || amount <= 0 {
		return 0
	}

	current := s.quantities[item]
	next := current + amount
	if !item.Unbounded() && next > item.Capacity {
		next = item.Capacity
	}
	if next == current {
		return 0
	}

	s.quantities[item] = next
	s.notify(item, next)
	return next - current
}

// RemoveQuantity decreases the carried quantity, clamping at zero. A
// quantity that reaches zero deletes the entry and destroys any instances
// still occupying slots. Returns the amount actually removed.
func (s *Store) RemoveQuantity(item *entities.Item, amount int) int {
	if item == nil || amount <= 0 {
		return 0
	}

	current, ok := s.quantities[item]
	if !ok {
		return 0
	}

	next := current - amount
	if next <= 0 {
		delete(s.quantities, item)
		s.destroyInstances(item)
		s.notify(item, 0)
		return current
	}

	s.quantities[item] = next
	s.notify(item, next)
	return amount
}

// Place creates an instance of item in the given slot. The quantity entry
// must already exist: a physical instance without inventory backing is
// disallowed.
func (s *Store) Place(item *entities.Item, slot int) (*entities.Instance, error) {
	if item == nil {
		return nil, errors.InvalidArgument("item is required")
	}
	if slot < 0 || slot >= s.slotCount {
		return nil, errors.OutOfRangef("slot %d out of range [0,%d)", slot, s.slotCount)
	}
	if s.quantities[item] <= 0 {
		return nil, errors.FailedPreconditionf("no carried quantity for %s", item.Name)
	}
	if s.instanceInSlot(item, slot) != nil {
		return nil, errors.AlreadyExists("item already occupies the slot")
	}

	inst := &entities.Instance{
		ID:   s.idGen.Generate(),
		Item: item,
		Slot: slot,
	}
	s.slots[slot] = append(s.slots[slot], inst)
	return inst, nil
}

// Pickup adds quantity and ensures an instance occupies the slot. The
// instance is placed before observers hear about the quantity change so an
// immediate resolution pass sees a consistent store.
func (s *Store) Pickup(item *entities.Item, slot, amount int) (*entities.Instance, error) {
	if item == nil {
		return nil, errors.InvalidArgument("item is required")
	}
	if slot < 0 || slot >= s.slotCount {
		return nil, errors.OutOfRangef("slot %d out of range [0,%d)", slot, s.slotCount)
	}

	inst := s.instanceInSlot(item, slot)
	if inst == nil {
		inst = &entities.Instance{
			ID:   s.idGen.Generate(),
			Item: item,
			Slot: slot,
		}
		s.slots[slot] = append(s.slots[slot], inst)
	}

	if added := s.AddQuantity(item, amount); added == 0 && s.quantities[item] == 0 {
		// nothing carried after all; do not leave an unbacked instance behind
		s.removeInstance(item, slot)
		return nil, errors.FailedPreconditionf("could not add quantity for %s", item.Name)
	}

	return inst, nil
}

// Drop removes quantity; when the entry disappears, the item's instances go
// with it (RemoveQuantity handles that).
func (s *Store) Drop(item *entities.Item, amount int) int {
	return s.RemoveQuantity(item, amount)
}

// InstanceInSlot returns the instance for an identifier in a slot, nil if
// the slot is out of range or the item is not there.
func (s *Store) InstanceInSlot(item *entities.Item, slot int) *entities.Instance {
	if slot < 0 || slot >= s.slotCount {
		return nil
	}
	return s.instanceInSlot(item, slot)
}

// ItemsBySlot returns a slot-indexed snapshot of the carried identifiers,
// grouped once per call. The resolution manager takes this snapshot at the
// start of an update pass.
func (s *Store) ItemsBySlot() [][]*entities.Item {
	snapshot := make([][]*entities.Item, s.slotCount)
	for slot, instances := range s.slots {
		if len(instances) == 0 {
			continue
		}
		items := make([]*entities.Item, 0, len(instances))
		for _, inst := range instances {
			items = append(items, inst.Item)
		}
		snapshot[slot] = items
	}
	return snapshot
}

// Quantities returns the carried identifiers and their quantities, ordered
// by item ID for deterministic iteration.
func (s *Store) Quantities() []QuantityEntry {
	entries := make([]QuantityEntry, 0, len(s.quantities))
	for item, qty := range s.quantities {
		entries = append(entries, QuantityEntry{Item: item, Quantity: qty})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Item.ID < entries[j].Item.ID
	})
	return entries
}

// QuantityEntry pairs an identifier with its carried quantity
type QuantityEntry struct {
	Item     *entities.Item
	Quantity int
}

func (s *Store) instanceInSlot(item *entities.Item, slot int) *entities.Instance {
	for _, inst := range s.slots[slot] {
		if inst.Item == item {
			return inst
		}
	}
	return nil
}

func (s *Store) removeInstance(item *entities.Item, slot int) {
	instances := s.slots[slot]
	for i, inst := range instances {
		if inst.Item == item {
			s.slots[slot] = append(instances[:i], instances[i+1:]...)
			return
		}
	}
}

func (s *Store) destroyInstances(item *entities.Item) {
	for slot := range s.slots {
		s.removeInstance(item, slot)
	}
}

func (s *Store) notify(item *entities.Item, quantity int) {
	for _, o := range s.observers {
		o.InventoryChanged(item, quantity)
	}
	slog.Debug("inventory changed",
		"item", item.Name,
		"quantity", quantity,
	)
}
