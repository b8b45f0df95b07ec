package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/equipset/internal/entities"
	"github.com/KirkDiggler/equipset/internal/errors"
	"github.com/KirkDiggler/equipset/internal/inventory"
	"github.com/KirkDiggler/equipset/internal/pkg/idgen"
)

type recordingObserver struct {
	items      []*entities.Item
	quantities []int
}

func (r *recordingObserver) InventoryChanged(item *entities.Item, quantity int) {
	r.items = append(r.items, item)
	r.quantities = append(r.quantities, quantity)
}

func newTestStore(t *testing.T, slotCount int) *inventory.Store {
	t.Helper()
	store, err := inventory.NewStore(&inventory.Config{
		SlotCount:   slotCount,
		IDGenerator: idgen.NewSequential("inst"),
	})
	require.NoError(t, err)
	return store
}

func TestNewStore_InvalidConfig(t *testing.T) {
	_, err := inventory.NewStore(&inventory.Config{SlotCount: 0, IDGenerator: idgen.NewSequential("inst")})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = inventory.NewStore(&inventory.Config{SlotCount: 2})
	require.Error(t, err)
}

func TestStore_AddRemoveQuantity(t *testing.T) {
	store := newTestStore(t, 2)
	arrow := entities.NewItem(1, "Arrow", 0)

	assert.Equal(t, 5, store.AddQuantity(arrow, 5))
	assert.Equal(t, 5, store.Quantity(arrow))

	assert.Equal(t, 2, store.RemoveQuantity(arrow, 2))
	assert.Equal(t, 3, store.Quantity(arrow))

	// removing past zero clamps and deletes the entry
	assert.Equal(t, 3, store.RemoveQuantity(arrow, 10))
	assert.Equal(t, 0, store.Quantity(arrow))
	assert.Empty(t, store.Quantities())
}

func TestStore_AddQuantityClampsAtCapacity(t *testing.T) {
	store := newTestStore(t, 1)
	sword := entities.NewItem(2, "Sword", 1)

	assert.Equal(t, 1, store.AddQuantity(sword, 3))
	assert.Equal(t, 1, store.Quantity(sword))

	// already full: no change, no notification
	obs := &recordingObserver{}
	store.Subscribe(obs)
	assert.Equal(t, 0, store.AddQuantity(sword, 1))
	assert.Empty(t, obs.items)
}

func TestStore_Notifications(t *testing.T) {
	store := newTestStore(t, 1)
	obs := &recordingObserver{}
	store.Subscribe(obs)

	arrow := entities.NewItem(3, "Arrow", 0)
	store.AddQuantity(arrow, 2)
	store.RemoveQuantity(arrow, 2)

	require.Len(t, obs.items, 2)
	assert.Equal(t, []int{2, 0}, obs.quantities)
}

func TestStore_PlaceRequiresQuantity(t *testing.T) {
	store := newTestStore(t, 2)
	sword := entities.NewItem(4, "Sword", 1)

	_, err := store.Place(sword, 0)
	require.Error(t, err)
	assert.True(t, errors.IsFailedPrecondition(err))

	store.AddQuantity(sword, 1)
	inst, err := store.Place(sword, 0)
	require.NoError(t, err)
	assert.Equal(t, sword, inst.Item)
	assert.Equal(t, 0, inst.Slot)

	// same item in the same slot twice is rejected
	_, err = store.Place(sword, 0)
	require.Error(t, err)
	assert.True(t, errors.IsAlreadyExists(err))
}

func TestStore_PlaceSlotOutOfRange(t *testing.T) {
	store := newTestStore(t, 2)
	sword := entities.NewItem(5, "Sword", 1)
	store.AddQuantity(sword, 1)

	_, err := store.Place(sword, 2)
	require.Error(t, err)
	assert.True(t, errors.IsOutOfRange(err))
}

func TestStore_Pickup(t *testing.T) {
	store := newTestStore(t, 2)
	sword := entities.NewItem(6, "Sword", 1)

	inst, err := store.Pickup(sword, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, inst.Slot)
	assert.Equal(t, 1, store.Quantity(sword))
	assert.Same(t, inst, store.InstanceInSlot(sword, 1))
}

func TestStore_RemoveQuantityDestroysInstances(t *testing.T) {
	store := newTestStore(t, 2)
	sword := entities.NewItem(7, "Sword", 1)

	_, err := store.Pickup(sword, 0, 1)
	require.NoError(t, err)

	store.RemoveQuantity(sword, 1)
	assert.Nil(t, store.InstanceInSlot(sword, 0))
}

func TestStore_InstanceInSlotMisses(t *testing.T) {
	store := newTestStore(t, 2)
	sword := entities.NewItem(8, "Sword", 1)

	// lookup misses return nil, never an error
	assert.Nil(t, store.InstanceInSlot(sword, 0))
	assert.Nil(t, store.InstanceInSlot(sword, -1))
	assert.Nil(t, store.InstanceInSlot(sword, 99))
}

func TestStore_ItemsBySlot(t *testing.T) {
	store := newTestStore(t, 3)
	sword := entities.NewItem(9, "Sword", 1)
	shield := entities.NewItem(10, "Shield", 1)
	dagger := entities.NewItem(11, "Dagger", 2)

	_, err := store.Pickup(sword, 0, 1)
	require.NoError(t, err)
	_, err = store.Pickup(dagger, 0, 1)
	require.NoError(t, err)
	_, err = store.Pickup(shield, 1, 1)
	require.NoError(t, err)

	snapshot := store.ItemsBySlot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, []*entities.Item{sword, dagger}, snapshot[0])
	assert.Equal(t, []*entities.Item{shield}, snapshot[1])
	assert.Nil(t, snapshot[2])
}

func TestStore_QuantitiesOrdered(t *testing.T) {
	store := newTestStore(t, 1)
	b := entities.NewItem(20, "B", 0)
	a := entities.NewItem(10, "A", 0)

	store.AddQuantity(b, 2)
	store.AddQuantity(a, 1)

	entries := store.Quantities()
	require.Len(t, entries, 2)
	assert.Equal(t, a, entries[0].Item)
	assert.Equal(t, b, entries[1].Item)
}
