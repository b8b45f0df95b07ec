// Package equipment implements the equipment orchestrator: inventory
// mutation, equip transitions, and loadout persistence for one character's
// resolution engine.
package equipment

//go:generate mockgen -destination=mock/mock_service.go -package=equipmentmock github.com/KirkDiggler/equipset/internal/orchestrators/equipment Service

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/equipset/internal/config"
	"github.com/KirkDiggler/equipset/internal/entities"
	"github.com/KirkDiggler/equipset/internal/errors"
	"github.com/KirkDiggler/equipset/internal/pkg/idgen"
	"github.com/KirkDiggler/equipset/internal/repositories/loadout"
	"github.com/KirkDiggler/equipset/internal/resolution"
)

// Service defines the interface for equipment operations
type Service interface {
	// Inventory mutation
	AddItem(ctx context.Context, input *AddItemInput) (*AddItemOutput, error)
	RemoveItem(ctx context.Context, input *RemoveItemInput) (*RemoveItemOutput, error)

	// Equip transitions
	EquipByLabel(ctx context.Context, input *EquipByLabelInput) (*EquipByLabelOutput, error)
	EquipItemSet(ctx context.Context, input *EquipItemSetInput) (*EquipItemSetOutput, error)
	UnequipAll(ctx context.Context, input *UnequipAllInput) (*UnequipAllOutput, error)
	CompleteTransition(ctx context.Context, input *CompleteTransitionInput) (*CompleteTransitionOutput, error)

	// Queries
	GetActiveItemSet(ctx context.Context, input *GetActiveItemSetInput) (*GetActiveItemSetOutput, error)
	GetNextItemSet(ctx context.Context, input *GetNextItemSetInput) (*GetNextItemSetOutput, error)
	ListItemSets(ctx context.Context, input *ListItemSetsInput) (*ListItemSetsOutput, error)

	// Loadout persistence
	SaveLoadout(ctx context.Context, input *SaveLoadoutInput) (*SaveLoadoutOutput, error)
	RestoreLoadout(ctx context.Context, input *RestoreLoadoutInput) (*RestoreLoadoutOutput, error)
}

// Config holds the dependencies for the equipment orchestrator
type Config struct {
	Document    *config.Document
	LoadoutRepo loadout.Repository
	CharacterID string

	// InstanceIDs and SetIDs default to UUID generators
	InstanceIDs idgen.Generator
	SetIDs      idgen.Generator
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Document == nil {
		vb.RequiredField("Document")
	}
	if c.LoadoutRepo == nil {
		vb.RequiredField("LoadoutRepo")
	}
	if c.CharacterID == "" {
		vb.RequiredField("CharacterID")
	}

	return vb.Build()
}

type orchestrator struct {
	engine      *config.Engine
	loadoutRepo loadout.Repository
	characterID string
	itemsByID   map[int32]*entities.Item

	// pending holds the parked transition target per group index; -1 is a
	// parked unequip
	pending map[int]int
}

// NewOrchestrator builds the resolution engine from the document and wires
// itself in as the transition coordinator
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		loadoutRepo: cfg.LoadoutRepo,
		characterID: cfg.CharacterID,
		pending:     make(map[int]int),
	}

	engine, err := config.Build(cfg.Document, &config.BuildConfig{
		Coordinator: o,
		InstanceIDs: cfg.InstanceIDs,
		SetIDs:      cfg.SetIDs,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build engine")
	}
	o.engine = engine

	o.itemsByID = make(map[int32]*entities.Item)
	for _, item := range engine.Items() {
		o.itemsByID[item.ID] = item
	}

	return o, nil
}

// StartTransition implements resolution.TransitionCoordinator. Immediate
// transitions complete synchronously; others park in the group's next index
// until CompleteTransition.
func (o *orchestrator) StartTransition(group *resolution.Group, index int, force, immediate bool) {
	slog.Debug("transition requested",
		"character_id", o.characterID,
		"category", group.CategoryName(),
		"index", index,
		"force", force,
		"immediate", immediate,
	)

	if immediate {
		delete(o.pending, group.Index())
		group.SetActiveIndex(index)
		return
	}

	o.pending[group.Index()] = index
	if index >= 0 {
		group.SetNextIndex(index)
	}
}

// ActiveIndexChanged implements resolution.TransitionCoordinator
func (o *orchestrator) ActiveIndexChanged(group *resolution.Group, oldIndex, newIndex int) {
	slog.Info("active item set changed",
		"character_id", o.characterID,
		"category", group.CategoryName(),
		"old_index", oldIndex,
		"new_index", newIndex,
	)
}

// StateApplied implements resolution.TransitionCoordinator
func (o *orchestrator) StateApplied(group *resolution.Group, state string) {
	slog.Debug("state label applied",
		"character_id", o.characterID,
		"category", group.CategoryName(),
		"state", state,
	)
}

// StateRemoved implements resolution.TransitionCoordinator
func (o *orchestrator) StateRemoved(group *resolution.Group, state string) {
	slog.Debug("state label removed",
		"character_id", o.characterID,
		"category", group.CategoryName(),
		"state", state,
	)
}

func (o *orchestrator) AddItem(_ context.Context, input *AddItemInput) (*AddItemOutput, error) {
	if input == nil || input.ItemName == "" {
		return nil, errors.InvalidArgument("item name is required")
	}
	if input.Quantity <= 0 {
		return nil, errors.InvalidArgument("quantity must be positive")
	}

	item := o.engine.Item(input.ItemName)
	if item == nil {
		return nil, errors.NotFoundf("unknown item %s", input.ItemName)
	}

	if _, err := o.engine.Store.Pickup(item, input.Slot, input.Quantity); err != nil {
		return nil, errors.Wrapf(err, "failed to add %s", input.ItemName)
	}

	return &AddItemOutput{Quantity: o.engine.Store.Quantity(item)}, nil
}

func (o *orchestrator) RemoveItem(_ context.Context, input *RemoveItemInput) (*RemoveItemOutput, error) {
	if input == nil || input.ItemName == "" {
		return nil, errors.InvalidArgument("item name is required")
	}
	if input.Quantity <= 0 {
		return nil, errors.InvalidArgument("quantity must be positive")
	}

	item := o.engine.Item(input.ItemName)
	if item == nil {
		return nil, errors.NotFoundf("unknown item %s", input.ItemName)
	}

	removed := o.engine.Store.Drop(item, input.Quantity)
	return &RemoveItemOutput{
		Removed:   removed,
		Remaining: o.engine.Store.Quantity(item),
	}, nil
}

func (o *orchestrator) EquipByLabel(_ context.Context, input *EquipByLabelInput) (*EquipByLabelOutput, error) {
	if input == nil || input.Label == "" {
		return nil, errors.InvalidArgument("label is required")
	}

	set := o.engine.Manager.ItemSetByLabel(input.Label)
	if set == nil {
		return nil, errors.NotFoundf("no item set labeled %q", input.Label)
	}

	if !o.engine.Manager.EquipByLabel(input.Label, input.Force, input.Immediate) {
		return nil, errors.FailedPreconditionf("item set %q is not currently equippable", input.Label)
	}

	group := o.engine.Manager.GroupAt(set.GroupIndex())
	setIndex := -1
	for idx, candidate := range group.ItemSets() {
		if candidate == set {
			setIndex = idx
			break
		}
	}

	return &EquipByLabelOutput{
		GroupIndex: group.Index(),
		SetIndex:   setIndex,
		Pending:    !input.Immediate,
	}, nil
}

func (o *orchestrator) EquipItemSet(_ context.Context, input *EquipItemSetInput) (*EquipItemSetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	group := o.engine.Manager.GroupAt(input.GroupIndex)
	if group == nil {
		return nil, errors.InvalidArgumentf("group %d out of range", input.GroupIndex)
	}
	set := group.ItemSetAt(input.SetIndex)
	if set == nil {
		return nil, errors.NotFoundf("no item set at index %d", input.SetIndex)
	}
	if !group.IsItemSetValid(set, !input.Force) {
		return nil, errors.FailedPreconditionf("item set %q is not currently equippable", set.State())
	}

	o.StartTransition(group, input.SetIndex, input.Force, input.Immediate)
	return &EquipItemSetOutput{Pending: !input.Immediate}, nil
}

func (o *orchestrator) UnequipAll(_ context.Context, input *UnequipAllInput) (*UnequipAllOutput, error) {
	immediate := input != nil && input.Immediate
	o.engine.Manager.UnequipAll(immediate)
	return &UnequipAllOutput{}, nil
}

func (o *orchestrator) CompleteTransition(_ context.Context, input *CompleteTransitionInput) (*CompleteTransitionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	group := o.engine.Manager.GroupAt(input.GroupIndex)
	if group == nil {
		return nil, errors.InvalidArgumentf("group %d out of range", input.GroupIndex)
	}

	target, ok := o.pending[input.GroupIndex]
	if !ok {
		return nil, errors.FailedPrecondition("no transition in flight for the group")
	}
	delete(o.pending, input.GroupIndex)

	if target >= 0 {
		// the parked set may have been removed by inventory churn; the group
		// tracks its identity through the next index
		target = group.NextIndex()
		if target == -1 {
			return nil, errors.FailedPrecondition("transition target is no longer available")
		}
	}

	group.SetActiveIndex(target)
	return &CompleteTransitionOutput{ActiveIndex: group.ActiveIndex()}, nil
}

func (o *orchestrator) GetActiveItemSet(_ context.Context, input *GetActiveItemSetInput) (*GetActiveItemSetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	group := o.engine.Manager.GroupAt(input.GroupIndex)
	if group == nil {
		return nil, errors.InvalidArgumentf("group %d out of range", input.GroupIndex)
	}
	set := group.ActiveItemSet()
	if set == nil {
		return nil, errors.NotFound("no active item set")
	}

	view := o.itemSetView(group, group.ActiveIndex(), set)
	return &GetActiveItemSetOutput{ItemSet: &view}, nil
}

func (o *orchestrator) GetNextItemSet(_ context.Context, input *GetNextItemSetInput) (*GetNextItemSetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	group := o.engine.Manager.GroupAt(input.GroupIndex)
	if group == nil {
		return nil, errors.InvalidArgumentf("group %d out of range", input.GroupIndex)
	}
	set := group.NextItemSet()
	if set == nil {
		return nil, errors.NotFound("no transition in flight")
	}

	view := o.itemSetView(group, group.NextIndex(), set)
	return &GetNextItemSetOutput{ItemSet: &view}, nil
}

func (o *orchestrator) ListItemSets(_ context.Context, _ *ListItemSetsInput) (*ListItemSetsOutput, error) {
	out := &ListItemSetsOutput{}
	for _, group := range o.engine.Manager.Groups() {
		view := GroupView{
			Index:        group.Index(),
			Category:     group.CategoryName(),
			ActiveIndex:  group.ActiveIndex(),
			NextIndex:    group.NextIndex(),
			DefaultIndex: group.DefaultIndex(),
		}
		for idx, set := range group.ItemSets() {
			view.ItemSets = append(view.ItemSets, o.itemSetView(group, idx, set))
		}
		out.Groups = append(out.Groups, view)
	}
	return out, nil
}

func (o *orchestrator) SaveLoadout(ctx context.Context, _ *SaveLoadoutInput) (*SaveLoadoutOutput, error) {
	saved := &loadout.Loadout{CharacterID: o.characterID}

	for _, entry := range o.engine.Store.Quantities() {
		saved.Quantities = append(saved.Quantities, loadout.QuantityEntry{
			ItemID:   entry.Item.ID,
			Quantity: entry.Quantity,
		})
	}
	for slot, items := range o.engine.Store.ItemsBySlot() {
		for _, item := range items {
			saved.Placements = append(saved.Placements, loadout.Placement{
				ItemID: item.ID,
				Slot:   slot,
			})
		}
	}
	for _, group := range o.engine.Manager.Groups() {
		state := loadout.GroupState{Category: group.CategoryName()}
		if active := group.ActiveItemSet(); active != nil {
			state.ActiveLabel = active.State()
		}
		saved.Groups = append(saved.Groups, state)
	}

	out, err := o.loadoutRepo.Save(ctx, loadout.SaveInput{Loadout: saved})
	if err != nil {
		return nil, err
	}

	slog.Info("loadout saved",
		"character_id", o.characterID,
		"quantities", len(saved.Quantities),
		"groups", len(saved.Groups),
	)
	return &SaveLoadoutOutput{UpdatedAt: out.Loadout.UpdatedAt}, nil
}

func (o *orchestrator) RestoreLoadout(ctx context.Context, _ *RestoreLoadoutInput) (*RestoreLoadoutOutput, error) {
	got, err := o.loadoutRepo.Get(ctx, loadout.GetInput{CharacterID: o.characterID})
	if err != nil {
		return nil, err
	}
	saved := got.Loadout

	// drop whatever is carried now; the restore replaces it wholesale
	for _, entry := range o.engine.Store.Quantities() {
		o.engine.Store.RemoveQuantity(entry.Item, entry.Quantity)
	}

	for _, q := range saved.Quantities {
		item, ok := o.itemsByID[q.ItemID]
		if !ok {
			slog.Warn("stored loadout references unknown item",
				"character_id", o.characterID,
				"item_id", q.ItemID,
			)
			continue
		}
		o.engine.Store.AddQuantity(item, q.Quantity)
	}
	for _, p := range saved.Placements {
		item, ok := o.itemsByID[p.ItemID]
		if !ok {
			continue
		}
		if _, err := o.engine.Store.Place(item, p.Slot); err != nil {
			slog.Warn("could not restore placement",
				"character_id", o.characterID,
				"item", item.Name,
				"slot", p.Slot,
				"error", err,
			)
		}
	}

	o.engine.Manager.UpdateItemSets()

	out := &RestoreLoadoutOutput{}
	for _, state := range saved.Groups {
		if state.ActiveLabel == "" {
			continue
		}
		if o.engine.Manager.EquipByLabel(state.ActiveLabel, true, true) {
			out.Equipped = append(out.Equipped, state.ActiveLabel)
			continue
		}
		slog.Warn("could not re-equip stored state",
			"character_id", o.characterID,
			"state", state.ActiveLabel,
		)
	}

	slog.Info("loadout restored",
		"character_id", o.characterID,
		"equipped", len(out.Equipped),
	)
	return out, nil
}

func (o *orchestrator) itemSetView(group *resolution.Group, index int, set *resolution.ItemSet) ItemSetView {
	names := make([]string, len(set.Items()))
	for slot, item := range set.Items() {
		if item != nil {
			names[slot] = item.Name
		}
	}
	return ItemSetView{
		GroupIndex: group.Index(),
		Index:      index,
		ID:         set.ID(),
		Label:      set.State(),
		Items:      names,
		Active:     set.Active(),
		Default:    set.Default(),
		Enabled:    set.Enabled(),
	}
}
