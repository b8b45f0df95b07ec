// Package loadout provides the interface for equip loadout persistence
package loadout

//go:generate mockgen -destination=mock/mock_repository.go -package=loadoutmock github.com/KirkDiggler/equipset/internal/repositories/loadout Repository

import (
	"context"
	"time"
)

// Repository defines the interface for loadout persistence
type Repository interface {
	// Get retrieves the stored loadout for a character
	// Returns errors.InvalidArgument for empty character IDs
	// Returns errors.NotFound if no loadout exists
	// Returns errors.Internal for storage failures
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Save stores the loadout for a character, creating it if absent
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.Internal for storage failures
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Delete removes the stored loadout for a character
	// Returns errors.InvalidArgument for empty character IDs
	// Returns errors.NotFound if no loadout exists
	// Returns errors.Internal for storage failures
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

// Loadout is the persisted inventory and equip state of one character.
// Items are referenced by definition ID; the active state of each group is
// referenced by its resolved state label so a restore replays it through the
// normal equip path.
type Loadout struct {
	CharacterID string
	Quantities  []QuantityEntry
	Placements  []Placement
	Groups      []GroupState
	UpdatedAt   time.Time
}

// QuantityEntry records the carried quantity of one item definition
type QuantityEntry struct {
	ItemID   int32
	Quantity int
}

// Placement records one item occupying one slot
type Placement struct {
	ItemID int32
	Slot   int
}

// GroupState records the equip state of one group. ActiveLabel is empty when
// nothing was active.
type GroupState struct {
	Category    string
	ActiveLabel string
}

// GetInput defines the input for getting a loadout
type GetInput struct {
	CharacterID string
}

// GetOutput defines the output for getting a loadout
type GetOutput struct {
	Loadout *Loadout
}

// SaveInput defines the input for saving a loadout
type SaveInput struct {
	Loadout *Loadout
}

// SaveOutput defines the output for saving a loadout
type SaveOutput struct {
	Loadout *Loadout
}

// DeleteInput defines the input for deleting a loadout
type DeleteInput struct {
	CharacterID string
}

// DeleteOutput defines the output for deleting a loadout
type DeleteOutput struct {
	// Empty for now, can be extended later
}
