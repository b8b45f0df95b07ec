package loadout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/equipset/internal/errors"
	"github.com/KirkDiggler/equipset/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/equipset/internal/redis"
)

const (
	loadoutKeyPrefix = "loadout:character:"

	// Error messages
	errLoadoutNil       = "loadout cannot be nil"
	errCharacterIDEmpty = "character ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis loadout repository.
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed loadout repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Use real clock if none provided
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
	}, nil
}

// loadoutData is the storage structure for a loadout
// This is what gets serialized to Redis
type loadoutData struct {
	CharacterID string          `json:"character_id"`
	Quantities  []quantityData  `json:"quantities,omitempty"`
	Placements  []placementData `json:"placements,omitempty"`
	Groups      []groupData     `json:"groups,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type quantityData struct {
	ItemID   int32 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

type placementData struct {
	ItemID int32 `json:"item_id"`
	Slot   int   `json:"slot"`
}

type groupData struct {
	Category    string `json:"category"`
	ActiveLabel string `json:"active_label,omitempty"`
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	key := loadoutKeyPrefix + input.CharacterID
	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("loadout for character %s not found", input.CharacterID)
		}
		return nil, errors.Wrapf(err, "failed to get loadout for character %s", input.CharacterID)
	}

	var data loadoutData
	if err := json.Unmarshal([]byte(result), &data); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal loadout data")
	}

	return &GetOutput{Loadout: fromData(&data)}, nil
}

func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Loadout == nil {
		return nil, errors.InvalidArgument(errLoadoutNil)
	}
	if input.Loadout.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	saved := *input.Loadout
	saved.UpdatedAt = r.clock.Now()

	jsonData, err := json.Marshal(toData(&saved))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal loadout data")
	}

	key := loadoutKeyPrefix + saved.CharacterID
	if err := r.client.Set(ctx, key, jsonData, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to save loadout for character %s", saved.CharacterID)
	}

	return &SaveOutput{Loadout: &saved}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	key := loadoutKeyPrefix + input.CharacterID

	// Check if exists first to return proper error
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check loadout existence")
	}

	if exists == 0 {
		return nil, errors.NotFoundf("loadout for character %s not found", input.CharacterID)
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to delete loadout for character %s", input.CharacterID)
	}

	return &DeleteOutput{}, nil
}

func toData(l *Loadout) *loadoutData {
	data := &loadoutData{
		CharacterID: l.CharacterID,
		UpdatedAt:   l.UpdatedAt,
	}
	for _, q := range l.Quantities {
		data.Quantities = append(data.Quantities, quantityData(q))
	}
	for _, p := range l.Placements {
		data.Placements = append(data.Placements, placementData(p))
	}
	for _, g := range l.Groups {
		data.Groups = append(data.Groups, groupData(g))
	}
	return data
}

func fromData(data *loadoutData) *Loadout {
	l := &Loadout{
		CharacterID: data.CharacterID,
		UpdatedAt:   data.UpdatedAt,
	}
	for _, q := range data.Quantities {
		l.Quantities = append(l.Quantities, QuantityEntry(q))
	}
	for _, p := range data.Placements {
		l.Placements = append(l.Placements, Placement(p))
	}
	for _, g := range data.Groups {
		l.Groups = append(l.Groups, GroupState(g))
	}
	return l
}

// GetKey returns the Redis key for a character's loadout
// Exposed for testing purposes
func GetKey(characterID string) string {
	return fmt.Sprintf("%s%s", loadoutKeyPrefix, characterID)
}
