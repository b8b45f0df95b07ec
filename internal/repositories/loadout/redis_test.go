package loadout_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/equipset/internal/errors"
	"github.com/KirkDiggler/equipset/internal/pkg/clock"
	"github.com/KirkDiggler/equipset/internal/repositories/loadout"
	"github.com/KirkDiggler/equipset/internal/testutils"
)

const testCharID = "char_test123"

type RedisLoadoutTestSuite struct {
	suite.Suite
	cleanup func()
	repo    loadout.Repository
	ctx     context.Context
	now     time.Time
}

func (s *RedisLoadoutTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.ctx = context.Background()
	s.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	repo, err := loadout.NewRedis(&loadout.RedisConfig{
		Client: client,
		Clock:  clock.NewFixed(s.now),
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisLoadoutTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisLoadoutTestSuite) sampleLoadout() *loadout.Loadout {
	return &loadout.Loadout{
		CharacterID: testCharID,
		Quantities: []loadout.QuantityEntry{
			{ItemID: 10, Quantity: 1},
			{ItemID: 11, Quantity: 1},
		},
		Placements: []loadout.Placement{
			{ItemID: 10, Slot: 0},
			{ItemID: 11, Slot: 1},
		},
		Groups: []loadout.GroupState{
			{Category: "weapons", ActiveLabel: "Equip Sword Shield"},
		},
	}
}

func (s *RedisLoadoutTestSuite) TestNewRedis_InvalidConfig() {
	_, err := loadout.NewRedis(nil)
	s.Error(err)
	s.True(errors.IsInvalidArgument(err))

	_, err = loadout.NewRedis(&loadout.RedisConfig{})
	s.Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisLoadoutTestSuite) TestSaveAndGet() {
	saved, err := s.repo.Save(s.ctx, loadout.SaveInput{Loadout: s.sampleLoadout()})
	s.Require().NoError(err)
	s.Equal(s.now, saved.Loadout.UpdatedAt, "save stamps the clock")

	got, err := s.repo.Get(s.ctx, loadout.GetInput{CharacterID: testCharID})
	s.Require().NoError(err)
	s.Equal(testCharID, got.Loadout.CharacterID)
	s.Equal(saved.Loadout.Quantities, got.Loadout.Quantities)
	s.Equal(saved.Loadout.Placements, got.Loadout.Placements)
	s.Equal(saved.Loadout.Groups, got.Loadout.Groups)
	s.True(s.now.Equal(got.Loadout.UpdatedAt))
}

func (s *RedisLoadoutTestSuite) TestSave_Overwrites() {
	_, err := s.repo.Save(s.ctx, loadout.SaveInput{Loadout: s.sampleLoadout()})
	s.Require().NoError(err)

	updated := s.sampleLoadout()
	updated.Groups[0].ActiveLabel = ""
	_, err = s.repo.Save(s.ctx, loadout.SaveInput{Loadout: updated})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, loadout.GetInput{CharacterID: testCharID})
	s.Require().NoError(err)
	s.Empty(got.Loadout.Groups[0].ActiveLabel)
}

func (s *RedisLoadoutTestSuite) TestSave_Validation() {
	_, err := s.repo.Save(s.ctx, loadout.SaveInput{})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Save(s.ctx, loadout.SaveInput{Loadout: &loadout.Loadout{}})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisLoadoutTestSuite) TestGet_NotFound() {
	_, err := s.repo.Get(s.ctx, loadout.GetInput{CharacterID: "char_missing"})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Get(s.ctx, loadout.GetInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisLoadoutTestSuite) TestDelete() {
	_, err := s.repo.Save(s.ctx, loadout.SaveInput{Loadout: s.sampleLoadout()})
	s.Require().NoError(err)

	_, err = s.repo.Delete(s.ctx, loadout.DeleteInput{CharacterID: testCharID})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, loadout.GetInput{CharacterID: testCharID})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Delete(s.ctx, loadout.DeleteInput{CharacterID: testCharID})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Delete(s.ctx, loadout.DeleteInput{})
	s.True(errors.IsInvalidArgument(err))
}

func TestGetKey(t *testing.T) {
	if got := loadout.GetKey(testCharID); got != "loadout:character:"+testCharID {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestRedisLoadoutTestSuite(t *testing.T) {
	suite.Run(t, new(RedisLoadoutTestSuite))
}
