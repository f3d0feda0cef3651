package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/leveltrack/leveltrack/internal/model"
	"github.com/leveltrack/leveltrack/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.SnapshotBatchSize = 2 // force paging in snapshot tests

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) seedContent() {
	_, err := s.storage.CreatePrize(s.ctx, &model.Prize{ID: "gold", Title: "Gold"})
	s.Require().NoError(err)
	_, err = s.storage.CreateLevel(s.ctx, &model.Level{ID: "l1", Title: "Level One", Order: 1, PrizeID: "gold"})
	s.Require().NoError(err)
	_, err = s.storage.CreatePlayer(s.ctx, &model.Player{ID: "p1"})
	s.Require().NoError(err)
}

func (s *StorageSuite) TestPlayerRoundTrip() {
	created, err := s.storage.CreatePlayer(s.ctx, &model.Player{ID: "p1", CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)})
	s.Require().NoError(err)
	s.True(created)

	player, err := s.storage.GetPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), player.ID)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestCreatePlayerLevelConflict() {
	s.seedContent()
	pl := &model.PlayerLevel{PlayerID: "p1", LevelID: "l1"}

	created, err := s.storage.CreatePlayerLevel(s.ctx, pl)
	s.Require().NoError(err)
	s.True(created)

	created, err = s.storage.CreatePlayerLevel(s.ctx, pl)
	s.Require().NoError(err)
	s.False(created)

	// the losing create must not duplicate the index entry
	members, err := s.storage.client.LRange(s.ctx, progressIndexKey(), 0, -1).Result()
	s.Require().NoError(err)
	s.Require().Len(members, 1)
	s.Equal(progressMember("p1", "l1"), members[0])
}

func (s *StorageSuite) TestCreatePlayerLevelDistinguishesColonBearingIDs() {
	// raw interpolation would collide these two pairs into one key
	first, err := s.storage.CreatePlayerLevel(s.ctx, &model.PlayerLevel{PlayerID: "a:b", LevelID: "c"})
	s.Require().NoError(err)
	s.True(first)

	second, err := s.storage.CreatePlayerLevel(s.ctx, &model.PlayerLevel{PlayerID: "a", LevelID: "b:c"})
	s.Require().NoError(err)
	s.True(second)

	got, err := s.storage.GetPlayerLevel(s.ctx, "a:b", "c")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("a:b"), got.PlayerID)
	s.Equal(model.LevelID("c"), got.LevelID)
}

func (s *StorageSuite) TestUpdatePlayerLevelMissing() {
	err := s.storage.UpdatePlayerLevel(s.ctx, &model.PlayerLevel{PlayerID: "p1", LevelID: "l1"})
	s.ErrorIs(err, model.ErrProgressNotFound)
}

func (s *StorageSuite) TestUpdatePlayerLevel() {
	s.seedContent()
	pl := &model.PlayerLevel{PlayerID: "p1", LevelID: "l1"}
	_, err := s.storage.CreatePlayerLevel(s.ctx, pl)
	s.Require().NoError(err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pl.IsCompleted = true
	pl.Score = 950
	pl.Completed = &now
	s.Require().NoError(s.storage.UpdatePlayerLevel(s.ctx, pl))

	got, err := s.storage.GetPlayerLevel(s.ctx, "p1", "l1")
	s.Require().NoError(err)
	s.True(got.IsCompleted)
	s.Equal(950, got.Score)
}

func (s *StorageSuite) TestCreatePlayerLevelPrizeConflict() {
	s.seedContent()
	grant := &model.PlayerLevelPrize{PlayerID: "p1", LevelID: "l1", PrizeID: "gold"}

	created, err := s.storage.CreatePlayerLevelPrize(s.ctx, grant)
	s.Require().NoError(err)
	s.True(created)

	created, err = s.storage.CreatePlayerLevelPrize(s.ctx, grant)
	s.Require().NoError(err)
	s.False(created)
}

func (s *StorageSuite) TestListLevelsSortsByOrder() {
	_, err := s.storage.CreatePrize(s.ctx, &model.Prize{ID: "gold", Title: "Gold"})
	s.Require().NoError(err)
	for _, lv := range []*model.Level{
		{ID: "l2", Title: "Second", Order: 2, PrizeID: "gold"},
		{ID: "l1", Title: "First", Order: 1, PrizeID: "gold"},
	} {
		_, err := s.storage.CreateLevel(s.ctx, lv)
		s.Require().NoError(err)
	}

	levels, err := s.storage.ListLevels(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(levels, 2)
	s.Equal(model.LevelID("l1"), levels[0].ID)
	s.Equal(model.LevelID("l2"), levels[1].ID)
}

func (s *StorageSuite) TestSnapshotPagesThroughAllRows() {
	s.seedContent()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// three rows with batch size two exercises the paging path
	for i, playerID := range []model.PlayerID{"p1", "p2", "p3"} {
		if playerID != "p1" {
			_, err := s.storage.CreatePlayer(s.ctx, &model.Player{ID: playerID})
			s.Require().NoError(err)
		}
		pl := &model.PlayerLevel{PlayerID: playerID, LevelID: "l1"}
		if i == 0 {
			pl.IsCompleted = true
			pl.Score = 950
			pl.Completed = &now
		}
		_, err := s.storage.CreatePlayerLevel(s.ctx, pl)
		s.Require().NoError(err)
	}
	_, err := s.storage.CreatePlayerLevelPrize(s.ctx, &model.PlayerLevelPrize{
		PlayerID: "p1", LevelID: "l1", PrizeID: "gold", Received: now,
	})
	s.Require().NoError(err)

	cursor, err := s.storage.SnapshotPlayerLevels(s.ctx)
	s.Require().NoError(err)
	defer func() { _ = cursor.Close() }()

	var rows []storage.SnapshotRow
	for {
		row, ok, err := cursor.Next()
		s.Require().NoError(err)
		if !ok {
			break
		}
		rows = append(rows, row)
	}

	s.Require().Len(rows, 3)
	s.Equal(storage.SnapshotRow{PlayerID: "p1", LevelTitle: "Level One", IsCompleted: true, PrizeTitle: "Gold"}, rows[0])
	s.Equal(storage.SnapshotRow{PlayerID: "p2", LevelTitle: "Level One", IsCompleted: false, PrizeTitle: ""}, rows[1])
	s.Equal(storage.SnapshotRow{PlayerID: "p3", LevelTitle: "Level One", IsCompleted: false, PrizeTitle: ""}, rows[2])
}

func (s *StorageSuite) TestSnapshotRoundTripsSlashBearingPlayerID() {
	s.seedContent()

	_, err := s.storage.CreatePlayer(s.ctx, &model.Player{ID: "org/p1"})
	s.Require().NoError(err)

	created, err := s.storage.CreatePlayerLevel(s.ctx, &model.PlayerLevel{PlayerID: "org/p1", LevelID: "l1"})
	s.Require().NoError(err)
	s.Require().True(created)

	cursor, err := s.storage.SnapshotPlayerLevels(s.ctx)
	s.Require().NoError(err)
	defer func() { _ = cursor.Close() }()

	var rows []storage.SnapshotRow
	for {
		row, ok, err := cursor.Next()
		s.Require().NoError(err)
		if !ok {
			break
		}
		rows = append(rows, row)
	}

	// the index member must decode back to the same pair; losing the
	// row here means the export silently drops a valid record
	s.Require().Len(rows, 1)
	s.Equal(model.PlayerID("org/p1"), rows[0].PlayerID)
	s.Equal("Level One", rows[0].LevelTitle)
}
