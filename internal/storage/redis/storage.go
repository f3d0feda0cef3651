package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leveltrack/leveltrack/internal/model"
	"github.com/leveltrack/leveltrack/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// The create-or-fail scopes from the storage contract map onto SETNX,
// which is atomic at the server.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// createIndexedScript creates a record and its index entry in one
// atomic step. A record must never exist unindexed: a failed append
// after a successful SETNX would leave the row permanently invisible
// to snapshot exports, since later creates hit the conflict branch.
// ARGV[3] selects the index structure (RPUSH for the ordered progress
// list, SADD for the level set).
var createIndexedScript = redis.NewScript(`
if redis.call("SETNX", KEYS[1], ARGV[1]) == 1 then
	redis.call(ARGV[3], KEYS[2], ARGV[2])
	return 1
end
return 0
`)

// createIndexed marshals value, stores it under key only if absent,
// and appends member to the index key in the same atomic step
func (s *Storage) createIndexed(ctx context.Context, key, indexKey, member, indexCmd string, value any) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	res, err := createIndexedScript.Run(ctx, s.client, []string{key, indexKey}, data, member, indexCmd).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

// createJSON marshals value and stores it under key only if the key
// is absent. The returned bool reports whether the record was created.
func (s *Storage) createJSON(ctx context.Context, key string, value any) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	return s.client.SetNX(ctx, key, data, 0).Result()
}

// getJSON fetches key and unmarshals it into out, translating the
// missing-key reply into notFound
func (s *Storage) getJSON(ctx context.Context, key string, out any, notFound error) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, out)
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) (bool, error) {
	return s.createJSON(ctx, playerKey(player.ID), player)
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player model.Player
	if err := s.getJSON(ctx, playerKey(id), &player, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &player, nil
}

// Content operations

func (s *Storage) CreatePrize(ctx context.Context, prize *model.Prize) (bool, error) {
	return s.createJSON(ctx, prizeKey(prize.ID), prize)
}

func (s *Storage) GetPrize(ctx context.Context, id model.PrizeID) (*model.Prize, error) {
	var prize model.Prize
	if err := s.getJSON(ctx, prizeKey(id), &prize, model.ErrPrizeNotFound); err != nil {
		return nil, err
	}
	return &prize, nil
}

func (s *Storage) CreateLevel(ctx context.Context, level *model.Level) (bool, error) {
	return s.createIndexed(ctx, levelKey(level.ID), levelIndexKey(), string(level.ID), "SADD", level)
}

func (s *Storage) GetLevel(ctx context.Context, id model.LevelID) (*model.Level, error) {
	var level model.Level
	if err := s.getJSON(ctx, levelKey(id), &level, model.ErrLevelNotFound); err != nil {
		return nil, err
	}
	return &level, nil
}

func (s *Storage) ListLevels(ctx context.Context) ([]*model.Level, error) {
	ids, err := s.client.SMembers(ctx, levelIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	levels := make([]*model.Level, 0, len(ids))
	for _, id := range ids {
		level, err := s.GetLevel(ctx, model.LevelID(id))
		if errors.Is(err, model.ErrLevelNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool {
		if levels[i].Order != levels[j].Order {
			return levels[i].Order < levels[j].Order
		}
		return levels[i].ID < levels[j].ID
	})
	return levels, nil
}

// Progress operations

func (s *Storage) CreatePlayerLevel(ctx context.Context, pl *model.PlayerLevel) (bool, error) {
	// Only the SETNX winner appends to the index, so each pair
	// appears once, in creation order
	return s.createIndexed(ctx,
		progressKey(pl.PlayerID, pl.LevelID),
		progressIndexKey(),
		progressMember(pl.PlayerID, pl.LevelID),
		"RPUSH",
		pl,
	)
}

func (s *Storage) GetPlayerLevel(ctx context.Context, playerID model.PlayerID, levelID model.LevelID) (*model.PlayerLevel, error) {
	var pl model.PlayerLevel
	if err := s.getJSON(ctx, progressKey(playerID, levelID), &pl, model.ErrProgressNotFound); err != nil {
		return nil, err
	}
	return &pl, nil
}

func (s *Storage) UpdatePlayerLevel(ctx context.Context, pl *model.PlayerLevel) error {
	data, err := json.Marshal(pl)
	if err != nil {
		return err
	}
	// XX: update only, never resurrect a missing record
	set, err := s.client.SetXX(ctx, progressKey(pl.PlayerID, pl.LevelID), data, 0).Result()
	if err != nil {
		return err
	}
	if !set {
		return model.ErrProgressNotFound
	}
	return nil
}

// Grant operations

func (s *Storage) CreatePlayerLevelPrize(ctx context.Context, grant *model.PlayerLevelPrize) (bool, error) {
	return s.createJSON(ctx, grantKey(grant.PlayerID, grant.LevelID), grant)
}

func (s *Storage) GetPlayerLevelPrize(ctx context.Context, playerID model.PlayerID, levelID model.LevelID) (*model.PlayerLevelPrize, error) {
	var grant model.PlayerLevelPrize
	if err := s.getJSON(ctx, grantKey(playerID, levelID), &grant, model.ErrGrantNotFound); err != nil {
		return nil, err
	}
	return &grant, nil
}

// Snapshot operations

func (s *Storage) SnapshotPlayerLevels(ctx context.Context) (storage.SnapshotCursor, error) {
	return &snapshotCursor{
		storage:   s,
		ctx:       ctx,
		batchSize: s.cfg.SnapshotBatchSize,
	}, nil
}

// snapshotCursor pages through the progress index list and resolves
// one row per Next call, keeping memory bounded by the batch size
type snapshotCursor struct {
	storage   *Storage
	ctx       context.Context
	batchSize int

	offset    int64
	buffer    []string
	pos       int
	exhausted bool
}

func (c *snapshotCursor) Next() (storage.SnapshotRow, bool, error) {
	for {
		if c.pos >= len(c.buffer) {
			if c.exhausted {
				return storage.SnapshotRow{}, false, nil
			}
			if err := c.fill(); err != nil {
				return storage.SnapshotRow{}, false, err
			}
			if len(c.buffer) == 0 {
				return storage.SnapshotRow{}, false, nil
			}
		}

		member := c.buffer[c.pos]
		c.pos++

		playerID, levelID, ok := parseProgressMember(member)
		if !ok {
			continue
		}

		row, ok, err := c.resolve(playerID, levelID)
		if err != nil {
			return storage.SnapshotRow{}, false, err
		}
		if !ok {
			continue
		}
		return row, true, nil
	}
}

func (c *snapshotCursor) fill() error {
	batch := int64(c.batchSize)
	if batch <= 0 {
		batch = 256
	}
	members, err := c.storage.client.LRange(c.ctx, progressIndexKey(), c.offset, c.offset+batch-1).Result()
	if err != nil {
		return err
	}
	c.offset += int64(len(members))
	c.buffer = members
	c.pos = 0
	if int64(len(members)) < batch {
		c.exhausted = true
	}
	return nil
}

func (c *snapshotCursor) resolve(playerID model.PlayerID, levelID model.LevelID) (storage.SnapshotRow, bool, error) {
	pl, err := c.storage.GetPlayerLevel(c.ctx, playerID, levelID)
	if errors.Is(err, model.ErrProgressNotFound) {
		return storage.SnapshotRow{}, false, nil
	}
	if err != nil {
		return storage.SnapshotRow{}, false, err
	}

	row := storage.SnapshotRow{
		PlayerID:    pl.PlayerID,
		IsCompleted: pl.IsCompleted,
	}

	level, err := c.storage.GetLevel(c.ctx, levelID)
	if err == nil {
		row.LevelTitle = level.Title
	} else if !errors.Is(err, model.ErrLevelNotFound) {
		return storage.SnapshotRow{}, false, err
	}

	grant, err := c.storage.GetPlayerLevelPrize(c.ctx, playerID, levelID)
	if errors.Is(err, model.ErrGrantNotFound) {
		return row, true, nil
	}
	if err != nil {
		return storage.SnapshotRow{}, false, err
	}

	prize, err := c.storage.GetPrize(c.ctx, grant.PrizeID)
	if err == nil {
		row.PrizeTitle = prize.Title
	} else if !errors.Is(err, model.ErrPrizeNotFound) {
		return storage.SnapshotRow{}, false, err
	}
	return row, true, nil
}

func (c *snapshotCursor) Close() error {
	return nil
}
