package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/leveltrack/leveltrack/internal/model"
	"github.com/leveltrack/leveltrack/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players map[model.PlayerID]*model.Player
	prizes  map[model.PrizeID]*model.Prize
	levels  map[model.LevelID]*model.Level

	progress map[progressKey]*model.PlayerLevel
	grants   map[progressKey]*model.PlayerLevelPrize

	// progressOrder preserves insertion order for snapshot iteration
	progressOrder []progressKey
}

type progressKey struct {
	playerID model.PlayerID
	levelID  model.LevelID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:  make(map[model.PlayerID]*model.Player),
		prizes:   make(map[model.PrizeID]*model.Prize),
		levels:   make(map[model.LevelID]*model.Level),
		progress: make(map[progressKey]*model.PlayerLevel),
		grants:   make(map[progressKey]*model.PlayerLevelPrize),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.players[player.ID]; exists {
		return false, nil
	}
	copied := *player
	s.players[player.ID] = &copied
	return true, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	copied := *player
	return &copied, nil
}

// Content operations

func (s *Storage) CreatePrize(ctx context.Context, prize *model.Prize) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.prizes[prize.ID]; exists {
		return false, nil
	}
	copied := *prize
	s.prizes[prize.ID] = &copied
	return true, nil
}

func (s *Storage) GetPrize(ctx context.Context, id model.PrizeID) (*model.Prize, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prize, ok := s.prizes[id]
	if !ok {
		return nil, model.ErrPrizeNotFound
	}
	copied := *prize
	return &copied, nil
}

func (s *Storage) CreateLevel(ctx context.Context, level *model.Level) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.levels[level.ID]; exists {
		return false, nil
	}
	copied := *level
	s.levels[level.ID] = &copied
	return true, nil
}

func (s *Storage) GetLevel(ctx context.Context, id model.LevelID) (*model.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	level, ok := s.levels[id]
	if !ok {
		return nil, model.ErrLevelNotFound
	}
	copied := *level
	return &copied, nil
}

func (s *Storage) ListLevels(ctx context.Context) ([]*model.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	levels := make([]*model.Level, 0, len(s.levels))
	for _, level := range s.levels {
		copied := *level
		levels = append(levels, &copied)
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
	s.mu.Lock()
	defer s.mu.Unlock()
	key := progressKey{pl.PlayerID, pl.LevelID}
	if _, exists := s.progress[key]; exists {
		return false, nil
	}
	copied := *pl
	s.progress[key] = &copied
	s.progressOrder = append(s.progressOrder, key)
	return true, nil
}

func (s *Storage) GetPlayerLevel(ctx context.Context, playerID model.PlayerID, levelID model.LevelID) (*model.PlayerLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pl, ok := s.progress[progressKey{playerID, levelID}]
	if !ok {
		return nil, model.ErrProgressNotFound
	}
	copied := *pl
	return &copied, nil
}

func (s *Storage) UpdatePlayerLevel(ctx context.Context, pl *model.PlayerLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := progressKey{pl.PlayerID, pl.LevelID}
	if _, ok := s.progress[key]; !ok {
		return model.ErrProgressNotFound
	}
	copied := *pl
	s.progress[key] = &copied
	return nil
}

// Grant operations

func (s *Storage) CreatePlayerLevelPrize(ctx context.Context, grant *model.PlayerLevelPrize) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := progressKey{grant.PlayerID, grant.LevelID}
	if _, exists := s.grants[key]; exists {
		return false, nil
	}
	copied := *grant
	s.grants[key] = &copied
	return true, nil
}

func (s *Storage) GetPlayerLevelPrize(ctx context.Context, playerID model.PlayerID, levelID model.LevelID) (*model.PlayerLevelPrize, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grant, ok := s.grants[progressKey{playerID, levelID}]
	if !ok {
		return nil, model.ErrGrantNotFound
	}
	copied := *grant
	return &copied, nil
}

// Snapshot operations

func (s *Storage) SnapshotPlayerLevels(ctx context.Context) (storage.SnapshotCursor, error) {
	s.mu.RLock()
	keys := make([]progressKey, len(s.progressOrder))
	copy(keys, s.progressOrder)
	s.mu.RUnlock()

	return &snapshotCursor{storage: s, keys: keys}, nil
}

// snapshotCursor iterates a copied key list in insertion order and
// resolves each row lazily against the live maps
type snapshotCursor struct {
	storage *Storage
	keys    []progressKey
	pos     int
}

func (c *snapshotCursor) Next() (storage.SnapshotRow, bool, error) {
	s := c.storage
	s.mu.RLock()
	defer s.mu.RUnlock()

	for c.pos < len(c.keys) {
		key := c.keys[c.pos]
		c.pos++

		pl, ok := s.progress[key]
		if !ok {
			continue
		}

		row := storage.SnapshotRow{
			PlayerID:    pl.PlayerID,
			IsCompleted: pl.IsCompleted,
		}
		if level, ok := s.levels[pl.LevelID]; ok {
			row.LevelTitle = level.Title
		}
		if grant, ok := s.grants[key]; ok {
			if prize, ok := s.prizes[grant.PrizeID]; ok {
				row.PrizeTitle = prize.Title
			}
		}
		return row, true, nil
	}
	return storage.SnapshotRow{}, false, nil
}

func (c *snapshotCursor) Close() error {
	return nil
}

// Close is a no-op for in-memory storage
func (s *Storage) Close() error {
	return nil
}
