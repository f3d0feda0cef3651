package storage

import (
	"context"

	"github.com/leveltrack/leveltrack/internal/model"
)

// Storage defines the interface for data persistence.
//
// The Create* methods for progress and grant records are atomic
// create-or-fail operations: they return created=false (with a nil
// error) when a record for the same key already exists. Callers treat
// that branch as expected control flow, never as a failure. The
// atomicity lives in the backend (map under mutex, SQL unique
// constraint, SetNX); no implementation may issue it as a check plus
// an insert.
type Storage interface {
	// Player operations
	CreatePlayer(ctx context.Context, player *model.Player) (created bool, err error)
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)

	// Content operations
	CreatePrize(ctx context.Context, prize *model.Prize) (created bool, err error)
	GetPrize(ctx context.Context, id model.PrizeID) (*model.Prize, error)
	CreateLevel(ctx context.Context, level *model.Level) (created bool, err error)
	GetLevel(ctx context.Context, id model.LevelID) (*model.Level, error)
	ListLevels(ctx context.Context) ([]*model.Level, error)

	// Progress operations
	CreatePlayerLevel(ctx context.Context, pl *model.PlayerLevel) (created bool, err error)
	GetPlayerLevel(ctx context.Context, playerID model.PlayerID, levelID model.LevelID) (*model.PlayerLevel, error)
	UpdatePlayerLevel(ctx context.Context, pl *model.PlayerLevel) error

	// Grant operations
	CreatePlayerLevelPrize(ctx context.Context, grant *model.PlayerLevelPrize) (created bool, err error)
	GetPlayerLevelPrize(ctx context.Context, playerID model.PlayerID, levelID model.LevelID) (*model.PlayerLevelPrize, error)

	// SnapshotPlayerLevels opens a forward-only cursor over every
	// PlayerLevel joined with its level title and, when present, the
	// granted prize title. The caller must Close the cursor.
	SnapshotPlayerLevels(ctx context.Context) (SnapshotCursor, error)

	// Close releases backend resources
	Close() error
}

// SnapshotRow is one row of the progress snapshot. PrizeTitle is the
// empty string when no grant record exists.
type SnapshotRow struct {
	PlayerID    model.PlayerID
	LevelTitle  string
	IsCompleted bool
	PrizeTitle  string
}

// SnapshotCursor yields snapshot rows one at a time so consumers
// never hold the full result set in memory.
type SnapshotCursor interface {
	// Next returns the next row. ok is false once the cursor is
	// exhausted or an error occurred; the error is returned alongside.
	Next() (row SnapshotRow, ok bool, err error)
	Close() error
}
