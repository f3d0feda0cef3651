package progress

import (
	"context"
	"errors"
	"log/slog"

	"github.com/leveltrack/leveltrack/internal/dependencies/clock"
	"github.com/leveltrack/leveltrack/internal/model"
	"github.com/leveltrack/leveltrack/internal/services/reward"
	"github.com/leveltrack/leveltrack/internal/storage"
)

// Tracker manages the PlayerLevel lifecycle: starting a level and
// completing it. All coordination between concurrent callers lives in
// the store's atomic create-or-fail inserts; the tracker itself holds
// no locks.
type Tracker struct {
	storage storage.Storage
	issuer  *reward.Issuer
	clock   clock.Clock
	logger  *slog.Logger
}

// NewTracker creates a new progress tracker
func NewTracker(storage storage.Storage, issuer *reward.Issuer, clock clock.Clock, logger *slog.Logger) *Tracker {
	return &Tracker{
		storage: storage,
		issuer:  issuer,
		clock:   clock,
		logger:  logger,
	}
}

// StartLevel records that a player has started a level. Idempotent
// under concurrent and duplicate calls: the insert runs first and a
// conflict falls back to fetching the existing record. Checking for
// an existing record before inserting would leave a race window where
// two starts both observe no record.
func (t *Tracker) StartLevel(ctx context.Context, playerID model.PlayerID, levelID model.LevelID) (*model.PlayerLevel, error) {
	if _, err := t.storage.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	if _, err := t.storage.GetLevel(ctx, levelID); err != nil {
		return nil, err
	}

	pl := &model.PlayerLevel{
		PlayerID:  playerID,
		LevelID:   levelID,
		StartedAt: t.clock.Now(),
	}

	created, err := t.storage.CreatePlayerLevel(ctx, pl)
	if err != nil {
		t.logger.Error("failed to create player level",
			slog.String("player_id", string(playerID)),
			slog.String("level_id", string(levelID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if !created {
		// lost the insert race or a duplicate call; the existing
		// record is the result, not an error
		return t.storage.GetPlayerLevel(ctx, playerID, levelID)
	}

	t.logger.Info("level started",
		slog.String("player_id", string(playerID)),
		slog.String("level_id", string(levelID)),
	)
	return pl, nil
}

// CompleteLevel marks a started level as completed, records the
// score, and synchronously grants the level's prize. A completion for
// a level the player never started fails with NotStartedError.
//
// Calling this twice for the same pair re-applies the update (last
// write wins on score and timestamp) and re-invokes the grant, which
// then fails with AlreadyGrantedError. That error is returned to the
// caller; callers that treat re-completion as benign must catch it.
func (t *Tracker) CompleteLevel(ctx context.Context, playerID model.PlayerID, levelID model.LevelID, score int) (*model.PlayerLevel, error) {
	if score < 0 {
		return nil, model.ErrNegativeScore
	}

	pl, err := t.storage.GetPlayerLevel(ctx, playerID, levelID)
	if err != nil {
		if errors.Is(err, model.ErrProgressNotFound) {
			return nil, &model.NotStartedError{PlayerID: playerID, LevelID: levelID}
		}
		return nil, err
	}

	now := t.clock.Now()
	pl.IsCompleted = true
	pl.Completed = &now
	pl.Score = score

	if err := t.storage.UpdatePlayerLevel(ctx, pl); err != nil {
		t.logger.Error("failed to update player level",
			slog.String("player_id", string(playerID)),
			slog.String("level_id", string(levelID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	t.logger.Info("level completed",
		slog.String("player_id", string(playerID)),
		slog.String("level_id", string(levelID)),
		slog.Int("score", score),
	)

	if _, err := t.issuer.GrantPrize(ctx, pl); err != nil {
		return nil, err
	}

	return pl, nil
}

// GetProgress returns a player's progress record for a level
func (t *Tracker) GetProgress(ctx context.Context, playerID model.PlayerID, levelID model.LevelID) (*model.PlayerLevel, error) {
	return t.storage.GetPlayerLevel(ctx, playerID, levelID)
}

// GetGrant returns the prize grant for a (player, level) pair, if any
func (t *Tracker) GetGrant(ctx context.Context, playerID model.PlayerID, levelID model.LevelID) (*model.PlayerLevelPrize, error) {
	return t.storage.GetPlayerLevelPrize(ctx, playerID, levelID)
}
