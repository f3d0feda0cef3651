package reward

import (
	"context"
	"log/slog"

	"github.com/leveltrack/leveltrack/internal/dependencies/clock"
	"github.com/leveltrack/leveltrack/internal/model"
	"github.com/leveltrack/leveltrack/internal/storage"
)

// Issuer grants level prizes, exactly once per PlayerLevel
type Issuer struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewIssuer creates a new reward issuer
func NewIssuer(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Issuer {
	return &Issuer{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// GrantPrize creates the prize-grant record for a completed
// PlayerLevel. The grant insert is create-or-fail against the store's
// one-grant-per-PlayerLevel constraint; there is no prior existence
// check, so concurrent grants race safely and exactly one wins. The
// losers get an AlreadyGrantedError, never a silent no-op.
func (i *Issuer) GrantPrize(ctx context.Context, pl *model.PlayerLevel) (*model.PlayerLevelPrize, error) {
	level, err := i.storage.GetLevel(ctx, pl.LevelID)
	if err != nil {
		return nil, err
	}

	grant := &model.PlayerLevelPrize{
		PlayerID: pl.PlayerID,
		LevelID:  pl.LevelID,
		PrizeID:  level.PrizeID,
		Received: i.clock.Now(),
	}

	created, err := i.storage.CreatePlayerLevelPrize(ctx, grant)
	if err != nil {
		i.logger.Error("failed to create prize grant",
			slog.String("player_id", string(pl.PlayerID)),
			slog.String("level_id", string(pl.LevelID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if !created {
		return nil, &model.AlreadyGrantedError{PlayerID: pl.PlayerID, LevelID: pl.LevelID}
	}

	i.logger.Info("prize granted",
		slog.String("player_id", string(pl.PlayerID)),
		slog.String("level_id", string(pl.LevelID)),
		slog.String("prize_id", string(level.PrizeID)),
	)
	return grant, nil
}
