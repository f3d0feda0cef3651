package content

import (
	"context"
	"log/slog"

	"github.com/leveltrack/leveltrack/internal/dependencies/clock"
	"github.com/leveltrack/leveltrack/internal/model"
	"github.com/leveltrack/leveltrack/internal/storage"
)

// Service manages the static content records (players, prizes,
// levels) that progress tracking reads but never writes
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new content service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// RegisterPlayer creates a player identity record. Registering the
// same ID again returns the existing record.
func (s *Service) RegisterPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	player := &model.Player{
		ID:        id,
		CreatedAt: s.clock.Now(),
	}

	created, err := s.storage.CreatePlayer(ctx, player)
	if err != nil {
		return nil, err
	}
	if !created {
		return s.storage.GetPlayer(ctx, id)
	}

	s.logger.Info("player registered", slog.String("player_id", string(id)))
	return player, nil
}

// GetPlayer returns a player by ID
func (s *Service) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, id)
}

// CreatePrize creates a prize descriptor
func (s *Service) CreatePrize(ctx context.Context, prize *model.Prize) (*model.Prize, error) {
	created, err := s.storage.CreatePrize(ctx, prize)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, model.ErrPrizeExists
	}

	s.logger.Info("prize created", slog.String("prize_id", string(prize.ID)))
	return prize, nil
}

// CreateLevel creates a level descriptor. The level's prize must
// already exist.
func (s *Service) CreateLevel(ctx context.Context, level *model.Level) (*model.Level, error) {
	if _, err := s.storage.GetPrize(ctx, level.PrizeID); err != nil {
		return nil, err
	}

	created, err := s.storage.CreateLevel(ctx, level)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, model.ErrLevelExists
	}

	s.logger.Info("level created",
		slog.String("level_id", string(level.ID)),
		slog.String("prize_id", string(level.PrizeID)),
	)
	return level, nil
}

// ListLevels returns all levels sorted by their order hint
func (s *Service) ListLevels(ctx context.Context) ([]*model.Level, error) {
	return s.storage.ListLevels(ctx)
}
