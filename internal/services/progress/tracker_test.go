package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/leveltrack/leveltrack/internal/dependencies/mocks"
	"github.com/leveltrack/leveltrack/internal/model"
	"github.com/leveltrack/leveltrack/internal/services/reward"
	"github.com/leveltrack/leveltrack/internal/storage/memory"
	"github.com/leveltrack/leveltrack/internal/testutil"
)

type TrackerSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	issuer  *reward.Issuer
	tracker *Tracker
	ctx     context.Context
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}

func (s *TrackerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()
	s.issuer = reward.NewIssuer(s.storage, s.clock, logger)
	s.tracker = NewTracker(s.storage, s.issuer, s.clock, logger)
	s.ctx = context.Background()

	_, err := s.storage.CreatePrize(s.ctx, &model.Prize{ID: "gold", Title: "Gold"})
	s.Require().NoError(err)
	_, err = s.storage.CreateLevel(s.ctx, &model.Level{ID: "l1", Title: "Level One", Order: 1, PrizeID: "gold"})
	s.Require().NoError(err)
	_, err = s.storage.CreatePlayer(s.ctx, &model.Player{ID: "p1"})
	s.Require().NoError(err)
}

// StartLevel tests

func (s *TrackerSuite) TestStartLevelCreatesRecord() {
	pl, err := s.tracker.StartLevel(s.ctx, "p1", "l1")
	s.Require().NoError(err)

	s.Equal(model.PlayerID("p1"), pl.PlayerID)
	s.Equal(model.LevelID("l1"), pl.LevelID)
	s.False(pl.IsCompleted)
	s.Equal(0, pl.Score)
	s.Nil(pl.Completed)
	s.Equal(s.clock.CurrentTime, pl.StartedAt)
	s.Equal(model.ProgressStateStarted, pl.State())
}

func (s *TrackerSuite) TestStartLevelIsIdempotent() {
	first, err := s.tracker.StartLevel(s.ctx, "p1", "l1")
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)

	second, err := s.tracker.StartLevel(s.ctx, "p1", "l1")
	s.Require().NoError(err)

	// the duplicate call returns the existing record, not a new one
	s.Equal(first.PlayerID, second.PlayerID)
	s.Equal(first.LevelID, second.LevelID)
	s.Equal(first.StartedAt, second.StartedAt)
}

func (s *TrackerSuite) TestStartLevelUnknownPlayer() {
	_, err := s.tracker.StartLevel(s.ctx, "ghost", "l1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *TrackerSuite) TestStartLevelUnknownLevel() {
	_, err := s.tracker.StartLevel(s.ctx, "p1", "l99")
	s.ErrorIs(err, model.ErrLevelNotFound)
}

func (s *TrackerSuite) TestStartLevelConcurrentCallsYieldOneRecord() {
	const callers = 16

	var wg sync.WaitGroup
	errs := make([]error, callers)
	records := make([]*model.PlayerLevel, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			records[i], errs[i] = s.tracker.StartLevel(s.ctx, "p1", "l1")
		}(i)
	}
	wg.Wait()

	// no caller observes the constraint violation, and all see the
	// same record identity
	for i := 0; i < callers; i++ {
		s.Require().NoError(errs[i])
		s.Equal(model.PlayerID("p1"), records[i].PlayerID)
		s.Equal(model.LevelID("l1"), records[i].LevelID)
	}

	pl, err := s.storage.GetPlayerLevel(s.ctx, "p1", "l1")
	s.Require().NoError(err)
	s.False(pl.IsCompleted)
}

// CompleteLevel tests

func (s *TrackerSuite) TestCompleteLevelWithoutStartFails() {
	_, err := s.tracker.CompleteLevel(s.ctx, "p1", "l1", 100)

	var notStarted *model.NotStartedError
	s.Require().ErrorAs(err, &notStarted)
	s.Equal(model.PlayerID("p1"), notStarted.PlayerID)
	s.Equal(model.LevelID("l1"), notStarted.LevelID)
}

func (s *TrackerSuite) TestCompleteLevelRejectsNegativeScore() {
	_, err := s.tracker.CompleteLevel(s.ctx, "p1", "l1", -1)
	s.ErrorIs(err, model.ErrNegativeScore)
}

func (s *TrackerSuite) TestCompleteLevelTransitionsAndGrantsPrize() {
	_, err := s.tracker.StartLevel(s.ctx, "p1", "l1")
	s.Require().NoError(err)

	s.clock.Advance(30 * time.Minute)

	pl, err := s.tracker.CompleteLevel(s.ctx, "p1", "l1", 950)
	s.Require().NoError(err)

	s.True(pl.IsCompleted)
	s.Equal(950, pl.Score)
	s.Require().NotNil(pl.Completed)
	s.Equal(s.clock.CurrentTime, *pl.Completed)
	s.Equal(model.ProgressStateCompleted, pl.State())

	grant, err := s.storage.GetPlayerLevelPrize(s.ctx, "p1", "l1")
	s.Require().NoError(err)
	s.Equal(model.PrizeID("gold"), grant.PrizeID)
	s.Equal(s.clock.CurrentTime, grant.Received)
}

func (s *TrackerSuite) TestCompleteLevelIsPersisted() {
	_, err := s.tracker.StartLevel(s.ctx, "p1", "l1")
	s.Require().NoError(err)
	_, err = s.tracker.CompleteLevel(s.ctx, "p1", "l1", 500)
	s.Require().NoError(err)

	stored, err := s.storage.GetPlayerLevel(s.ctx, "p1", "l1")
	s.Require().NoError(err)
	s.True(stored.IsCompleted)
	s.Equal(500, stored.Score)
}

// Pins the permissive double-completion behavior: the second call
// re-applies score and timestamp, then surfaces the issuer's
// AlreadyGrantedError. No second grant record is created.
func (s *TrackerSuite) TestCompleteLevelTwiceKeepsSingleGrant() {
	_, err := s.tracker.StartLevel(s.ctx, "p1", "l1")
	s.Require().NoError(err)
	_, err = s.tracker.CompleteLevel(s.ctx, "p1", "l1", 500)
	s.Require().NoError(err)

	firstGrant, err := s.storage.GetPlayerLevelPrize(s.ctx, "p1", "l1")
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)

	_, err = s.tracker.CompleteLevel(s.ctx, "p1", "l1", 999)

	var alreadyGranted *model.AlreadyGrantedError
	s.Require().ErrorAs(err, &alreadyGranted)
	s.Equal(model.PlayerID("p1"), alreadyGranted.PlayerID)
	s.Equal(model.LevelID("l1"), alreadyGranted.LevelID)

	// last write wins on the progress row
	stored, err := s.storage.GetPlayerLevel(s.ctx, "p1", "l1")
	s.Require().NoError(err)
	s.Equal(999, stored.Score)

	// the original grant is untouched
	grant, err := s.storage.GetPlayerLevelPrize(s.ctx, "p1", "l1")
	s.Require().NoError(err)
	s.Equal(firstGrant.Received, grant.Received)
}

func (s *TrackerSuite) TestGetProgressAndGrant() {
	_, err := s.tracker.StartLevel(s.ctx, "p1", "l1")
	s.Require().NoError(err)

	pl, err := s.tracker.GetProgress(s.ctx, "p1", "l1")
	s.Require().NoError(err)
	s.False(pl.IsCompleted)

	_, err = s.tracker.GetGrant(s.ctx, "p1", "l1")
	s.ErrorIs(err, model.ErrGrantNotFound)

	_, err = s.tracker.CompleteLevel(s.ctx, "p1", "l1", 100)
	s.Require().NoError(err)

	grant, err := s.tracker.GetGrant(s.ctx, "p1", "l1")
	s.Require().NoError(err)
	s.Equal(model.PrizeID("gold"), grant.PrizeID)
}
