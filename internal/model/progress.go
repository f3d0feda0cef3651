package model

import "time"

// ProgressState describes where a PlayerLevel is in its lifecycle
type ProgressState string

// Progress states. A record is created Started and moves to Completed
// exactly once; nothing leaves Completed.
const (
	ProgressStateStarted   ProgressState = "started"
	ProgressStateCompleted ProgressState = "completed"
)

// PlayerLevel is a player's single progress record for one level.
// At most one exists per (player, level) pair; the store enforces
// this at creation time.
type PlayerLevel struct {
	PlayerID    PlayerID
	LevelID     LevelID
	IsCompleted bool
	Score       int
	StartedAt   time.Time
	Completed   *time.Time
}

// State returns the lifecycle state of the record
func (pl *PlayerLevel) State() ProgressState {
	if pl.IsCompleted {
		return ProgressStateCompleted
	}
	return ProgressStateStarted
}

// PlayerLevelPrize evidences that a level's prize was granted to a
// player. At most one exists per PlayerLevel; immutable once created.
type PlayerLevelPrize struct {
	PlayerID PlayerID
	LevelID  LevelID
	PrizeID  PrizeID
	Received time.Time
}
