package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Content errors
	ErrLevelNotFound = errors.New("level not found")
	ErrLevelExists   = errors.New("level already exists")
	ErrPrizeNotFound = errors.New("prize not found")
	ErrPrizeExists   = errors.New("prize already exists")

	// Progress errors
	ErrProgressNotFound = errors.New("level progress not found")
	ErrGrantNotFound    = errors.New("prize grant not found")
	ErrNegativeScore    = errors.New("score must be non-negative")
)

// NotStartedError reports a completion attempt for a level the player
// never started. This is a caller-contract violation, not a race: the
// caller must start the level first.
type NotStartedError struct {
	PlayerID PlayerID
	LevelID  LevelID
}

func (e *NotStartedError) Error() string {
	return fmt.Sprintf("player %s has not started level %s", e.PlayerID, e.LevelID)
}

// AlreadyGrantedError reports a grant attempt for a PlayerLevel that
// already holds its prize. Callers that tolerate re-completion must
// catch and ignore this error kind.
type AlreadyGrantedError struct {
	PlayerID PlayerID
	LevelID  LevelID
}

func (e *AlreadyGrantedError) Error() string {
	return fmt.Sprintf("player %s already received the prize for level %s", e.PlayerID, e.LevelID)
}
