package model

// LevelID uniquely identifies a level
type LevelID string

// PrizeID uniquely identifies a prize
type PrizeID string

// Prize is a reward that can be attached to levels.
// Content management owns these; gameplay only reads them.
type Prize struct {
	ID    PrizeID
	Title string
}

// Level is a unit of game content with an associated prize.
// Order is a sort hint for presentation; progress tracking never
// enforces it.
type Level struct {
	ID      LevelID
	Title   string
	Order   int
	PrizeID PrizeID
}
