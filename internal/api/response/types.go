package response

import (
	"time"

	"github.com/leveltrack/leveltrack/internal/model"
)

// Player represents a player in API responses
type Player struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:        string(p.ID),
		CreatedAt: p.CreatedAt,
	}
}

// Prize represents a prize in API responses
type Prize struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PrizeFromModel converts a model.Prize
func PrizeFromModel(p *model.Prize) Prize {
	return Prize{
		ID:    string(p.ID),
		Title: p.Title,
	}
}

// Level represents a level in API responses
type Level struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Order   int    `json:"order"`
	PrizeID string `json:"prize_id"`
}

// LevelFromModel converts a model.Level
func LevelFromModel(l *model.Level) Level {
	return Level{
		ID:      string(l.ID),
		Title:   l.Title,
		Order:   l.Order,
		PrizeID: string(l.PrizeID),
	}
}

// Progress represents a PlayerLevel in API responses, with the grant
// attached when one exists
type Progress struct {
	PlayerID    string     `json:"player_id"`
	LevelID     string     `json:"level_id"`
	State       string     `json:"state"`
	IsCompleted bool       `json:"is_completed"`
	Score       int        `json:"score"`
	StartedAt   time.Time  `json:"started_at"`
	Completed   *time.Time `json:"completed,omitempty"`
	Grant       *Grant     `json:"grant,omitempty"`
}

// Grant represents a PlayerLevelPrize in API responses
type Grant struct {
	PrizeID  string    `json:"prize_id"`
	Received time.Time `json:"received"`
}

// ProgressFromModel converts a model.PlayerLevel and optional grant
func ProgressFromModel(pl *model.PlayerLevel, grant *model.PlayerLevelPrize) Progress {
	resp := Progress{
		PlayerID:    string(pl.PlayerID),
		LevelID:     string(pl.LevelID),
		State:       string(pl.State()),
		IsCompleted: pl.IsCompleted,
		Score:       pl.Score,
		StartedAt:   pl.StartedAt,
		Completed:   pl.Completed,
	}
	if grant != nil {
		resp.Grant = &Grant{
			PrizeID:  string(grant.PrizeID),
			Received: grant.Received,
		}
	}
	return resp
}

// ExportAccepted is the response for a scheduled snapshot export
type ExportAccepted struct {
	Task string `json:"task"`
}
