package request

// RegisterPlayerRequest is the request body for registering a player
type RegisterPlayerRequest struct {
	PlayerID string `json:"player_id"`
}

// CreatePrizeRequest is the request body for creating a prize
type CreatePrizeRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CreateLevelRequest is the request body for creating a level
type CreateLevelRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Order   int    `json:"order"`
	PrizeID string `json:"prize_id"`
}

// CompleteLevelRequest is the request body for completing a level
type CompleteLevelRequest struct {
	Score int `json:"score"`
}
