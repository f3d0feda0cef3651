package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case Prize:
		o.printPrize(v)
	case Level:
		o.printLevel(v)
	case []Level:
		o.printLevels(v)
	case Progress:
		o.printProgress(v)
	case ExportAccepted:
		o.printExportAccepted(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
}

// Prize response type
type Prize struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Level response type
type Level struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Order   int    `json:"order"`
	PrizeID string `json:"prize_id"`
}

// Progress response type
type Progress struct {
	PlayerID    string  `json:"player_id"`
	LevelID     string  `json:"level_id"`
	State       string  `json:"state"`
	IsCompleted bool    `json:"is_completed"`
	Score       int     `json:"score"`
	StartedAt   string  `json:"started_at"`
	Completed   *string `json:"completed,omitempty"`
	Grant       *Grant  `json:"grant,omitempty"`
}

// Grant response type
type Grant struct {
	PrizeID  string `json:"prize_id"`
	Received string `json:"received"`
}

// ExportAccepted response type
type ExportAccepted struct {
	Task string `json:"task"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s\n", p.ID)
	fmt.Printf("Created: %s\n", p.CreatedAt)
}

func (o *Output) printPrize(p Prize) {
	fmt.Printf("Prize: %s (%s)\n", p.Title, p.ID)
}

func (o *Output) printLevel(l Level) {
	fmt.Printf("Level: %s (%s)\n", l.Title, l.ID)
	fmt.Printf("Order: %d\n", l.Order)
	fmt.Printf("Prize: %s\n", l.PrizeID)
}

func (o *Output) printLevels(levels []Level) {
	fmt.Printf("Levels (%d):\n", len(levels))
	for _, l := range levels {
		fmt.Printf("  %d. %s (%s) - prize: %s\n", l.Order, l.Title, l.ID, l.PrizeID)
	}
}

func (o *Output) printProgress(p Progress) {
	fmt.Printf("Player: %s\n", p.PlayerID)
	fmt.Printf("Level: %s\n", p.LevelID)
	fmt.Printf("State: %s\n", p.State)
	if p.IsCompleted {
		fmt.Printf("Score: %d\n", p.Score)
	}
	fmt.Printf("Started: %s\n", p.StartedAt)
	if p.Completed != nil {
		fmt.Printf("Completed: %s\n", *p.Completed)
	}
	if p.Grant != nil {
		fmt.Printf("Prize: %s (received %s)\n", p.Grant.PrizeID, p.Grant.Received)
	}
}

func (o *Output) printExportAccepted(e ExportAccepted) {
	fmt.Printf("Export scheduled: %s\n", e.Task)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
