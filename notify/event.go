package notify

import "fmt"

// EventType identifies a tournament lifecycle notification.
type EventType string

const (
	EventTournamentStart EventType = "tournament_start"
	EventTournamentEnd   EventType = "tournament_end"
	EventMatchCreated    EventType = "match_created"
	EventMatchResult     EventType = "match_result"
	EventNextRound       EventType = "next_round"
)

// Event is one logical notification fanned out to every recipient and to
// the tournament's spectator channel. Delivery is fire-and-forget.
type Event struct {
	Type         EventType              `json:"type"`
	TournamentID int                    `json:"tournament_id"`
	Recipients   []int                  `json:"-"`
	Title        string                 `json:"title"`
	Message      string                 `json:"message"`
	Payload      map[string]interface{} `json:"payload,omitempty"`
}

// PlayerChannel is the per-recipient delivery channel name.
func PlayerChannel(playerID int) string {
	return fmt.Sprintf("player:%d", playerID)
}

// TournamentChannel is the spectator channel carrying every event of a
// tournament, keyed the way websocket rooms are.
func TournamentChannel(tournamentID int) string {
	return fmt.Sprintf("tournament:%d", tournamentID)
}
