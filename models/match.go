package models

import "time"

type MatchStatus string

const (
	MatchStatusPending    MatchStatus = "pending"
	MatchStatusReady      MatchStatus = "ready"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCancelled  MatchStatus = "cancelled"
)

// Match is a single pairing within a bracket round. Player2ID is nil for
// a bye; a completed bye always carries WinnerID == Player1ID.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Round        int         `json:"round" db:"round"`
	Player1ID    int         `json:"player1_id" db:"player1_id"`
	Player2ID    *int        `json:"player2_id,omitempty" db:"player2_id"`
	ScoreP1      int         `json:"score_p1" db:"score_p1"`
	ScoreP2      int         `json:"score_p2" db:"score_p2"`
	Status       MatchStatus `json:"status" db:"status"`
	WinnerID     *int        `json:"winner_id,omitempty" db:"winner_id"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
}

// IsBye reports whether the match has no second player and resolves
// automatically in favor of player one.
func (m *Match) IsBye() bool {
	return m.Player2ID == nil
}

// HasPlayer reports whether playerID occupies either slot.
func (m *Match) HasPlayer(playerID int) bool {
	if m.Player1ID == playerID {
		return true
	}
	return m.Player2ID != nil && *m.Player2ID == playerID
}
