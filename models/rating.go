package models

import "time"

// DefaultRating is assigned to players with no recorded matches.
const DefaultRating = 1200

// Rating is a player's global Elo skill record. It is scoped per player,
// not per tournament, and mutated exactly once per completed non-bye match.
type Rating struct {
	PlayerID      int       `json:"player_id" db:"player_id"`
	Rating        int       `json:"rating" db:"rating"`
	Wins          int       `json:"wins" db:"wins"`
	Losses        int       `json:"losses" db:"losses"`
	Streak        int       `json:"streak" db:"streak"`
	HighestStreak int       `json:"highest_streak" db:"highest_streak"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// NewRating returns the provisional record for an unrated player.
func NewRating(playerID int) *Rating {
	return &Rating{PlayerID: playerID, Rating: DefaultRating}
}
