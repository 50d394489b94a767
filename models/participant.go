package models

import "time"

type ParticipantStatus string

const (
	ParticipantRegistered ParticipantStatus = "registered"
	ParticipantEliminated ParticipantStatus = "eliminated"
	ParticipantWinner     ParticipantStatus = "winner"
)

// Participant is a player's registration within one tournament.
// Immutable once the tournament completes.
type Participant struct {
	ID            int               `json:"id" db:"id"`
	TournamentID  int               `json:"tournament_id" db:"tournament_id"`
	PlayerID      int               `json:"player_id" db:"player_id"`
	Score         int               `json:"score" db:"score"`
	MatchesPlayed int               `json:"matches_played" db:"matches_played"`
	Status        ParticipantStatus `json:"status" db:"status"`
	JoinedAt      time.Time         `json:"joined_at" db:"joined_at"`
}
