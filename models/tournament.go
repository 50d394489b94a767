package models

import "time"

// TournamentStatus matches the tournament_status ENUM in the database.
type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusInProgress   TournamentStatus = "in_progress"
	StatusFinalRound   TournamentStatus = "final_round"
	StatusCompleted    TournamentStatus = "completed"
	StatusCancelled    TournamentStatus = "cancelled"
)

// IsTerminal reports whether no further status transitions are allowed.
func (s TournamentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsPlayable reports whether match results may still be recorded.
func (s TournamentStatus) IsPlayable() bool {
	return s == StatusInProgress || s == StatusFinalRound
}

// RewardSchedule maps final position (1 = champion) to payout.
type RewardSchedule map[int]int

// Tournament is a single-elimination competition over a registered pool.
// Rows are never deleted; completed tournaments are retained for history.
type Tournament struct {
	ID              int              `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	Description     *string          `json:"description,omitempty" db:"description"`
	Status          TournamentStatus `json:"status" db:"status"`
	MaxParticipants int              `json:"max_participants" db:"max_participants"`
	MinLevel        int              `json:"min_level" db:"min_level"`
	EntryFee        int              `json:"entry_fee" db:"entry_fee"`
	Rewards         RewardSchedule   `json:"rewards,omitempty" db:"rewards"`
	StartDate       time.Time        `json:"start_date" db:"start_date"`
	ChampionID      *int             `json:"champion_id,omitempty" db:"champion_id"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
}

// TournamentSnapshot is the read model served to clients and spectators.
type TournamentSnapshot struct {
	Tournament   Tournament    `json:"tournament"`
	Participants []Participant `json:"participants"`
	Matches      []Match       `json:"matches"`
	CurrentRound int           `json:"current_round"`
}
