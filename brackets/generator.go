package brackets

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/savantarmorer/sb1-kxlgah-sub002/models"
)

var (
	ErrInsufficientParticipants = errors.New("not enough participants to generate pairings (minimum 2)")
	ErrInvalidPermutation       = errors.New("generated pairings do not cover every participant exactly once")
)

// MatchDraft is an unpersisted pairing for one round. Player2ID == nil
// marks a bye: the draft is created "ready" and the orchestrator resolves
// it as a win for Player1 without gameplay.
type MatchDraft struct {
	TournamentID int
	Round        int
	Player1ID    int
	Player2ID    *int
	Status       models.MatchStatus
}

// IsBye reports whether the draft has no second player.
func (d MatchDraft) IsBye() bool {
	return d.Player2ID == nil
}

// GenerateInitialPairings shuffles the registered players uniformly and
// pairs them consecutively for round 1. An odd pool leaves the last player
// in shuffle order with a bye.
func GenerateInitialPairings(tournamentID int, players []int) ([]MatchDraft, error) {
	return generateRound(tournamentID, players, 1)
}

// GenerateNextRoundPairings pairs the winners of the previous round for
// the given round number. The bye policy is identical to round 1: the
// last winner in shuffle order sits out when their count is odd.
func GenerateNextRoundPairings(tournamentID int, winners []int, round int) ([]MatchDraft, error) {
	if round < 2 {
		return nil, fmt.Errorf("next round number must be at least 2, got %d", round)
	}
	return generateRound(tournamentID, winners, round)
}

func generateRound(tournamentID int, players []int, round int) ([]MatchDraft, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrInsufficientParticipants, len(players))
	}

	shuffled := make([]int, len(players))
	copy(shuffled, players)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	// Determinism is not required, but a broken permutation would corrupt
	// the bracket, so every call is validated against the input set.
	if err := validatePermutation(players, shuffled); err != nil {
		return nil, err
	}

	drafts := make([]MatchDraft, 0, (len(shuffled)+1)/2)
	for i := 0; i+1 < len(shuffled); i += 2 {
		p2 := shuffled[i+1]
		drafts = append(drafts, MatchDraft{
			TournamentID: tournamentID,
			Round:        round,
			Player1ID:    shuffled[i],
			Player2ID:    &p2,
			Status:       models.MatchStatusReady,
		})
	}

	if len(shuffled)%2 == 1 {
		drafts = append(drafts, MatchDraft{
			TournamentID: tournamentID,
			Round:        round,
			Player1ID:    shuffled[len(shuffled)-1],
			Player2ID:    nil,
			Status:       models.MatchStatusReady,
		})
	}

	return drafts, nil
}

func validatePermutation(input, output []int) error {
	if len(input) != len(output) {
		return fmt.Errorf("%w: length mismatch %d vs %d", ErrInvalidPermutation, len(input), len(output))
	}
	seen := make(map[int]int, len(input))
	for _, id := range input {
		seen[id]++
	}
	for _, id := range output {
		seen[id]--
		if seen[id] < 0 {
			return fmt.Errorf("%w: unexpected player %d", ErrInvalidPermutation, id)
		}
	}
	for id, n := range seen {
		if n != 0 {
			return fmt.Errorf("%w: player %d missing from pairings", ErrInvalidPermutation, id)
		}
	}
	return nil
}
