package rating

import (
	"math"
	"time"

	"github.com/savantarmorer/sb1-kxlgah-sub002/models"
)

// KFactor is the maximum rating swing per match.
const KFactor = 32

// ExpectedScore returns the probability that a player rated ratingA beats
// a player rated ratingB.
func ExpectedScore(ratingA, ratingB int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(ratingB-ratingA)/400.0))
}

// Update applies the Elo formula (K=32, rounded to nearest integer) to the
// winner and loser of a completed match and returns the updated records.
// Inputs are not mutated. Byes and forfeits must not be passed here: with
// no opponent there is nothing to compare against.
func Update(winner, loser models.Rating) (models.Rating, models.Rating) {
	expectedWinner := ExpectedScore(winner.Rating, loser.Rating)
	expectedLoser := 1.0 - expectedWinner

	now := time.Now().UTC()

	winner.Rating = int(math.Round(float64(winner.Rating) + KFactor*(1.0-expectedWinner)))
	winner.Wins++
	if winner.Streak < 0 {
		winner.Streak = 0
	}
	winner.Streak++
	if winner.Streak > winner.HighestStreak {
		winner.HighestStreak = winner.Streak
	}
	winner.UpdatedAt = now

	loser.Rating = int(math.Round(float64(loser.Rating) + KFactor*(0.0-expectedLoser)))
	loser.Losses++
	if loser.Streak > 0 {
		loser.Streak = 0
	}
	loser.Streak--
	loser.UpdatedAt = now

	return winner, loser
}
