package brackets

import (
	"errors"
	"testing"

	"github.com/savantarmorer/sb1-kxlgah-sub002/models"
)

func playerIDs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = 100 + i
	}
	return ids
}

func TestGenerateInitialPairings_Completeness(t *testing.T) {
	for n := 2; n <= 33; n++ {
		players := playerIDs(n)
		drafts, err := GenerateInitialPairings(7, players)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}

		wantMatches := n / 2
		wantByes := n % 2
		gotByes := 0
		covered := make(map[int]int, n)

		for _, d := range drafts {
			if d.TournamentID != 7 {
				t.Errorf("n=%d: draft tournament id = %d, want 7", n, d.TournamentID)
			}
			if d.Round != 1 {
				t.Errorf("n=%d: draft round = %d, want 1", n, d.Round)
			}
			if d.Status != models.MatchStatusReady {
				t.Errorf("n=%d: draft status = %q, want ready", n, d.Status)
			}
			covered[d.Player1ID]++
			if d.IsBye() {
				gotByes++
			} else {
				covered[*d.Player2ID]++
			}
		}

		if len(drafts)-gotByes != wantMatches {
			t.Errorf("n=%d: got %d full matches, want %d", n, len(drafts)-gotByes, wantMatches)
		}
		if gotByes != wantByes {
			t.Errorf("n=%d: got %d byes, want %d", n, gotByes, wantByes)
		}
		for _, id := range players {
			if covered[id] != 1 {
				t.Errorf("n=%d: player %d appears %d times, want exactly once", n, id, covered[id])
			}
		}
		if len(covered) != n {
			t.Errorf("n=%d: pairings cover %d players, want %d", n, len(covered), n)
		}
	}
}

func TestGenerateInitialPairings_TooFewPlayers(t *testing.T) {
	for _, players := range [][]int{nil, {}, {42}} {
		_, err := GenerateInitialPairings(1, players)
		if !errors.Is(err, ErrInsufficientParticipants) {
			t.Errorf("players=%v: err = %v, want ErrInsufficientParticipants", players, err)
		}
	}
}

func TestGenerateNextRoundPairings(t *testing.T) {
	winners := []int{5, 9, 13}
	drafts, err := GenerateNextRoundPairings(3, winners, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("got %d drafts, want 2 (one match, one bye)", len(drafts))
	}

	byes := 0
	for _, d := range drafts {
		if d.Round != 2 {
			t.Errorf("draft round = %d, want 2", d.Round)
		}
		if d.IsBye() {
			byes++
		}
	}
	if byes != 1 {
		t.Errorf("got %d byes for 3 winners, want 1", byes)
	}
}

func TestGenerateNextRoundPairings_RejectsRoundOne(t *testing.T) {
	if _, err := GenerateNextRoundPairings(3, []int{1, 2}, 1); err == nil {
		t.Fatal("expected error for round < 2")
	}
}

func TestGenerateRound_ByeGoesToLastInShuffleOrder(t *testing.T) {
	// With an odd pool the bye draft is always emitted last, and its
	// player is the trailing element of the shuffled order, so the bye
	// draft must be the final draft in the slice.
	for i := 0; i < 50; i++ {
		drafts, err := GenerateInitialPairings(1, playerIDs(5))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for j, d := range drafts {
			if d.IsBye() && j != len(drafts)-1 {
				t.Fatalf("bye draft at index %d, want last (%d)", j, len(drafts)-1)
			}
		}
	}
}
