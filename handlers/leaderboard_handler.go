package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/savantarmorer/sb1-kxlgah-sub002/services"
)

type LeaderboardHandler struct {
	tournamentService services.TournamentService
}

func NewLeaderboardHandler(ts services.TournamentService) *LeaderboardHandler {
	return &LeaderboardHandler{tournamentService: ts}
}

// GetHandler handles GET /leaderboard?limit=N.
func (h *LeaderboardHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 || n > 500 {
			badRequestResponse(w, r, errors.New("limit must be an integer between 1 and 500"))
			return
		}
		limit = n
	}

	board, err := h.tournamentService.GetLeaderboard(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": board}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
