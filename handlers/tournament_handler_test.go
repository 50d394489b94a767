package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/savantarmorer/sb1-kxlgah-sub002/models"
	"github.com/savantarmorer/sb1-kxlgah-sub002/services"
)

// stubService returns canned values so handler tests can focus on
// routing, decoding and error translation.
type stubService struct {
	snapshot *models.TournamentSnapshot
	match    *models.Match
	board    []models.Rating
	err      error
}

func (s *stubService) CreateTournament(ctx context.Context, input services.CreateTournamentInput) (*models.Tournament, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &s.snapshot.Tournament, nil
}

func (s *stubService) RegisterPlayer(ctx context.Context, input services.RegisterPlayerInput) (*models.Participant, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Participant{TournamentID: input.TournamentID, PlayerID: input.PlayerID}, nil
}

func (s *stubService) StartTournament(ctx context.Context, tournamentID int) (*models.TournamentSnapshot, error) {
	return s.snapshot, s.err
}

func (s *stubService) CompleteMatch(ctx context.Context, input services.CompleteMatchInput) (*models.Match, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.match, nil
}

func (s *stubService) CancelTournament(ctx context.Context, tournamentID int) error {
	return s.err
}

func (s *stubService) GetTournamentSnapshot(ctx context.Context, tournamentID int) (*models.TournamentSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

func (s *stubService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.match, nil
}

func (s *stubService) GetLeaderboard(ctx context.Context, limit int) ([]models.Rating, error) {
	return s.board, s.err
}

func (s *stubService) AutoStartDueTournaments(ctx context.Context) error {
	return s.err
}

func newTestRouter(svc services.TournamentService) *chi.Mux {
	r := chi.NewRouter()
	th := NewTournamentHandler(svc)
	mh := NewMatchHandler(svc)
	lh := NewLeaderboardHandler(svc)
	r.Get("/tournaments/{tournamentID}", th.GetByIDHandler)
	r.Post("/tournaments/{tournamentID}/start", th.StartHandler)
	r.Get("/matches/{matchID}", mh.GetByIDHandler)
	r.Get("/leaderboard", lh.GetHandler)
	return r
}

func TestGetTournamentByID(t *testing.T) {
	svc := &stubService{snapshot: &models.TournamentSnapshot{
		Tournament: models.Tournament{ID: 7, Name: "Autumn Cup", Status: models.StatusInProgress},
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/tournaments/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q, want application/json", ct)
	}
}

func TestInvalidURLParameter(t *testing.T) {
	router := newTestRouter(&stubService{})

	for _, path := range []string{"/tournaments/abc", "/tournaments/-1", "/matches/zero"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want %d", path, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", services.ErrTournamentNotFound, http.StatusNotFound},
		{"invalid transition", services.ErrInvalidTransition, http.StatusConflict},
		{"insufficient participants", services.ErrInsufficientParticipants, http.StatusBadRequest},
		{"rate limited", services.ErrRateLimited, http.StatusTooManyRequests},
		{"store failure", services.ErrStoreFailure, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&stubService{err: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/tournaments/1/start", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestLeaderboardLimitValidation(t *testing.T) {
	router := newTestRouter(&stubService{board: []models.Rating{}})

	req := httptest.NewRequest(http.MethodGet, "/leaderboard?limit=0", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("limit=0 status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	req = httptest.NewRequest(http.MethodGet, "/leaderboard?limit=25", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("limit=25 status = %d, want %d", rec.Code, http.StatusOK)
	}
}
