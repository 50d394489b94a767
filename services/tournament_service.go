package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/savantarmorer/sb1-kxlgah-sub002/brackets"
	"github.com/savantarmorer/sb1-kxlgah-sub002/cache"
	"github.com/savantarmorer/sb1-kxlgah-sub002/models"
	"github.com/savantarmorer/sb1-kxlgah-sub002/notify"
	"github.com/savantarmorer/sb1-kxlgah-sub002/ratelimit"
	"github.com/savantarmorer/sb1-kxlgah-sub002/rating"
	"github.com/savantarmorer/sb1-kxlgah-sub002/repositories"
)

// Every store call made by a public operation is bounded by this timeout;
// a timed-out transition fails like any other store failure.
const storeOpTimeout = 5 * time.Second

const defaultLeaderboardSize = 50

// Archiver preserves completed tournaments in long-term storage.
// Archiving is best-effort and never blocks a transition.
type Archiver interface {
	ArchiveTournament(ctx context.Context, snap *models.TournamentSnapshot) error
}

type CreateTournamentInput struct {
	Name            string                `json:"name"`
	Description     *string               `json:"description"`
	MaxParticipants int                   `json:"max_participants"`
	MinLevel        int                   `json:"min_level"`
	EntryFee        int                   `json:"entry_fee"`
	Rewards         models.RewardSchedule `json:"rewards"`
	StartDate       time.Time             `json:"start_date"`
}

type RegisterPlayerInput struct {
	TournamentID int `json:"-"`
	PlayerID     int `json:"-"`
	Level        int `json:"level"`
}

type CompleteMatchInput struct {
	MatchID  int `json:"-"`
	WinnerID int `json:"winner_id"`
	ScoreP1  int `json:"score_p1"`
	ScoreP2  int `json:"score_p2"`
}

// TournamentService orchestrates the tournament lifecycle: registration,
// bracket generation, round advancement, rating updates and completion.
type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	RegisterPlayer(ctx context.Context, input RegisterPlayerInput) (*models.Participant, error)
	StartTournament(ctx context.Context, tournamentID int) (*models.TournamentSnapshot, error)
	CompleteMatch(ctx context.Context, input CompleteMatchInput) (*models.Match, error)
	CancelTournament(ctx context.Context, tournamentID int) error
	GetTournamentSnapshot(ctx context.Context, tournamentID int) (*models.TournamentSnapshot, error)
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	GetLeaderboard(ctx context.Context, limit int) ([]models.Rating, error)
	AutoStartDueTournaments(ctx context.Context) error
}

type tournamentService struct {
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	ratingRepo      repositories.RatingRepository
	tx              repositories.TxManager

	cache    cache.Cache
	fanout   *notify.Fanout
	limiter  ratelimit.Limiter
	archiver Archiver
	logger   *slog.Logger

	// advancement serializes the "round complete → next round" decision
	// per tournament; ratingLocks serialize read-modify-write per player
	// across tournaments.
	advancement *keyedMutex
	ratingLocks *keyedMutex
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	ratingRepo repositories.RatingRepository,
	tx repositories.TxManager,
	c cache.Cache,
	fanout *notify.Fanout,
	limiter ratelimit.Limiter,
	archiver Archiver,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		ratingRepo:      ratingRepo,
		tx:              tx,
		cache:           c,
		fanout:          fanout,
		limiter:         limiter,
		archiver:        archiver,
		logger:          logger,
		advancement:     newKeyedMutex(),
		ratingLocks:     newKeyedMutex(),
	}
}

func tournamentCacheKey(id int) string { return fmt.Sprintf("tournament:%d", id) }
func matchCacheKey(id int) string      { return fmt.Sprintf("match:%d", id) }

// The leaderboard is cached once at full size and sliced per request, so
// a rating mutation has a single key to invalidate.
const leaderboardCacheKey = "leaderboard"

func wrapStore(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreFailure, err)
}

func (s *tournamentService) getTournament(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, wrapStore(err)
	}
	return t, nil
}

// CreateTournament validates and persists a new tournament in the
// registration state.
func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if input.MaxParticipants < 2 {
		return nil, fmt.Errorf("%w: max_participants must be at least 2", ErrValidationFailed)
	}
	if input.MinLevel < 0 || input.EntryFee < 0 {
		return nil, fmt.Errorf("%w: min_level and entry_fee must not be negative", ErrValidationFailed)
	}
	if input.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start_date is required", ErrValidationFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	t := &models.Tournament{
		Name:            input.Name,
		Description:     input.Description,
		Status:          models.StatusRegistration,
		MaxParticipants: input.MaxParticipants,
		MinLevel:        input.MinLevel,
		EntryFee:        input.EntryFee,
		Rewards:         input.Rewards,
		StartDate:       input.StartDate,
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, wrapStore(err)
	}

	s.logger.Info("tournament created",
		slog.Int("tournament_id", t.ID), slog.String("name", t.Name))
	return t, nil
}

// RegisterPlayer adds a player to a registration-phase tournament and
// auto-starts it once capacity is reached or the start date has passed
// with at least two players registered.
func (s *tournamentService) RegisterPlayer(ctx context.Context, input RegisterPlayerInput) (*models.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	t, err := s.getTournament(ctx, input.TournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.StatusRegistration {
		return nil, fmt.Errorf("%w: registration is closed (status %s)", ErrInvalidTransition, t.Status)
	}
	if input.Level < t.MinLevel {
		return nil, fmt.Errorf("%w: level %d, required %d", ErrLevelTooLow, input.Level, t.MinLevel)
	}

	count, err := s.participantRepo.CountByTournament(ctx, t.ID)
	if err != nil {
		return nil, wrapStore(err)
	}
	if count >= t.MaxParticipants {
		return nil, ErrTournamentFull
	}

	p := &models.Participant{
		TournamentID: t.ID,
		PlayerID:     input.PlayerID,
		Status:       models.ParticipantRegistered,
	}
	if err := s.participantRepo.Create(ctx, p); err != nil {
		switch {
		case errors.Is(err, repositories.ErrParticipantConflict):
			return nil, ErrAlreadyRegistered
		case errors.Is(err, repositories.ErrTournamentCapacity):
			// Lost the last slot to a concurrent registration; the insert
			// itself enforces capacity.
			return nil, ErrTournamentFull
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		default:
			return nil, wrapStore(err)
		}
	}

	s.cache.Invalidate(tournamentCacheKey(t.ID))

	count++
	if count >= t.MaxParticipants || (count >= 2 && !time.Now().Before(t.StartDate)) {
		if _, err := s.StartTournament(context.WithoutCancel(ctx), t.ID); err != nil {
			// Registration itself succeeded; a failed auto-start (raced
			// start, rate limit) is recoverable by the scheduler.
			s.logger.Warn("auto-start after registration failed",
				slog.Int("tournament_id", t.ID), slog.Any("error", err))
		}
	}
	return p, nil
}

// StartTournament generates round 1 and moves the tournament out of
// registration. Valid only from the registration state, rate limited per
// tournament id.
func (s *tournamentService) StartTournament(ctx context.Context, tournamentID int) (*models.TournamentSnapshot, error) {
	if !s.limiter.Allow(fmt.Sprintf("start:%d", tournamentID)) {
		return nil, ErrRateLimited
	}

	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	var events []notify.Event

	unlock := s.advancement.Lock(tournamentID)
	snap, err := func() (*models.TournamentSnapshot, error) {
		defer unlock()

		t, err := s.getTournament(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		if t.Status != models.StatusRegistration {
			return nil, fmt.Errorf("%w: cannot start from status %s", ErrInvalidTransition, t.Status)
		}

		participants, err := s.participantRepo.ListByTournament(ctx, t.ID)
		if err != nil {
			return nil, wrapStore(err)
		}
		playerIDs := make([]int, 0, len(participants))
		for _, p := range participants {
			playerIDs = append(playerIDs, p.PlayerID)
		}
		if len(playerIDs) < 2 {
			return nil, fmt.Errorf("%w: found %d", ErrInsufficientParticipants, len(playerIDs))
		}

		drafts, err := brackets.GenerateInitialPairings(t.ID, playerIDs)
		if err != nil {
			if errors.Is(err, brackets.ErrInsufficientParticipants) {
				return nil, ErrInsufficientParticipants
			}
			return nil, err
		}

		// Two registrants make round 1 the final.
		startStatus := models.StatusInProgress
		if len(drafts) == 1 {
			startStatus = models.StatusFinalRound
		}
		created, err := s.persistRound(ctx, t.ID, drafts, startStatus)
		if err != nil {
			return nil, err
		}
		t.Status = startStatus

		events = append(events, notify.Event{
			Type:         notify.EventTournamentStart,
			TournamentID: t.ID,
			Recipients:   playerIDs,
			Title:        "Tournament started",
			Message:      fmt.Sprintf("%s has begun. Round 1 pairings are in.", t.Name),
			Payload:      map[string]interface{}{"round": 1, "participants": len(playerIDs)},
		})
		events = append(events, matchCreatedEvents(created)...)

		s.cache.Invalidate(tournamentCacheKey(t.ID))
		snap, err := s.loadSnapshot(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		s.cache.Set(tournamentCacheKey(t.ID), snap, cache.TournamentTTL)
		return snap, nil
	}()
	if err != nil {
		return nil, err
	}

	// Notifications fire only after the advancement lock is released.
	s.fanout.NotifyAll(events)
	return snap, nil
}

// persistRound writes all drafts of one round and the tournament status in
// a single transaction, resolving byes as automatic wins for player one.
// Round creation is all-or-nothing: any store error rolls everything back.
func (s *tournamentService) persistRound(ctx context.Context, tournamentID int, drafts []brackets.MatchDraft, status models.TournamentStatus) ([]*models.Match, error) {
	created := make([]*models.Match, 0, len(drafts))
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, d := range drafts {
			m := &models.Match{
				TournamentID: d.TournamentID,
				Round:        d.Round,
				Player1ID:    d.Player1ID,
				Player2ID:    d.Player2ID,
				Status:       d.Status,
			}
			if err := s.matchRepo.Create(ctx, exec, m); err != nil {
				return err
			}
			if m.IsBye() {
				updated, err := s.matchRepo.Complete(ctx, exec, m.ID, m.Player1ID, 0, 0)
				if err != nil {
					return err
				}
				if updated {
					winnerID := m.Player1ID
					m.Status = models.MatchStatusCompleted
					m.WinnerID = &winnerID
				}
			}
			created = append(created, m)
		}
		return s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, status)
	})
	if err != nil {
		return nil, wrapStore(err)
	}
	return created, nil
}

func matchCreatedEvents(created []*models.Match) []notify.Event {
	events := make([]notify.Event, 0, len(created))
	for _, m := range created {
		if m.IsBye() {
			continue
		}
		events = append(events, notify.Event{
			Type:         notify.EventMatchCreated,
			TournamentID: m.TournamentID,
			Recipients:   []int{m.Player1ID, *m.Player2ID},
			Title:        "New match",
			Message:      fmt.Sprintf("You have been paired for round %d.", m.Round),
			Payload: map[string]interface{}{
				"match_id": m.ID,
				"round":    m.Round,
			},
		})
	}
	return events
}

// CompleteMatch records a match result. Completing an already-completed
// match is a no-op returning the stored result; ratings are written in
// the same transaction as the result, so they apply exactly once and a
// failed rating write leaves the match completable. Whichever completion
// observes the round fully finished advances the bracket or completes
// the tournament.
func (s *tournamentService) CompleteMatch(ctx context.Context, input CompleteMatchInput) (*models.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	m, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, wrapStore(err)
	}
	if m.Status == models.MatchStatusCompleted {
		return m, nil
	}
	if m.Status == models.MatchStatusCancelled {
		return nil, fmt.Errorf("%w: match is cancelled", ErrInvalidTransition)
	}
	if !m.HasPlayer(input.WinnerID) {
		return nil, ErrInvalidWinner
	}

	t, err := s.getTournament(ctx, m.TournamentID)
	if err != nil {
		return nil, err
	}
	if !t.Status.IsPlayable() {
		return nil, fmt.Errorf("%w: tournament status is %s", ErrInvalidTransition, t.Status)
	}

	var updated bool
	var ratedWinner, ratedLoser *models.Rating
	err = func() error {
		if !m.IsBye() {
			loserID := m.Player1ID
			if loserID == input.WinnerID {
				loserID = *m.Player2ID
			}
			// Ordered pair locking so overlapping matches in other
			// tournaments cannot lose rating updates.
			unlock := s.ratingLocks.LockPair(input.WinnerID, loserID)
			defer unlock()

			winnerRating, err := s.ratingRepo.GetByPlayer(ctx, input.WinnerID)
			if err != nil {
				return err
			}
			loserRating, err := s.ratingRepo.GetByPlayer(ctx, loserID)
			if err != nil {
				return err
			}
			w, l := rating.Update(*winnerRating, *loserRating)
			ratedWinner, ratedLoser = &w, &l
		}

		return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			var txErr error
			updated, txErr = s.matchRepo.Complete(ctx, exec, m.ID, input.WinnerID, input.ScoreP1, input.ScoreP2)
			if txErr != nil || !updated {
				return txErr
			}
			if txErr = s.participantRepo.RecordMatchResult(ctx, exec, m.TournamentID, m.Player1ID, input.ScoreP1); txErr != nil {
				return txErr
			}
			if m.Player2ID != nil {
				if txErr = s.participantRepo.RecordMatchResult(ctx, exec, m.TournamentID, *m.Player2ID, input.ScoreP2); txErr != nil {
					return txErr
				}
			}
			if ratedWinner != nil {
				if txErr = s.ratingRepo.Save(ctx, exec, ratedWinner); txErr != nil {
					return txErr
				}
				return s.ratingRepo.Save(ctx, exec, ratedLoser)
			}
			return nil
		})
	}()
	if err != nil {
		return nil, wrapStore(err)
	}

	if !updated {
		// Lost the race to a concurrent duplicate; hand back its result.
		existing, err := s.matchRepo.GetByID(ctx, m.ID)
		if err != nil {
			return nil, wrapStore(err)
		}
		return existing, nil
	}

	events := []notify.Event{s.matchResultEvent(m, input)}

	if ratedWinner != nil {
		s.cache.Invalidate(leaderboardCacheKey)
	}

	advEvents, err := s.checkAndAdvance(ctx, t)
	if err != nil {
		return nil, err
	}
	events = append(events, advEvents...)

	s.cache.Invalidate(matchCacheKey(m.ID))
	s.cache.Invalidate(tournamentCacheKey(m.TournamentID))

	s.fanout.NotifyAll(events)

	completed, err := s.matchRepo.GetByID(ctx, m.ID)
	if err != nil {
		return nil, wrapStore(err)
	}
	return completed, nil
}

func (s *tournamentService) matchResultEvent(m *models.Match, input CompleteMatchInput) notify.Event {
	recipients := []int{m.Player1ID}
	if m.Player2ID != nil {
		recipients = append(recipients, *m.Player2ID)
	}
	return notify.Event{
		Type:         notify.EventMatchResult,
		TournamentID: m.TournamentID,
		Recipients:   recipients,
		Title:        "Match finished",
		Message:      fmt.Sprintf("Round %d match has been decided.", m.Round),
		Payload: map[string]interface{}{
			"match_id":  m.ID,
			"round":     m.Round,
			"winner_id": input.WinnerID,
			"score_p1":  input.ScoreP1,
			"score_p2":  input.ScoreP2,
		},
	}
}

// checkAndAdvance decides, under the per-tournament advancement lock,
// whether the current round is finished and either generates the next
// round or completes the tournament. The completion condition is
// re-checked from the store after acquiring the lock, so concurrent
// completions of the last two matches can never both generate a round.
func (s *tournamentService) checkAndAdvance(ctx context.Context, t *models.Tournament) ([]notify.Event, error) {
	unlock := s.advancement.Lock(t.ID)
	defer unlock()

	var events []notify.Event
	for {
		matches, err := s.matchRepo.ListByTournament(ctx, t.ID, nil)
		if err != nil {
			return events, wrapStore(err)
		}

		currentRound := 0
		for _, m := range matches {
			if m.Round > currentRound {
				currentRound = m.Round
			}
			if m.Status != models.MatchStatusCompleted && m.Status != models.MatchStatusCancelled {
				return events, nil // round still running
			}
		}

		winners := make([]int, 0)
		for _, m := range matches {
			if m.Round == currentRound && m.Status == models.MatchStatusCompleted && m.WinnerID != nil {
				winners = append(winners, *m.WinnerID)
			}
		}

		if len(winners) <= 1 {
			finishEvents, err := s.finishTournament(ctx, t, winners)
			return append(events, finishEvents...), err
		}

		drafts, err := brackets.GenerateNextRoundPairings(t.ID, winners, currentRound+1)
		if err != nil {
			return events, err
		}

		nextStatus := t.Status
		if len(drafts) == 1 {
			nextStatus = models.StatusFinalRound
		}
		created, err := s.persistRound(ctx, t.ID, drafts, nextStatus)
		if err != nil {
			return events, err
		}
		t.Status = nextStatus

		events = append(events, notify.Event{
			Type:         notify.EventNextRound,
			TournamentID: t.ID,
			Recipients:   winners,
			Title:        "Next round",
			Message:      fmt.Sprintf("Round %d is ready.", currentRound+1),
			Payload:      map[string]interface{}{"round": currentRound + 1},
		})
		events = append(events, matchCreatedEvents(created)...)
		s.cache.Invalidate(tournamentCacheKey(t.ID))

		// A new round containing a bye resolves it immediately; loop to
		// re-check in case only byes remained unplayed.
	}
}

// finishTournament crowns the champion, finalizes participant statuses
// and archives the completed bracket. With no decided winner left (every
// remaining match cancelled) the highest-score participant wins the
// tie-break.
func (s *tournamentService) finishTournament(ctx context.Context, t *models.Tournament, winners []int) ([]notify.Event, error) {
	participants, err := s.participantRepo.ListByTournament(ctx, t.ID)
	if err != nil {
		return nil, wrapStore(err)
	}

	var championID int
	if len(winners) == 1 {
		championID = winners[0]
	} else {
		for _, p := range participants {
			if championID == 0 || p.Score > participantScore(participants, championID) {
				championID = p.PlayerID
			}
		}
		if championID == 0 {
			return nil, fmt.Errorf("%w: tournament %d has no participants to crown", ErrInvalidTransition, t.ID)
		}
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.UpdateStatus(ctx, exec, t.ID, models.StatusCompleted); err != nil {
			return err
		}
		if err := s.tournamentRepo.SetChampion(ctx, exec, t.ID, championID); err != nil {
			return err
		}
		if err := s.participantRepo.UpdateStatus(ctx, exec, t.ID, championID, models.ParticipantWinner); err != nil {
			return err
		}
		return s.participantRepo.EliminateOthers(ctx, exec, t.ID, championID)
	})
	if err != nil {
		return nil, wrapStore(err)
	}
	t.Status = models.StatusCompleted
	t.ChampionID = &championID

	s.cache.Invalidate(tournamentCacheKey(t.ID))
	s.archive(t.ID)

	events := []notify.Event{{
		Type:         notify.EventTournamentEnd,
		TournamentID: t.ID,
		Recipients:   []int{championID},
		Title:        "Champion!",
		Message:      fmt.Sprintf("You won %s.", t.Name),
		Payload: map[string]interface{}{
			"champion": true,
			"payout":   t.Rewards[1],
		},
	}}

	losers := make([]int, 0, len(participants))
	for _, p := range participants {
		if p.PlayerID != championID {
			losers = append(losers, p.PlayerID)
		}
	}
	if len(losers) > 0 {
		events = append(events, notify.Event{
			Type:         notify.EventTournamentEnd,
			TournamentID: t.ID,
			Recipients:   losers,
			Title:        "Tournament over",
			Message:      fmt.Sprintf("%s has ended. Better luck next time.", t.Name),
			Payload:      map[string]interface{}{"champion": false},
		})
	}

	s.logger.Info("tournament completed",
		slog.Int("tournament_id", t.ID), slog.Int("champion_id", championID))
	return events, nil
}

func participantScore(participants []*models.Participant, playerID int) int {
	for _, p := range participants {
		if p.PlayerID == playerID {
			return p.Score
		}
	}
	return 0
}

// archive uploads the final snapshot off the request path. Failures are
// logged; history stays available in the relational store regardless.
func (s *tournamentService) archive(tournamentID int) {
	if s.archiver == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		snap, err := s.loadSnapshot(ctx, tournamentID)
		if err != nil {
			s.logger.Warn("archive snapshot load failed",
				slog.Int("tournament_id", tournamentID), slog.Any("error", err))
			return
		}
		if err := s.archiver.ArchiveTournament(ctx, snap); err != nil {
			s.logger.Warn("tournament archive upload failed",
				slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		}
	}()
}

// CancelTournament administratively cancels a tournament that has not
// finished. Completed and cancelled tournaments never regress.
func (s *tournamentService) CancelTournament(ctx context.Context, tournamentID int) error {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	unlock := s.advancement.Lock(tournamentID)
	defer unlock()

	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if t.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot cancel from status %s", ErrInvalidTransition, t.Status)
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournamentID, models.StatusCancelled); err != nil {
		return wrapStore(err)
	}
	s.cache.Invalidate(tournamentCacheKey(tournamentID))
	s.logger.Info("tournament cancelled", slog.Int("tournament_id", tournamentID))
	return nil
}

// GetTournamentSnapshot serves the cached read model, falling back to the
// store and repopulating the cache on a miss.
func (s *tournamentService) GetTournamentSnapshot(ctx context.Context, tournamentID int) (*models.TournamentSnapshot, error) {
	if v, ok := s.cache.Get(tournamentCacheKey(tournamentID)); ok {
		if snap, ok := v.(*models.TournamentSnapshot); ok {
			return snap, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	snap, err := s.loadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(tournamentCacheKey(tournamentID), snap, cache.TournamentTTL)
	return snap, nil
}

// loadSnapshot assembles the read model with participants and matches
// fetched in parallel.
func (s *tournamentService) loadSnapshot(ctx context.Context, tournamentID int) (*models.TournamentSnapshot, error) {
	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	snap := &models.TournamentSnapshot{Tournament: *t}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		participants, err := s.participantRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return err
		}
		snap.Participants = make([]models.Participant, len(participants))
		for i, p := range participants {
			snap.Participants[i] = *p
		}
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, tournamentID, nil)
		if err != nil {
			return err
		}
		snap.Matches = make([]models.Match, len(matches))
		for i, m := range matches {
			snap.Matches[i] = *m
			if m.Round > snap.CurrentRound {
				snap.CurrentRound = m.Round
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, wrapStore(err)
	}
	return snap, nil
}

// GetMatch serves a single match through the short-TTL match cache.
func (s *tournamentService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	if v, ok := s.cache.Get(matchCacheKey(matchID)); ok {
		if m, ok := v.(*models.Match); ok {
			return m, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	m, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, wrapStore(err)
	}
	s.cache.Set(matchCacheKey(matchID), m, cache.MatchTTL)
	return m, nil
}

// GetLeaderboard returns the top global ratings, cached briefly. The
// full-size board is cached once and sliced per request; oversized
// requests bypass the cache.
func (s *tournamentService) GetLeaderboard(ctx context.Context, limit int) ([]models.Rating, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}

	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	if limit > defaultLeaderboardSize {
		ratings, err := s.ratingRepo.ListTop(ctx, limit)
		if err != nil {
			return nil, wrapStore(err)
		}
		return ratings, nil
	}

	if v, ok := s.cache.Get(leaderboardCacheKey); ok {
		if board, ok := v.([]models.Rating); ok {
			return topOfBoard(board, limit), nil
		}
	}

	board, err := s.ratingRepo.ListTop(ctx, defaultLeaderboardSize)
	if err != nil {
		return nil, wrapStore(err)
	}
	s.cache.Set(leaderboardCacheKey, board, cache.LeaderboardTTL)
	return topOfBoard(board, limit), nil
}

func topOfBoard(board []models.Rating, limit int) []models.Rating {
	if len(board) > limit {
		return board[:limit:limit]
	}
	return board
}

// AutoStartDueTournaments starts every registration-phase tournament
// whose start date has passed and that has enough players. Run
// periodically by the scheduler in main.
func (s *tournamentService) AutoStartDueTournaments(ctx context.Context) error {
	listCtx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	due, err := s.tournamentRepo.ListDueForStart(listCtx, time.Now())
	cancel()
	if err != nil {
		return wrapStore(err)
	}

	for _, t := range due {
		if _, err := s.StartTournament(ctx, t.ID); err != nil {
			if errors.Is(err, ErrInsufficientParticipants) || errors.Is(err, ErrRateLimited) || errors.Is(err, ErrInvalidTransition) {
				s.logger.Debug("auto-start skipped",
					slog.Int("tournament_id", t.ID), slog.Any("reason", err))
				continue
			}
			return err
		}
		s.logger.Info("tournament auto-started", slog.Int("tournament_id", t.ID))
	}
	return nil
}
