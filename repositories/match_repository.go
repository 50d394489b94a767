package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/savantarmorer/sb1-kxlgah-sub002/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match references an invalid tournament")
	ErrMatchPlayerInvalid     = errors.New("match references an invalid player")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, round *int) ([]*models.Match, error)
	// Complete records the result and returns false when the match was
	// already completed or cancelled, leaving the row untouched.
	Complete(ctx context.Context, exec SQLExecutor, id int, winnerID, scoreP1, scoreP2 int) (bool, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, round, player1_id, player2_id, score_p1, score_p2,
	status, winner_id, created_at, completed_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(tournament_id, round, player1_id, player2_id, score_p1, score_p2, status, winner_id, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.TournamentID, match.Round, match.Player1ID, match.Player2ID,
		match.ScoreP1, match.ScoreP2, match.Status, match.WinnerID, match.CompletedAt,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`

	match := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&match.ID, &match.TournamentID, &match.Round, &match.Player1ID,
		&match.Player2ID, &match.ScoreP1, &match.ScoreP2, &match.Status,
		&match.WinnerID, &match.CreatedAt, &match.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, round *int) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if round != nil {
		queryBuilder.WriteString(" AND round = $" + strconv.Itoa(len(args)+1))
		args = append(args, *round)
	}
	queryBuilder.WriteString(" ORDER BY round ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		if scanErr := rows.Scan(
			&match.ID, &match.TournamentID, &match.Round, &match.Player1ID,
			&match.Player2ID, &match.ScoreP1, &match.ScoreP2, &match.Status,
			&match.WinnerID, &match.CreatedAt, &match.CompletedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Complete(ctx context.Context, exec SQLExecutor, id int, winnerID, scoreP1, scoreP2 int) (bool, error) {
	executor := r.getExecutor(exec)
	// The status guard makes concurrent duplicate completions lose the
	// race cleanly instead of double-writing the result.
	query := `
		UPDATE matches
		SET score_p1 = $1, score_p2 = $2, winner_id = $3, status = $4, completed_at = now()
		WHERE id = $5 AND status NOT IN ($6, $7)`

	result, err := executor.ExecContext(ctx, query,
		scoreP1, scoreP2, winnerID, models.MatchStatusCompleted,
		id, models.MatchStatusCompleted, models.MatchStatusCancelled,
	)
	if err != nil {
		return false, r.handleMatchError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected > 0, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_player1_id_fkey", "matches_player2_id_fkey", "matches_winner_id_fkey":
			return ErrMatchPlayerInvalid
		}
	}
	return err
}
