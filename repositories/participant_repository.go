package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/savantarmorer/sb1-kxlgah-sub002/models"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantConflict = errors.New("player is already registered for this tournament")
	ErrTournamentCapacity  = errors.New("tournament has reached max participants")
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, tournamentID, playerID int, status models.ParticipantStatus) error
	// EliminateOthers marks every participant except the champion as
	// eliminated in a single statement.
	EliminateOthers(ctx context.Context, exec SQLExecutor, tournamentID, championPlayerID int) error
	// RecordMatchResult bumps matches_played and adds the score earned in
	// one completed match.
	RecordMatchResult(ctx context.Context, exec SQLExecutor, tournamentID, playerID, score int) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a participant only while the tournament is below
// max_participants. The capacity check runs inside the insert statement,
// so two concurrent registrations for the last slot cannot both succeed.
func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants (tournament_id, player_id, status)
		SELECT t.id, $2, $3
		FROM tournaments t
		WHERE t.id = $1
		  AND (SELECT COUNT(*) FROM participants WHERE tournament_id = t.id) < t.max_participants
		RETURNING id, joined_at`

	err := r.db.QueryRowContext(ctx, query, p.TournamentID, p.PlayerID, p.Status).
		Scan(&p.ID, &p.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if exists, existsErr := r.tournamentExists(ctx, p.TournamentID); existsErr == nil && !exists {
				return ErrTournamentNotFound
			}
			return ErrTournamentCapacity
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrParticipantConflict
			case "23503":
				return ErrTournamentNotFound
			}
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) tournamentExists(ctx context.Context, tournamentID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tournaments WHERE id = $1)`, tournamentID).Scan(&exists)
	return exists, err
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	query := `
		SELECT id, tournament_id, player_id, score, matches_played, status, joined_at
		FROM participants
		WHERE tournament_id = $1
		ORDER BY joined_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if scanErr := rows.Scan(
			&p.ID, &p.TournamentID, &p.PlayerID, &p.Score,
			&p.MatchesPlayed, &p.Status, &p.JoinedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		participants = append(participants, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM participants WHERE tournament_id = $1`
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count participants for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresParticipantRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, tournamentID, playerID int, status models.ParticipantStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE participants SET status = $1 WHERE tournament_id = $2 AND player_id = $3`
	result, err := executor.ExecContext(ctx, query, status, tournamentID, playerID)
	if err != nil {
		return fmt.Errorf("failed to update participant status: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) EliminateOthers(ctx context.Context, exec SQLExecutor, tournamentID, championPlayerID int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE participants SET status = $1 WHERE tournament_id = $2 AND player_id <> $3`
	if _, err := executor.ExecContext(ctx, query, models.ParticipantEliminated, tournamentID, championPlayerID); err != nil {
		return fmt.Errorf("failed to eliminate non-champions: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) RecordMatchResult(ctx context.Context, exec SQLExecutor, tournamentID, playerID, score int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE participants
		SET matches_played = matches_played + 1, score = score + $1
		WHERE tournament_id = $2 AND player_id = $3`
	result, err := executor.ExecContext(ctx, query, score, tournamentID, playerID)
	if err != nil {
		return fmt.Errorf("failed to record match result for player %d: %w", playerID, err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}
