package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/savantarmorer/sb1-kxlgah-sub002/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
)

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	SetChampion(ctx context.Context, exec SQLExecutor, id int, championID int) error
	ListDueForStart(ctx context.Context, now time.Time) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, description, status, max_participants, min_level, entry_fee,
	rewards, start_date, champion_id, created_at, updated_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	rewards, err := json.Marshal(t.Rewards)
	if err != nil {
		return fmt.Errorf("failed to encode reward schedule: %w", err)
	}

	query := `
		INSERT INTO tournaments
			(name, description, status, max_participants, min_level, entry_fee, rewards, start_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		t.Name, t.Description, t.Status, t.MaxParticipants, t.MinLevel,
		t.EntryFee, rewards, t.StartDate,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t, err := r.scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1, updated_at = now() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetChampion(ctx context.Context, exec SQLExecutor, id int, championID int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET champion_id = $1, updated_at = now() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, championID, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// ListDueForStart returns registration-phase tournaments whose start date
// has passed, for the auto-start scheduler.
func (r *postgresTournamentRepository) ListDueForStart(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE status = $1 AND start_date <= $2`

	rows, err := r.db.QueryContext(ctx, query, models.StatusRegistration, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments due for start: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		t, scanErr := r.scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan due tournament: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due tournaments: %w", err)
	}
	return tournaments, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresTournamentRepository) scanTournament(row rowScanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	var rewards []byte
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.Status, &t.MaxParticipants,
		&t.MinLevel, &t.EntryFee, &rewards, &t.StartDate, &t.ChampionID,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(rewards) > 0 {
		if err := json.Unmarshal(rewards, &t.Rewards); err != nil {
			return nil, fmt.Errorf("failed to decode reward schedule for tournament %d: %w", t.ID, err)
		}
	}
	return t, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "tournaments_name_key" {
		return ErrTournamentNameConflict
	}
	return err
}
