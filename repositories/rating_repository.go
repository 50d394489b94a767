package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/savantarmorer/sb1-kxlgah-sub002/models"
)

type RatingRepository interface {
	// GetByPlayer returns the player's rating, or the provisional default
	// record when the player has never played a rated match.
	GetByPlayer(ctx context.Context, playerID int) (*models.Rating, error)
	Save(ctx context.Context, exec SQLExecutor, r *models.Rating) error
	ListTop(ctx context.Context, limit int) ([]models.Rating, error)
}

type postgresRatingRepository struct {
	db *sql.DB
}

func NewPostgresRatingRepository(db *sql.DB) RatingRepository {
	return &postgresRatingRepository{db: db}
}

func (r *postgresRatingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRatingRepository) GetByPlayer(ctx context.Context, playerID int) (*models.Rating, error) {
	query := `
		SELECT player_id, rating, wins, losses, streak, highest_streak, updated_at
		FROM ratings
		WHERE player_id = $1`

	rating := &models.Rating{}
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(
		&rating.PlayerID, &rating.Rating, &rating.Wins, &rating.Losses,
		&rating.Streak, &rating.HighestStreak, &rating.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NewRating(playerID), nil
		}
		return nil, fmt.Errorf("failed to scan rating for player %d: %w", playerID, err)
	}
	return rating, nil
}

func (r *postgresRatingRepository) Save(ctx context.Context, exec SQLExecutor, rating *models.Rating) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO ratings (player_id, rating, wins, losses, streak, highest_streak, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (player_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			streak = EXCLUDED.streak,
			highest_streak = EXCLUDED.highest_streak,
			updated_at = now()`

	if _, err := executor.ExecContext(ctx, query,
		rating.PlayerID, rating.Rating, rating.Wins, rating.Losses,
		rating.Streak, rating.HighestStreak,
	); err != nil {
		return fmt.Errorf("failed to save rating for player %d: %w", rating.PlayerID, err)
	}
	return nil
}

func (r *postgresRatingRepository) ListTop(ctx context.Context, limit int) ([]models.Rating, error) {
	query := `
		SELECT player_id, rating, wins, losses, streak, highest_streak, updated_at
		FROM ratings
		ORDER BY rating DESC, wins DESC, player_id ASC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	ratings := make([]models.Rating, 0, limit)
	for rows.Next() {
		var rating models.Rating
		if scanErr := rows.Scan(
			&rating.PlayerID, &rating.Rating, &rating.Wins, &rating.Losses,
			&rating.Streak, &rating.HighestStreak, &rating.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan rating row: %w", scanErr)
		}
		ratings = append(ratings, rating)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rating rows: %w", err)
	}
	return ratings, nil
}
