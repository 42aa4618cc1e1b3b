package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/pmu-edge/internal/database"
	"github.com/yourusername/pmu-edge/internal/models"
)

// PostgresStatsRepository implements StatsRepository by aggregating over
// stored performances. Rank IS NOT NULL marks a completed run; rank 0 in
// storage means disqualified or fell.
type PostgresStatsRepository struct {
	db *database.DB
}

// NewPostgresStatsRepository creates a new stats repository
func NewPostgresStatsRepository(db *database.DB) StatsRepository {
	return &PostgresStatsRepository{db: db}
}

const careerStatsQuery = `
	SELECT horse_id,
	       COUNT(*) AS starts,
	       COUNT(*) FILTER (WHERE rank > 0) AS completed,
	       COUNT(*) FILTER (WHERE rank = 1) AS wins,
	       COUNT(*) FILTER (WHERE rank BETWEEN 1 AND 3) AS top3,
	       COALESCE(SUM(gains_race), 0) AS total_earnings
	FROM performances
	WHERE rank IS NOT NULL AND horse_id = ANY($1)
	GROUP BY horse_id
`

// CareerStats aggregates one horse's career
func (r *PostgresStatsRepository) CareerStats(ctx context.Context, horseID string) (models.CareerStats, error) {
	stats, err := r.CareerStatsBatch(ctx, []string{horseID})
	if err != nil {
		return models.CareerStats{}, err
	}
	s, ok := stats[horseID]
	if !ok {
		return models.CareerStats{}, models.ErrNotFound
	}
	return s, nil
}

// CareerStatsBatch aggregates career stats for many horses in one query.
// Horses with no finished races are simply absent from the result.
func (r *PostgresStatsRepository) CareerStatsBatch(ctx context.Context, horseIDs []string) (map[string]models.CareerStats, error) {
	out := make(map[string]models.CareerStats, len(horseIDs))
	if len(horseIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.GetPool().Query(ctx, careerStatsQuery, horseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query career stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var horseID string
		var stats models.CareerStats
		if err := rows.Scan(&horseID, &stats.Starts, &stats.Completed, &stats.Wins, &stats.Top3, &stats.TotalEarnings); err != nil {
			return nil, fmt.Errorf("failed to scan career stats: %w", err)
		}
		out[horseID] = stats
	}
	return out, rows.Err()
}

// JockeyWinRates computes win percentages over finished rides
func (r *PostgresStatsRepository) JockeyWinRates(ctx context.Context, jockeyIDs []int64) (map[int64]float64, error) {
	out := make(map[int64]float64, len(jockeyIDs))
	if len(jockeyIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT jockey_id,
		       100.0 * COUNT(*) FILTER (WHERE rank = 1) / COUNT(*) AS win_rate
		FROM performances
		WHERE rank IS NOT NULL AND rank > 0 AND jockey_id = ANY($1)
		GROUP BY jockey_id
	`

	rows, err := r.db.GetPool().Query(ctx, query, jockeyIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query jockey win rates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var jockeyID int64
		var rate float64
		if err := rows.Scan(&jockeyID, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan jockey win rate: %w", err)
		}
		out[jockeyID] = rate
	}
	return out, rows.Err()
}

// SynergyRates computes the top-3 percentage of jockey/trainer pairings
func (r *PostgresStatsRepository) SynergyRates(ctx context.Context, pairs [][2]int64) (map[[2]int64]float64, error) {
	out := make(map[[2]int64]float64, len(pairs))

	query := `
		SELECT COUNT(*) FILTER (WHERE rank BETWEEN 1 AND 3), COUNT(*)
		FROM performances
		WHERE rank IS NOT NULL AND rank > 0 AND jockey_id = $1 AND trainer_id = $2
	`

	for _, pair := range pairs {
		var top3, total int
		err := r.db.GetPool().QueryRow(ctx, query, pair[0], pair[1]).Scan(&top3, &total)
		if err != nil {
			return nil, fmt.Errorf("failed to query synergy rate for jockey %d trainer %d: %w", pair[0], pair[1], err)
		}
		if total == 0 {
			continue
		}
		out[pair] = 100.0 * float64(top3) / float64(total)
	}
	return out, nil
}
