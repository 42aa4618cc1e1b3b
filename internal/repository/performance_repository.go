package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/pmu-edge/internal/database"
	"github.com/yourusername/pmu-edge/internal/models"
)

const errScanPerformance = "failed to scan performance: %w"

const performanceColumns = `id, race_id, horse_id, horse_name, jockey_id, trainer_id, rank,
	       weight, draw, raw_musique, odds_ref, gains_race, created_at, updated_at`

// PostgresPerformanceRepository implements PerformanceRepository for PostgreSQL
type PostgresPerformanceRepository struct {
	db *database.DB
}

// NewPostgresPerformanceRepository creates a new performance repository
func NewPostgresPerformanceRepository(db *database.DB) PerformanceRepository {
	return &PostgresPerformanceRepository{db: db}
}

// CreateBatch inserts a race's entrants in one transaction. Conflicting
// rows (same race and horse) are updated in place so re-ingesting a program
// refreshes odds and musique.
func (r *PostgresPerformanceRepository) CreateBatch(ctx context.Context, perfs []*models.Performance) error {
	if len(perfs) == 0 {
		return nil
	}

	query := `
		INSERT INTO performances (id, race_id, horse_id, horse_name, jockey_id, trainer_id,
		                          rank, weight, draw, raw_musique, odds_ref, gains_race)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (race_id, horse_id) DO UPDATE SET
			jockey_id = EXCLUDED.jockey_id,
			trainer_id = EXCLUDED.trainer_id,
			weight = EXCLUDED.weight,
			draw = EXCLUDED.draw,
			raw_musique = EXCLUDED.raw_musique,
			odds_ref = EXCLUDED.odds_ref,
			gains_race = EXCLUDED.gains_race,
			updated_at = NOW()
	`

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, perf := range perfs {
			_, err := tx.Exec(ctx, query,
				perf.ID, perf.RaceID, perf.HorseID, perf.HorseName, perf.JockeyID,
				perf.TrainerID, perf.Rank, perf.Weight, perf.Draw, perf.RawMusique,
				perf.OddsRef, perf.GainsRace,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert performance for horse %s: %w", perf.HorseID, err)
			}
		}
		return nil
	})
}

// GetByRaceID retrieves all entrants for a race
func (r *PostgresPerformanceRepository) GetByRaceID(ctx context.Context, raceID uuid.UUID) ([]*models.Performance, error) {
	query := `
		SELECT ` + performanceColumns + `
		FROM performances
		WHERE race_id = $1
		ORDER BY horse_id
	`

	rows, err := r.db.GetPool().Query(ctx, query, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query performances: %w", err)
	}
	defer rows.Close()

	return scanPerformances(rows)
}

// GetByHorseID retrieves a horse's most recent performances
func (r *PostgresPerformanceRepository) GetByHorseID(ctx context.Context, horseID string, limit int) ([]*models.Performance, error) {
	query := `
		SELECT ` + performanceColumns + `
		FROM performances
		WHERE horse_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, horseID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query horse performances: %w", err)
	}
	defer rows.Close()

	return scanPerformances(rows)
}

// SetRank records a horse's official finishing position after the race
func (r *PostgresPerformanceRepository) SetRank(ctx context.Context, raceID uuid.UUID, horseID string, rank int) error {
	tag, err := r.db.GetPool().Exec(ctx,
		`UPDATE performances SET rank = $3, updated_at = NOW() WHERE race_id = $1 AND horse_id = $2`,
		raceID, horseID, rank)
	if err != nil {
		return fmt.Errorf("failed to set rank: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanPerformances(rows pgx.Rows) ([]*models.Performance, error) {
	var perfs []*models.Performance
	for rows.Next() {
		perf := &models.Performance{}
		err := rows.Scan(
			&perf.ID, &perf.RaceID, &perf.HorseID, &perf.HorseName, &perf.JockeyID,
			&perf.TrainerID, &perf.Rank, &perf.Weight, &perf.Draw, &perf.RawMusique,
			&perf.OddsRef, &perf.GainsRace, &perf.CreatedAt, &perf.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanPerformance, err)
		}
		perfs = append(perfs, perf)
	}
	return perfs, rows.Err()
}
