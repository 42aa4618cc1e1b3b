package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/pmu-edge/internal/database"
	"github.com/yourusername/pmu-edge/internal/models"
)

// PostgresRaceResultRepository implements RaceResultRepository for
// PostgreSQL. Finishers and rapports are stored as JSONB.
type PostgresRaceResultRepository struct {
	db *database.DB
}

// NewPostgresRaceResultRepository creates a new race result repository
func NewPostgresRaceResultRepository(db *database.DB) RaceResultRepository {
	return &PostgresRaceResultRepository{db: db}
}

// Create stores an official race outcome
func (r *PostgresRaceResultRepository) Create(ctx context.Context, result *models.RaceResult) error {
	if len(result.Finishers) == 0 {
		return models.ErrInvalidRaceResult
	}

	finishers, err := json.Marshal(result.Finishers)
	if err != nil {
		return fmt.Errorf("failed to marshal finishers: %w", err)
	}
	rapports, err := json.Marshal(result.Rapports)
	if err != nil {
		return fmt.Errorf("failed to marshal rapports: %w", err)
	}

	query := `
		INSERT INTO race_results (id, race_id, hippodrome, race_number, finishers, rapports)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		result.ID, result.RaceID, result.Hippodrome, result.RaceNumber, finishers, rapports)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrRaceResultDuplicate
		}
		return fmt.Errorf("failed to create race result: %w", err)
	}
	return nil
}

// GetByRaceID retrieves the stored outcome of a race
func (r *PostgresRaceResultRepository) GetByRaceID(ctx context.Context, raceID uuid.UUID) (*models.RaceResult, error) {
	query := `
		SELECT id, race_id, hippodrome, race_number, finishers, rapports, created_at
		FROM race_results
		WHERE race_id = $1
	`

	result := &models.RaceResult{}
	var finishers, rapports []byte
	err := r.db.GetPool().QueryRow(ctx, query, raceID).Scan(
		&result.ID, &result.RaceID, &result.Hippodrome, &result.RaceNumber,
		&finishers, &rapports, &result.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrRaceResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race result: %w", err)
	}

	if err := json.Unmarshal(finishers, &result.Finishers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal finishers: %w", err)
	}
	if err := json.Unmarshal(rapports, &result.Rapports); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rapports: %w", err)
	}
	return result, nil
}
