package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/pmu-edge/internal/database"
	"github.com/yourusername/pmu-edge/internal/models"
)

// PostgresPredictionRecordRepository implements PredictionRecordRepository
// for PostgreSQL. The prediction list is stored as JSONB.
type PostgresPredictionRecordRepository struct {
	db *database.DB
}

// NewPostgresPredictionRecordRepository creates a new prediction record repository
func NewPostgresPredictionRecordRepository(db *database.DB) PredictionRecordRepository {
	return &PostgresPredictionRecordRepository{db: db}
}

// Create stores one prediction run
func (r *PostgresPredictionRecordRepository) Create(ctx context.Context, record *models.PredictionRecord) error {
	payload, err := json.Marshal(record.Predictions)
	if err != nil {
		return fmt.Errorf("failed to marshal predictions: %w", err)
	}

	query := `
		INSERT INTO prediction_records (id, race_id, predictions, scenario_detected)
		VALUES ($1, $2, $3, $4)
	`

	_, err = r.db.GetPool().Exec(ctx, query, record.ID, record.RaceID, payload, record.ScenarioDetected)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create prediction record: %w", err)
	}
	return nil
}

// GetByRaceID retrieves the stored prediction run for a race
func (r *PostgresPredictionRecordRepository) GetByRaceID(ctx context.Context, raceID uuid.UUID) (*models.PredictionRecord, error) {
	query := `
		SELECT id, race_id, predictions, scenario_detected, accuracy_score,
		       top_3_accuracy, winner_rank_predicted, created_at
		FROM prediction_records
		WHERE race_id = $1
	`

	record, err := scanPredictionRecord(r.db.GetPool().QueryRow(ctx, query, raceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction record: %w", err)
	}
	return record, nil
}

// GetUnevaluated retrieves prediction runs created before the cutoff that
// have no accuracy score yet.
func (r *PostgresPredictionRecordRepository) GetUnevaluated(ctx context.Context, before time.Time, limit int) ([]*models.PredictionRecord, error) {
	query := `
		SELECT id, race_id, predictions, scenario_detected, accuracy_score,
		       top_3_accuracy, winner_rank_predicted, created_at
		FROM prediction_records
		WHERE accuracy_score IS NULL AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unevaluated predictions: %w", err)
	}
	defer rows.Close()

	var records []*models.PredictionRecord
	for rows.Next() {
		record, err := scanPredictionRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SetAccuracy records the after-race accuracy of a prediction run
func (r *PostgresPredictionRecordRepository) SetAccuracy(ctx context.Context, id uuid.UUID, accuracy, top3Accuracy float64, winnerRank int) error {
	query := `
		UPDATE prediction_records
		SET accuracy_score = $2, top_3_accuracy = $3, winner_rank_predicted = $4
		WHERE id = $1
	`

	tag, err := r.db.GetPool().Exec(ctx, query, id, accuracy, top3Accuracy, winnerRank)
	if err != nil {
		return fmt.Errorf("failed to set prediction accuracy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanPredictionRecord(row pgx.Row) (*models.PredictionRecord, error) {
	record := &models.PredictionRecord{}
	var payload []byte
	err := row.Scan(
		&record.ID, &record.RaceID, &payload, &record.ScenarioDetected,
		&record.AccuracyScore, &record.Top3Accuracy, &record.WinnerRankPredicted,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &record.Predictions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal predictions: %w", err)
	}
	return record, nil
}
