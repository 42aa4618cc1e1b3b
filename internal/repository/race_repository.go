package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/pmu-edge/internal/database"
	"github.com/yourusername/pmu-edge/internal/models"
)

const errScanRace = "failed to scan race: %w"

const raceColumns = `id, race_date, race_code, reunion_number, course_number,
	       hippodrome, discipline, distance, status, created_at, updated_at`

// PostgresRaceRepository implements RaceRepository for PostgreSQL
type PostgresRaceRepository struct {
	db *database.DB
}

// NewPostgresRaceRepository creates a new race repository
func NewPostgresRaceRepository(db *database.DB) RaceRepository {
	return &PostgresRaceRepository{db: db}
}

// Create inserts a new race
func (r *PostgresRaceRepository) Create(ctx context.Context, race *models.Race) error {
	query := `
		INSERT INTO races (id, race_date, race_code, reunion_number, course_number,
		                   hippodrome, discipline, distance, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		race.ID, race.RaceDate, race.RaceCode, race.ReunionNumber, race.CourseNumber,
		race.Hippodrome, race.Discipline, race.Distance, race.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create race: %w", err)
	}

	return nil
}

// GetByID retrieves a race by ID
func (r *PostgresRaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE id = $1`

	race := &models.Race{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&race.ID, &race.RaceDate, &race.RaceCode, &race.ReunionNumber, &race.CourseNumber,
		&race.Hippodrome, &race.Discipline, &race.Distance, &race.Status,
		&race.CreatedAt, &race.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race: %w", err)
	}

	return race, nil
}

// GetByCode retrieves a race by its date and R/C code (e.g. "R1C3")
func (r *PostgresRaceRepository) GetByCode(ctx context.Context, date time.Time, raceCode string) (*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE race_date::date = $1::date AND race_code = $2`

	race := &models.Race{}
	err := r.db.GetPool().QueryRow(ctx, query, date, raceCode).Scan(
		&race.ID, &race.RaceDate, &race.RaceCode, &race.ReunionNumber, &race.CourseNumber,
		&race.Hippodrome, &race.Discipline, &race.Distance, &race.Status,
		&race.CreatedAt, &race.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race by code: %w", err)
	}

	return race, nil
}

// GetByDate retrieves all races scheduled on a given day
func (r *PostgresRaceRepository) GetByDate(ctx context.Context, date time.Time) ([]*models.Race, error) {
	query := `
		SELECT ` + raceColumns + `
		FROM races
		WHERE race_date::date = $1::date
		ORDER BY reunion_number, course_number
	`

	rows, err := r.db.GetPool().Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query races by date: %w", err)
	}
	defer rows.Close()

	return scanRaces(rows)
}

// GetUpcoming retrieves scheduled races ordered by start time
func (r *PostgresRaceRepository) GetUpcoming(ctx context.Context, limit int) ([]*models.Race, error) {
	query := `
		SELECT ` + raceColumns + `
		FROM races
		WHERE status = 'scheduled' AND race_date > NOW()
		ORDER BY race_date ASC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming races: %w", err)
	}
	defer rows.Close()

	return scanRaces(rows)
}

// UpdateStatus transitions a race to a new status
func (r *PostgresRaceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.db.GetPool().Exec(ctx,
		`UPDATE races SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update race status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes a race and its dependent rows
func (r *PostgresRaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.GetPool().Exec(ctx, `DELETE FROM races WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete race: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanRaces(rows pgx.Rows) ([]*models.Race, error) {
	var races []*models.Race
	for rows.Next() {
		race := &models.Race{}
		err := rows.Scan(
			&race.ID, &race.RaceDate, &race.RaceCode, &race.ReunionNumber, &race.CourseNumber,
			&race.Hippodrome, &race.Discipline, &race.Distance, &race.Status,
			&race.CreatedAt, &race.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanRace, err)
		}
		races = append(races, race)
	}
	return races, rows.Err()
}
