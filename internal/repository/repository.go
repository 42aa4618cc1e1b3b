package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yourusername/pmu-edge/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Race             RaceRepository
	Performance      PerformanceRepository
	Connection       ConnectionRepository
	Stats            StatsRepository
	PredictionRecord PredictionRecordRepository
	RaceResult       RaceResultRepository
	Bet              BetRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Race:             NewPostgresRaceRepository(db),
		Performance:      NewPostgresPerformanceRepository(db),
		Connection:       NewPostgresConnectionRepository(db),
		Stats:            NewPostgresStatsRepository(db),
		PredictionRecord: NewPostgresPredictionRecordRepository(db),
		RaceResult:       NewPostgresRaceResultRepository(db),
		Bet:              NewPostgresBetRepository(db),
	}, nil
}

// isUniqueViolation reports whether the error is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
