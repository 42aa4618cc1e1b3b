// Package repository implements PostgreSQL data access for races,
// performances, predictions and bets.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/pmu-edge/internal/models"
)

// RaceRepository defines the interface for race data access
type RaceRepository interface {
	Create(ctx context.Context, race *models.Race) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Race, error)
	GetByCode(ctx context.Context, date time.Time, raceCode string) (*models.Race, error)
	GetByDate(ctx context.Context, date time.Time) ([]*models.Race, error)
	GetUpcoming(ctx context.Context, limit int) ([]*models.Race, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PerformanceRepository defines the interface for race entrant data access
type PerformanceRepository interface {
	CreateBatch(ctx context.Context, perfs []*models.Performance) error
	GetByRaceID(ctx context.Context, raceID uuid.UUID) ([]*models.Performance, error)
	GetByHorseID(ctx context.Context, horseID string, limit int) ([]*models.Performance, error)
	SetRank(ctx context.Context, raceID uuid.UUID, horseID string, rank int) error
}

// StatsRepository supplies the historical aggregates the scoring engine
// consumes. Aggregates are computed in SQL over stored performances.
type StatsRepository interface {
	CareerStats(ctx context.Context, horseID string) (models.CareerStats, error)
	CareerStatsBatch(ctx context.Context, horseIDs []string) (map[string]models.CareerStats, error)
	JockeyWinRates(ctx context.Context, jockeyIDs []int64) (map[int64]float64, error)
	SynergyRates(ctx context.Context, pairs [][2]int64) (map[[2]int64]float64, error)
}

// ConnectionRepository resolves jockey and trainer names to local numeric
// identifiers, creating rows on first sight. The upstream feed only carries
// names.
type ConnectionRepository interface {
	EnsureJockey(ctx context.Context, name string) (int64, error)
	EnsureTrainer(ctx context.Context, name string) (int64, error)
}

// PredictionRecordRepository stores prediction runs for accuracy tracking
type PredictionRecordRepository interface {
	Create(ctx context.Context, record *models.PredictionRecord) error
	GetByRaceID(ctx context.Context, raceID uuid.UUID) (*models.PredictionRecord, error)
	GetUnevaluated(ctx context.Context, before time.Time, limit int) ([]*models.PredictionRecord, error)
	SetAccuracy(ctx context.Context, id uuid.UUID, accuracy, top3Accuracy float64, winnerRank int) error
}

// RaceResultRepository stores official race outcomes
type RaceResultRepository interface {
	Create(ctx context.Context, result *models.RaceResult) error
	GetByRaceID(ctx context.Context, raceID uuid.UUID) (*models.RaceResult, error)
}

// BetRepository stores daily picks, value bets and combination wagers
type BetRepository interface {
	CreateDailyBet(ctx context.Context, bet *models.DailyBet) error
	CreateValueBet(ctx context.Context, bet *models.ValueBetRecord) error
	CreateCombination(ctx context.Context, combo *models.StoredCombination) error
	GetDailyBets(ctx context.Context, date time.Time) ([]*models.DailyBet, error)
	GetValueBets(ctx context.Context, date time.Time) ([]*models.ValueBetRecord, error)
	GetCombinations(ctx context.Context, date time.Time) ([]*models.StoredCombination, error)
}
