package service

import (
	"context"
	"fmt"

	"github.com/yourusername/pmu-edge/internal/models"
	"github.com/yourusername/pmu-edge/internal/repository"
)

// statsSnapshot is an in-memory view of the historical aggregates needed to
// score one race. It satisfies the scoring engine's StatsProvider without
// hitting the database during scoring.
type statsSnapshot struct {
	career      map[string]models.CareerStats
	jockeyRates map[int64]float64
	synergy     map[[2]int64]float64
}

func (s *statsSnapshot) CareerStats(horseID string) (models.CareerStats, bool) {
	stats, ok := s.career[horseID]
	return stats, ok
}

func (s *statsSnapshot) JockeyWinRate(jockeyID int64) (float64, bool) {
	rate, ok := s.jockeyRates[jockeyID]
	return rate, ok
}

func (s *statsSnapshot) SynergyRate(jockeyID, trainerID int64) (float64, bool) {
	rate, ok := s.synergy[[2]int64{jockeyID, trainerID}]
	return rate, ok
}

// buildStatsSnapshot loads career, jockey and synergy aggregates for every
// entrant of a race in three batched queries.
func buildStatsSnapshot(ctx context.Context, stats repository.StatsRepository, perfs []*models.Performance) (*statsSnapshot, error) {
	horseIDs := make([]string, 0, len(perfs))
	jockeyIDs := make([]int64, 0, len(perfs))
	pairs := make([][2]int64, 0, len(perfs))
	seenJockeys := make(map[int64]bool)

	for _, perf := range perfs {
		horseIDs = append(horseIDs, perf.HorseID)
		if perf.JockeyID != nil && !seenJockeys[*perf.JockeyID] {
			seenJockeys[*perf.JockeyID] = true
			jockeyIDs = append(jockeyIDs, *perf.JockeyID)
		}
		if perf.JockeyID != nil && perf.TrainerID != nil {
			pairs = append(pairs, [2]int64{*perf.JockeyID, *perf.TrainerID})
		}
	}

	career, err := stats.CareerStatsBatch(ctx, horseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load career stats: %w", err)
	}

	jockeyRates, err := stats.JockeyWinRates(ctx, jockeyIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load jockey win rates: %w", err)
	}

	synergy, err := stats.SynergyRates(ctx, pairs)
	if err != nil {
		return nil, fmt.Errorf("failed to load synergy rates: %w", err)
	}

	return &statsSnapshot{
		career:      career,
		jockeyRates: jockeyRates,
		synergy:     synergy,
	}, nil
}
