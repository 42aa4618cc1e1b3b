// Package service wires the data feed, repositories and prediction engine
// into the ingestion, prediction and reporting workflows.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/pmu-edge/internal/datasource"
	"github.com/yourusername/pmu-edge/internal/logger"
	"github.com/yourusername/pmu-edge/internal/metrics"
	"github.com/yourusername/pmu-edge/internal/models"
	"github.com/yourusername/pmu-edge/internal/monitoring"
	"github.com/yourusername/pmu-edge/internal/repository"
)

// IngestionService fetches the PMU program and results and stores them
type IngestionService struct {
	source  datasource.ProgramSource
	repos   *repository.Repositories
	metrics *IngestionMetrics
	logger  *logrus.Logger
	audit   *logger.AuditLogger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(source datasource.ProgramSource, repos *repository.Repositories, log *logrus.Logger) *IngestionService {
	if log == nil {
		log = logrus.New()
	}
	return &IngestionService{
		source:  source,
		repos:   repos,
		metrics: NewIngestionMetrics(),
		logger:  log,
		audit:   logger.NewAuditLogger(log),
	}
}

// IngestProgram fetches one day's race program and stores every race with
// its participants. Failures on individual races are logged and counted but
// do not abort the run.
func (s *IngestionService) IngestProgram(ctx context.Context, date time.Time) (*IngestionMetrics, error) {
	s.metrics.Reset()
	start := time.Now()

	program, err := s.source.FetchProgram(ctx, date)
	if err != nil {
		s.metrics.RecordError()
		metrics.RecordFetchError("programme")
		return s.metrics, fmt.Errorf("failed to fetch program for %s: %w", date.Format("2006-01-02"), err)
	}

	for _, reunion := range program.Reunions {
		for _, course := range reunion.Courses {
			s.metrics.RecordAttempt()

			if err := s.ingestRace(ctx, date, reunion, course); err != nil {
				s.metrics.RecordError()
				s.logger.WithError(err).WithFields(logrus.Fields{
					"reunion": reunion.Number,
					"course":  course.CourseNumber,
				}).Warn("Failed to ingest race")
			}
		}
	}

	s.metrics.SetDuration(time.Since(start))

	snap := s.metrics.Snapshot()
	metrics.IngestionBatchDuration.Observe(snap.Duration.Seconds())
	s.audit.LogIngestionBatch(s.source.Name(), snap.SuccessfulRaces, snap.TotalPerformances, snap.Errors, float64(snap.Duration.Milliseconds()))

	return s.metrics, nil
}

// ingestRace upserts one race and its participant performances
func (s *IngestionService) ingestRace(ctx context.Context, date time.Time, reunion datasource.ReunionData, course datasource.RaceData) error {
	raceCode := fmt.Sprintf("R%dC%d", reunion.Number, course.CourseNumber)

	race, err := s.repos.Race.GetByCode(ctx, date, raceCode)
	switch {
	case errors.Is(err, models.ErrNotFound):
		race = &models.Race{
			ID:            uuid.New(),
			RaceDate:      course.StartTime,
			RaceCode:      raceCode,
			ReunionNumber: reunion.Number,
			CourseNumber:  course.CourseNumber,
			Hippodrome:    reunion.Hippodrome,
			Discipline:    course.Discipline,
			Distance:      course.Distance,
			Status:        "scheduled",
		}
		if err := s.repos.Race.Create(ctx, race); err != nil {
			return fmt.Errorf("failed to create race %s: %w", raceCode, err)
		}
		metrics.RecordRaceIngested()
	case err != nil:
		return fmt.Errorf("failed to look up race %s: %w", raceCode, err)
	default:
		s.metrics.RecordDuplicate()
	}

	participants, err := s.source.FetchParticipants(ctx, date, reunion.Number, course.CourseNumber)
	if err != nil {
		metrics.RecordFetchError("participants")
		return fmt.Errorf("failed to fetch participants for %s: %w", raceCode, err)
	}

	perfs := make([]*models.Performance, 0, len(participants))
	for _, p := range participants {
		perf, err := s.buildPerformance(ctx, race.ID, p)
		if err != nil {
			s.metrics.RecordError()
			s.logger.WithError(err).WithField("horse_id", p.HorseID).Warn("Skipping participant")
			continue
		}
		perfs = append(perfs, perf)
	}

	if len(perfs) == 0 {
		return fmt.Errorf("no storable participants for %s", raceCode)
	}

	if err := s.repos.Performance.CreateBatch(ctx, perfs); err != nil {
		return fmt.Errorf("failed to store participants for %s: %w", raceCode, err)
	}

	s.metrics.RecordRace()
	s.metrics.RecordPerformances(len(perfs))
	return nil
}

// buildPerformance converts one feed participant into a performance row,
// resolving jockey and trainer names to local ids.
func (s *IngestionService) buildPerformance(ctx context.Context, raceID uuid.UUID, p datasource.ParticipantData) (*models.Performance, error) {
	perf := &models.Performance{
		ID:         uuid.New(),
		RaceID:     raceID,
		HorseID:    p.HorseID,
		HorseName:  p.HorseName,
		Draw:       p.Draw,
		Weight:     p.WeightGrams,
		RawMusique: p.Musique,
	}

	if p.OddsRef != nil {
		odds := p.OddsRef.InexactFloat64()
		perf.OddsRef = &odds
	}

	if p.JockeyName != "" {
		id, err := s.repos.Connection.EnsureJockey(ctx, p.JockeyName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve jockey: %w", err)
		}
		perf.JockeyID = &id
	}

	if p.TrainerName != "" {
		id, err := s.repos.Connection.EnsureTrainer(ctx, p.TrainerName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve trainer: %w", err)
		}
		perf.TrainerID = &id
	}

	return perf, nil
}

// IngestResults fetches results for every stored race of a day, records
// finishing ranks and rapports, and evaluates any stored prediction against
// the outcome. Races without a final arrival yet are skipped.
func (s *IngestionService) IngestResults(ctx context.Context, date time.Time) (*IngestionMetrics, error) {
	s.metrics.Reset()
	start := time.Now()

	races, err := s.repos.Race.GetByDate(ctx, date)
	if err != nil {
		return s.metrics, fmt.Errorf("failed to load races for %s: %w", date.Format("2006-01-02"), err)
	}

	pending := 0
	for _, race := range races {
		if race.IsFinished() {
			s.metrics.RecordDuplicate()
			continue
		}

		finalized, err := s.ingestResult(ctx, date, race)
		if !finalized {
			pending++
		}
		if err != nil && !errors.Is(err, datasource.ErrNotFound) {
			s.metrics.RecordError()
			s.logger.WithError(err).WithField("race_code", race.RaceCode).Warn("Failed to ingest result")
		}
	}
	metrics.UpdatePendingEvaluations(float64(pending))

	s.metrics.SetDuration(time.Since(start))

	return s.metrics, nil
}

// ingestResult stores one race's final outcome and evaluates the prediction
func (s *IngestionService) ingestResult(ctx context.Context, date time.Time, race *models.Race) (bool, error) {
	data, err := s.source.FetchResults(ctx, date, race.ReunionNumber, race.CourseNumber)
	if err != nil {
		if !errors.Is(err, datasource.ErrNotFound) {
			metrics.RecordFetchError("results")
		}
		return false, err
	}

	if len(data.Arrival) == 0 {
		// Race not final yet
		return false, nil
	}

	for _, arrival := range data.Arrival {
		if err := s.repos.Performance.SetRank(ctx, race.ID, arrival.HorseID, arrival.Rank); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"race_code": race.RaceCode,
				"horse_id":  arrival.HorseID,
			}).Warn("Failed to record rank")
		}
	}

	finishers := make([]models.FinisherPosition, 0, len(data.Arrival))
	for _, arrival := range data.Arrival {
		finishers = append(finishers, models.FinisherPosition{
			HorseID:   arrival.HorseID,
			HorseName: arrival.HorseName,
			Rank:      arrival.Rank,
		})
	}

	result := &models.RaceResult{
		ID:         uuid.New(),
		RaceID:     race.ID,
		Hippodrome: race.Hippodrome,
		RaceNumber: race.CourseNumber,
		Finishers:  finishers,
		Rapports:   data.Rapports,
	}

	if err := s.repos.RaceResult.Create(ctx, result); err != nil {
		if !errors.Is(err, models.ErrRaceResultDuplicate) {
			return false, fmt.Errorf("failed to store result: %w", err)
		}
	} else {
		s.metrics.RecordResult()
		metrics.RecordResultIngested()
	}

	if err := s.repos.Race.UpdateStatus(ctx, race.ID, "finished"); err != nil {
		s.logger.WithError(err).WithField("race_code", race.RaceCode).Warn("Failed to mark race finished")
	}

	s.evaluatePrediction(ctx, race, result)
	return true, nil
}

// evaluatePrediction scores the stored prediction for a race against its
// official result. A race without a stored prediction is not an error.
func (s *IngestionService) evaluatePrediction(ctx context.Context, race *models.Race, result *models.RaceResult) {
	record, err := s.repos.PredictionRecord.GetByRaceID(ctx, race.ID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.WithError(err).WithField("race_code", race.RaceCode).Warn("Failed to load prediction record")
		}
		return
	}
	if record.AccuracyScore != nil {
		return
	}

	eval, err := monitoring.Evaluate(record.Predictions, result)
	if err != nil {
		s.logger.WithError(err).WithField("race_code", race.RaceCode).Warn("Failed to evaluate prediction")
		return
	}

	if err := s.repos.PredictionRecord.SetAccuracy(ctx, record.ID, eval.AccuracyScore, eval.Top3Accuracy, eval.WinnerRankPredicted); err != nil {
		s.logger.WithError(err).WithField("race_code", race.RaceCode).Warn("Failed to store accuracy")
		return
	}

	s.audit.LogAccuracyEvaluation(race.ID.String(), eval.AccuracyScore, eval.Top3Accuracy, eval.WinnerRankPredicted)
	metrics.UpdateAccuracy(eval.AccuracyScore)
}

// GetMetrics returns the metrics of the last ingestion run
func (s *IngestionService) GetMetrics() *IngestionMetrics {
	return s.metrics
}
