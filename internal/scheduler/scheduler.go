// Package scheduler runs the recurring ingestion, prediction and reporting
// jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/pmu-edge/internal/metrics"
	"github.com/yourusername/pmu-edge/internal/service"
)

// Scheduler manages the recurring jobs of the prediction pipeline
type Scheduler struct {
	cron          *cron.Cron
	ingestionSvc  *service.IngestionService
	predictionSvc *service.PredictionService
	reportSvc     *service.ReportService
	logger        *logrus.Logger
	mu            sync.RWMutex
	isRunning     bool
	jobIDs        []cron.EntryID
}

// NewScheduler creates a new scheduler
func NewScheduler(
	ingestionSvc *service.IngestionService,
	predictionSvc *service.PredictionService,
	reportSvc *service.ReportService,
	logger *logrus.Logger,
) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		cron:          cron.New(cron.WithLocation(time.UTC)),
		ingestionSvc:  ingestionSvc,
		predictionSvc: predictionSvc,
		reportSvc:     reportSvc,
		logger:        logger,
		jobIDs:        make([]cron.EntryID, 0),
	}
}

// ScheduleProgramFetch schedules the morning program ingestion followed by
// a prediction run over the day's races.
func (s *Scheduler) ScheduleProgramFetch(cronExpression string) error {
	return s.addJob(cronExpression, "program_fetch", func(ctx context.Context) {
		today := time.Now().UTC()

		m, err := s.ingestionSvc.IngestProgram(ctx, today)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled program fetch failed")
			return
		}
		s.logger.WithField("metrics", m.String()).Info("Scheduled program fetch completed")

		predictions, err := s.predictionSvc.PredictDay(ctx, today)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled prediction run failed")
			return
		}

		totalStake := 0.0
		for _, rp := range predictions {
			if err := s.predictionSvc.StoreRecommendations(ctx, rp); err != nil {
				s.logger.WithError(err).WithField("race_code", rp.Race.RaceCode).Warn("Failed to store recommendations")
				continue
			}
			totalStake += rp.Plan.TotalStake + rp.ValueBets.TotalStake
		}
		metrics.UpdateDailyPlannedStake(totalStake)
		s.logger.WithFields(logrus.Fields{
			"races":         len(predictions),
			"planned_stake": totalStake,
		}).Info("Scheduled prediction run completed")
	})
}

// ScheduleResultsFetch schedules the results ingestion for the previous day
// and any same-day races already decided.
func (s *Scheduler) ScheduleResultsFetch(cronExpression string) error {
	return s.addJob(cronExpression, "results_fetch", func(ctx context.Context) {
		now := time.Now().UTC()
		for _, day := range []time.Time{now.AddDate(0, 0, -1), now} {
			m, err := s.ingestionSvc.IngestResults(ctx, day)
			if err != nil {
				s.logger.WithError(err).WithField("date", day.Format("2006-01-02")).Error("Scheduled results fetch failed")
				continue
			}
			s.logger.WithFields(logrus.Fields{
				"date":    day.Format("2006-01-02"),
				"metrics": m.String(),
			}).Info("Scheduled results fetch completed")
		}
	})
}

// ScheduleDailyReport schedules the end-of-day settlement report
func (s *Scheduler) ScheduleDailyReport(cronExpression string) error {
	return s.addJob(cronExpression, "daily_report", func(ctx context.Context) {
		day := time.Now().UTC()

		report, err := s.reportSvc.BuildDailyReport(ctx, day)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled daily report failed")
			return
		}

		s.logger.WithFields(logrus.Fields{
			"date":           report.Date.Format("2006-01-02"),
			"daily_bets":     len(report.DailyBets),
			"value_bets":     len(report.ValueBets),
			"combinations":   len(report.Combinations),
			"total_staked":   report.TotalStaked.String(),
			"total_returned": report.TotalReturned.String(),
			"roi_pct":        report.ROIPct.String(),
			"mean_accuracy":  report.Accuracy.MeanAccuracy,
		}).Info("Daily report completed")
	})
}

// addJob registers one named job function under a cron expression
func (s *Scheduler) addJob(cronExpression, name string, job func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Hour)
		defer cancel()
		job(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"job":  name,
		"cron": cronExpression,
	}).Info("Job scheduled")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
