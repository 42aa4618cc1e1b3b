package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/pmu-edge/internal/betting"
	"github.com/yourusername/pmu-edge/internal/combination"
	"github.com/yourusername/pmu-edge/internal/logger"
	"github.com/yourusername/pmu-edge/internal/metrics"
	"github.com/yourusername/pmu-edge/internal/models"
	"github.com/yourusername/pmu-edge/internal/prediction"
	"github.com/yourusername/pmu-edge/internal/repository"
)

// PredictionOptions tunes the prediction pipeline
type PredictionOptions struct {
	CacheTTL          time.Duration
	CombinationLimit  int
	MinFieldSize      int
	Bankroll          float64
	CombinationBudget float64
	DailyStake        float64
}

// DefaultPredictionOptions returns the production settings
func DefaultPredictionOptions() PredictionOptions {
	return PredictionOptions{
		CacheTTL:          30 * time.Minute,
		CombinationLimit:  10,
		MinFieldSize:      3,
		Bankroll:          1000,
		CombinationBudget: 10,
		DailyStake:        2,
	}
}

// CombinationSet groups the generated combinations per bet type
type CombinationSet struct {
	TierceOrdre    []models.Combination `json:"tierce_ordre"`
	TierceDesordre []models.Combination `json:"tierce_desordre"`
	QuinteDesordre []models.Combination `json:"quinte_desordre"`
}

// RacePrediction is the full pipeline output for one race
type RacePrediction struct {
	Race         *models.Race               `json:"race"`
	Predictions  []models.Prediction        `json:"predictions"`
	Scenario     models.ScenarioKind        `json:"scenario"`
	ValueBets    models.RaceValueBetSummary `json:"value_bets"`
	Combinations CombinationSet             `json:"combinations"`
	Plan         betting.Plan               `json:"betting_plan"`
	GeneratedAt  time.Time                  `json:"generated_at"`
	Cached       bool                       `json:"cached"`
}

// PredictionService runs the prediction pipeline for races and stores the
// outcome for accuracy tracking.
type PredictionService struct {
	repos       *repository.Repositories
	engineCfg   prediction.Config
	generator   *combination.Generator
	analyzer    *betting.Analyzer
	recommender *betting.Recommender
	cache       *cache.Cache
	opts        PredictionOptions
	logger      *logrus.Logger
	audit       *logger.AuditLogger
}

// NewPredictionService creates a new prediction service
func NewPredictionService(
	repos *repository.Repositories,
	engineCfg prediction.Config,
	generator *combination.Generator,
	analyzer *betting.Analyzer,
	recommender *betting.Recommender,
	opts PredictionOptions,
	log *logrus.Logger,
) *PredictionService {
	if log == nil {
		log = logrus.New()
	}
	return &PredictionService{
		repos:       repos,
		engineCfg:   engineCfg,
		generator:   generator,
		analyzer:    analyzer,
		recommender: recommender,
		cache:       cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		opts:        opts,
		logger:      log,
		audit:       logger.NewAuditLogger(log),
	}
}

// PredictRace runs the full pipeline for one race: score the field, detect
// the race shape, flag value bets, generate combinations and build the
// betting plan. Results are cached; repeated calls within the TTL return
// the same snapshot.
func (s *PredictionService) PredictRace(ctx context.Context, raceID uuid.UUID) (*RacePrediction, error) {
	if cached, found := s.cache.Get(raceID.String()); found {
		rp := cached.(*RacePrediction)
		out := *rp
		out.Cached = true
		metrics.RecordPrediction(0, true)
		return &out, nil
	}

	start := time.Now()

	race, err := s.repos.Race.GetByID(ctx, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load race: %w", err)
	}

	perfs, err := s.repos.Performance.GetByRaceID(ctx, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entrants: %w", err)
	}
	if len(perfs) == 0 {
		return nil, fmt.Errorf("race %s has no entrants", race.RaceCode)
	}

	snapshot, err := buildStatsSnapshot(ctx, s.repos.Stats, perfs)
	if err != nil {
		return nil, err
	}

	engine := prediction.NewEngine(s.engineCfg, snapshot, race.RaceDate.Year(), s.logger)
	preds := engine.PredictRace(perfs)

	rp := &RacePrediction{
		Race:        race,
		Predictions: preds,
		Scenario:    models.ScenarioInsufficientData,
		GeneratedAt: time.Now(),
	}
	if len(preds) > 0 && preds[0].Scenario != nil {
		rp.Scenario = preds[0].Scenario.Kind
	}

	// Fields under the minimum size are scored but never bet on.
	rp.ValueBets = models.RaceValueBetSummary{ValueBets: []models.RaceValueBet{}}
	if len(perfs) >= s.opts.MinFieldSize {
		rp.ValueBets = s.analyzer.AnalyzeRace(preds, s.opts.Bankroll)

		limit := s.opts.CombinationLimit
		rp.Combinations = CombinationSet{
			TierceOrdre:    s.generator.GenerateTierceOrdre(preds, limit),
			TierceDesordre: s.generator.GenerateTierceDesordre(preds, limit),
			QuinteDesordre: s.generator.GenerateQuinteDesordre(preds, limit),
		}

		candidates := make([]models.Combination, 0,
			len(rp.Combinations.TierceOrdre)+len(rp.Combinations.TierceDesordre)+len(rp.Combinations.QuinteDesordre))
		candidates = append(candidates, rp.Combinations.TierceOrdre...)
		candidates = append(candidates, rp.Combinations.TierceDesordre...)
		candidates = append(candidates, rp.Combinations.QuinteDesordre...)
		rp.Plan = s.recommender.BuildPlan(candidates, s.opts.CombinationBudget)
	} else {
		s.logger.WithFields(logrus.Fields{
			"race_code":  race.RaceCode,
			"field_size": len(perfs),
		}).Info("Field below minimum size, skipping bet generation")
	}

	s.storeRecord(ctx, race, rp)

	duration := time.Since(start)
	metrics.RecordPrediction(duration.Seconds(), false)
	metrics.RecordValueBets(rp.ValueBets.Count)

	topHorseID := ""
	topProbability := 0.0
	if len(preds) > 0 {
		topHorseID = preds[0].HorseID
		topProbability = preds[0].Probability
	}
	s.audit.LogPredictionRun(race.ID.String(), string(rp.Scenario), len(preds), rp.ValueBets.Count, topHorseID, topProbability, false)

	s.cache.Set(raceID.String(), rp, cache.DefaultExpiration)
	return rp, nil
}

// PredictByCode resolves a race by its date and code (e.g. "R1C3") and runs
// the pipeline on it.
func (s *PredictionService) PredictByCode(ctx context.Context, date time.Time, raceCode string) (*RacePrediction, error) {
	race, err := s.repos.Race.GetByCode(ctx, date, raceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve race %s: %w", raceCode, err)
	}
	return s.PredictRace(ctx, race.ID)
}

// PredictDay runs the pipeline for every race of a day. Per-race failures
// are logged and skipped.
func (s *PredictionService) PredictDay(ctx context.Context, date time.Time) ([]*RacePrediction, error) {
	races, err := s.repos.Race.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load races: %w", err)
	}

	out := make([]*RacePrediction, 0, len(races))
	for _, race := range races {
		rp, err := s.PredictRace(ctx, race.ID)
		if err != nil {
			s.logger.WithError(err).WithField("race_code", race.RaceCode).Warn("Skipping race prediction")
			continue
		}
		out = append(out, rp)
	}
	return out, nil
}

// StoreRecommendations persists the day's picks derived from one race
// prediction: the straight-win daily bet, every Kelly value bet, and the
// funded combination plan.
func (s *PredictionService) StoreRecommendations(ctx context.Context, rp *RacePrediction) error {
	if len(rp.Predictions) == 0 {
		return nil
	}

	betDate := rp.Race.RaceDate
	top := rp.Predictions[0]

	daily := &models.DailyBet{
		ID:          uuid.New(),
		BetDate:     betDate,
		RaceID:      rp.Race.ID,
		HorseID:     top.HorseID,
		HorseName:   top.HorseName,
		Probability: top.Probability,
		Odds:        top.OddsRef,
		Stake:       decimal.NewFromFloat(s.opts.DailyStake),
	}
	if err := s.repos.Bet.CreateDailyBet(ctx, daily); err != nil && !errors.Is(err, models.ErrDuplicateKey) {
		return fmt.Errorf("failed to store daily bet: %w", err)
	}

	for _, vb := range rp.ValueBets.ValueBets {
		ranking := 0
		for _, pred := range rp.Predictions {
			if pred.HorseID == vb.HorseID {
				ranking = pred.Rank
				break
			}
		}

		record := &models.ValueBetRecord{
			ID:               uuid.New(),
			BetDate:          betDate,
			RaceID:           rp.Race.ID,
			HorseID:          vb.HorseID,
			HorseName:        vb.HorseName,
			Ranking:          ranking,
			Probability:      vb.Probability,
			OfferedOdds:      vb.Odds,
			ValueScore:       vb.Kelly.ProbabilityEdge,
			RecommendedStake: decimal.NewFromFloat(vb.Kelly.RecommendedStake),
		}
		if err := s.repos.Bet.CreateValueBet(ctx, record); err != nil && !errors.Is(err, models.ErrDuplicateKey) {
			return fmt.Errorf("failed to store value bet: %w", err)
		}

		s.audit.LogStakeRecommendation(rp.Race.ID.String(), vb.HorseID, vb.Probability, vb.Odds, vb.Kelly.RecommendedStake, vb.Kelly.Edge, time.Now())
	}

	for _, planned := range rp.Plan.Bets {
		combo := &models.StoredCombination{
			ID:          uuid.New(),
			BetDate:     betDate,
			RaceID:      rp.Race.ID,
			Type:        planned.Combination.Type,
			HorseIDs:    planned.Combination.HorseIDs,
			HorseNames:  planned.Combination.HorseNames,
			Probability: planned.Combination.Probability,
			Stake:       decimal.NewFromFloat(planned.Stake),
		}
		if err := s.repos.Bet.CreateCombination(ctx, combo); err != nil && !errors.Is(err, models.ErrDuplicateKey) {
			return fmt.Errorf("failed to store combination: %w", err)
		}
	}

	s.audit.LogCombinationPlan(rp.Race.ID.String(), len(rp.Plan.Bets), rp.Plan.TotalStake, rp.Plan.Budget)
	return nil
}

// storeRecord saves the prediction list for later accuracy evaluation. An
// existing record for the race is left untouched.
func (s *PredictionService) storeRecord(ctx context.Context, race *models.Race, rp *RacePrediction) {
	record := &models.PredictionRecord{
		ID:               uuid.New(),
		RaceID:           race.ID,
		Predictions:      rp.Predictions,
		ScenarioDetected: rp.Scenario,
	}
	if err := s.repos.PredictionRecord.Create(ctx, record); err != nil && !errors.Is(err, models.ErrDuplicateKey) {
		s.logger.WithError(err).WithField("race_code", race.RaceCode).Warn("Failed to store prediction record")
	}
}

// InvalidateCache drops the cached prediction for a race, forcing the next
// call to recompute.
func (s *PredictionService) InvalidateCache(raceID uuid.UUID) {
	s.cache.Delete(raceID.String())
}
