package prediction

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/pmu-edge/internal/models"
)

// StatsProvider supplies historical aggregates for scoring. Implementations
// must be pure lookups: "unknown" is reported through the boolean, never an
// error, and never blocks.
type StatsProvider interface {
	CareerStats(horseID string) (models.CareerStats, bool)
	JockeyWinRate(jockeyID int64) (float64, bool)
	SynergyRate(jockeyID, trainerID int64) (float64, bool)
}

// Engine computes raw probability scores for race entrants. It is stateless
// across invocations; the year pins musique decoding for determinism.
type Engine struct {
	cfg    Config
	stats  StatsProvider
	year   int
	logger *logrus.Logger
}

// NewEngine creates a scoring engine. A nil stats provider is treated as an
// empty history; every lookup falls back to neutral.
func NewEngine(cfg Config, stats StatsProvider, year int, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	if stats == nil {
		stats = emptyStats{}
	}
	return &Engine{cfg: cfg, stats: stats, year: year, logger: logger}
}

// Config returns the engine tuning
func (e *Engine) Config() Config {
	return e.cfg
}

// Score combines the four weighted sub-scores into one raw probability score
// in [MinScore, MaxScore]. A failed sub-score is replaced by the neutral
// default so one bad record never aborts the rest of the field.
func (e *Engine) Score(perf *models.Performance, fieldSize int) float64 {
	formScore, formErr := e.formScore(perf.RawMusique)
	classScore, classErr := e.classScore(perf)
	connectionsScore, connectionsErr := e.connectionsScore(perf)
	aptitudeScore, aptitudeErr := e.aptitudeScore(perf, fieldSize)

	form := e.orNeutral("form", perf.HorseID, formScore, formErr)
	class := e.orNeutral("class", perf.HorseID, classScore, classErr)
	connections := e.orNeutral("connections", perf.HorseID, connectionsScore, connectionsErr)
	aptitude := e.orNeutral("aptitude", perf.HorseID, aptitudeScore, aptitudeErr)

	raw := form*e.cfg.FormWeight +
		class*e.cfg.ClassWeight +
		connections*e.cfg.ConnectionsWeight +
		aptitude*e.cfg.AptitudeWeight

	return clamp(raw*10, e.cfg.MinScore, e.cfg.MaxScore)
}

// orNeutral applies the single fallback policy for failed sub-scores: log
// the failure and substitute the neutral default.
func (e *Engine) orNeutral(component, horseID string, score float64, err error) float64 {
	if err == nil {
		return score
	}
	e.logger.WithError(err).WithFields(logrus.Fields{
		"component": component,
		"horse_id":  horseID,
	}).Warn("Sub-score computation failed, using neutral default")
	return e.cfg.NeutralScore
}

// formScore averages form points within each year bucket and combines years
// with recency weights. No history at all yields the neutral score.
func (e *Engine) formScore(musique string) (float64, error) {
	buckets := DecodeMusique(musique, e.year)
	if len(buckets) == 0 {
		return e.cfg.NeutralScore, nil
	}

	years := make([]int, 0, len(buckets))
	for year := range buckets {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	var weighted, totalWeight float64
	for _, year := range years {
		weight := e.yearWeight(e.year - year)
		weighted += e.yearScore(buckets[year]) * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return e.cfg.NeutralScore, nil
	}
	return weighted / totalWeight, nil
}

func (e *Engine) yearWeight(yearsBack int) float64 {
	if yearsBack < 0 {
		yearsBack = 0
	}
	if yearsBack >= len(e.cfg.YearWeights) {
		return e.cfg.YearWeights[len(e.cfg.YearWeights)-1]
	}
	return e.cfg.YearWeights[yearsBack]
}

func (e *Engine) yearScore(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	var total float64
	for _, token := range tokens {
		total += e.tokenPoints(token)
	}
	return total / float64(len(tokens))
}

func (e *Engine) tokenPoints(token string) float64 {
	pts := e.cfg.FormPoints
	if isNonFinish(token) {
		return pts.DNF
	}
	switch tokenRank(token) {
	case 1:
		return pts.Win
	case 2:
		return pts.Second
	case 3:
		return pts.Third
	case 4:
		return pts.Fourth
	case 5:
		return pts.Fifth
	default:
		return pts.Other
	}
}

// classScore scores career quality: win rate scaled by a sample-size
// confidence factor plus capped earnings per race. Horses with no completed
// races score neutral rather than zero.
func (e *Engine) classScore(perf *models.Performance) (float64, error) {
	stats, ok := e.stats.CareerStats(perf.HorseID)
	if !ok || stats.Completed == 0 {
		return e.cfg.NeutralScore, nil
	}

	confidence := math.Min(1.0, float64(stats.Completed)/float64(e.cfg.ClassConfidenceFloor))
	winPart := stats.WinRate() * 5 * confidence
	earningsPart := math.Min(e.cfg.EarningsPointsCap, stats.AverageEarnings()/e.cfg.EarningsPerClassPoint)

	return clamp(winPart+earningsPart, 0, 10), nil
}

// connectionsScore adjusts a neutral baseline by the jockey's win rate
// against par, plus jockey-trainer synergy when both are known. Missing
// identifiers fall back to neutral, never an error.
func (e *Engine) connectionsScore(perf *models.Performance) (float64, error) {
	score := e.cfg.NeutralScore
	if perf.JockeyID == nil {
		return score, nil
	}

	if rate, ok := e.stats.JockeyWinRate(*perf.JockeyID); ok {
		score += (rate - e.cfg.ParJockeyWinRate) * e.cfg.JockeyRateWeight
	}
	if perf.TrainerID != nil {
		if synergy, ok := e.stats.SynergyRate(*perf.JockeyID, *perf.TrainerID); ok {
			score += synergy * e.cfg.SynergyWeight
		}
	}

	return clamp(score, 0, 10), nil
}

// aptitudeScore rewards a favorable draw and penalizes excess carried
// weight. Draw position is judged as a percentile of the field when the
// field size is known, by fixed gate bands otherwise.
func (e *Engine) aptitudeScore(perf *models.Performance, fieldSize int) (float64, error) {
	score := e.cfg.NeutralScore

	if perf.Draw != nil {
		draw := *perf.Draw
		if draw < 0 {
			return 0, fmt.Errorf("draw position %d out of range", draw)
		}
		if draw > 0 {
			switch {
			case fieldSize > 0:
				percentile := float64(draw) / float64(fieldSize)
				if percentile <= e.cfg.GoodDrawPercentile {
					score += e.cfg.DrawBonus
				} else if percentile >= e.cfg.BadDrawPercentile {
					score -= e.cfg.DrawPenalty
				}
			case draw <= e.cfg.GoodDrawBand:
				score += e.cfg.DrawBonus
			case draw >= e.cfg.BadDrawBand:
				score -= e.cfg.DrawPenalty
			}
		}
	}

	if perf.Weight != nil && *perf.Weight > 0 {
		kg := perf.WeightKg()
		if kg < 20 || kg > 100 {
			return 0, fmt.Errorf("carried weight %.1fkg out of range", kg)
		}
		ref := e.cfg.WeightReferenceKg
		if kg > ref {
			score -= (kg - ref) * e.cfg.WeightPenaltyPerKg
		} else if kg < ref-2 {
			score += math.Min(e.cfg.WeightBonusCap, (ref-kg)*e.cfg.WeightBonusPerKg)
		}
	}

	return clamp(score, 0, 10), nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// emptyStats is the nil-provider fallback: every lookup is unknown.
type emptyStats struct{}

func (emptyStats) CareerStats(string) (models.CareerStats, bool) { return models.CareerStats{}, false }
func (emptyStats) JockeyWinRate(int64) (float64, bool)           { return 0, false }
func (emptyStats) SynergyRate(int64, int64) (float64, bool)      { return 0, false }
