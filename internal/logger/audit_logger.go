// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated audit trail for prediction runs and
// stake recommendations.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogPredictionRun records one completed prediction run for a race.
func (al *AuditLogger) LogPredictionRun(raceID, scenario string, fieldSize, valueBets int, topHorseID string, topProbability float64, cached bool) {
	al.WithFields(logrus.Fields{
		"race_id":         raceID,
		"scenario":        scenario,
		"field_size":      fieldSize,
		"value_bets":      valueBets,
		"top_horse_id":    topHorseID,
		"top_probability": topProbability,
		"cached":          cached,
	}).Info("Prediction run recorded")
}

// LogStakeRecommendation records a Kelly stake recommendation.
func (al *AuditLogger) LogStakeRecommendation(raceID, horseID string, probability, odds, stake, edge float64, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"race_id":     raceID,
		"horse_id":    horseID,
		"probability": probability,
		"odds":        odds,
		"stake":       stake,
		"edge":        edge,
		"timestamp":   timestamp.Unix(),
	}).Info("Stake recommendation recorded")
}

// LogCombinationPlan records a funded combination betting plan.
func (al *AuditLogger) LogCombinationPlan(raceID string, bets int, totalStake, budget float64) {
	al.WithFields(logrus.Fields{
		"race_id":     raceID,
		"bets":        bets,
		"total_stake": totalStake,
		"budget":      budget,
	}).Info("Combination plan recorded")
}

// LogAccuracyEvaluation records the after-race accuracy of a stored prediction.
func (al *AuditLogger) LogAccuracyEvaluation(raceID string, accuracyScore, top3Accuracy float64, winnerRankPredicted int) {
	al.WithFields(logrus.Fields{
		"race_id":               raceID,
		"accuracy_score":        accuracyScore,
		"top3_accuracy":         top3Accuracy,
		"winner_rank_predicted": winnerRankPredicted,
	}).Info("Prediction accuracy recorded")
}

// LogIngestionBatch records one data ingestion batch outcome.
func (al *AuditLogger) LogIngestionBatch(source string, races, performances, failures int, durationMs float64) {
	al.WithFields(logrus.Fields{
		"source":       source,
		"races":        races,
		"performances": performances,
		"failures":     failures,
		"duration_ms":  durationMs,
	}).Info("Ingestion batch recorded")
}
