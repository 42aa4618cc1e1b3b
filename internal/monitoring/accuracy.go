// Package monitoring scores stored predictions against official race
// results and aggregates accuracy over time.
package monitoring

import (
	"errors"

	"github.com/yourusername/pmu-edge/internal/models"
)

// ErrNoFinishers is returned when a result carries no finishing order
var ErrNoFinishers = errors.New("race result has no finishers")

// Evaluation is the accuracy outcome for one race's predictions.
// AccuracyScore is on the 0-100 scale: up to 50 points for how high the
// actual winner was ranked, up to 50 for top-3 overlap.
type Evaluation struct {
	AccuracyScore       float64
	Top3Accuracy        float64
	WinnerRankPredicted int // 0 when the winner was not in the prediction list
	WinnerPredicted     bool
}

// winnerPoints maps the predicted rank of the actual winner to points
var winnerPoints = map[int]float64{
	1: 50,
	2: 30,
	3: 20,
	4: 10,
	5: 10,
}

// Evaluate scores one prediction list against the official result. The
// predictions must carry their 1-based ranks; the result must include at
// least the winner.
func Evaluate(preds []models.Prediction, result *models.RaceResult) (Evaluation, error) {
	var eval Evaluation

	winner := result.Winner()
	if winner == nil {
		return eval, ErrNoFinishers
	}

	rankByHorse := make(map[string]int, len(preds))
	for _, p := range preds {
		rankByHorse[p.HorseID] = p.Rank
	}

	if rank, ok := rankByHorse[winner.HorseID]; ok {
		eval.WinnerRankPredicted = rank
		eval.WinnerPredicted = rank == 1
		eval.AccuracyScore += winnerPoints[rank]
	}

	actualTop3 := result.Top3()
	if len(actualTop3) > 0 {
		overlap := 0
		for _, finisher := range actualTop3 {
			if rank, ok := rankByHorse[finisher.HorseID]; ok && rank <= 3 {
				overlap++
			}
		}
		eval.Top3Accuracy = float64(overlap) / float64(len(actualTop3)) * 100
		eval.AccuracyScore += float64(overlap) / float64(len(actualTop3)) * 50
	}

	return eval, nil
}

// Aggregate summarizes evaluations over a period
type Aggregate struct {
	Races            int
	WinnerHitRate    float64 // percent of races where the predicted #1 won
	MeanAccuracy     float64
	MeanTop3Accuracy float64
}

// Aggregate folds a set of per-race evaluations into period totals.
// An empty input yields a zero aggregate.
func AggregateEvaluations(evals []Evaluation) Aggregate {
	agg := Aggregate{Races: len(evals)}
	if agg.Races == 0 {
		return agg
	}

	winners := 0
	for _, e := range evals {
		if e.WinnerPredicted {
			winners++
		}
		agg.MeanAccuracy += e.AccuracyScore
		agg.MeanTop3Accuracy += e.Top3Accuracy
	}

	n := float64(agg.Races)
	agg.WinnerHitRate = float64(winners) / n * 100
	agg.MeanAccuracy /= n
	agg.MeanTop3Accuracy /= n
	return agg
}
