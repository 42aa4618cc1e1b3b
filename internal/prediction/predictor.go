package prediction

import (
	"sort"

	"github.com/yourusername/pmu-edge/internal/models"
)

// PredictRace runs the full pipeline for one race: score every entrant,
// detect the race shape, distribute probabilities and flag value bets.
// The returned list is sorted by descending probability with 1-based ranks;
// the scenario is attached to the rank-1 entry only. An empty field yields
// an empty list. Deterministic for identical inputs.
func (e *Engine) PredictRace(perfs []*models.Performance) []models.Prediction {
	if len(perfs) == 0 {
		return nil
	}

	fieldSize := len(perfs)
	scored := make([]scoredEntrant, fieldSize)
	for i, perf := range perfs {
		scored[i] = scoredEntrant{perf: perf, score: e.Score(perf, fieldSize)}
	}

	// Stable: equal scores keep their input order, which also fixes the
	// tie-break for scenario detection.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	scores := make([]float64, fieldSize)
	for i, entrant := range scored {
		scores[i] = entrant.score
	}
	scenario := DetectScenario(scores, e.cfg)

	probs := distribute(scored, scenario)

	preds := make([]models.Prediction, fieldSize)
	for i, entrant := range scored {
		perf := entrant.perf
		preds[i] = models.Prediction{
			HorseID:     perf.HorseID,
			HorseName:   perf.HorseName,
			Score:       round2(entrant.score),
			Probability: round2(probs[i]),
			OddsRef:     perf.OddsRef,
			ValueBet:    isValueBet(probs[i], perf.OddsRef, e.cfg),
			Draw:        perf.Draw,
			Weight:      perf.Weight,
			InTopGroup:  i < scenario.TopSize,
		}
	}

	sortPredictions(preds)
	for i := range preds {
		preds[i].Rank = i + 1
	}
	scn := scenario
	preds[0].Scenario = &scn

	return preds
}
