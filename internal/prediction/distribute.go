package prediction

import (
	"math"
	"sort"

	"github.com/yourusername/pmu-edge/internal/models"
)

type scoredEntrant struct {
	perf  *models.Performance
	score float64
}

// distribute converts scored entrants (already sorted descending by score)
// into a probability mass summing to ~100 under the detected scenario. Top
// group entrants share TopPercentage proportionally to score, or receive
// the scenario's fixed per-rank shares; the rest share RestPercentage the
// same way. A group whose total score is zero splits equally. When the top
// group covers the whole field, the group is scaled up to 100 so the race
// invariant holds for small fields.
func distribute(sorted []scoredEntrant, scenario models.Scenario) []float64 {
	n := len(sorted)
	probs := make([]float64, n)
	if n == 0 {
		return probs
	}

	topSize := scenario.TopSize
	if topSize > n {
		topSize = n
	}

	topPct := scenario.TopPercentage
	restPct := scenario.RestPercentage
	if topSize == n {
		topPct = 100
		restPct = 0
	}

	if len(scenario.FixedShares) > 0 {
		scale := 1.0
		if scenario.TopPercentage > 0 {
			scale = topPct / scenario.TopPercentage
		}
		for i := 0; i < topSize && i < len(scenario.FixedShares); i++ {
			probs[i] = scenario.FixedShares[i] * scale
		}
	} else {
		assignShare(probs[:topSize], sorted[:topSize], topPct)
	}

	if topSize < n {
		assignShare(probs[topSize:], sorted[topSize:], restPct)
	}

	return probs
}

// assignShare spreads pct over a group proportionally to score, with an
// equal split for degenerate zero-score groups.
func assignShare(probs []float64, group []scoredEntrant, pct float64) {
	if len(group) == 0 {
		return
	}
	var total float64
	for _, entrant := range group {
		total += entrant.score
	}
	if total <= 0 {
		equal := pct / float64(len(group))
		for i := range probs {
			probs[i] = equal
		}
		return
	}
	for i, entrant := range group {
		probs[i] = entrant.score / total * pct
	}
}

// isValueBet flags entrants whose model probability materially exceeds the
// market-implied probability: either by the configured ratio, or by the
// configured absolute edge in percentage points.
func isValueBet(probability float64, odds *float64, cfg Config) bool {
	if odds == nil || *odds <= 1 {
		return false
	}
	implied := 100.0 / *odds
	if probability > implied*cfg.ValueEdgeRatio {
		return true
	}
	return probability-implied > cfg.ValueEdgeAbsolute
}

// round2 keeps reported probabilities stable across platforms
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// sortPredictions orders by descending probability, stable over input order
func sortPredictions(preds []models.Prediction) {
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Probability > preds[j].Probability
	})
}
