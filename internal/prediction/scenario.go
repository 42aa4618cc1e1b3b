package prediction

import "github.com/yourusername/pmu-edge/internal/models"

// scenarioPayload pins the probability split for each race shape. The
// distributor consumes the payload generically; adding a shape means adding
// a row here, not a branch there.
func scenarioPayload(kind models.ScenarioKind, fieldSize int) models.Scenario {
	switch kind {
	case models.ScenarioInsufficientData:
		return models.Scenario{Kind: kind, TopSize: fieldSize, TopPercentage: 100, RestPercentage: 0}
	case models.ScenarioDominantFavorite:
		return models.Scenario{Kind: kind, TopSize: 3, TopPercentage: 80, RestPercentage: 20, FixedShares: []float64{50, 18, 12}}
	case models.ScenarioClearTop2:
		return models.Scenario{Kind: kind, TopSize: 2, TopPercentage: 70, RestPercentage: 30, FixedShares: []float64{38, 32}}
	case models.ScenarioGroupedTop3:
		return models.Scenario{Kind: kind, TopSize: 3, TopPercentage: 70, RestPercentage: 30}
	case models.ScenarioGroupedTop4:
		return models.Scenario{Kind: kind, TopSize: 4, TopPercentage: 75, RestPercentage: 25}
	case models.ScenarioGroupedTop5:
		return models.Scenario{Kind: kind, TopSize: 5, TopPercentage: 80, RestPercentage: 20}
	default:
		return models.Scenario{Kind: models.ScenarioStandardTop3, TopSize: 3, TopPercentage: 70, RestPercentage: 30}
	}
}

// DetectScenario classifies field concentration from the gaps between
// successive scores. The input must be sorted descending; ties keep their
// original input order (stable sort upstream). Pure and side-effect free.
func DetectScenario(sortedScores []float64, cfg Config) models.Scenario {
	n := len(sortedScores)
	if n < 3 {
		return scenarioPayload(models.ScenarioInsufficientData, n)
	}

	gaps := make([]float64, 0, 5)
	for i := 0; i+1 < n && i < 5; i++ {
		gaps = append(gaps, sortedScores[i]-sortedScores[i+1])
	}
	gap := func(i int) float64 {
		if i < len(gaps) {
			return gaps[i]
		}
		return 0
	}

	switch {
	case gap(0) > cfg.DominantGapThreshold:
		return scenarioPayload(models.ScenarioDominantFavorite, n)
	case gap(0) > cfg.ClearTop2GapThreshold && gap(1) > cfg.ClearTop2GapThreshold:
		return scenarioPayload(models.ScenarioClearTop2, n)
	case gap(0) <= cfg.GroupedGapThreshold && gap(1) <= cfg.GroupedGapThreshold:
		switch {
		case n > 4 && gap(2) <= cfg.GroupedGapThreshold && gap(3) <= cfg.GroupedGapThreshold:
			return scenarioPayload(models.ScenarioGroupedTop5, n)
		case n > 3 && gap(2) <= cfg.GroupedGapThreshold:
			return scenarioPayload(models.ScenarioGroupedTop4, n)
		default:
			return scenarioPayload(models.ScenarioGroupedTop3, n)
		}
	default:
		return scenarioPayload(models.ScenarioStandardTop3, n)
	}
}
