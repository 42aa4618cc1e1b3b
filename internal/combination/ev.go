package combination

import (
	"math"

	"github.com/yourusername/pmu-edge/internal/models"
)

// ComputeEV builds the profit/loss breakdown for a combination probability
// (0-100 scale) at the given stake and assumed payout.
func ComputeEV(probability, stake, estimatedPayout float64) *models.ExpectedValue {
	p := probability / 100
	gain := p * estimatedPayout * stake
	loss := (1 - p) * stake
	value := gain - loss

	var pct float64
	if stake > 0 {
		pct = math.Round(value/stake*10000) / 100
	}
	return &models.ExpectedValue{
		Stake:           stake,
		EstimatedPayout: estimatedPayout,
		Probability:     probability,
		ExpectedGain:    round2(gain),
		ExpectedLoss:    round2(loss),
		Value:           round2(value),
		Percentage:      pct,
		IsProfitable:    value > 0,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
