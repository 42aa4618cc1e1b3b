// Package betting turns model probabilities into stake recommendations:
// fractional Kelly sizing for straight bets and an EV screen for
// combination wagers.
package betting

import (
	"fmt"
	"math"

	"github.com/yourusername/pmu-edge/internal/models"
)

// SizerConfig fixes the staking policy
type SizerConfig struct {
	Fraction     float64 // applied to full Kelly; 0.25 = quarter Kelly
	MinThreshold float64 // fractional Kelly below this is not a value bet
	MinStake     float64 // bets sized under this are rounded up to it
}

// DefaultSizerConfig returns the production staking policy: quarter Kelly
// with a 0.1% floor and a 1 euro minimum stake.
func DefaultSizerConfig() SizerConfig {
	return SizerConfig{
		Fraction:     0.25,
		MinThreshold: 0.001,
		MinStake:     1,
	}
}

// Sizer computes Kelly stake recommendations. Stateless and safe for
// concurrent use.
type Sizer struct {
	cfg SizerConfig
}

// NewSizer creates a stake sizer
func NewSizer(cfg SizerConfig) *Sizer {
	return &Sizer{cfg: cfg}
}

// Recommend sizes a straight bet from the model probability (0-100 scale),
// decimal odds and current bankroll. Unpriceable inputs (missing odds, odds
// at or under evens, probability outside (0, 100]) and negative-edge inputs
// are both valid outcomes, not errors: the recommendation comes back with
// IsValue false and a zero stake. An error means the bankroll itself is
// unusable.
func (s *Sizer) Recommend(probability float64, odds *float64, bankroll float64) (models.KellyRecommendation, error) {
	var rec models.KellyRecommendation

	if odds == nil || *odds <= 1 {
		return rec, nil
	}
	if probability <= 0 || probability > 100 {
		return rec, nil
	}
	if bankroll < 0 {
		return rec, fmt.Errorf("kelly: negative bankroll %.2f", bankroll)
	}

	b := *odds - 1
	p := probability / 100
	q := 1 - p

	full := (b*p - q) / b
	fractional := full * s.cfg.Fraction
	implied := 100.0 / *odds

	rec = models.KellyRecommendation{
		FullKellyPct:       round2(full * 100),
		FractionalKellyPct: round2(fractional * 100),
		Edge:               round4(b*p - q),
		ExpectedValuePct:   round2((p**odds - 1) * 100),
		ImpliedProbability: round2(implied),
		ProbabilityEdge:    round2(probability - implied),
		ROIPerBet:          round4((b*p - q) / math.Max(s.cfg.MinThreshold, fractional)),
	}

	if fractional <= s.cfg.MinThreshold {
		return rec, nil
	}

	rec.IsValue = true
	stake := bankroll * fractional
	if stake < s.cfg.MinStake {
		stake = s.cfg.MinStake
	}
	rec.RecommendedStake = round2(stake)

	return rec, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
