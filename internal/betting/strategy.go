package betting

import (
	"sort"

	"github.com/yourusername/pmu-edge/internal/combination"
	"github.com/yourusername/pmu-edge/internal/models"
)

// RecommenderConfig fixes the combination wagering policy. The assumed
// payouts are conservative placeholders for pool rapports that are unknown
// before the race closes.
type RecommenderConfig struct {
	BaseStake           float64
	TierceAssumedPayout float64
	QuinteAssumedPayout float64
	MaxStakeMultiple    float64 // per-combination cap as a multiple of BaseStake
}

// DefaultRecommenderConfig returns the production combination policy
func DefaultRecommenderConfig() RecommenderConfig {
	return RecommenderConfig{
		BaseStake:           2,
		TierceAssumedPayout: 50,
		QuinteAssumedPayout: 500,
		MaxStakeMultiple:    2,
	}
}

// PlannedBet is one funded combination in a betting plan
type PlannedBet struct {
	Combination models.Combination `json:"combination"`
	Stake       float64            `json:"stake"`
}

// Plan is a budget-bounded set of combination bets for one race
type Plan struct {
	Bets           []PlannedBet `json:"bets"`
	TotalStake     float64      `json:"total_stake"`
	Budget         float64      `json:"budget"`
	RemainingFunds float64      `json:"remaining_funds"`
}

// Recommender screens combinations by expected value and fits the
// profitable ones into a fixed budget.
type Recommender struct {
	cfg RecommenderConfig
}

// NewRecommender creates a combination bet recommender
func NewRecommender(cfg RecommenderConfig) *Recommender {
	return &Recommender{cfg: cfg}
}

// BuildPlan attaches an EV breakdown to every candidate, keeps the
// profitable ones ordered by expected value, and funds them greedily until
// the budget runs out. Each bet gets the base stake, capped both by the
// per-combination multiple and by what remains of the budget; a remainder
// below the base stake stops the plan rather than placing an underfunded
// bet.
func (r *Recommender) BuildPlan(combos []models.Combination, budget float64) Plan {
	plan := Plan{Bets: []PlannedBet{}, Budget: budget, RemainingFunds: budget}
	if budget < r.cfg.BaseStake {
		return plan
	}

	candidates := make([]models.Combination, 0, len(combos))
	for _, c := range combos {
		ev := combination.ComputeEV(c.Probability, r.cfg.BaseStake, r.assumedPayout(c.Type))
		if !ev.IsProfitable {
			continue
		}
		c.EV = ev
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].EV.Value > candidates[j].EV.Value
	})

	remaining := budget
	for _, c := range candidates {
		if remaining < r.cfg.BaseStake {
			break
		}
		stake := r.cfg.BaseStake * r.cfg.MaxStakeMultiple
		if stake > remaining {
			stake = remaining
		}
		// The cap only stretches the stake for standout EV; everything
		// else stays at base.
		if c.EV.Percentage < 100 {
			stake = r.cfg.BaseStake
		}
		plan.Bets = append(plan.Bets, PlannedBet{Combination: c, Stake: round2(stake)})
		remaining -= stake
	}

	plan.TotalStake = round2(budget - remaining)
	plan.RemainingFunds = round2(remaining)
	return plan
}

func (r *Recommender) assumedPayout(t models.CombinationType) float64 {
	if t == models.QuinteDesordre {
		return r.cfg.QuinteAssumedPayout
	}
	return r.cfg.TierceAssumedPayout
}
