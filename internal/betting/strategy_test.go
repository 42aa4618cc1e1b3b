package betting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/pmu-edge/internal/models"
)

func tierce(probability float64) models.Combination {
	return models.Combination{
		Type:        models.TierceDesordre,
		HorseIDs:    []string{"A", "B", "C"},
		Probability: probability,
	}
}

func TestBuildPlanScreensByEV(t *testing.T) {
	rec := NewRecommender(DefaultRecommenderConfig())

	combos := []models.Combination{
		tierce(20), // EV on a 2 stake at payout 50: strongly positive
		tierce(1),  // EV negative, must be dropped
		{Type: models.QuinteDesordre, HorseIDs: []string{"A", "B", "C", "D", "E"}, Probability: 2}, // 2% at 500
	}

	plan := rec.BuildPlan(combos, 100)

	require.Len(t, plan.Bets, 2)
	for _, bet := range plan.Bets {
		require.NotNil(t, bet.Combination.EV)
		assert.True(t, bet.Combination.EV.IsProfitable)
		assert.GreaterOrEqual(t, bet.Stake, rec.cfg.BaseStake)
	}

	// Ordered by expected value, best first.
	assert.GreaterOrEqual(t, plan.Bets[0].Combination.EV.Value, plan.Bets[1].Combination.EV.Value)
	assert.InDelta(t, plan.TotalStake+plan.RemainingFunds, plan.Budget, 1e-9)
}

func TestBuildPlanRespectsBudget(t *testing.T) {
	rec := NewRecommender(DefaultRecommenderConfig())

	combos := make([]models.Combination, 10)
	for i := range combos {
		combos[i] = tierce(30)
	}

	plan := rec.BuildPlan(combos, 10)
	assert.LessOrEqual(t, plan.TotalStake, 10.0)
	assert.GreaterOrEqual(t, plan.RemainingFunds, 0.0)
	assert.NotEmpty(t, plan.Bets)
}

func TestBuildPlanBudgetTooSmall(t *testing.T) {
	rec := NewRecommender(DefaultRecommenderConfig())

	plan := rec.BuildPlan([]models.Combination{tierce(30)}, 1)
	assert.Empty(t, plan.Bets)
	assert.Equal(t, 1.0, plan.RemainingFunds)
}

func TestBuildPlanStretchesStakeForStandoutEV(t *testing.T) {
	rec := NewRecommender(DefaultRecommenderConfig())

	// 20% at a 50 payout on a 2 stake: EV percentage is well over 100,
	// so the stake stretches to the per-combination cap.
	plan := rec.BuildPlan([]models.Combination{tierce(20)}, 100)
	require.Len(t, plan.Bets, 1)
	assert.Equal(t, rec.cfg.BaseStake*rec.cfg.MaxStakeMultiple, plan.Bets[0].Stake)

	// 3% at 50 is barely profitable (EV percentage 53): base stake only.
	plan = rec.BuildPlan([]models.Combination{tierce(3)}, 100)
	require.Len(t, plan.Bets, 1)
	assert.Equal(t, rec.cfg.BaseStake, plan.Bets[0].Stake)
}
