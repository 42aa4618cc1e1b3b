package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/pmu-edge/internal/betting"
	"github.com/yourusername/pmu-edge/internal/combination"
	"github.com/yourusername/pmu-edge/internal/models"
	"github.com/yourusername/pmu-edge/internal/prediction"
	"github.com/yourusername/pmu-edge/internal/repository"
)

func newTestPredictionService(repos *repository.Repositories) *PredictionService {
	return NewPredictionService(
		repos,
		prediction.DefaultConfig(),
		combination.NewGenerator(combination.DefaultConfig()),
		betting.NewAnalyzer(betting.NewSizer(betting.DefaultSizerConfig()), quietLogger()),
		betting.NewRecommender(betting.DefaultRecommenderConfig()),
		DefaultPredictionOptions(),
		quietLogger(),
	)
}

func seedRaceWithField(t *testing.T) (*repository.Repositories, *models.Race) {
	t.Helper()

	repos := newFakeRepositories()
	race := &models.Race{
		ID:            uuid.New(),
		RaceDate:      testDay.Add(13 * time.Hour),
		RaceCode:      "R1C1",
		ReunionNumber: 1,
		CourseNumber:  1,
		Hippodrome:    "VINCENNES",
		Discipline:    "ATTELE",
		Distance:      2700,
		Status:        "scheduled",
	}
	require.NoError(t, repos.Race.Create(context.Background(), race))

	musiques := []string{"1p1p2p", "2p3p1p", "4p2p5p", "6p7p0p", "0p9p8p"}
	oddsList := []float64{2.1, 4.5, 8.0, 15.0, 30.0}
	perfs := make([]*models.Performance, len(musiques))
	for i := range musiques {
		odds := oddsList[i]
		perfs[i] = &models.Performance{
			ID:         uuid.New(),
			RaceID:     race.ID,
			HorseID:    string(rune('A' + i)),
			HorseName:  "HORSE " + string(rune('A'+i)),
			RawMusique: musiques[i],
			OddsRef:    &odds,
		}
	}
	require.NoError(t, repos.Performance.CreateBatch(context.Background(), perfs))

	return repos, race
}

func TestPredictRaceSmallFieldSkipsBets(t *testing.T) {
	repos, race := seedRaceWithField(t)

	opts := DefaultPredictionOptions()
	opts.MinFieldSize = 6 // above the seeded 5-horse field
	svc := NewPredictionService(
		repos,
		prediction.DefaultConfig(),
		combination.NewGenerator(combination.DefaultConfig()),
		betting.NewAnalyzer(betting.NewSizer(betting.DefaultSizerConfig()), quietLogger()),
		betting.NewRecommender(betting.DefaultRecommenderConfig()),
		opts,
		quietLogger(),
	)

	rp, err := svc.PredictRace(context.Background(), race.ID)
	require.NoError(t, err)

	// The field is still scored, but nothing is offered for betting.
	require.Len(t, rp.Predictions, 5)
	assert.Empty(t, rp.ValueBets.ValueBets)
	assert.Zero(t, rp.ValueBets.TotalStake)
	assert.Empty(t, rp.Combinations.TierceOrdre)
	assert.Empty(t, rp.Combinations.TierceDesordre)
	assert.Empty(t, rp.Combinations.QuinteDesordre)
	assert.Empty(t, rp.Plan.Bets)
}

func TestPredictRacePipeline(t *testing.T) {
	repos, race := seedRaceWithField(t)
	svc := newTestPredictionService(repos)

	rp, err := svc.PredictRace(context.Background(), race.ID)
	require.NoError(t, err)
	require.Len(t, rp.Predictions, 5)
	assert.False(t, rp.Cached)

	// Probabilities sum to 100 and ranks are sequential.
	sum := 0.0
	for i, pred := range rp.Predictions {
		sum += pred.Probability
		assert.Equal(t, i+1, pred.Rank)
	}
	assert.InDelta(t, 100.0, sum, 0.5)

	// The scenario is attached and mirrored on the summary.
	require.NotNil(t, rp.Predictions[0].Scenario)
	assert.Equal(t, rp.Predictions[0].Scenario.Kind, rp.Scenario)

	// Combinations exist for a 5-horse field; the quintuple covers the
	// whole field and is certain to land.
	assert.NotEmpty(t, rp.Combinations.TierceOrdre)
	assert.NotEmpty(t, rp.Combinations.TierceDesordre)
	require.Len(t, rp.Combinations.QuinteDesordre, 1)
	assert.InDelta(t, 100.0, rp.Combinations.QuinteDesordre[0].Probability, 1e-9)

	// The run is stored for later evaluation.
	record, err := repos.PredictionRecord.GetByRaceID(context.Background(), race.ID)
	require.NoError(t, err)
	assert.Len(t, record.Predictions, 5)
	assert.Equal(t, rp.Scenario, record.ScenarioDetected)
}

func TestPredictRaceUsesCache(t *testing.T) {
	repos, race := seedRaceWithField(t)
	svc := newTestPredictionService(repos)

	first, err := svc.PredictRace(context.Background(), race.ID)
	require.NoError(t, err)

	second, err := svc.PredictRace(context.Background(), race.ID)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Predictions, second.Predictions)

	svc.InvalidateCache(race.ID)
	third, err := svc.PredictRace(context.Background(), race.ID)
	require.NoError(t, err)
	assert.False(t, third.Cached)
}

func TestPredictRaceUnknownRace(t *testing.T) {
	repos := newFakeRepositories()
	svc := newTestPredictionService(repos)

	_, err := svc.PredictRace(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestPredictByCode(t *testing.T) {
	repos, race := seedRaceWithField(t)
	svc := newTestPredictionService(repos)

	rp, err := svc.PredictByCode(context.Background(), testDay, "R1C1")
	require.NoError(t, err)
	assert.Equal(t, race.ID, rp.Race.ID)

	_, err = svc.PredictByCode(context.Background(), testDay, "R9C9")
	require.Error(t, err)
}

func TestStoreRecommendations(t *testing.T) {
	repos, race := seedRaceWithField(t)
	svc := newTestPredictionService(repos)

	rp, err := svc.PredictRace(context.Background(), race.ID)
	require.NoError(t, err)
	require.NoError(t, svc.StoreRecommendations(context.Background(), rp))

	daily, err := repos.Bet.GetDailyBets(context.Background(), testDay)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, rp.Predictions[0].HorseID, daily[0].HorseID)
	assert.Equal(t, "2", daily[0].Stake.String())

	value, err := repos.Bet.GetValueBets(context.Background(), testDay)
	require.NoError(t, err)
	assert.Len(t, value, rp.ValueBets.Count)

	combos, err := repos.Bet.GetCombinations(context.Background(), testDay)
	require.NoError(t, err)
	assert.Len(t, combos, len(rp.Plan.Bets))
}
