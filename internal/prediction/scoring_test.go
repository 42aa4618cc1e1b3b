package prediction

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/pmu-edge/internal/models"
)

const testYear = 2025

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// fixedStats is a canned StatsProvider for scoring tests
type fixedStats struct {
	career  map[string]models.CareerStats
	jockeys map[int64]float64
	synergy map[[2]int64]float64
}

func (s *fixedStats) CareerStats(horseID string) (models.CareerStats, bool) {
	stats, ok := s.career[horseID]
	return stats, ok
}

func (s *fixedStats) JockeyWinRate(jockeyID int64) (float64, bool) {
	rate, ok := s.jockeys[jockeyID]
	return rate, ok
}

func (s *fixedStats) SynergyRate(jockeyID, trainerID int64) (float64, bool) {
	rate, ok := s.synergy[[2]int64{jockeyID, trainerID}]
	return rate, ok
}

func intPtr(v int) *int           { return &v }
func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }

func perfWithMusique(horseID, musique string) *models.Performance {
	return &models.Performance{HorseID: horseID, HorseName: horseID, RawMusique: musique}
}

func TestScoreStaysWithinBounds(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, testYear, testLogger())

	perfs := []*models.Performance{
		perfWithMusique("perfect", "1p1p1p1p1p"),
		perfWithMusique("awful", "DaDaDaDaDa"),
		perfWithMusique("unknown", ""),
		{HorseID: "heavy", RawMusique: "1p", Weight: intPtr(72000)},
	}

	for _, perf := range perfs {
		score := engine.Score(perf, len(perfs))
		assert.GreaterOrEqual(t, score, 1.0, "horse %s", perf.HorseID)
		assert.LessOrEqual(t, score, 100.0, "horse %s", perf.HorseID)
	}
}

func TestScoreBetterFormScoresHigher(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, testYear, testLogger())

	winner := engine.Score(perfWithMusique("a", "1p1p1p"), 10)
	midfield := engine.Score(perfWithMusique("b", "5p5p5p"), 10)
	straggler := engine.Score(perfWithMusique("c", "9p8p9p"), 10)

	assert.Greater(t, winner, midfield)
	assert.Greater(t, midfield, straggler)
}

func TestScoreRecencyWeighting(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, testYear, testLogger())

	// Same outcomes, but the wins are current-year for one horse and
	// two seasons back for the other.
	recent := engine.Score(perfWithMusique("a", "1p1p(23)9p9p"), 10)
	stale := engine.Score(perfWithMusique("b", "9p9p(23)1p1p"), 10)

	assert.Greater(t, recent, stale)
}

func TestScoreEmptyMusiqueIsNeutralNotZero(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, testYear, testLogger())

	neutral := engine.Score(perfWithMusique("a", ""), 10)
	bad := engine.Score(perfWithMusique("b", "DaDaDa"), 10)

	// No history must not be treated as proven bad history.
	assert.Greater(t, neutral, bad)
}

func TestScoreDeterministic(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, testYear, testLogger())
	perf := perfWithMusique("a", "1p2p(24)3p1p(23)5p")

	first := engine.Score(perf, 12)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, engine.Score(perf, 12))
	}
}

func TestClassScore(t *testing.T) {
	stats := &fixedStats{career: map[string]models.CareerStats{
		"proven": {Starts: 20, Completed: 20, Wins: 10, TotalEarnings: 200000},
		"green":  {Starts: 2, Completed: 2, Wins: 2, TotalEarnings: 10000},
	}}
	engine := NewEngine(DefaultConfig(), stats, testYear, testLogger())

	proven, err := engine.classScore(perfWithMusique("proven", ""))
	require.NoError(t, err)
	green, err := engine.classScore(perfWithMusique("green", ""))
	require.NoError(t, err)

	// The proven horse has a lower win rate but a full confidence sample;
	// the 100% win rate on two starts is heavily discounted.
	assert.Greater(t, proven, green)

	unknown, err := engine.classScore(perfWithMusique("nobody", ""))
	require.NoError(t, err)
	assert.Equal(t, engine.cfg.NeutralScore, unknown)
}

func TestConnectionsScore(t *testing.T) {
	stats := &fixedStats{
		jockeys: map[int64]float64{1: 18, 2: 4},
		synergy: map[[2]int64]float64{{1, 7}: 25},
	}
	engine := NewEngine(DefaultConfig(), stats, testYear, testLogger())

	hot := &models.Performance{HorseID: "a", JockeyID: int64Ptr(1), TrainerID: int64Ptr(7)}
	cold := &models.Performance{HorseID: "b", JockeyID: int64Ptr(2)}
	anonymous := &models.Performance{HorseID: "c"}

	hotScore, err := engine.connectionsScore(hot)
	require.NoError(t, err)
	coldScore, err := engine.connectionsScore(cold)
	require.NoError(t, err)
	anonScore, err := engine.connectionsScore(anonymous)
	require.NoError(t, err)

	assert.Greater(t, hotScore, anonScore)
	assert.Less(t, coldScore, anonScore)
	assert.Equal(t, engine.cfg.NeutralScore, anonScore)
}

func TestAptitudeWeightMonotonic(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, testYear, testLogger())

	weights := []int{54000, 58000, 60000, 62000, 66000}
	prev := 11.0
	for _, w := range weights {
		perf := &models.Performance{HorseID: "a", Weight: intPtr(w)}
		score, err := engine.aptitudeScore(perf, 0)
		require.NoError(t, err)
		assert.LessOrEqual(t, score, prev, "weight %d must not score above lighter weights", w)
		prev = score
	}
}

func TestAptitudeDraw(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, testYear, testLogger())

	inside := &models.Performance{HorseID: "a", Draw: intPtr(2)}
	outside := &models.Performance{HorseID: "b", Draw: intPtr(15)}
	middle := &models.Performance{HorseID: "c", Draw: intPtr(8)}

	insideScore, err := engine.aptitudeScore(inside, 16)
	require.NoError(t, err)
	outsideScore, err := engine.aptitudeScore(outside, 16)
	require.NoError(t, err)
	middleScore, err := engine.aptitudeScore(middle, 16)
	require.NoError(t, err)

	assert.Greater(t, insideScore, middleScore)
	assert.Less(t, outsideScore, middleScore)
}

func TestAptitudeRejectsCorruptData(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, testYear, testLogger())

	_, err := engine.aptitudeScore(&models.Performance{HorseID: "a", Draw: intPtr(-3)}, 10)
	assert.Error(t, err)

	_, err = engine.aptitudeScore(&models.Performance{HorseID: "b", Weight: intPtr(400000)}, 10)
	assert.Error(t, err)
}

func TestScoreSurvivesBadSubScore(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, testYear, testLogger())

	// Corrupt weight fails the aptitude sub-score; the overall score must
	// still come back inside bounds instead of propagating an error.
	perf := &models.Performance{HorseID: "a", RawMusique: "1p1p", Weight: intPtr(400000)}
	score := engine.Score(perf, 10)
	assert.GreaterOrEqual(t, score, 1.0)
	assert.LessOrEqual(t, score, 100.0)

	// The failed sub-score is replaced by the neutral default, so the
	// result matches the same entrant with no weight recorded at all.
	neutral := engine.Score(&models.Performance{HorseID: "a", RawMusique: "1p1p"}, 10)
	assert.Equal(t, neutral, score)
}
