package betting

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/pmu-edge/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestAnalyzeRace(t *testing.T) {
	analyzer := NewAnalyzer(NewSizer(DefaultSizerConfig()), quietLogger())

	preds := []models.Prediction{
		{HorseID: "A", HorseName: "Alpha", Probability: 50, OddsRef: floatPtr(3.0)},   // strong value
		{HorseID: "B", HorseName: "Bravo", Probability: 30, OddsRef: floatPtr(4.0)},   // mild value
		{HorseID: "C", HorseName: "Charlie", Probability: 10, OddsRef: floatPtr(5.0)}, // losing bet
		{HorseID: "D", HorseName: "Delta", Probability: 8},                            // no odds
	}

	summary := analyzer.AnalyzeRace(preds, 1000)

	require.Equal(t, 2, summary.Count)
	assert.Equal(t, "A", summary.ValueBets[0].HorseID, "highest EV first")
	assert.Equal(t, "B", summary.ValueBets[1].HorseID)

	var stakes float64
	for _, vb := range summary.ValueBets {
		assert.True(t, vb.Kelly.IsValue)
		stakes += vb.Kelly.RecommendedStake
	}
	assert.InDelta(t, stakes, summary.TotalStake, 0.01)
	assert.InDelta(t, summary.TotalStake/1000*100, summary.BankrollUsagePct, 0.01)
}

func TestAnalyzeRaceNoValue(t *testing.T) {
	analyzer := NewAnalyzer(NewSizer(DefaultSizerConfig()), quietLogger())

	preds := []models.Prediction{
		{HorseID: "A", Probability: 10, OddsRef: floatPtr(2.0)},
		{HorseID: "B", Probability: 15, OddsRef: floatPtr(3.0)},
	}

	summary := analyzer.AnalyzeRace(preds, 500)
	assert.Zero(t, summary.Count)
	assert.Empty(t, summary.ValueBets)
	assert.Zero(t, summary.TotalStake)
}

func TestAnalyzeRaceEmptyField(t *testing.T) {
	analyzer := NewAnalyzer(NewSizer(DefaultSizerConfig()), quietLogger())
	summary := analyzer.AnalyzeRace(nil, 500)
	assert.Zero(t, summary.Count)
	assert.NotNil(t, summary.ValueBets)
}
