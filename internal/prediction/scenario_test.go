package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/pmu-edge/internal/models"
)

func TestDetectScenario(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		scores   []float64
		expected models.ScenarioKind
	}{
		{
			name:     "dominant favorite on large first gap",
			scores:   []float64{80, 60, 55, 50, 45},
			expected: models.ScenarioDominantFavorite,
		},
		{
			name:     "clear top two",
			scores:   []float64{80, 68, 55, 50, 45},
			expected: models.ScenarioClearTop2,
		},
		{
			name:     "grouped top three",
			scores:   []float64{60, 58, 56, 40, 30},
			expected: models.ScenarioGroupedTop3,
		},
		{
			name:     "grouped top four",
			scores:   []float64{60, 58, 56, 54, 30},
			expected: models.ScenarioGroupedTop4,
		},
		{
			name:     "grouped top five",
			scores:   []float64{60, 58, 56, 54, 52, 30},
			expected: models.ScenarioGroupedTop5,
		},
		{
			name:     "standard otherwise",
			scores:   []float64{60, 52, 44, 36, 28},
			expected: models.ScenarioStandardTop3,
		},
		{
			name:     "fewer than three entrants",
			scores:   []float64{60, 52},
			expected: models.ScenarioInsufficientData,
		},
		{
			name:     "empty field",
			scores:   nil,
			expected: models.ScenarioInsufficientData,
		},
		{
			name:     "gap exactly at dominant threshold is not dominant",
			scores:   []float64{60, 45, 34, 33},
			expected: models.ScenarioClearTop2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectScenario(tt.scores, cfg)
			assert.Equal(t, tt.expected, got.Kind)
		})
	}
}

func TestDetectScenarioGroupedCapsAtFieldSize(t *testing.T) {
	cfg := DefaultConfig()

	// Four tightly grouped horses cannot produce a top-5 scenario.
	got := DetectScenario([]float64{60, 58, 56, 54}, cfg)
	assert.Equal(t, models.ScenarioGroupedTop4, got.Kind)

	got = DetectScenario([]float64{60, 58, 56}, cfg)
	assert.Equal(t, models.ScenarioGroupedTop3, got.Kind)
}

func TestScenarioPayloadShares(t *testing.T) {
	dominant := scenarioPayload(models.ScenarioDominantFavorite, 12)
	assert.Equal(t, []float64{50, 18, 12}, dominant.FixedShares)
	assert.Equal(t, 80.0, dominant.TopPercentage)

	top2 := scenarioPayload(models.ScenarioClearTop2, 12)
	assert.Equal(t, []float64{38, 32}, top2.FixedShares)
	assert.Equal(t, 2, top2.TopSize)
}
