package models

import (
	"time"

	"github.com/google/uuid"
)

// ScenarioKind classifies how concentrated predicted ability is among the
// front-runners of a field.
type ScenarioKind string

// Race shape scenarios, ordered roughly from most to least concentrated
const (
	ScenarioInsufficientData ScenarioKind = "INSUFFICIENT_DATA"
	ScenarioDominantFavorite ScenarioKind = "DOMINANT_FAVORITE"
	ScenarioClearTop2        ScenarioKind = "CLEAR_TOP_2"
	ScenarioGroupedTop3      ScenarioKind = "GROUPED_TOP_3"
	ScenarioGroupedTop4      ScenarioKind = "GROUPED_TOP_4"
	ScenarioGroupedTop5      ScenarioKind = "GROUPED_TOP_5"
	ScenarioStandardTop3     ScenarioKind = "STANDARD_TOP_3"
)

// Scenario carries the probability split for a detected race shape.
// FixedShares, when present, pins the per-rank percentages of the top group
// instead of distributing TopPercentage proportionally to score.
type Scenario struct {
	Kind           ScenarioKind `json:"scenario"`
	TopSize        int          `json:"top_size"`
	TopPercentage  float64      `json:"top_percentage"`
	RestPercentage float64      `json:"rest_percentage"`
	FixedShares    []float64    `json:"fixed_shares,omitempty"`
}

// Prediction represents one entrant's ranked win estimate for a race.
// Scenario is attached to the rank-1 entry only.
type Prediction struct {
	HorseID     string    `json:"horse_id"`
	HorseName   string    `json:"horse_name"`
	JockeyName  string    `json:"jockey_name,omitempty"`
	Score       float64   `json:"score"`
	Probability float64   `json:"probability"`
	OddsRef     *float64  `json:"odds_ref"`
	ValueBet    bool      `json:"value_bet"`
	Rank        int       `json:"rank"`
	Draw        *int      `json:"draw,omitempty"`
	Weight      *int      `json:"weight,omitempty"`
	InTopGroup  bool      `json:"in_top_group"`
	Scenario    *Scenario `json:"race_scenario,omitempty"`
}

// ImpliedProbability returns the market-implied win percentage, or 0 when
// no usable odds are attached.
func (p *Prediction) ImpliedProbability() float64 {
	if p.OddsRef == nil || *p.OddsRef <= 0 {
		return 0
	}
	return 100.0 / *p.OddsRef
}

// PredictionRecord is a stored prediction run for a race, kept for
// after-the-fact accuracy tracking.
type PredictionRecord struct {
	ID                  uuid.UUID    `db:"id" json:"id"`
	RaceID              uuid.UUID    `db:"race_id" json:"race_id" validate:"required,uuid4"`
	Predictions         []Prediction `db:"predictions" json:"predictions"`
	ScenarioDetected    ScenarioKind `db:"scenario_detected" json:"scenario_detected"`
	AccuracyScore       *float64     `db:"accuracy_score" json:"accuracy_score"`
	Top3Accuracy        *float64     `db:"top_3_accuracy" json:"top_3_accuracy"`
	WinnerRankPredicted *int         `db:"winner_rank_predicted" json:"winner_rank_predicted"`
	CreatedAt           time.Time    `db:"created_at" json:"created_at"`
}
