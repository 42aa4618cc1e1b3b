package models

// CombinationType identifies a multi-pick PMU bet shape
type CombinationType string

// Supported combination bet types
const (
	TierceOrdre    CombinationType = "TIERCE_ORDRE"
	TierceDesordre CombinationType = "TIERCE_DESORDRE"
	QuinteDesordre CombinationType = "QUINTE_DESORDRE"
)

// Size returns the number of picks the bet type requires
func (t CombinationType) Size() int {
	if t == QuinteDesordre {
		return 5
	}
	return 3
}

// Ordered reports whether picks must match the finishing order exactly
func (t CombinationType) Ordered() bool {
	return t == TierceOrdre
}

// ExpectedValue is the profit/loss breakdown for a combination at a given
// stake and assumed payout.
type ExpectedValue struct {
	Stake           float64 `json:"stake"`
	EstimatedPayout float64 `json:"estimated_payout"`
	Probability     float64 `json:"probability"`
	ExpectedGain    float64 `json:"expected_gain"`
	ExpectedLoss    float64 `json:"expected_loss"`
	Value           float64 `json:"expected_value"`
	Percentage      float64 `json:"ev_percentage"`
	IsProfitable    bool    `json:"is_profitable"`
}

// Combination represents one candidate multi-pick wager. Probability is on
// the 0-100 scale; EstimatedOdds approximate the pool payout per unit stake.
type Combination struct {
	Type          CombinationType `json:"type"`
	HorseIDs      []string        `json:"horse_ids"`
	HorseNames    []string        `json:"horses"`
	Probability   float64         `json:"probability"`
	EstimatedOdds float64         `json:"estimated_odds"`
	BaseRanks     []int           `json:"base_ranks"`
	EV            *ExpectedValue  `json:"ev_analysis,omitempty"`
}
