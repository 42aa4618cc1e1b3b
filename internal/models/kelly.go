package models

// KellyRecommendation is the stake sizing output for one candidate bet.
// Percent fields are on the 0-100 scale; Edge is per unit staked.
type KellyRecommendation struct {
	IsValue            bool    `json:"is_value"`
	FullKellyPct       float64 `json:"full_kelly"`
	FractionalKellyPct float64 `json:"kelly_fraction"`
	RecommendedStake   float64 `json:"recommended_stake"`
	Edge               float64 `json:"edge"`
	ExpectedValuePct   float64 `json:"expected_value"`
	ImpliedProbability float64 `json:"implied_probability"`
	ProbabilityEdge    float64 `json:"probability_edge"`
	ROIPerBet          float64 `json:"roi_per_bet"`
}

// RaceValueBet couples a prediction with its Kelly sizing for reporting
type RaceValueBet struct {
	HorseID     string              `json:"horse_id"`
	HorseName   string              `json:"horse_name"`
	Probability float64             `json:"probability"`
	Odds        float64             `json:"odds"`
	Kelly       KellyRecommendation `json:"kelly_data"`
}

// RaceValueBetSummary aggregates the value bets found in one race
type RaceValueBetSummary struct {
	ValueBets          []RaceValueBet `json:"value_bets"`
	Count              int            `json:"count"`
	TotalStake         float64        `json:"total_stake"`
	BankrollUsagePct   float64        `json:"bankroll_usage"`
	TotalExpectedValue float64        `json:"total_expected_value"`
}
