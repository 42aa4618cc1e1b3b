// Package prediction implements the per-entrant scoring engine, race-shape
// scenario detection and probability distribution for PMU races.
package prediction

// FormPoints maps a past finishing position to form points
type FormPoints struct {
	Win    float64
	Second float64
	Third  float64
	Fourth float64
	Fifth  float64
	DNF    float64
	Other  float64
}

// Config holds every tunable used by the scoring pipeline. Engines take it
// as a parameter so alternate tunings can be tested without recompilation.
type Config struct {
	// Sub-score weights, must sum to 1.0
	FormWeight        float64
	ClassWeight       float64
	ConnectionsWeight float64
	AptitudeWeight    float64

	// NeutralScore is substituted for any sub-score that cannot be computed
	NeutralScore float64

	// Form
	FormPoints  FormPoints
	YearWeights []float64 // index = years back; last entry covers anything older

	// Class
	ClassConfidenceFloor  int     // completed races needed for full confidence
	EarningsPerClassPoint float64 // euros of average earnings per class point
	EarningsPointsCap     float64

	// Connections
	ParJockeyWinRate float64 // percent; win rates above par raise the score
	JockeyRateWeight float64
	SynergyWeight    float64

	// Aptitude
	WeightReferenceKg  float64
	WeightPenaltyPerKg float64
	WeightBonusPerKg   float64
	WeightBonusCap     float64
	GoodDrawPercentile float64
	BadDrawPercentile  float64
	GoodDrawBand       int // fallback bands when field size is unknown
	BadDrawBand        int
	DrawBonus          float64
	DrawPenalty        float64

	// Final score clamp
	MinScore float64
	MaxScore float64

	// Scenario gap thresholds
	DominantGapThreshold  float64
	ClearTop2GapThreshold float64
	GroupedGapThreshold   float64

	// Value bet detection
	ValueEdgeRatio    float64 // model must exceed implied by this ratio
	ValueEdgeAbsolute float64 // or by this many percentage points
}

// DefaultConfig returns the production tuning. The value-bet and scenario
// thresholds are policy knobs; changing them changes which bets get flagged.
func DefaultConfig() Config {
	return Config{
		FormWeight:        0.4,
		ClassWeight:       0.25,
		ConnectionsWeight: 0.25,
		AptitudeWeight:    0.1,

		NeutralScore: 5.0,

		FormPoints: FormPoints{
			Win:    10,
			Second: 7,
			Third:  5,
			Fourth: 3.5,
			Fifth:  2.5,
			DNF:    0,
			Other:  1,
		},
		YearWeights: []float64{1.0, 0.5, 0.25, 0.1},

		ClassConfidenceFloor:  20,
		EarningsPerClassPoint: 5000,
		EarningsPointsCap:     5,

		ParJockeyWinRate: 10,
		JockeyRateWeight: 0.1,
		SynergyWeight:    0.05,

		WeightReferenceKg:  60,
		WeightPenaltyPerKg: 0.5,
		WeightBonusPerKg:   0.25,
		WeightBonusCap:     1.0,
		GoodDrawPercentile: 0.25,
		BadDrawPercentile:  0.75,
		GoodDrawBand:       3,
		BadDrawBand:        12,
		DrawBonus:          2,
		DrawPenalty:        2,

		MinScore: 1,
		MaxScore: 100,

		DominantGapThreshold:  15,
		ClearTop2GapThreshold: 10,
		GroupedGapThreshold:   5,

		ValueEdgeRatio:    1.2,
		ValueEdgeAbsolute: 5,
	}
}
