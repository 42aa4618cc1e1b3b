package betting

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/pmu-edge/internal/models"
)

// Analyzer screens a predicted race for sized value bets
type Analyzer struct {
	sizer  *Sizer
	logger *logrus.Logger
}

// NewAnalyzer creates a race analyzer around a stake sizer
func NewAnalyzer(sizer *Sizer, logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Analyzer{sizer: sizer, logger: logger}
}

// AnalyzeRace sizes every priced entrant and keeps the ones the Kelly
// criterion clears. Entrants without usable odds are skipped silently;
// sizing failures on priced entrants are logged and skipped. The result is
// sorted by descending expected value with aggregate stake totals.
func (a *Analyzer) AnalyzeRace(preds []models.Prediction, bankroll float64) models.RaceValueBetSummary {
	summary := models.RaceValueBetSummary{ValueBets: []models.RaceValueBet{}}

	for _, pred := range preds {
		if pred.OddsRef == nil || *pred.OddsRef <= 1 {
			continue
		}

		rec, err := a.sizer.Recommend(pred.Probability, pred.OddsRef, bankroll)
		if err != nil {
			a.logger.WithError(err).WithField("horse_id", pred.HorseID).Warn("Skipping unsizeable entrant")
			continue
		}
		if !rec.IsValue {
			continue
		}

		summary.ValueBets = append(summary.ValueBets, models.RaceValueBet{
			HorseID:     pred.HorseID,
			HorseName:   pred.HorseName,
			Probability: pred.Probability,
			Odds:        *pred.OddsRef,
			Kelly:       rec,
		})
		summary.TotalStake += rec.RecommendedStake
		summary.TotalExpectedValue += rec.ExpectedValuePct
	}

	sort.SliceStable(summary.ValueBets, func(i, j int) bool {
		return summary.ValueBets[i].Kelly.ExpectedValuePct > summary.ValueBets[j].Kelly.ExpectedValuePct
	})

	summary.Count = len(summary.ValueBets)
	summary.TotalStake = round2(summary.TotalStake)
	summary.TotalExpectedValue = round2(summary.TotalExpectedValue)
	if bankroll > 0 {
		summary.BankrollUsagePct = round2(summary.TotalStake / bankroll * 100)
	}

	return summary
}
