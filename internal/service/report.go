package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/pmu-edge/internal/models"
	"github.com/yourusername/pmu-edge/internal/repository"
)

// SettledBet is one daily or value pick with its realized outcome
type SettledBet struct {
	RaceID      string          `json:"race_id"`
	HorseID     string          `json:"horse_id"`
	HorseName   string          `json:"horse_name"`
	Probability float64         `json:"probability"`
	Stake       decimal.Decimal `json:"stake"`
	Won         bool            `json:"won"`
	Settled     bool            `json:"settled"`
	Return      decimal.Decimal `json:"return"`
}

// SettledCombination is one combination wager with its realized outcome
type SettledCombination struct {
	RaceID  string                 `json:"race_id"`
	Type    models.CombinationType `json:"type"`
	Horses  []string               `json:"horses"`
	Stake   decimal.Decimal        `json:"stake"`
	Won     bool                   `json:"won"`
	Settled bool                   `json:"settled"`
	Return  decimal.Decimal        `json:"return"`
}

// AccuracySummary aggregates the evaluated predictions of the day
type AccuracySummary struct {
	Evaluated        int     `json:"evaluated"`
	MeanAccuracy     float64 `json:"mean_accuracy"`
	MeanTop3Accuracy float64 `json:"mean_top3_accuracy"`
	WinnersFound     int     `json:"winners_found"`
}

// DailyReport summarizes one day of recommendations against the official
// results. Money fields use decimal arithmetic throughout.
type DailyReport struct {
	Date          time.Time            `json:"date"`
	DailyBets     []SettledBet         `json:"daily_bets"`
	ValueBets     []SettledBet         `json:"value_bets"`
	Combinations  []SettledCombination `json:"combinations"`
	TotalStaked   decimal.Decimal      `json:"total_staked"`
	TotalReturned decimal.Decimal      `json:"total_returned"`
	Profit        decimal.Decimal      `json:"profit"`
	ROIPct        decimal.Decimal      `json:"roi_pct"`
	Accuracy      AccuracySummary      `json:"accuracy"`
}

// ReportService builds end-of-day reports from stored bets and results
type ReportService struct {
	repos  *repository.Repositories
	logger *logrus.Logger
}

// NewReportService creates a new report service
func NewReportService(repos *repository.Repositories, log *logrus.Logger) *ReportService {
	if log == nil {
		log = logrus.New()
	}
	return &ReportService{repos: repos, logger: log}
}

// BuildDailyReport settles every stored bet of the day against the official
// results and aggregates stakes, returns and prediction accuracy. Bets on
// races without a stored result stay unsettled and count only their stake.
func (s *ReportService) BuildDailyReport(ctx context.Context, date time.Time) (*DailyReport, error) {
	report := &DailyReport{
		Date:          date,
		TotalStaked:   decimal.Zero,
		TotalReturned: decimal.Zero,
	}

	results, err := s.loadResults(ctx, date)
	if err != nil {
		return nil, err
	}

	dailyBets, err := s.repos.Bet.GetDailyBets(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily bets: %w", err)
	}
	for _, bet := range dailyBets {
		settled := s.settleWinBet(results[bet.RaceID.String()], bet.HorseID, bet.Odds, bet.Stake)
		settled.RaceID = bet.RaceID.String()
		settled.HorseID = bet.HorseID
		settled.HorseName = bet.HorseName
		settled.Probability = bet.Probability
		report.DailyBets = append(report.DailyBets, settled)
		report.TotalStaked = report.TotalStaked.Add(bet.Stake)
		report.TotalReturned = report.TotalReturned.Add(settled.Return)
	}

	valueBets, err := s.repos.Bet.GetValueBets(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load value bets: %w", err)
	}
	for _, bet := range valueBets {
		odds := bet.OfferedOdds
		settled := s.settleWinBet(results[bet.RaceID.String()], bet.HorseID, &odds, bet.RecommendedStake)
		settled.RaceID = bet.RaceID.String()
		settled.HorseID = bet.HorseID
		settled.HorseName = bet.HorseName
		settled.Probability = bet.Probability
		report.ValueBets = append(report.ValueBets, settled)
		report.TotalStaked = report.TotalStaked.Add(bet.RecommendedStake)
		report.TotalReturned = report.TotalReturned.Add(settled.Return)
	}

	combos, err := s.repos.Bet.GetCombinations(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load combinations: %w", err)
	}
	for _, combo := range combos {
		settled := s.settleCombination(results[combo.RaceID.String()], combo)
		report.Combinations = append(report.Combinations, settled)
		report.TotalStaked = report.TotalStaked.Add(combo.Stake)
		report.TotalReturned = report.TotalReturned.Add(settled.Return)
	}

	report.Profit = report.TotalReturned.Sub(report.TotalStaked)
	if report.TotalStaked.IsPositive() {
		report.ROIPct = report.Profit.Div(report.TotalStaked).Mul(decimal.NewFromInt(100)).Round(2)
	}

	report.Accuracy = s.accuracySummary(ctx, date)
	return report, nil
}

// loadResults maps race id to stored result for every race of the day
func (s *ReportService) loadResults(ctx context.Context, date time.Time) (map[string]*models.RaceResult, error) {
	races, err := s.repos.Race.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load races: %w", err)
	}

	results := make(map[string]*models.RaceResult, len(races))
	for _, race := range races {
		result, err := s.repos.RaceResult.GetByRaceID(ctx, race.ID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load result for %s: %w", race.RaceCode, err)
		}
		results[race.ID.String()] = result
	}
	return results, nil
}

// settleWinBet resolves a straight-win pick. The official simple_gagnant
// rapport takes precedence over the odds snapshot taken at bet time.
func (s *ReportService) settleWinBet(result *models.RaceResult, horseID string, odds *float64, stake decimal.Decimal) SettledBet {
	settled := SettledBet{Stake: stake, Return: decimal.Zero}
	if result == nil {
		return settled
	}
	settled.Settled = true

	if !result.DidHorseWin(horseID) {
		return settled
	}
	settled.Won = true

	rapport := result.Payout("simple_gagnant")
	switch {
	case rapport.IsPositive():
		settled.Return = stake.Mul(rapport)
	case odds != nil && *odds > 0:
		settled.Return = stake.Mul(decimal.NewFromFloat(*odds))
	default:
		settled.Return = stake
	}
	return settled
}

// settleCombination resolves a multi-pick wager against the finishing order
func (s *ReportService) settleCombination(result *models.RaceResult, combo *models.StoredCombination) SettledCombination {
	settled := SettledCombination{
		RaceID: combo.RaceID.String(),
		Type:   combo.Type,
		Horses: combo.HorseNames,
		Stake:  combo.Stake,
		Return: decimal.Zero,
	}
	if result == nil {
		return settled
	}
	settled.Settled = true

	size := combo.Type.Size()
	top := topFinishers(result, size)
	if len(top) < size || len(combo.HorseIDs) < size {
		return settled
	}

	if combo.Type.Ordered() {
		for i := 0; i < size; i++ {
			if top[i] != combo.HorseIDs[i] {
				return settled
			}
		}
	} else {
		picked := make(map[string]bool, size)
		for _, id := range combo.HorseIDs[:size] {
			picked[id] = true
		}
		for _, id := range top {
			if !picked[id] {
				return settled
			}
		}
	}
	settled.Won = true

	rapport := result.Payout(rapportKey(combo.Type))
	if rapport.IsPositive() {
		settled.Return = combo.Stake.Mul(rapport)
	}
	return settled
}

// accuracySummary averages the evaluated prediction records of the day
func (s *ReportService) accuracySummary(ctx context.Context, date time.Time) AccuracySummary {
	summary := AccuracySummary{}

	races, err := s.repos.Race.GetByDate(ctx, date)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load races for accuracy summary")
		return summary
	}

	var accSum, top3Sum float64
	for _, race := range races {
		record, err := s.repos.PredictionRecord.GetByRaceID(ctx, race.ID)
		if err != nil || record.AccuracyScore == nil {
			continue
		}
		summary.Evaluated++
		accSum += *record.AccuracyScore
		if record.Top3Accuracy != nil {
			top3Sum += *record.Top3Accuracy
		}
		if record.WinnerRankPredicted != nil && *record.WinnerRankPredicted == 1 {
			summary.WinnersFound++
		}
	}

	if summary.Evaluated > 0 {
		summary.MeanAccuracy = accSum / float64(summary.Evaluated)
		summary.MeanTop3Accuracy = top3Sum / float64(summary.Evaluated)
	}
	return summary
}

// topFinishers returns the horse ids of the first n placed finishers
func topFinishers(result *models.RaceResult, n int) []string {
	out := make([]string, 0, n)
	for rank := 1; rank <= n; rank++ {
		for i := range result.Finishers {
			if result.Finishers[i].Rank == rank {
				out = append(out, result.Finishers[i].HorseID)
				break
			}
		}
	}
	return out
}

// rapportKey maps a combination type to the feed's rapport key
func rapportKey(t models.CombinationType) string {
	if t == models.QuinteDesordre {
		return "quinte_plus"
	}
	return "tierce"
}
