package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourusername/pmu-edge/internal/database"
	"github.com/yourusername/pmu-edge/internal/models"
)

// PostgresBetRepository implements BetRepository for PostgreSQL
type PostgresBetRepository struct {
	db *database.DB
}

// NewPostgresBetRepository creates a new bet repository
func NewPostgresBetRepository(db *database.DB) BetRepository {
	return &PostgresBetRepository{db: db}
}

// CreateDailyBet stores a straight-win pick for the daily report
func (r *PostgresBetRepository) CreateDailyBet(ctx context.Context, bet *models.DailyBet) error {
	query := `
		INSERT INTO daily_bets (id, bet_date, race_id, horse_id, horse_name, probability, odds, stake)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		bet.ID, bet.BetDate, bet.RaceID, bet.HorseID, bet.HorseName,
		bet.Probability, bet.Odds, bet.Stake,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create daily bet: %w", err)
	}
	return nil
}

// CreateValueBet stores a Kelly-flagged pick with its sizing snapshot
func (r *PostgresBetRepository) CreateValueBet(ctx context.Context, bet *models.ValueBetRecord) error {
	query := `
		INSERT INTO value_bets (id, bet_date, race_id, horse_id, horse_name, ranking,
		                        probability, offered_odds, value_score, recommended_stake)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		bet.ID, bet.BetDate, bet.RaceID, bet.HorseID, bet.HorseName, bet.Ranking,
		bet.Probability, bet.OfferedOdds, bet.ValueScore, bet.RecommendedStake,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create value bet: %w", err)
	}
	return nil
}

// CreateCombination stores a multi-pick wager for the daily report
func (r *PostgresBetRepository) CreateCombination(ctx context.Context, combo *models.StoredCombination) error {
	horseIDs, err := json.Marshal(combo.HorseIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal horse ids: %w", err)
	}
	horseNames, err := json.Marshal(combo.HorseNames)
	if err != nil {
		return fmt.Errorf("failed to marshal horse names: %w", err)
	}

	query := `
		INSERT INTO combination_bets (id, bet_date, race_id, combination_type,
		                              horse_ids, horse_names, probability, stake)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		combo.ID, combo.BetDate, combo.RaceID, combo.Type,
		horseIDs, horseNames, combo.Probability, combo.Stake,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create combination bet: %w", err)
	}
	return nil
}

// GetDailyBets retrieves the straight-win picks for a day
func (r *PostgresBetRepository) GetDailyBets(ctx context.Context, date time.Time) ([]*models.DailyBet, error) {
	query := `
		SELECT id, bet_date, race_id, horse_id, horse_name, probability, odds, stake, created_at
		FROM daily_bets
		WHERE bet_date::date = $1::date
		ORDER BY probability DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.DailyBet
	for rows.Next() {
		bet := &models.DailyBet{}
		err := rows.Scan(&bet.ID, &bet.BetDate, &bet.RaceID, &bet.HorseID, &bet.HorseName,
			&bet.Probability, &bet.Odds, &bet.Stake, &bet.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily bet: %w", err)
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}

// GetValueBets retrieves the Kelly-flagged picks for a day
func (r *PostgresBetRepository) GetValueBets(ctx context.Context, date time.Time) ([]*models.ValueBetRecord, error) {
	query := `
		SELECT id, bet_date, race_id, horse_id, horse_name, ranking,
		       probability, offered_odds, value_score, recommended_stake, created_at
		FROM value_bets
		WHERE bet_date::date = $1::date
		ORDER BY value_score DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query value bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.ValueBetRecord
	for rows.Next() {
		bet := &models.ValueBetRecord{}
		err := rows.Scan(&bet.ID, &bet.BetDate, &bet.RaceID, &bet.HorseID, &bet.HorseName,
			&bet.Ranking, &bet.Probability, &bet.OfferedOdds, &bet.ValueScore,
			&bet.RecommendedStake, &bet.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan value bet: %w", err)
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}

// GetCombinations retrieves the combination wagers for a day
func (r *PostgresBetRepository) GetCombinations(ctx context.Context, date time.Time) ([]*models.StoredCombination, error) {
	query := `
		SELECT id, bet_date, race_id, combination_type, horse_ids, horse_names,
		       probability, stake, created_at
		FROM combination_bets
		WHERE bet_date::date = $1::date
		ORDER BY probability DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query combination bets: %w", err)
	}
	defer rows.Close()

	var combos []*models.StoredCombination
	for rows.Next() {
		combo := &models.StoredCombination{}
		var horseIDs, horseNames []byte
		err := rows.Scan(&combo.ID, &combo.BetDate, &combo.RaceID, &combo.Type,
			&horseIDs, &horseNames, &combo.Probability, &combo.Stake, &combo.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan combination bet: %w", err)
		}
		if err := json.Unmarshal(horseIDs, &combo.HorseIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal horse ids: %w", err)
		}
		if err := json.Unmarshal(horseNames, &combo.HorseNames); err != nil {
			return nil, fmt.Errorf("failed to unmarshal horse names: %w", err)
		}
		combos = append(combos, combo)
	}
	return combos, rows.Err()
}
