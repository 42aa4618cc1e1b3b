package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyBet is a stored straight-win pick for the daily report
type DailyBet struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	BetDate     time.Time       `db:"bet_date" json:"bet_date" validate:"required"`
	RaceID      uuid.UUID       `db:"race_id" json:"race_id" validate:"required,uuid4"`
	HorseID     string          `db:"horse_id" json:"horse_id" validate:"required"`
	HorseName   string          `db:"horse_name" json:"horse_name"`
	Probability float64         `db:"probability" json:"probability"`
	Odds        *float64        `db:"odds" json:"odds"`
	Stake       decimal.Decimal `db:"stake" json:"stake"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// ValueBetRecord is a stored Kelly-flagged pick with its sizing snapshot
type ValueBetRecord struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	BetDate          time.Time       `db:"bet_date" json:"bet_date" validate:"required"`
	RaceID           uuid.UUID       `db:"race_id" json:"race_id" validate:"required,uuid4"`
	HorseID          string          `db:"horse_id" json:"horse_id" validate:"required"`
	HorseName        string          `db:"horse_name" json:"horse_name"`
	Ranking          int             `db:"ranking" json:"ranking"`
	Probability      float64         `db:"probability" json:"estimated_probability"`
	OfferedOdds      float64         `db:"offered_odds" json:"offered_odds"`
	ValueScore       float64         `db:"value_score" json:"value_score"`
	RecommendedStake decimal.Decimal `db:"recommended_stake" json:"recommended_stake"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// StoredCombination is a stored multi-pick wager for the daily report
type StoredCombination struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	BetDate     time.Time       `db:"bet_date" json:"bet_date" validate:"required"`
	RaceID      uuid.UUID       `db:"race_id" json:"race_id" validate:"required,uuid4"`
	Type        CombinationType `db:"combination_type" json:"combination_type"`
	HorseIDs    []string        `db:"horse_ids" json:"horse_ids"`
	HorseNames  []string        `db:"horse_names" json:"horses"`
	Probability float64         `db:"probability" json:"combined_probability"`
	Stake       decimal.Decimal `db:"stake" json:"stake"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
