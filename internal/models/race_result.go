package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinisherPosition is one horse's final placing in a completed race
type FinisherPosition struct {
	HorseID   string `json:"horse_id"`
	HorseName string `json:"horse_name"`
	Rank      int    `json:"rank"`
}

// RaceResult represents the official outcome and payout rapports of a race.
// Rapports maps a bet type (simple_gagnant, couple, trio, ...) to the payout
// per unit stake.
type RaceResult struct {
	ID         uuid.UUID                  `db:"id" json:"id"`
	RaceID     uuid.UUID                  `db:"race_id" json:"race_id" validate:"required,uuid4"`
	Hippodrome string                     `db:"hippodrome" json:"hippodrome"`
	RaceNumber int                        `db:"race_number" json:"race_number"`
	Finishers  []FinisherPosition         `db:"finishers" json:"finishers"`
	Rapports   map[string]decimal.Decimal `db:"rapports" json:"rapports"`
	CreatedAt  time.Time                  `db:"created_at" json:"created_at"`
}

// Winner returns the first-placed finisher, or nil when results are empty
func (rr *RaceResult) Winner() *FinisherPosition {
	for i := range rr.Finishers {
		if rr.Finishers[i].Rank == 1 {
			return &rr.Finishers[i]
		}
	}
	return nil
}

// Top3 returns the first three placed finishers in rank order
func (rr *RaceResult) Top3() []FinisherPosition {
	top := make([]FinisherPosition, 0, 3)
	for rank := 1; rank <= 3; rank++ {
		for i := range rr.Finishers {
			if rr.Finishers[i].Rank == rank {
				top = append(top, rr.Finishers[i])
				break
			}
		}
	}
	return top
}

// DidHorseWin reports whether the given horse finished first
func (rr *RaceResult) DidHorseWin(horseID string) bool {
	winner := rr.Winner()
	return winner != nil && winner.HorseID == horseID
}

// Payout returns the payout per unit stake for a bet type, or zero when the
// rapport is unknown.
func (rr *RaceResult) Payout(betType string) decimal.Decimal {
	if rr.Rapports == nil {
		return decimal.Zero
	}
	return rr.Rapports[betType]
}

// Errors
var (
	ErrRaceResultNotFound  = NewValidationError("race_result_not_found", "race result not found")
	ErrInvalidRaceResult   = NewValidationError("invalid_race_result", "invalid race result data")
	ErrRaceResultDuplicate = NewValidationError("race_result_duplicate", "race result already exists for this race")
)
