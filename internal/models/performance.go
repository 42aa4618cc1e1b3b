package models

import (
	"time"

	"github.com/google/uuid"
)

// Performance represents one horse's entry in one race, as supplied by the
// PMU participants feed. Rank is nil until the race has been run.
type Performance struct {
	ID         uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	RaceID     uuid.UUID `db:"race_id" json:"race_id" validate:"required,uuid4"`
	HorseID    string    `db:"horse_id" json:"horse_id" validate:"required"`
	HorseName  string    `db:"horse_name" json:"horse_name"`
	JockeyID   *int64    `db:"jockey_id" json:"jockey_id"`
	TrainerID  *int64    `db:"trainer_id" json:"trainer_id"`
	Rank       *int      `db:"rank" json:"rank"`
	Weight     *int      `db:"weight" json:"weight"` // grams, as delivered by the feed
	Draw       *int      `db:"draw" json:"draw"`
	RawMusique string    `db:"raw_musique" json:"raw_musique"`
	OddsRef    *float64  `db:"odds_ref" json:"odds_ref"`
	GainsRace  float64   `db:"gains_race" json:"gains_race"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// WeightKg returns the carried weight in kilograms, or 0 if unknown
func (p *Performance) WeightKg() float64 {
	if p.Weight == nil {
		return 0
	}
	return float64(*p.Weight) / 1000.0
}

// HasOdds reports whether a usable market price is attached
func (p *Performance) HasOdds() bool {
	return p.OddsRef != nil && *p.OddsRef > 1
}

// CareerStats is a read-only aggregate over a horse's historical performances.
type CareerStats struct {
	Starts        int     `db:"starts" json:"starts"`
	Completed     int     `db:"completed" json:"completed"`
	Wins          int     `db:"wins" json:"wins"`
	Top3          int     `db:"top3" json:"top3"`
	TotalEarnings float64 `db:"total_earnings" json:"total_earnings"`
}

// WinRate returns wins over completed races, guarding the empty case
func (s CareerStats) WinRate() float64 {
	if s.Completed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Completed)
}

// AverageEarnings returns earnings per start, guarding the empty case
func (s CareerStats) AverageEarnings() float64 {
	if s.Starts == 0 {
		return 0
	}
	return s.TotalEarnings / float64(s.Starts)
}
