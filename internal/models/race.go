package models

import (
	"time"

	"github.com/google/uuid"
)

// Race represents a single PMU race (course) within a meeting (reunion)
type Race struct {
	ID            uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	RaceDate      time.Time `db:"race_date" json:"race_date" validate:"required"`
	RaceCode      string    `db:"race_code" json:"race_code" validate:"required"`
	ReunionNumber int       `db:"reunion_number" json:"reunion_number" validate:"required,gt=0"`
	CourseNumber  int       `db:"course_number" json:"course_number" validate:"required,gt=0"`
	Hippodrome    string    `db:"hippodrome" json:"hippodrome"`
	Discipline    string    `db:"discipline" json:"discipline"`
	Distance      int       `db:"distance" json:"distance"`
	Status        string    `db:"status" json:"status" validate:"oneof=scheduled started finished cancelled"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// IsUpcoming checks if the race hasn't started yet
func (r *Race) IsUpcoming() bool {
	return r.Status == "scheduled"
}

// IsFinished checks if the race has completed
func (r *Race) IsFinished() bool {
	return r.Status == "finished"
}

// TimeToStart returns the duration until race start
func (r *Race) TimeToStart() time.Duration {
	return time.Until(r.RaceDate)
}
