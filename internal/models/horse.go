package models

import "time"

// Horse represents a horse known to the system, keyed by its PMU identifier
type Horse struct {
	ID        string    `db:"id_cheval_pmu" json:"id" validate:"required"`
	Name      string    `db:"name" json:"name" validate:"required"`
	Sex       string    `db:"sex" json:"sex"`
	Age       int       `db:"age" json:"age"`
	Breed     string    `db:"breed" json:"breed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Jockey represents a jockey (driver) riding in PMU races
type Jockey struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name" validate:"required"`
}

// Trainer represents a trainer of one or more horses
type Trainer struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name" validate:"required"`
}
