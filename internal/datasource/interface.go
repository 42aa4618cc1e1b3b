package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ProgramSource defines the interface for fetching PMU race day data
type ProgramSource interface {
	// FetchProgram retrieves the full race program for a day
	FetchProgram(ctx context.Context, date time.Time) (*ProgramData, error)

	// FetchParticipants retrieves the entrants of one race
	FetchParticipants(ctx context.Context, date time.Time, reunion, course int) ([]ParticipantData, error)

	// FetchResults retrieves the finishing order and payout rapports of one race
	FetchResults(ctx context.Context, date time.Time, reunion, course int) (*ResultData, error)

	// Name returns the name of the data source
	Name() string
}

// ProgramData represents one day's normalized race program
type ProgramData struct {
	Date     time.Time     `json:"date"`
	Reunions []ReunionData `json:"reunions"`
}

// ReunionData represents one meeting within a program
type ReunionData struct {
	Number     int        `json:"number"`
	Hippodrome string     `json:"hippodrome"`
	Courses    []RaceData `json:"courses"`
}

// RaceData represents one normalized race within a meeting
type RaceData struct {
	CourseNumber int       `json:"course_number"`
	Discipline   string    `json:"discipline"`
	Distance     int       `json:"distance"`
	StartTime    time.Time `json:"start_time"`
	Label        string    `json:"label"`
}

// ParticipantData represents one normalized race entrant
type ParticipantData struct {
	HorseID     string           `json:"horse_id"`
	HorseName   string           `json:"horse_name"`
	Number      int              `json:"number"`
	JockeyID    *int64           `json:"jockey_id"`
	JockeyName  string           `json:"jockey_name"`
	TrainerID   *int64           `json:"trainer_id"`
	TrainerName string           `json:"trainer_name"`
	Musique     string           `json:"musique"`
	Draw        *int             `json:"draw"`
	WeightGrams *int             `json:"weight_grams"`
	OddsRef     *decimal.Decimal `json:"odds_ref"`
	GainsCareer decimal.Decimal  `json:"gains_career"`
}

// ResultData represents one race's official outcome
type ResultData struct {
	Arrival  []ArrivalEntry             `json:"arrival"`
	Rapports map[string]decimal.Decimal `json:"rapports"`
}

// ArrivalEntry is one placed horse in the official finishing order
type ArrivalEntry struct {
	HorseID   string `json:"horse_id"`
	HorseName string `json:"horse_name"`
	Number    int    `json:"number"`
	Rank      int    `json:"rank"`
}

// SourceError represents errors from data source operations
type SourceError struct {
	Source  string
	Code    string
	Message string
	Err     error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap exposes the underlying error for errors.Is checks
func (e SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
)

// Sentinel errors
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrNotFound          = errors.New("data not found")
	ErrInvalidData       = errors.New("invalid data format")
)

// NewSourceError creates a new data source error
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
