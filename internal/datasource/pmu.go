package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/pmu-edge/internal/metrics"
)

// pmuDateFormat is the ddMMyyyy path segment the turfinfo API expects.
const pmuDateFormat = "02012006"

// PMUClient implements ProgramSource against the PMU turfinfo REST API
type PMUClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	userAgent  string
	logger     *log.Logger
}

// pmuProgrammeResponse is the envelope of GET /programme/{date}
type pmuProgrammeResponse struct {
	Programme pmuProgramme `json:"programme"`
}

type pmuProgramme struct {
	Date     int64        `json:"date"`
	Reunions []pmuReunion `json:"reunions"`
}

type pmuReunion struct {
	NumOfficiel int           `json:"numOfficiel"`
	Hippodrome  pmuHippodrome `json:"hippodrome"`
	Courses     []pmuCourse   `json:"courses"`
}

type pmuHippodrome struct {
	Code         string `json:"code"`
	LibelleCourt string `json:"libelleCourt"`
	LibelleLong  string `json:"libelleLong"`
}

type pmuCourse struct {
	NumOrdre          int              `json:"numOrdre"`
	NumReunion        int              `json:"numReunion"`
	Libelle           string           `json:"libelle"`
	Discipline        string           `json:"discipline"`
	Distance          int              `json:"distance"`
	HeureDepart       int64            `json:"heureDepart"` // epoch millis
	ArriveeDefinitive bool             `json:"arriveeDefinitive"`
	Participants      []pmuParticipant `json:"participants"`
	Rapports          []pmuRapport     `json:"rapports"`
}

// pmuParticipantsResponse is the envelope of GET /programme/{date}/R{r}/C{c}/participants
type pmuParticipantsResponse struct {
	Participants []pmuParticipant `json:"participants"`
	Rapports     []pmuRapport     `json:"rapports"`
}

type pmuParticipant struct {
	IDCheval             string            `json:"idCheval"`
	Nom                  string            `json:"nom"`
	NumPmu               int               `json:"numPmu"`
	Driver               string            `json:"driver"`
	Entraineur           string            `json:"entraineur"`
	Musique              string            `json:"musique"`
	PlaceCorde           *int              `json:"placeCorde"`
	HandicapPoids        *int              `json:"handicapPoids"`
	DernierRapportDirect *pmuRapportDirect `json:"dernierRapportDirect"`
	GainsParticipant     *pmuGains         `json:"gainsParticipant"`
	OrdreArrivee         int               `json:"ordreArrivee"`
	Cheval               *pmuCheval        `json:"cheval"`
}

type pmuRapportDirect struct {
	Rapport decimal.Decimal `json:"rapport"`
}

type pmuGains struct {
	GainsCarriere decimal.Decimal `json:"gainsCarriere"`
}

type pmuCheval struct {
	ID  string `json:"id"`
	Nom string `json:"nom"`
}

type pmuRapport struct {
	TypePari            string          `json:"typePari"`
	DividendePourUnEuro decimal.Decimal `json:"dividendePourUnEuro"`
}

// NewPMUClient creates a new PMU turfinfo API client
func NewPMUClient(httpClient *RateLimitedHTTPClient, baseURL, userAgent string, logger *log.Logger) *PMUClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &PMUClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		logger:     logger,
	}
}

// Name returns the name of the data source
func (c *PMUClient) Name() string {
	return "pmu_turfinfo"
}

// FetchProgram retrieves the full race program for a day
func (c *PMUClient) FetchProgram(ctx context.Context, date time.Time) (*ProgramData, error) {
	url := fmt.Sprintf("%s/programme/%s", c.baseURL, date.Format(pmuDateFormat))

	var envelope pmuProgrammeResponse
	if err := c.getJSON(ctx, "programme", url, &envelope); err != nil {
		return nil, err
	}

	program := &ProgramData{
		Date:     date,
		Reunions: make([]ReunionData, 0, len(envelope.Programme.Reunions)),
	}

	for _, reunion := range envelope.Programme.Reunions {
		rd := ReunionData{
			Number:     reunion.NumOfficiel,
			Hippodrome: reunion.Hippodrome.LibelleCourt,
			Courses:    make([]RaceData, 0, len(reunion.Courses)),
		}
		for _, course := range reunion.Courses {
			rd.Courses = append(rd.Courses, RaceData{
				CourseNumber: course.NumOrdre,
				Discipline:   course.Discipline,
				Distance:     course.Distance,
				StartTime:    time.UnixMilli(course.HeureDepart).UTC(),
				Label:        course.Libelle,
			})
		}
		program.Reunions = append(program.Reunions, rd)
	}

	c.logger.Printf("Fetched PMU programme for %s: %d reunions", date.Format("2006-01-02"), len(program.Reunions))
	return program, nil
}

// FetchParticipants retrieves the entrants of one race
func (c *PMUClient) FetchParticipants(ctx context.Context, date time.Time, reunion, course int) ([]ParticipantData, error) {
	url := fmt.Sprintf("%s/programme/%s/R%d/C%d/participants", c.baseURL, date.Format(pmuDateFormat), reunion, course)

	var envelope pmuParticipantsResponse
	if err := c.getJSON(ctx, "participants", url, &envelope); err != nil {
		return nil, err
	}

	participants := make([]ParticipantData, 0, len(envelope.Participants))
	for _, p := range envelope.Participants {
		if p.IDCheval == "" {
			continue
		}

		pd := ParticipantData{
			HorseID:     p.IDCheval,
			HorseName:   p.Nom,
			Number:      p.NumPmu,
			JockeyName:  p.Driver,
			TrainerName: p.Entraineur,
			Musique:     p.Musique,
			Draw:        p.PlaceCorde,
			WeightGrams: p.HandicapPoids,
		}
		if p.DernierRapportDirect != nil {
			odds := p.DernierRapportDirect.Rapport
			pd.OddsRef = &odds
		}
		if p.GainsParticipant != nil {
			pd.GainsCareer = p.GainsParticipant.GainsCarriere
		}
		participants = append(participants, pd)
	}

	if len(participants) == 0 {
		return nil, NewSourceError(c.Name(), ErrCodeInvalidData, fmt.Sprintf("no participants for R%dC%d on %s", reunion, course, date.Format("2006-01-02")), ErrInvalidData)
	}

	return participants, nil
}

// FetchResults retrieves the finishing order and payout rapports of one race.
// The results feed lives on the same participants endpoint: once a race is
// over, each participant carries its ordreArrivee and the envelope carries
// the dividend rapports.
func (c *PMUClient) FetchResults(ctx context.Context, date time.Time, reunion, course int) (*ResultData, error) {
	url := fmt.Sprintf("%s/programme/%s/R%d/C%d/participants", c.baseURL, date.Format(pmuDateFormat), reunion, course)

	var envelope pmuParticipantsResponse
	if err := c.getJSON(ctx, "results", url, &envelope); err != nil {
		return nil, err
	}

	result := &ResultData{
		Arrival:  make([]ArrivalEntry, 0, len(envelope.Participants)),
		Rapports: make(map[string]decimal.Decimal),
	}

	for _, p := range envelope.Participants {
		if p.OrdreArrivee <= 0 {
			continue
		}
		entry := ArrivalEntry{
			HorseID:   p.IDCheval,
			HorseName: p.Nom,
			Number:    p.NumPmu,
			Rank:      p.OrdreArrivee,
		}
		if entry.HorseID == "" && p.Cheval != nil {
			entry.HorseID = p.Cheval.ID
			entry.HorseName = p.Cheval.Nom
		}
		result.Arrival = append(result.Arrival, entry)
	}

	for _, rapport := range envelope.Rapports {
		if rapport.TypePari == "" || rapport.DividendePourUnEuro.IsZero() {
			continue
		}
		result.Rapports[strings.ToLower(rapport.TypePari)] = rapport.DividendePourUnEuro
	}

	return result, nil
}

// getJSON performs an authenticated GET against the turfinfo API and decodes
// the JSON body into out.
func (c *PMUClient) getJSON(ctx context.Context, endpoint, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewSourceError(c.Name(), ErrCodeNetworkError, "failed to create request", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewSourceError(c.Name(), ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()
	metrics.RecordPMURequest(endpoint, time.Since(start).Seconds())

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusNoContent:
		return NewSourceError(c.Name(), ErrCodeNotFound, fmt.Sprintf("no data at %s", url), ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewSourceError(c.Name(), ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewSourceError(c.Name(), ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewSourceError(c.Name(), ErrCodeInvalidData, "failed to parse response", err)
	}

	return nil
}
