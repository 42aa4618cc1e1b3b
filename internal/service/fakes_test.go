package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/pmu-edge/internal/datasource"
	"github.com/yourusername/pmu-edge/internal/models"
	"github.com/yourusername/pmu-edge/internal/repository"
)

// In-memory repository fakes for service tests.

type fakeRaceRepo struct {
	races map[uuid.UUID]*models.Race
}

func newFakeRaceRepo() *fakeRaceRepo {
	return &fakeRaceRepo{races: make(map[uuid.UUID]*models.Race)}
}

func (r *fakeRaceRepo) Create(_ context.Context, race *models.Race) error {
	for _, existing := range r.races {
		if existing.RaceCode == race.RaceCode && sameDay(existing.RaceDate, race.RaceDate) {
			return models.ErrDuplicateKey
		}
	}
	r.races[race.ID] = race
	return nil
}

func (r *fakeRaceRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Race, error) {
	race, ok := r.races[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return race, nil
}

func (r *fakeRaceRepo) GetByCode(_ context.Context, date time.Time, raceCode string) (*models.Race, error) {
	for _, race := range r.races {
		if race.RaceCode == raceCode && sameDay(race.RaceDate, date) {
			return race, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeRaceRepo) GetByDate(_ context.Context, date time.Time) ([]*models.Race, error) {
	var out []*models.Race
	for _, race := range r.races {
		if sameDay(race.RaceDate, date) {
			out = append(out, race)
		}
	}
	return out, nil
}

func (r *fakeRaceRepo) GetUpcoming(_ context.Context, limit int) ([]*models.Race, error) {
	var out []*models.Race
	for _, race := range r.races {
		if race.IsUpcoming() && len(out) < limit {
			out = append(out, race)
		}
	}
	return out, nil
}

func (r *fakeRaceRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	race, ok := r.races[id]
	if !ok {
		return models.ErrNotFound
	}
	race.Status = status
	return nil
}

func (r *fakeRaceRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.races, id)
	return nil
}

type fakePerformanceRepo struct {
	perfs map[uuid.UUID][]*models.Performance
}

func newFakePerformanceRepo() *fakePerformanceRepo {
	return &fakePerformanceRepo{perfs: make(map[uuid.UUID][]*models.Performance)}
}

func (r *fakePerformanceRepo) CreateBatch(_ context.Context, perfs []*models.Performance) error {
	for _, perf := range perfs {
		existing := r.perfs[perf.RaceID]
		replaced := false
		for i, old := range existing {
			if old.HorseID == perf.HorseID {
				existing[i] = perf
				replaced = true
				break
			}
		}
		if !replaced {
			r.perfs[perf.RaceID] = append(r.perfs[perf.RaceID], perf)
		}
	}
	return nil
}

func (r *fakePerformanceRepo) GetByRaceID(_ context.Context, raceID uuid.UUID) ([]*models.Performance, error) {
	return r.perfs[raceID], nil
}

func (r *fakePerformanceRepo) GetByHorseID(_ context.Context, horseID string, limit int) ([]*models.Performance, error) {
	var out []*models.Performance
	for _, list := range r.perfs {
		for _, perf := range list {
			if perf.HorseID == horseID && len(out) < limit {
				out = append(out, perf)
			}
		}
	}
	return out, nil
}

func (r *fakePerformanceRepo) SetRank(_ context.Context, raceID uuid.UUID, horseID string, rank int) error {
	for _, perf := range r.perfs[raceID] {
		if perf.HorseID == horseID {
			v := rank
			perf.Rank = &v
			return nil
		}
	}
	return models.ErrNotFound
}

type fakeConnectionRepo struct {
	jockeys  map[string]int64
	trainers map[string]int64
	next     int64
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{
		jockeys:  make(map[string]int64),
		trainers: make(map[string]int64),
	}
}

func (r *fakeConnectionRepo) EnsureJockey(_ context.Context, name string) (int64, error) {
	if id, ok := r.jockeys[name]; ok {
		return id, nil
	}
	r.next++
	r.jockeys[name] = r.next
	return r.next, nil
}

func (r *fakeConnectionRepo) EnsureTrainer(_ context.Context, name string) (int64, error) {
	if id, ok := r.trainers[name]; ok {
		return id, nil
	}
	r.next++
	r.trainers[name] = r.next
	return r.next, nil
}

type fakeStatsRepo struct {
	career  map[string]models.CareerStats
	jockeys map[int64]float64
	synergy map[[2]int64]float64
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{
		career:  make(map[string]models.CareerStats),
		jockeys: make(map[int64]float64),
		synergy: make(map[[2]int64]float64),
	}
}

func (r *fakeStatsRepo) CareerStats(_ context.Context, horseID string) (models.CareerStats, error) {
	return r.career[horseID], nil
}

func (r *fakeStatsRepo) CareerStatsBatch(_ context.Context, horseIDs []string) (map[string]models.CareerStats, error) {
	out := make(map[string]models.CareerStats)
	for _, id := range horseIDs {
		if stats, ok := r.career[id]; ok {
			out[id] = stats
		}
	}
	return out, nil
}

func (r *fakeStatsRepo) JockeyWinRates(_ context.Context, jockeyIDs []int64) (map[int64]float64, error) {
	out := make(map[int64]float64)
	for _, id := range jockeyIDs {
		if rate, ok := r.jockeys[id]; ok {
			out[id] = rate
		}
	}
	return out, nil
}

func (r *fakeStatsRepo) SynergyRates(_ context.Context, pairs [][2]int64) (map[[2]int64]float64, error) {
	out := make(map[[2]int64]float64)
	for _, pair := range pairs {
		if rate, ok := r.synergy[pair]; ok {
			out[pair] = rate
		}
	}
	return out, nil
}

type fakePredictionRecordRepo struct {
	records map[uuid.UUID]*models.PredictionRecord
}

func newFakePredictionRecordRepo() *fakePredictionRecordRepo {
	return &fakePredictionRecordRepo{records: make(map[uuid.UUID]*models.PredictionRecord)}
}

func (r *fakePredictionRecordRepo) Create(_ context.Context, record *models.PredictionRecord) error {
	for _, existing := range r.records {
		if existing.RaceID == record.RaceID {
			return models.ErrDuplicateKey
		}
	}
	r.records[record.ID] = record
	return nil
}

func (r *fakePredictionRecordRepo) GetByRaceID(_ context.Context, raceID uuid.UUID) (*models.PredictionRecord, error) {
	for _, record := range r.records {
		if record.RaceID == raceID {
			return record, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakePredictionRecordRepo) GetUnevaluated(_ context.Context, before time.Time, limit int) ([]*models.PredictionRecord, error) {
	var out []*models.PredictionRecord
	for _, record := range r.records {
		if record.AccuracyScore == nil && len(out) < limit {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *fakePredictionRecordRepo) SetAccuracy(_ context.Context, id uuid.UUID, accuracy, top3Accuracy float64, winnerRank int) error {
	record, ok := r.records[id]
	if !ok {
		return models.ErrNotFound
	}
	record.AccuracyScore = &accuracy
	record.Top3Accuracy = &top3Accuracy
	record.WinnerRankPredicted = &winnerRank
	return nil
}

type fakeRaceResultRepo struct {
	results map[uuid.UUID]*models.RaceResult
}

func newFakeRaceResultRepo() *fakeRaceResultRepo {
	return &fakeRaceResultRepo{results: make(map[uuid.UUID]*models.RaceResult)}
}

func (r *fakeRaceResultRepo) Create(_ context.Context, result *models.RaceResult) error {
	if _, ok := r.results[result.RaceID]; ok {
		return models.ErrRaceResultDuplicate
	}
	if len(result.Finishers) == 0 {
		return models.ErrInvalidRaceResult
	}
	r.results[result.RaceID] = result
	return nil
}

func (r *fakeRaceResultRepo) GetByRaceID(_ context.Context, raceID uuid.UUID) (*models.RaceResult, error) {
	result, ok := r.results[raceID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return result, nil
}

type fakeBetRepo struct {
	daily        []*models.DailyBet
	value        []*models.ValueBetRecord
	combinations []*models.StoredCombination
}

func newFakeBetRepo() *fakeBetRepo { return &fakeBetRepo{} }

func (r *fakeBetRepo) CreateDailyBet(_ context.Context, bet *models.DailyBet) error {
	r.daily = append(r.daily, bet)
	return nil
}

func (r *fakeBetRepo) CreateValueBet(_ context.Context, bet *models.ValueBetRecord) error {
	r.value = append(r.value, bet)
	return nil
}

func (r *fakeBetRepo) CreateCombination(_ context.Context, combo *models.StoredCombination) error {
	r.combinations = append(r.combinations, combo)
	return nil
}

func (r *fakeBetRepo) GetDailyBets(_ context.Context, date time.Time) ([]*models.DailyBet, error) {
	var out []*models.DailyBet
	for _, bet := range r.daily {
		if sameDay(bet.BetDate, date) {
			out = append(out, bet)
		}
	}
	return out, nil
}

func (r *fakeBetRepo) GetValueBets(_ context.Context, date time.Time) ([]*models.ValueBetRecord, error) {
	var out []*models.ValueBetRecord
	for _, bet := range r.value {
		if sameDay(bet.BetDate, date) {
			out = append(out, bet)
		}
	}
	return out, nil
}

func (r *fakeBetRepo) GetCombinations(_ context.Context, date time.Time) ([]*models.StoredCombination, error) {
	var out []*models.StoredCombination
	for _, combo := range r.combinations {
		if sameDay(combo.BetDate, date) {
			out = append(out, combo)
		}
	}
	return out, nil
}

func newFakeRepositories() *repository.Repositories {
	return &repository.Repositories{
		Race:             newFakeRaceRepo(),
		Performance:      newFakePerformanceRepo(),
		Connection:       newFakeConnectionRepo(),
		Stats:            newFakeStatsRepo(),
		PredictionRecord: newFakePredictionRecordRepo(),
		RaceResult:       newFakeRaceResultRepo(),
		Bet:              newFakeBetRepo(),
	}
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

// fakeProgramSource serves canned program data
type fakeProgramSource struct {
	program      *datasource.ProgramData
	participants map[string][]datasource.ParticipantData
	results      map[string]*datasource.ResultData
	fetchErr     error
}

func (f *fakeProgramSource) Name() string { return "fake" }

func (f *fakeProgramSource) FetchProgram(_ context.Context, _ time.Time) (*datasource.ProgramData, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.program, nil
}

func (f *fakeProgramSource) FetchParticipants(_ context.Context, _ time.Time, reunion, course int) ([]datasource.ParticipantData, error) {
	key := raceKey(reunion, course)
	participants, ok := f.participants[key]
	if !ok {
		return nil, datasource.NewSourceError("fake", datasource.ErrCodeNotFound, "no participants", datasource.ErrNotFound)
	}
	return participants, nil
}

func (f *fakeProgramSource) FetchResults(_ context.Context, _ time.Time, reunion, course int) (*datasource.ResultData, error) {
	key := raceKey(reunion, course)
	result, ok := f.results[key]
	if !ok {
		return nil, datasource.NewSourceError("fake", datasource.ErrCodeNotFound, "no results", datasource.ErrNotFound)
	}
	return result, nil
}

func raceKey(reunion, course int) string {
	return fmt.Sprintf("R%dC%d", reunion, course)
}
