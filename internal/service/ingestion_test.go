package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/pmu-edge/internal/datasource"
	"github.com/yourusername/pmu-edge/internal/metrics"
	"github.com/yourusername/pmu-edge/internal/models"
)

var testDay = time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

func testProgramSource() *fakeProgramSource {
	odds := decimal.NewFromFloat(3.4)
	draw := 4
	weight := 58000

	return &fakeProgramSource{
		program: &datasource.ProgramData{
			Date: testDay,
			Reunions: []datasource.ReunionData{
				{
					Number:     1,
					Hippodrome: "VINCENNES",
					Courses: []datasource.RaceData{
						{CourseNumber: 1, Discipline: "ATTELE", Distance: 2700, StartTime: testDay.Add(13 * time.Hour), Label: "PRIX A"},
						{CourseNumber: 2, Discipline: "ATTELE", Distance: 2850, StartTime: testDay.Add(14 * time.Hour), Label: "PRIX B"},
					},
				},
			},
		},
		participants: map[string][]datasource.ParticipantData{
			"R1C1": {
				{HorseID: "H1", HorseName: "ALPHA", Number: 1, JockeyName: "J. Dubois", TrainerName: "M. Martin", Musique: "1p2p1p", Draw: &draw, WeightGrams: &weight, OddsRef: &odds},
				{HorseID: "H2", HorseName: "BRAVO", Number: 2, JockeyName: "P. Petit", TrainerName: "M. Martin", Musique: "3p4p2p"},
				{HorseID: "H3", HorseName: "CHARLIE", Number: 3, Musique: "0p5p6p"},
			},
			"R1C2": {
				{HorseID: "H4", HorseName: "DELTA", Number: 1, JockeyName: "J. Dubois", Musique: "2p2p"},
			},
		},
		results: map[string]*datasource.ResultData{
			"R1C1": {
				Arrival: []datasource.ArrivalEntry{
					{HorseID: "H2", HorseName: "BRAVO", Number: 2, Rank: 1},
					{HorseID: "H1", HorseName: "ALPHA", Number: 1, Rank: 2},
					{HorseID: "H3", HorseName: "CHARLIE", Number: 3, Rank: 3},
				},
				Rapports: map[string]decimal.Decimal{
					"simple_gagnant": decimal.NewFromFloat(5.2),
				},
			},
		},
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestIngestProgramStoresRacesAndParticipants(t *testing.T) {
	repos := newFakeRepositories()
	svc := NewIngestionService(testProgramSource(), repos, quietLogger())

	m, err := svc.IngestProgram(context.Background(), testDay)
	require.NoError(t, err)

	snap := m.Snapshot()
	assert.Equal(t, 2, snap.TotalRaces)
	assert.Equal(t, 2, snap.SuccessfulRaces)
	assert.Equal(t, 4, snap.TotalPerformances)
	assert.Equal(t, 0, snap.Errors)

	race, err := repos.Race.GetByCode(context.Background(), testDay, "R1C1")
	require.NoError(t, err)
	assert.Equal(t, "VINCENNES", race.Hippodrome)
	assert.Equal(t, 2700, race.Distance)
	assert.Equal(t, "scheduled", race.Status)

	perfs, err := repos.Performance.GetByRaceID(context.Background(), race.ID)
	require.NoError(t, err)
	require.Len(t, perfs, 3)

	byHorse := make(map[string]*models.Performance)
	for _, perf := range perfs {
		byHorse[perf.HorseID] = perf
	}

	alpha := byHorse["H1"]
	require.NotNil(t, alpha)
	assert.Equal(t, "1p2p1p", alpha.RawMusique)
	require.NotNil(t, alpha.OddsRef)
	assert.InDelta(t, 3.4, *alpha.OddsRef, 1e-9)
	require.NotNil(t, alpha.Weight)
	assert.Equal(t, 58000, *alpha.Weight)
	require.NotNil(t, alpha.JockeyID)
	require.NotNil(t, alpha.TrainerID)

	// Both ALPHA and BRAVO share a trainer; the resolved id must match.
	bravo := byHorse["H2"]
	require.NotNil(t, bravo)
	assert.Equal(t, *alpha.TrainerID, *bravo.TrainerID)

	// Unnamed connections stay unset.
	charlie := byHorse["H3"]
	require.NotNil(t, charlie)
	assert.Nil(t, charlie.JockeyID)
	assert.Nil(t, charlie.TrainerID)
}

func TestIngestProgramSecondRunCountsDuplicates(t *testing.T) {
	repos := newFakeRepositories()
	svc := NewIngestionService(testProgramSource(), repos, quietLogger())

	_, err := svc.IngestProgram(context.Background(), testDay)
	require.NoError(t, err)

	m, err := svc.IngestProgram(context.Background(), testDay)
	require.NoError(t, err)

	snap := m.Snapshot()
	assert.Equal(t, 2, snap.Duplicates)
	assert.Equal(t, 0, snap.Errors)

	races, err := repos.Race.GetByDate(context.Background(), testDay)
	require.NoError(t, err)
	assert.Len(t, races, 2)
}

func TestIngestProgramFetchFailure(t *testing.T) {
	repos := newFakeRepositories()
	source := testProgramSource()
	source.fetchErr = datasource.NewSourceError("fake", datasource.ErrCodeNetworkError, "boom", nil)
	svc := NewIngestionService(source, repos, quietLogger())

	_, err := svc.IngestProgram(context.Background(), testDay)
	require.Error(t, err)
}

func TestIngestResultsRecordsRanksAndOutcome(t *testing.T) {
	repos := newFakeRepositories()
	svc := NewIngestionService(testProgramSource(), repos, quietLogger())

	_, err := svc.IngestProgram(context.Background(), testDay)
	require.NoError(t, err)

	m, err := svc.IngestResults(context.Background(), testDay)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Snapshot().ResultsStored)

	race, err := repos.Race.GetByCode(context.Background(), testDay, "R1C1")
	require.NoError(t, err)
	assert.Equal(t, "finished", race.Status)

	result, err := repos.RaceResult.GetByRaceID(context.Background(), race.ID)
	require.NoError(t, err)
	require.Len(t, result.Finishers, 3)
	winner := result.Winner()
	require.NotNil(t, winner)
	assert.Equal(t, "H2", winner.HorseID)

	perfs, err := repos.Performance.GetByRaceID(context.Background(), race.ID)
	require.NoError(t, err)
	for _, perf := range perfs {
		require.NotNil(t, perf.Rank, "rank missing for %s", perf.HorseID)
	}

	// The race without results stays scheduled and is reported as a
	// pending evaluation.
	pending, err := repos.Race.GetByCode(context.Background(), testDay, "R1C2")
	require.NoError(t, err)
	assert.Equal(t, "scheduled", pending.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PendingEvaluations))
}

func TestIngestResultsEvaluatesStoredPrediction(t *testing.T) {
	repos := newFakeRepositories()
	svc := NewIngestionService(testProgramSource(), repos, quietLogger())

	_, err := svc.IngestProgram(context.Background(), testDay)
	require.NoError(t, err)

	race, err := repos.Race.GetByCode(context.Background(), testDay, "R1C1")
	require.NoError(t, err)

	// Prediction had the actual winner ranked second and all three
	// finishers in the predicted top 3.
	record := &models.PredictionRecord{
		ID:     uuid.New(),
		RaceID: race.ID,
		Predictions: []models.Prediction{
			{HorseID: "H1", Rank: 1},
			{HorseID: "H2", Rank: 2},
			{HorseID: "H3", Rank: 3},
		},
		ScenarioDetected: models.ScenarioStandardTop3,
	}
	require.NoError(t, repos.PredictionRecord.Create(context.Background(), record))

	_, err = svc.IngestResults(context.Background(), testDay)
	require.NoError(t, err)

	stored, err := repos.PredictionRecord.GetByRaceID(context.Background(), race.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AccuracyScore)
	// 30 winner points + full top-3 overlap.
	assert.InDelta(t, 80.0, *stored.AccuracyScore, 1e-9)
	require.NotNil(t, stored.Top3Accuracy)
	assert.InDelta(t, 100.0, *stored.Top3Accuracy, 1e-9)
	require.NotNil(t, stored.WinnerRankPredicted)
	assert.Equal(t, 2, *stored.WinnerRankPredicted)
}

func TestIngestResultsAlreadyFinishedSkipped(t *testing.T) {
	repos := newFakeRepositories()
	svc := NewIngestionService(testProgramSource(), repos, quietLogger())

	_, err := svc.IngestProgram(context.Background(), testDay)
	require.NoError(t, err)
	_, err = svc.IngestResults(context.Background(), testDay)
	require.NoError(t, err)

	m, err := svc.IngestResults(context.Background(), testDay)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Snapshot().ResultsStored)
}
