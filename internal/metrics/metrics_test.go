package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordPrediction(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordPrediction(0.05, false)
		RecordPrediction(0, true)
	})
}

func TestRecordFetchError(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordFetchError("programme")
		RecordFetchError("participants")
	})
}

func TestUpdateGauges(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name  string
		value float64
	}{
		{"positive", 82.5},
		{"zero", 0},
		{"negative", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateAccuracy(tt.value)
				UpdatePendingEvaluations(tt.value)
				UpdateDailyPlannedStake(tt.value)
			})
		})
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordRaceIngested()

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	Handler().ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "pmu_edge_races_ingested_total")
}
