package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionMetrics tracks statistics about one ingestion run
type IngestionMetrics struct {
	mu                sync.RWMutex
	StartTime         time.Time
	Duration          time.Duration
	TotalRaces        int
	SuccessfulRaces   int
	TotalPerformances int
	ResultsStored     int
	Duplicates        int
	Errors            int
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *IngestionMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.TotalRaces = 0
	m.SuccessfulRaces = 0
	m.TotalPerformances = 0
	m.ResultsStored = 0
	m.Duplicates = 0
	m.Errors = 0
}

// RecordAttempt increments the total race count
func (m *IngestionMetrics) RecordAttempt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalRaces++
}

// SetDuration stores the elapsed time of the run
func (m *IngestionMetrics) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duration = d
}

// RecordRace increments successful race count
func (m *IngestionMetrics) RecordRace() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuccessfulRaces++
}

// RecordPerformances adds to the stored performance count
func (m *IngestionMetrics) RecordPerformances(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalPerformances += n
}

// RecordResult increments the stored result count
func (m *IngestionMetrics) RecordResult() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResultsStored++
}

// RecordDuplicate increments duplicate count
func (m *IngestionMetrics) RecordDuplicate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duplicates++
}

// RecordError increments error count
func (m *IngestionMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// Snapshot returns a copy safe to read after the run finished
func (m *IngestionMetrics) Snapshot() IngestionMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return IngestionMetrics{
		StartTime:         m.StartTime,
		Duration:          m.Duration,
		TotalRaces:        m.TotalRaces,
		SuccessfulRaces:   m.SuccessfulRaces,
		TotalPerformances: m.TotalPerformances,
		ResultsStored:     m.ResultsStored,
		Duplicates:        m.Duplicates,
		Errors:            m.Errors,
	}
}

// String returns a formatted string representation of metrics
func (m *IngestionMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := float64(0)
	if m.TotalRaces > 0 {
		successRate = float64(m.SuccessfulRaces) / float64(m.TotalRaces) * 100
	}

	return fmt.Sprintf(
		"IngestionMetrics{Total=%d, Successful=%d (%.1f%%), Performances=%d, Results=%d, Duplicates=%d, Errors=%d, Duration=%v}",
		m.TotalRaces,
		m.SuccessfulRaces,
		successRate,
		m.TotalPerformances,
		m.ResultsStored,
		m.Duplicates,
		m.Errors,
		m.Duration,
	)
}
