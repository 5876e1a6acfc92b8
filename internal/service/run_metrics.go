package service

import (
	"fmt"
	"sync"
	"time"
)

// RunMetrics tracks statistics about one prediction run
type RunMetrics struct {
	mu               sync.RWMutex
	StartTime        time.Time
	Duration         time.Duration
	Leagues          int
	SkippedLeagues   int
	Games            int
	ValidationErrors int
	Predictions      int
	Persisted        int
}

// NewRunMetrics creates a new metrics tracker
func NewRunMetrics() *RunMetrics {
	return &RunMetrics{StartTime: time.Now()}
}

// Reset resets all metrics
func (m *RunMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.Leagues = 0
	m.SkippedLeagues = 0
	m.Games = 0
	m.ValidationErrors = 0
	m.Predictions = 0
	m.Persisted = 0
}

// RecordLeague counts a league that produced predictions
func (m *RunMetrics) RecordLeague(games, rejected, predictions int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Leagues++
	m.Games += games
	m.ValidationErrors += rejected
	m.Predictions += predictions
}

// RecordSkip counts a league that produced nothing
func (m *RunMetrics) RecordSkip(games, rejected int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SkippedLeagues++
	m.Games += games
	m.ValidationErrors += rejected
}

// RecordPersisted counts stored records
func (m *RunMetrics) RecordPersisted(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persisted += n
}

// Finish stamps the run duration
func (m *RunMetrics) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duration = time.Since(m.StartTime)
}

// Snapshot returns a copy safe to read without locking
func (m *RunMetrics) Snapshot() RunMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return RunMetrics{
		StartTime:        m.StartTime,
		Duration:         m.Duration,
		Leagues:          m.Leagues,
		SkippedLeagues:   m.SkippedLeagues,
		Games:            m.Games,
		ValidationErrors: m.ValidationErrors,
		Predictions:      m.Predictions,
		Persisted:        m.Persisted,
	}
}

// String returns a formatted string representation of metrics
func (m *RunMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fmt.Sprintf(
		"RunMetrics{Leagues=%d, Skipped=%d, Games=%d, ValidationErrors=%d, Predictions=%d, Persisted=%d, Duration=%v}",
		m.Leagues,
		m.SkippedLeagues,
		m.Games,
		m.ValidationErrors,
		m.Predictions,
		m.Persisted,
		m.Duration,
	)
}
