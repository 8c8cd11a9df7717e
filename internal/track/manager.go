package track

import (
	"log"
	"sync"
	"time"

	"RegimeSentinel/internal/model"
)

// Manager tracks the regime seen by the previous run with concurrency safety,
// so a cron task and a user command can both touch it.
type Manager struct {
	mu       sync.Mutex
	state    *model.TrackState
	filePath string
}

// NewManager creates a Manager, loading or initializing state from disk.
func NewManager(filePath string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	m := &Manager{state: state, filePath: filePath}
	return m, nil
}

// GetState returns a copy of the current track state.
func (m *Manager) GetState() model.TrackState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state
}

// Update records the outcome of a run and reports whether the regime flipped
// since the previous one. streak is the in-series trailing streak computed by
// the classifier, which survives restarts unlike an in-memory counter.
func (m *Manager) Update(label model.RegimeLabel, streak int, logLik float64, at time.Time) (changed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed = m.state.LastLabel != "" && m.state.LastLabel != string(label)
	if changed {
		m.state.RegimeChanges++
	}

	m.state.LastLabel = string(label)
	m.state.StreakWeeks = streak
	m.state.LastRunAt = at
	m.state.TotalRuns++

	m.state.RecentLogLiks = append(m.state.RecentLogLiks, logLik)
	if len(m.state.RecentLogLiks) > 12 {
		m.state.RecentLogLiks = m.state.RecentLogLiks[len(m.state.RecentLogLiks)-12:]
	}

	if err := SaveState(m.filePath, m.state); err != nil {
		log.Printf("[ERROR] failed to save track state: %v", err)
	}
	return changed
}
