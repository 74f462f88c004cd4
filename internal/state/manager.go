package state

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"foreknown/internal/model"
)

// Manager guards the run state and persists every change. An empty file path
// keeps the state in memory only.
type Manager struct {
	mu       sync.Mutex
	state    *model.RunState
	filePath string
}

// NewManager creates a Manager, loading existing state from disk.
func NewManager(filePath string) (*Manager, error) {
	st := &model.RunState{}
	if filePath != "" {
		loaded, err := LoadState(filePath)
		if err != nil {
			return nil, err
		}
		st = loaded
	}
	return &Manager{state: st, filePath: filePath}, nil
}

// GetState returns a copy of the current run state.
func (m *Manager) GetState() model.RunState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state
}

// RecordSuccess stores the outcome of a successful forecast run.
func (m *Manager) RecordSuccess(runID, symbol, report string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.LastRunID = runID
	m.state.LastSymbol = symbol
	m.state.LastReport = report
	m.state.LastRunAt = time.Now()
	m.state.LastError = ""
	m.state.Runs++
	m.state.ConsecutiveFailures = 0
	m.persist()
}

// RecordFailure stores a failed run and returns the consecutive failure count.
func (m *Manager) RecordFailure(err error) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.LastError = err.Error()
	m.state.ConsecutiveFailures++
	m.persist()
	return m.state.ConsecutiveFailures
}

func (m *Manager) persist() {
	if m.filePath == "" {
		return
	}
	if err := SaveState(m.filePath, m.state); err != nil {
		log.Errorf("save run state: %v", err)
	}
}
