package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_PersistsAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "state.json")

	m, err := NewManager(path)
	require.NoError(t, err)
	assert.Equal(t, 0, m.GetState().Runs)

	assert.Equal(t, 1, m.RecordFailure(errors.New("fetch failed")))
	assert.Equal(t, 2, m.RecordFailure(errors.New("fetch failed")))
	m.RecordSuccess("run-1", "SPX500", "report")

	reloaded, err := NewManager(path)
	require.NoError(t, err)
	st := reloaded.GetState()
	assert.Equal(t, "run-1", st.LastRunID)
	assert.Equal(t, "SPX500", st.LastSymbol)
	assert.Equal(t, "report", st.LastReport)
	assert.Equal(t, 1, st.Runs)
	assert.Equal(t, 0, st.ConsecutiveFailures)
	assert.Empty(t, st.LastError)
	assert.False(t, st.UpdatedAt.IsZero())
}

func TestManager_InMemory(t *testing.T) {
	m, err := NewManager("")
	require.NoError(t, err)
	m.RecordSuccess("run-2", "AAPL", "r")
	assert.Equal(t, "run-2", m.GetState().LastRunID)
}

func TestLoadState_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadState(path)
	assert.Error(t, err)

	_, err = NewManager(path)
	assert.Error(t, err)
}
