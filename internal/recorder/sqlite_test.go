package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foreknown/internal/model"
)

func sampleForecast(symbol string, at time.Time) *model.Forecast {
	return &model.Forecast{
		Symbol:    symbol,
		Source:    "csv",
		History:   []float64{58.7, 56.85, 57.0, 59.6, 60.0},
		Predicted: []float64{60.5, 61.2, 59.9},
		Calibration: model.Calibration{
			Returns: 4, MeanLogReturn: 0.0055, Variance: 0.0001,
			Drift: 0.01, Volatility: 0.0056, LastValue: 60.0, StepSize: 0.5,
		},
		Ensemble: &model.Ensemble{
			Paths: [][]float64{{60.5, 61.2, 59.9}, {60, 60, 60}},
			Final: model.Percentiles{P5: 58, P50: 60, P95: 62},
		},
		Risk:        model.RiskTier{Level: model.RiskGreen},
		Steps:       3,
		StepSize:    0.5,
		Seed:        99,
		GeneratedAt: at,
	}
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	defer rec.Close()

	older := sampleForecast("SPX500", time.Now().Add(-time.Hour))
	_, err = rec.RecordForecast(older)
	require.NoError(t, err)

	newer := sampleForecast("SPX500", time.Now())
	newer.Predicted = []float64{70, 71}
	runID, err := rec.RecordForecast(newer)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	latest, err := rec.LatestForecast("SPX500")
	require.NoError(t, err)
	assert.Equal(t, runID, latest.RunID)
	assert.Equal(t, "csv", latest.Source)
	assert.Equal(t, 5, latest.Observations)
	assert.Equal(t, 2, latest.Paths)
	assert.Equal(t, int64(99), latest.Seed)
	assert.Equal(t, 71.0, latest.FinalValue)
	assert.Equal(t, 60.0, latest.LastValue)
	assert.Equal(t, model.Percentiles{P5: 58, P50: 60, P95: 62}, latest.Final)
	assert.Equal(t, model.RiskGreen, latest.Risk)

	path, err := rec.Path(runID)
	require.NoError(t, err)
	assert.Equal(t, []float64{70, 71}, path)
}

func TestSQLiteRecorder_KeepsProvidedRunID(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer rec.Close()

	f := sampleForecast("AAPL", time.Now())
	f.RunID = "fixed-id"
	runID, err := rec.RecordForecast(f)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", runID)

	_, err = rec.RecordForecast(f)
	assert.Error(t, err, "duplicate run id must be rejected")
}

func TestSQLiteRecorder_NotFound(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer rec.Close()

	_, err = rec.LatestForecast("NONE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNoopRecorder(t *testing.T) {
	rec := NewNoopRecorder()
	id, err := rec.RecordForecast(sampleForecast("X", time.Now()))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = rec.LatestForecast("X")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, rec.Close())
}
