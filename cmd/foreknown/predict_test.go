package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foreknown/internal/model"
)

func sampleForecast() *model.Forecast {
	return &model.Forecast{
		Symbol:      "TEST",
		Source:      "csv",
		History:     []float64{10, 11, 12},
		Predicted:   []float64{12.5, 13, 12.8},
		Calibration: model.Calibration{Returns: 2, LastValue: 12, StepSize: 1},
		Risk:        model.RiskTier{Level: model.RiskGreen, Label: "low risk"},
		Steps:       3,
		StepSize:    1,
		Seed:        9,
	}
}

func TestExportPath(t *testing.T) {
	out := filepath.Join(t.TempDir(), "forecast.csv")
	require.NoError(t, exportPath(out, sampleForecast()))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	var rows []*pathRow
	require.NoError(t, gocsv.UnmarshalFile(f, &rows))
	require.Len(t, rows, 6)

	assert.Equal(t, pathRow{Step: -2, Kind: "history", Value: 10}, *rows[0])
	assert.Equal(t, pathRow{Step: 0, Kind: "history", Value: 12}, *rows[2])
	assert.Equal(t, pathRow{Step: 1, Kind: "predicted", Value: 12.5}, *rows[3])
	assert.Equal(t, pathRow{Step: 3, Kind: "predicted", Value: 12.8}, *rows[5])
}

func TestRenderTables(t *testing.T) {
	var buf bytes.Buffer
	f := sampleForecast()
	renderCalibration(&buf, f)
	renderPath(&buf, f, 2)

	out := buf.String()
	assert.Contains(t, out, "TEST")
	assert.Contains(t, out, "green (low risk)")
	assert.Contains(t, out, "12.8")
	assert.NotContains(t, out, "12.5")
	assert.NotContains(t, out, "p95")
}
