package forecaster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foreknown/internal/model"
	"foreknown/internal/predict"
)

func TestRun(t *testing.T) {
	f := New(predict.Options{Steps: 40, StepSize: 1.0, Paths: 50, Seed: 7})
	series := &model.Series{
		Symbol:       "SPX500",
		Source:       "mock",
		Observations: []float64{100, 101, 99, 102, 103},
	}

	fc, err := f.Run(context.Background(), series)
	require.NoError(t, err)

	assert.Equal(t, "SPX500", fc.Symbol)
	assert.Equal(t, "mock", fc.Source)
	assert.Equal(t, series.Observations, fc.History)
	assert.Len(t, fc.Predicted, 40)
	assert.Len(t, fc.Ensemble.Paths, 50)
	assert.Equal(t, fc.Ensemble.Paths[0], fc.Predicted)
	assert.Equal(t, int64(7), fc.Seed)
	assert.Equal(t, 103.0, fc.Calibration.LastValue)
	assert.Equal(t, 5, fc.Summary.Count)
	assert.NotEmpty(t, fc.Risk.Level)

	combined, boundary := fc.Combined()
	assert.Len(t, combined, 45)
	assert.Equal(t, 5, boundary)
}

func TestRunWith_Overrides(t *testing.T) {
	f := New(predict.Options{Steps: 252, StepSize: 1.0, Paths: 1, Seed: 1})

	fc, err := f.RunWith(context.Background(), []float64{58.7, 56.85, 57.0, 59.6, 60.0},
		predict.Options{Steps: 65, StepSize: 0.5, Paths: 1, Seed: 3})
	require.NoError(t, err)
	assert.Len(t, fc.Predicted, 65)
	assert.Equal(t, 0.5, fc.StepSize)

	want, err := predict.Predict([]float64{58.7, 56.85, 57.0, 59.6, 60.0}, 65, 0.5, predict.DeriveSource(3, 0))
	require.NoError(t, err)
	assert.Equal(t, want, fc.Predicted)

	cal, err := predict.Calibrate([]float64{58.7, 56.85, 57.0, 59.6, 60.0}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, cal, fc.Calibration)
	assert.Equal(t, 0.5, fc.Calibration.StepSize)
}

func TestRunWith_Errors(t *testing.T) {
	f := New(predict.Options{Steps: 10, StepSize: 1.0, Paths: 1})
	ctx := context.Background()

	_, err := f.RunWith(ctx, []float64{10, 11}, predict.Options{})
	assert.ErrorIs(t, err, predict.ErrArithmeticOverflow)

	_, err = f.RunWith(ctx, []float64{10, 11, 12}, predict.Options{Steps: predict.MaxSteps + 1})
	assert.ErrorIs(t, err, predict.ErrInvalidInput)
}

func TestRunWith_InvalidInput(t *testing.T) {
	f := New(predict.Options{Steps: 10, StepSize: 1.0, Paths: 1})
	_, err := f.RunWith(context.Background(), []float64{5.0, -1.0}, predict.Options{})
	assert.ErrorIs(t, err, predict.ErrInvalidInput)
}
