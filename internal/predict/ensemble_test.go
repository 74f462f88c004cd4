package predict

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulate_DeterministicAcrossWorkers(t *testing.T) {
	ctx := context.Background()
	opts := Options{Steps: 30, StepSize: 1.0, Paths: 64, Seed: 2024, Workers: 1}

	serial, err := Simulate(ctx, benign, opts)
	require.NoError(t, err)

	opts.Workers = 8
	parallel, err := Simulate(ctx, benign, opts)
	require.NoError(t, err)

	assert.Equal(t, serial.Paths, parallel.Paths)
	assert.Equal(t, serial.Final, parallel.Final)
	assert.Equal(t, int64(2024), parallel.Seed)
}

func TestSimulate_PathsMatchDerivedSources(t *testing.T) {
	opts := Options{Steps: 20, StepSize: 0.5, Paths: 3, Seed: 11}
	ens, err := Simulate(context.Background(), benign, opts)
	require.NoError(t, err)
	require.Len(t, ens.Paths, 3)

	for i, path := range ens.Paths {
		want, err := Predict(benign, opts.Steps, opts.StepSize, DeriveSource(opts.Seed, uint64(i)))
		require.NoError(t, err)
		assert.Equal(t, want, path, "path %d", i)
	}
	assert.Equal(t, ens.Paths[0], ens.Representative())
}

func TestSimulate_Percentiles(t *testing.T) {
	ens, err := Simulate(context.Background(), benign, Options{Steps: 50, StepSize: 1.0, Paths: 500, Seed: 5})
	require.NoError(t, err)

	assert.LessOrEqual(t, ens.Final.P5, ens.Final.P50)
	assert.LessOrEqual(t, ens.Final.P50, ens.Final.P95)
	assert.Greater(t, ens.FinalMean, ens.Final.P5)
	assert.Less(t, ens.FinalMean, ens.Final.P95)
}

func TestSimulate_InvalidInput(t *testing.T) {
	ctx := context.Background()

	_, err := Simulate(ctx, []float64{1}, Options{Steps: 10, StepSize: 1, Paths: 2})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Simulate(ctx, benign, Options{Steps: 0, StepSize: 1, Paths: 2})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Simulate(ctx, benign, Options{Steps: 10, StepSize: 1, Paths: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Simulate(ctx, benign, Options{Steps: 1 << 50, StepSize: 1, Paths: 2})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSimulateCalibrated_ValidatesOptions(t *testing.T) {
	ctx := context.Background()
	cal, err := Calibrate(benign, 1.0)
	require.NoError(t, err)

	_, err = SimulateCalibrated(ctx, cal, Options{Steps: 10, Paths: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = SimulateCalibrated(ctx, cal, Options{Steps: 0, Paths: 2})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = SimulateCalibrated(ctx, cal, Options{Steps: MaxSteps + 1, Paths: 2})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

type panicSource struct{}

func (panicSource) NormFloat64() float64 { panic("source exhausted") }

func TestSimulate_RecoversWorkerPanic(t *testing.T) {
	orig := pathSource
	t.Cleanup(func() { pathSource = orig })
	pathSource = func(seed int64, stream uint64) NormalSource {
		if stream == 2 {
			return panicSource{}
		}
		return DeriveSource(seed, stream)
	}

	ens, err := Simulate(context.Background(), benign, Options{Steps: 5, StepSize: 1, Paths: 4, Seed: 3, Workers: 2})
	require.Error(t, err)
	assert.Nil(t, ens)
	assert.Contains(t, err.Error(), "path 2 panicked")
}

func TestSimulate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Simulate(ctx, benign, Options{Steps: 10, StepSize: 1, Paths: 16, Seed: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulate_Overflow(t *testing.T) {
	_, err := Simulate(context.Background(), []float64{1, 1e100, 1, 1e100}, Options{Steps: 400, StepSize: 1, Paths: 4, Seed: 9})
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}
