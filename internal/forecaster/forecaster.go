// Package forecaster turns a collected series into a complete forecast:
// calibration, representative path, ensemble percentiles and risk tier.
package forecaster

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"foreknown/internal/calculator"
	"foreknown/internal/model"
	"foreknown/internal/predict"
	"foreknown/internal/strategy"
)

// Forecaster holds the simulation parameters shared by every run.
type Forecaster struct {
	Options predict.Options
}

// New creates a Forecaster with the given defaults.
func New(opts predict.Options) *Forecaster {
	return &Forecaster{Options: opts}
}

// Run forecasts a collected series with the default options.
func (f *Forecaster) Run(ctx context.Context, series *model.Series) (*model.Forecast, error) {
	fc, err := f.RunWith(ctx, series.Observations, f.Options)
	if err != nil {
		return nil, err
	}
	fc.Symbol = series.Symbol
	fc.Source = series.Source
	if series.Summary.Count > 0 {
		fc.Summary = series.Summary
	}
	return fc, nil
}

// RunWith forecasts raw observations. Zero Steps or StepSize in opts fall back
// to the Forecaster defaults.
func (f *Forecaster) RunWith(ctx context.Context, observations []float64, opts predict.Options) (*model.Forecast, error) {
	if opts.Steps == 0 {
		opts.Steps = f.Options.Steps
	}
	if opts.StepSize == 0 {
		opts.StepSize = f.Options.StepSize
	}
	if opts.Workers == 0 {
		opts.Workers = f.Options.Workers
	}

	start := time.Now()
	cal, err := predict.Calibrate(observations, opts.StepSize)
	if err != nil {
		return nil, err
	}
	ens, err := predict.SimulateCalibrated(ctx, cal, opts)
	if err != nil {
		return nil, err
	}

	history := make([]float64, len(observations))
	copy(history, observations)
	fc := &model.Forecast{
		History:     history,
		Predicted:   ens.Representative(),
		Calibration: cal,
		Ensemble:    ens,
		Steps:       opts.Steps,
		StepSize:    opts.StepSize,
		Seed:        ens.Seed,
		GeneratedAt: time.Now(),
	}
	if sum, err := calculator.Summarize(history); err == nil {
		fc.Summary = sum
	}
	fc.Risk = strategy.Evaluate(fc)

	log.WithFields(log.Fields{
		"observations": len(observations),
		"steps":        opts.Steps,
		"step_size":    opts.StepSize,
		"paths":        len(ens.Paths),
		"seed":         ens.Seed,
		"risk":         fc.Risk.Level,
		"elapsed":      time.Since(start),
	}).Debug("forecast generated")
	return fc, nil
}
