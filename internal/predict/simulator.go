// Package predict extrapolates a synthetic forward path from a historical
// price series using a GBM-like recurrence calibrated from log-returns.
package predict

import (
	"fmt"
	"math"

	"foreknown/internal/calculator"
	"foreknown/internal/model"
)

const (
	// GoldenRatio scales the Brownian increment of every step. Changing it
	// changes the simulated distribution.
	GoldenRatio = 1.618

	// DefaultSteps is one trading year of daily steps.
	DefaultSteps = 252

	// DefaultStepSize is one day per step.
	DefaultStepSize = 1.0

	// MaxSteps bounds the length of a single path.
	MaxSteps = 1 << 20

	// preallocLimit caps the capacity reserved up front for a path.
	preallocLimit = 1 << 16
)

// StepsForHorizon returns the number of steps of size stepSize that fit in tFinal.
func StepsForHorizon(tFinal, stepSize float64) (int, error) {
	if !isPositiveFinite(tFinal) || !isPositiveFinite(stepSize) {
		return 0, fmt.Errorf("%w: horizon %v and step size %v must be positive", ErrInvalidInput, tFinal, stepSize)
	}
	ratio := tFinal / stepSize
	if ratio > MaxSteps {
		return 0, fmt.Errorf("%w: horizon %v needs more than %d steps of %v", ErrInvalidInput, tFinal, MaxSteps, stepSize)
	}
	steps := int(ratio)
	if steps <= 0 {
		return 0, fmt.Errorf("%w: horizon %v is shorter than one step of %v", ErrInvalidInput, tFinal, stepSize)
	}
	return steps, nil
}

// ValidateObservations checks that the series has at least two values and
// every value is finite and strictly positive.
func ValidateObservations(observations []float64) error {
	if len(observations) < 2 {
		return fmt.Errorf("%w: need at least 2 observations, got %d", ErrInvalidInput, len(observations))
	}
	for i, v := range observations {
		if !isPositiveFinite(v) {
			return fmt.Errorf("%w: observation %d is %v, must be finite and positive", ErrInvalidInput, i, v)
		}
	}
	return nil
}

// Calibrate derives the drift and volatility used by Predict.
//
// The variance is the squared deviation of the summed log-returns from their
// mean, divided by len(returns)-1. It is not the sample variance of the
// individual returns. With a single return the statistic is 0/0 and
// Calibrate fails with ErrArithmeticOverflow.
func Calibrate(observations []float64, stepSize float64) (model.Calibration, error) {
	if err := ValidateObservations(observations); err != nil {
		return model.Calibration{}, err
	}
	if !isPositiveFinite(stepSize) {
		return model.Calibration{}, fmt.Errorf("%w: step size %v must be positive", ErrInvalidInput, stepSize)
	}

	returns, err := calculator.LogReturns(observations)
	if err != nil {
		return model.Calibration{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	sumReturns := 0.0
	for i, r := range returns {
		if !isFinite(r) {
			return model.Calibration{}, fmt.Errorf("%w: log-return %d is %v", ErrArithmeticOverflow, i, r)
		}
		sumReturns += r
	}

	n := float64(len(returns))
	mean := sumReturns / n
	dev := sumReturns - mean
	variance := (1.0 / (n - 1)) * (dev * dev)

	if !isFinite(variance) {
		return model.Calibration{}, fmt.Errorf("%w: variance over %d return(s) is %v", ErrArithmeticOverflow, len(returns), variance)
	}

	cal := model.Calibration{
		Returns:       len(returns),
		MeanLogReturn: mean,
		Variance:      variance,
		Drift:         math.Sqrt(variance) / math.Sqrt(stepSize),
		Volatility:    (mean + variance/2) / stepSize,
		LastValue:     observations[len(observations)-1],
		StepSize:      stepSize,
	}
	for name, v := range map[string]float64{
		"mean log-return": cal.MeanLogReturn,
		"variance":        cal.Variance,
		"drift":           cal.Drift,
		"volatility":      cal.Volatility,
	} {
		if !isFinite(v) {
			return model.Calibration{}, fmt.Errorf("%w: %s is %v", ErrArithmeticOverflow, name, v)
		}
	}
	return cal, nil
}

// Predict returns one sampled forward path of at most steps values, seeded from
// the last observation. A nil src draws from a fresh time-seeded generator.
//
// The returned slice is newly allocated and never aliases observations.
func Predict(observations []float64, steps int, stepSize float64, src NormalSource) ([]float64, error) {
	if err := validateSteps(steps); err != nil {
		return nil, err
	}
	cal, err := Calibrate(observations, stepSize)
	if err != nil {
		return nil, err
	}
	if src == nil {
		src = NewEntropySource()
	}
	return simulate(cal, steps, src)
}

// PredictCalibrated is Predict with the calibration already computed.
func PredictCalibrated(cal model.Calibration, steps int, src NormalSource) ([]float64, error) {
	if err := validateSteps(steps); err != nil {
		return nil, err
	}
	if !isPositiveFinite(cal.StepSize) || !isPositiveFinite(cal.LastValue) {
		return nil, fmt.Errorf("%w: calibration has no usable step size or last value", ErrInvalidInput)
	}
	if src == nil {
		src = NewEntropySource()
	}
	return simulate(cal, steps, src)
}

func simulate(cal model.Calibration, steps int, src NormalSource) ([]float64, error) {
	dt := cal.StepSize
	sqrtDt := math.Sqrt(dt)
	tFinal := float64(steps) * dt
	driftTerm := (cal.Drift - cal.Volatility*cal.Volatility/2) * dt

	path := make([]float64, 0, min(steps, preallocLimit))
	current := cal.LastValue
	t := 0.0
	for i := 0; i < steps; i++ {
		if t > tFinal {
			break
		}
		z := src.NormFloat64()
		w := GoldenRatio * current * z * sqrtDt
		next := current + driftTerm + cal.Volatility*w*sqrtDt
		if !isFinite(next) {
			return nil, fmt.Errorf("%w: step %d produced %v", ErrArithmeticOverflow, i, next)
		}
		path = append(path, next)
		current = next
		t += dt
	}
	return path, nil
}

func validateSteps(steps int) error {
	if steps <= 0 || steps > MaxSteps {
		return fmt.Errorf("%w: steps %d must be in [1, %d]", ErrInvalidInput, steps, MaxSteps)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isPositiveFinite(v float64) bool {
	return isFinite(v) && v > 0
}
