package model

import "time"

// RiskLevel is the coarse risk bucket of a forecast.
type RiskLevel string

const (
	RiskGreen  RiskLevel = "green"
	RiskYellow RiskLevel = "yellow"
	RiskRed    RiskLevel = "red"
)

// RiskTier maps projected downside to a risk level.
type RiskTier struct {
	Level    RiskLevel
	Label    string
	Downside float64 // (last - P5) / last
}

// Calibration holds the statistics derived from the log-returns of a series.
type Calibration struct {
	Returns       int
	MeanLogReturn float64
	Variance      float64
	Drift         float64
	Volatility    float64
	LastValue     float64
	StepSize      float64
}

// Percentiles represents the spread of simulated final values.
type Percentiles struct {
	P5  float64 `json:"p5"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
}

// Ensemble is the result of simulating several independent paths.
type Ensemble struct {
	Paths     [][]float64
	FinalMean float64
	Final     Percentiles
	Seed      int64
}

// Representative returns the first simulated path.
func (e *Ensemble) Representative() []float64 {
	if e == nil || len(e.Paths) == 0 {
		return nil
	}
	return e.Paths[0]
}

// Forecast is one prediction run for a symbol.
type Forecast struct {
	RunID       string
	Symbol      string
	Source      string
	History     []float64
	Predicted   []float64
	Calibration Calibration
	Summary     SeriesSummary
	Ensemble    *Ensemble
	Risk        RiskTier
	Steps       int
	StepSize    float64
	Seed        int64
	GeneratedAt time.Time
}

// FinalValue returns the last predicted value, or the last observation if nothing was predicted.
func (f *Forecast) FinalValue() float64 {
	if len(f.Predicted) > 0 {
		return f.Predicted[len(f.Predicted)-1]
	}
	if len(f.History) > 0 {
		return f.History[len(f.History)-1]
	}
	return 0
}

// Combined returns history followed by the predicted path, along with the index
// at which the predicted portion starts.
func (f *Forecast) Combined() ([]float64, int) {
	out := make([]float64, 0, len(f.History)+len(f.Predicted))
	out = append(out, f.History...)
	out = append(out, f.Predicted...)
	return out, len(f.History)
}
