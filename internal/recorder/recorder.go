package recorder

import (
	"errors"
	"time"

	"foreknown/internal/model"
)

// ErrNotFound is returned when no forecast has been recorded for a symbol.
var ErrNotFound = errors.New("no recorded forecast")

// RunSummary is the persisted header of one forecast run.
type RunSummary struct {
	RunID         string
	Timestamp     time.Time
	Symbol        string
	Source        string
	Observations  int
	Steps         int
	StepSize      float64
	Paths         int
	Seed          int64
	MeanLogReturn float64
	Variance      float64
	Drift         float64
	Volatility    float64
	LastValue     float64
	FinalValue    float64
	Final         model.Percentiles
	Risk          model.RiskLevel
}

// Recorder persists forecast runs for later analysis.
type Recorder interface {
	RecordForecast(f *model.Forecast) (string, error)
	LatestForecast(symbol string) (*RunSummary, error)
	Close() error
}
