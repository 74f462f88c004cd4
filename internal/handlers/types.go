package handlers

import (
	"time"

	"foreknown/internal/model"
)

// PredictRequest is the body of POST /v1/predict.
type PredictRequest struct {
	Observations []float64 `json:"observations"`
	Steps        int       `json:"steps"`
	StepSize     float64   `json:"stepSize"`
	Horizon      float64   `json:"horizon,omitempty"` // used when steps is 0
	Seed         int64     `json:"seed,omitempty"`
	Paths        int       `json:"paths,omitempty"`
}

// CalibrationDTO is the JSON shape of model.Calibration.
type CalibrationDTO struct {
	Returns       int     `json:"returns"`
	MeanLogReturn float64 `json:"meanLogReturn"`
	Variance      float64 `json:"variance"`
	Drift         float64 `json:"drift"`
	Volatility    float64 `json:"volatility"`
	LastValue     float64 `json:"lastValue"`
}

// ForecastResponse is returned by the prediction endpoints.
type ForecastResponse struct {
	Symbol        string             `json:"symbol,omitempty"`
	Source        string             `json:"source,omitempty"`
	HistoryLength int                `json:"historyLength"`
	Predicted     []float64          `json:"predicted"`
	Calibration   CalibrationDTO     `json:"calibration"`
	Paths         int                `json:"paths"`
	Percentiles   *model.Percentiles `json:"percentiles,omitempty"`
	Risk          model.RiskLevel    `json:"risk"`
	Downside      float64            `json:"downside"`
	Steps         int                `json:"steps"`
	StepSize      float64            `json:"stepSize"`
	Seed          int64              `json:"seed"`
	GeneratedAt   time.Time          `json:"generatedAt"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

func newForecastResponse(f *model.Forecast) ForecastResponse {
	resp := ForecastResponse{
		Symbol:        f.Symbol,
		Source:        f.Source,
		HistoryLength: len(f.History),
		Predicted:     f.Predicted,
		Calibration: CalibrationDTO{
			Returns:       f.Calibration.Returns,
			MeanLogReturn: f.Calibration.MeanLogReturn,
			Variance:      f.Calibration.Variance,
			Drift:         f.Calibration.Drift,
			Volatility:    f.Calibration.Volatility,
			LastValue:     f.Calibration.LastValue,
		},
		Paths:       1,
		Risk:        f.Risk.Level,
		Downside:    f.Risk.Downside,
		Steps:       f.Steps,
		StepSize:    f.StepSize,
		Seed:        f.Seed,
		GeneratedAt: f.GeneratedAt,
	}
	if f.Ensemble != nil && len(f.Ensemble.Paths) > 1 {
		p := f.Ensemble.Final
		resp.Paths = len(f.Ensemble.Paths)
		resp.Percentiles = &p
	}
	return resp
}
