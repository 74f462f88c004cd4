package calculator

import (
	"fmt"

	"github.com/montanaflynn/stats"
	log "github.com/sirupsen/logrus"

	"foreknown/internal/model"
)

// Summarize computes descriptive statistics for an observation series.
// Indicators that cannot be computed fall back to neutral values and are logged.
func Summarize(prices []float64) (model.SeriesSummary, error) {
	if len(prices) == 0 {
		return model.SeriesSummary{}, fmt.Errorf("summarize: empty series")
	}
	last := prices[len(prices)-1]
	sum := model.SeriesSummary{Count: len(prices), Last: last}

	minV, err := stats.Min(prices)
	if err != nil {
		return sum, fmt.Errorf("summarize min: %w", err)
	}
	maxV, err := stats.Max(prices)
	if err != nil {
		return sum, fmt.Errorf("summarize max: %w", err)
	}
	sum.Min, sum.Max = minV, maxV

	if pos, err := CalculatePosition(last, maxV, minV); err != nil {
		log.Warnf("position calculation failed: %v", err)
		sum.Position = 0.5
	} else {
		sum.Position = pos
	}

	if sma, err := CalculateSMA(prices, 20); err != nil {
		log.Debugf("SMA20 unavailable: %v, using last value", err)
		sum.SMA20 = last
	} else {
		sum.SMA20 = sma
	}

	if rsi, err := CalculateRSI(prices, 14); err != nil {
		log.Warnf("RSI calculation failed: %v, defaulting to 50", err)
		sum.RSI14 = 50
	} else {
		sum.RSI14 = rsi
	}

	returns, err := LogReturns(prices)
	if err != nil {
		return sum, nil
	}
	if mean, err := stats.Mean(returns); err == nil {
		sum.MeanReturn = mean
	}
	if len(returns) > 1 {
		if sd, err := stats.StandardDeviationSample(returns); err == nil {
			sum.StdDevRet = sd
		}
	}
	return sum, nil
}
