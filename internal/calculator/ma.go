package calculator

import (
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"
)

var (
	errBadPeriod  = errors.New("period must be positive")
	errShortInput = errors.New("not enough data")
)

// CalculateSMA returns the mean of the trailing window of prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errBadPeriod
	}
	if len(prices) < period {
		return 0, fmt.Errorf("sma(%d) over %d prices: %w", period, len(prices), errShortInput)
	}
	return stats.Mean(stats.Float64Data(prices[len(prices)-period:]))
}
